package ticker

import (
	"context"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestManual(t *testing.T) {
	m := NewManual()

	var got []Tick
	m.OnTick(func(tk Tick) { got = append(got, tk) })

	m.Run(3, 0.5)

	if len(got) != 3 {
		t.Fatalf("expected 3 ticks, got %d", len(got))
	}
	if got[2].Frame != 3 || got[2].Elapsed != 1.5 || got[2].Delta != 0.5 {
		t.Errorf("unexpected last tick %+v", got[2])
	}
	if m.Elapsed() != 1.5 {
		t.Errorf("expected elapsed 1.5, got %v", m.Elapsed())
	}
}

func TestManual_MultipleCallbacksInOrder(t *testing.T) {
	m := NewManual()
	order := ""
	m.OnTick(func(Tick) { order += "a" })
	m.OnTick(func(Tick) { order += "b" })

	m.Advance(1.0 / 60)
	if order != "ab" {
		t.Errorf("expected callbacks in registration order, got %q", order)
	}
}

func TestClock_RunsUntilCancelled(t *testing.T) {
	c := NewClock(200)
	var ticks atomic.Int32
	var lastElapsed atomic.Value
	c.OnTick(func(tk Tick) {
		ticks.Add(1)
		lastElapsed.Store(tk.Elapsed)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := c.Run(ctx)
	if err != context.DeadlineExceeded {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if ticks.Load() == 0 {
		t.Fatal("clock never ticked")
	}
	if e, _ := lastElapsed.Load().(float64); e <= 0 {
		t.Errorf("expected positive elapsed, got %v", e)
	}
}

func TestClock_DefaultRate(t *testing.T) {
	if got := NewClock(0).Interval(); got != time.Second/60 {
		t.Errorf("expected 60 fps default, got %v", got)
	}
}

func TestRelay(t *testing.T) {
	r := NewRelay()
	var last Tick
	r.OnTick(func(tk Tick) { last = tk })

	base := time.Unix(1000, 0)
	r.Fire(base)
	if last.Elapsed != 0 || last.Frame != 1 {
		t.Errorf("first tick should start the clock, got %+v", last)
	}

	r.Fire(base.Add(250 * time.Millisecond))
	if math.Abs(last.Elapsed-0.25) > 1e-9 || math.Abs(last.Delta-0.25) > 1e-9 {
		t.Errorf("unexpected second tick %+v", last)
	}
}
