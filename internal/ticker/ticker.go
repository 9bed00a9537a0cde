// Package ticker abstracts whatever drives the frame loop: a display refresh,
// a terminal event loop, or a test calling Advance by hand.
package ticker

import (
	"context"
	"sync"
	"time"
)

// Tick is one frame of the loop.
type Tick struct {
	Frame   int
	Elapsed float64 // seconds since the source started
	Delta   float64 // seconds since the previous tick
}

type Callback func(Tick)

// Source invokes registered callbacks once per frame.
type Source interface {
	OnTick(cb Callback)
}

// Manual fires ticks only when told to, synchronously on the caller's goroutine.
type Manual struct {
	callbacks []Callback
	frame     int
	elapsed   float64
}

func NewManual() *Manual { return &Manual{} }

func (m *Manual) OnTick(cb Callback) { m.callbacks = append(m.callbacks, cb) }

// Advance moves the clock forward by dt seconds and fires one tick.
func (m *Manual) Advance(dt float64) Tick {
	m.frame++
	m.elapsed += dt
	t := Tick{Frame: m.frame, Elapsed: m.elapsed, Delta: dt}
	for _, cb := range m.callbacks {
		cb(t)
	}
	return t
}

// Run fires n ticks of dt each.
func (m *Manual) Run(n int, dt float64) {
	for i := 0; i < n; i++ {
		m.Advance(dt)
	}
}

func (m *Manual) Elapsed() float64 { return m.elapsed }

// Clock fires ticks from a wall-clock ticker. All callbacks run on the
// goroutine that called Run.
type Clock struct {
	mu        sync.Mutex
	callbacks []Callback
	interval  time.Duration
	now       func() time.Time
}

func NewClock(fps int) *Clock {
	if fps <= 0 {
		fps = 60
	}
	return &Clock{interval: time.Second / time.Duration(fps), now: time.Now}
}

func (c *Clock) OnTick(cb Callback) {
	c.mu.Lock()
	c.callbacks = append(c.callbacks, cb)
	c.mu.Unlock()
}

func (c *Clock) Interval() time.Duration { return c.interval }

// Run blocks until ctx is done.
func (c *Clock) Run(ctx context.Context) error {
	t := time.NewTicker(c.interval)
	defer t.Stop()

	start := c.now()
	last := start
	frame := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			now := c.now()
			frame++
			tick := Tick{
				Frame:   frame,
				Elapsed: now.Sub(start).Seconds(),
				Delta:   now.Sub(last).Seconds(),
			}
			last = now

			c.mu.Lock()
			cbs := c.callbacks
			c.mu.Unlock()
			for _, cb := range cbs {
				cb(tick)
			}
		}
	}
}

// Relay fires ticks when an outside loop hands it a timestamp. The terminal
// UI uses it so frames run inside the bubbletea update loop.
type Relay struct {
	callbacks []Callback
	start     time.Time
	last      time.Time
	frame     int
}

func NewRelay() *Relay { return &Relay{} }

func (r *Relay) OnTick(cb Callback) { r.callbacks = append(r.callbacks, cb) }

func (r *Relay) Fire(now time.Time) Tick {
	if r.start.IsZero() {
		r.start = now
		r.last = now
	}
	r.frame++
	t := Tick{
		Frame:   r.frame,
		Elapsed: now.Sub(r.start).Seconds(),
		Delta:   now.Sub(r.last).Seconds(),
	}
	r.last = now
	for _, cb := range r.callbacks {
		cb(t)
	}
	return t
}
