package audio

import (
	"errors"
	"testing"
)

func newTestControls(start func() error) *Controls {
	sounds := NewSoundManager(SampleRate, DefaultMasterGain, 1)
	ambient := NewSystem(SampleRate, SystemOptions{Tracks: testTracks}, nil)
	return NewControls(sounds, ambient, start, nil)
}

func TestControlsStartOutputOnFirstUnmute(t *testing.T) {
	starts := 0
	c := newTestControls(func() error {
		starts++
		return nil
	})
	if !c.Sounds.Muted() || c.Started() {
		t.Fatal("sounds should stay muted until the output opens")
	}
	c.Hover()
	if c.Sounds.Active() != 0 {
		t.Fatal("muted controls should not queue voices")
	}

	if muted := c.ToggleMute(); muted {
		t.Fatal("toggle should unmute")
	}
	if starts != 1 || !c.Started() || c.Sounds.Muted() {
		t.Errorf("starts=%d started=%v sounds muted=%v", starts, c.Started(), c.Sounds.Muted())
	}

	c.ToggleMute()
	c.ToggleMute()
	if starts != 1 {
		t.Errorf("output opened %d times", starts)
	}
	if c.Ambient.Muted() || c.Sounds.Muted() {
		t.Error("second unmute should unmute both buses")
	}
}

func TestControlsStayMutedWithoutOutput(t *testing.T) {
	c := newTestControls(func() error { return errors.New("no device") })

	if muted := c.ToggleMute(); !muted {
		t.Fatal("failed output should keep the player muted")
	}
	if !c.Ambient.Muted() || !c.Sounds.Muted() {
		t.Error("both buses should stay muted")
	}
	for i := 0; i < 100; i++ {
		c.Hover()
		c.Click()
	}
	if c.Sounds.Active() != 0 {
		t.Errorf("voices queued with nothing draining: %d", c.Sounds.Active())
	}
}

func TestControlsWithoutStarter(t *testing.T) {
	c := newTestControls(nil)
	if !c.Started() {
		t.Fatal("nil starter means the caller drains the buses")
	}
	if c.ToggleMute() || c.Sounds.Muted() {
		t.Error("toggle should unmute both buses")
	}
}

func TestSoundManagerCapsVoices(t *testing.T) {
	sm := NewSoundManager(SampleRate, DefaultMasterGain, 1)
	for i := 0; i < 5000; i++ {
		sm.Hover()
	}
	if sm.Active() != MaxVoices {
		t.Errorf("active = %d, want %d", sm.Active(), MaxVoices)
	}
}
