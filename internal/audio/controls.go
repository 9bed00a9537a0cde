package audio

import (
	"github.com/san-kum/livingcore/internal/logging"
	"go.uber.org/zap"
)

// Controls is the player's button surface. The interaction sounds follow
// the ambient system's mute state, and the device output opens on the
// first unmute.
type Controls struct {
	Sounds  *SoundManager
	Ambient *System
	// Start opens the device output. Nil means the caller already drains
	// both buses.
	Start func() error

	started bool
	logger  *zap.Logger
}

// NewControls mutes sounds until the ambient system is unmuted.
func NewControls(sounds *SoundManager, ambient *System, start func() error, logger *zap.Logger) *Controls {
	c := &Controls{
		Sounds:  sounds,
		Ambient: ambient,
		Start:   start,
		started: start == nil,
		logger:  logging.OrNop(logger),
	}
	c.sync()
	return c
}

// Started reports whether the device output is open.
func (c *Controls) Started() bool { return c.started }

// ToggleMute flips the ambient system. Unmuting opens the output first; if
// that fails everything stays muted. It returns the new muted state.
func (c *Controls) ToggleMute() bool {
	if c.Ambient == nil {
		return true
	}
	if c.Ambient.Muted() && !c.ensureOutput() {
		c.sync()
		return true
	}
	muted := c.Ambient.ToggleMute()
	c.sync()
	return muted
}

// Next and Prev change track and unmute a muted player.
func (c *Controls) Next() {
	if c.Ambient == nil {
		return
	}
	c.Ambient.Next()
	c.unmute()
}

func (c *Controls) Prev() {
	if c.Ambient == nil {
		return
	}
	c.Ambient.Prev()
	c.unmute()
}

func (c *Controls) Hover() {
	if c.Sounds != nil {
		c.Sounds.Hover()
	}
}

func (c *Controls) Click() {
	if c.Sounds != nil {
		c.Sounds.Click()
	}
}

func (c *Controls) unmute() {
	if c.Ambient.Muted() {
		c.ToggleMute()
	}
}

func (c *Controls) ensureOutput() bool {
	if c.started {
		return true
	}
	if err := c.Start(); err != nil {
		c.logger.Warn("audio output unavailable", zap.Error(err))
		return false
	}
	c.started = true
	return true
}

func (c *Controls) sync() {
	if c.Sounds == nil {
		return
	}
	muted := c.Ambient == nil || c.Ambient.Muted() || !c.started
	c.Sounds.SetMuted(muted)
}
