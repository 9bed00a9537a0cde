package audio

import (
	"math"
	"sync"

	"github.com/gopxl/beep"
)

// Gain scales a streamer and eases toward a target with a first-order time
// constant, so mute toggles never click. It is safe to retarget from another
// goroutine while streaming.
type Gain struct {
	Streamer beep.Streamer

	mu      sync.Mutex
	rate    beep.SampleRate
	current float64
	target  float64
	tau     float64
}

// NewGain starts at value with no smoothing until SetTimeConstant is called.
func NewGain(s beep.Streamer, value float64, rate beep.SampleRate) *Gain {
	return &Gain{Streamer: s, rate: rate, current: value, target: value}
}

func (g *Gain) SetTimeConstant(seconds float64) {
	g.mu.Lock()
	g.tau = seconds
	g.mu.Unlock()
}

// SetTarget eases toward v; with no time constant it jumps.
func (g *Gain) SetTarget(v float64) {
	g.mu.Lock()
	g.target = v
	if g.tau <= 0 {
		g.current = v
	}
	g.mu.Unlock()
}

func (g *Gain) Value() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

func (g *Gain) Target() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.target
}

func (g *Gain) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = g.Streamer.Stream(samples)

	g.mu.Lock()
	defer g.mu.Unlock()
	k := 1.0
	if g.tau > 0 {
		k = 1 - math.Exp(-1/(g.tau*float64(g.rate)))
	}
	for i := 0; i < n; i++ {
		g.current += (g.target - g.current) * k
		samples[i][0] *= g.current
		samples[i][1] *= g.current
	}
	return n, ok
}

func (g *Gain) Err() error { return g.Streamer.Err() }

// silentMixer streams silence while it holds no voices instead of ending.
type silentMixer struct {
	beep.Mixer
}

func (m *silentMixer) Stream(samples [][2]float64) (n int, ok bool) {
	n, _ = m.Mixer.Stream(samples)
	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	return len(samples), true
}
