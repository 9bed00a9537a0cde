package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
)

const SampleRate = beep.SampleRate(44100)

type Wave int

const (
	WaveSine Wave = iota
	WaveTriangle
	WaveSaw
)

func (w Wave) at(phase float64) float64 {
	p := phase - math.Floor(phase)
	switch w {
	case WaveTriangle:
		return 1.0 - 4.0*math.Abs(p-0.5)
	case WaveSaw:
		return 2.0*p - 1.0
	default:
		return math.Sin(2 * math.Pi * p)
	}
}

// Ramp is one automation segment on a parameter, like an audio param
// schedule: the value moves from the previous segment's end to Value by At.
type Ramp struct {
	At          time.Duration
	Value       float64
	Exponential bool
}

// Envelope is a piecewise schedule starting at Start.
type Envelope struct {
	Start float64
	Ramps []Ramp
}

// Value returns the envelope at t. After the last ramp it holds.
func (e Envelope) Value(t time.Duration) float64 {
	from, fromT := e.Start, time.Duration(0)
	for _, r := range e.Ramps {
		if t <= r.At {
			span := float64(r.At - fromT)
			if span <= 0 {
				return r.Value
			}
			x := float64(t-fromT) / span
			if r.Exponential && from > 0 && r.Value > 0 {
				return from * math.Pow(r.Value/from, x)
			}
			return from + (r.Value-from)*x
		}
		from, fromT = r.Value, r.At
	}
	return from
}

// Voice is a one-shot oscillator with frequency and gain schedules.
type Voice struct {
	wave     Wave
	freq     Envelope
	gain     Envelope
	rate     beep.SampleRate
	phase    float64
	pos      int
	duration int
}

func NewVoice(wave Wave, freq, gain Envelope, duration time.Duration, rate beep.SampleRate) *Voice {
	return &Voice{
		wave:     wave,
		freq:     freq,
		gain:     gain,
		rate:     rate,
		duration: rate.N(duration),
	}
}

func (v *Voice) Len() int { return v.duration }

func (v *Voice) Stream(samples [][2]float64) (n int, ok bool) {
	if v.pos >= v.duration {
		return 0, false
	}
	for i := range samples {
		if v.pos >= v.duration {
			return i, true
		}
		t := v.rate.D(v.pos)
		s := v.gain.Value(t) * v.wave.at(v.phase)
		samples[i][0] = s
		samples[i][1] = s
		v.phase += v.freq.Value(t) / float64(v.rate)
		v.phase -= math.Floor(v.phase)
		v.pos++
	}
	return len(samples), true
}

func (v *Voice) Err() error { return nil }

// NewHover builds the pointer-enter chirp: a quiet sine falling from
// 800-1000 Hz to 300 Hz over 100 ms.
func NewHover(rng *rand.Rand, rate beep.SampleRate) *Voice {
	d := 100 * time.Millisecond
	start := 800 + rng.Float64()*200
	return NewVoice(WaveSine,
		Envelope{Start: start, Ramps: []Ramp{{At: d, Value: 300, Exponential: true}}},
		Envelope{Start: 0.05, Ramps: []Ramp{{At: d, Value: 0.001, Exponential: true}}},
		d, rate)
}

// NewClick builds the click thud: a triangle dropping 150 to 50 Hz with a
// 20 ms attack and an exponential tail to 200 ms.
func NewClick(rate beep.SampleRate) *Voice {
	d := 200 * time.Millisecond
	return NewVoice(WaveTriangle,
		Envelope{Start: 150, Ramps: []Ramp{{At: d, Value: 50, Exponential: true}}},
		Envelope{Start: 0, Ramps: []Ramp{
			{At: 20 * time.Millisecond, Value: 1},
			{At: d, Value: 0.001, Exponential: true},
		}},
		d, rate)
}

// lowpass is a one-pole filter; it returns the new state, which is also the
// output sample.
func lowpass(sample, cutoff, dt, state float64) float64 {
	rc := 1.0 / (2.0 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	return state + alpha*(sample-state)
}

const (
	DroneFundamental = 55.0
	droneCutoff      = 200.0
	droneLFORate     = 0.1
	droneLFODepth    = 100.0
	droneVoiceGain   = 0.05
)

var DroneRatios = []float64{1, 1.5, 2.02}

// Drone is the endless ambient bed: detuned sawtooths through a lowpass
// whose cutoff is swept by a slow sine LFO. It never ends.
type Drone struct {
	rate   beep.SampleRate
	phases []float64
	state  []float64
	pos    int
}

func NewDrone(rate beep.SampleRate) *Drone {
	return &Drone{
		rate:   rate,
		phases: make([]float64, len(DroneRatios)),
		state:  make([]float64, len(DroneRatios)),
	}
}

func (d *Drone) Stream(samples [][2]float64) (n int, ok bool) {
	dt := 1.0 / float64(d.rate)
	for i := range samples {
		t := float64(d.pos) * dt
		cutoff := droneCutoff + droneLFODepth*math.Sin(2*math.Pi*droneLFORate*t)
		sum := 0.0
		for v, ratio := range DroneRatios {
			raw := WaveSaw.at(d.phases[v])
			d.state[v] = lowpass(raw, cutoff, dt, d.state[v])
			sum += droneVoiceGain * d.state[v]
			d.phases[v] += DroneFundamental * ratio * dt
			d.phases[v] -= math.Floor(d.phases[v])
		}
		samples[i][0] = sum
		samples[i][1] = sum
		d.pos++
	}
	return len(samples), true
}

func (d *Drone) Err() error { return nil }
