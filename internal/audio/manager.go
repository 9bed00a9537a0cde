package audio

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/gopxl/beep"
)

var ErrUnknownSound = errors.New("audio: unknown sound")

const DefaultMasterGain = 0.1

// MaxVoices caps the one-shots sounding at once; plays past it are dropped.
const MaxVoices = 32

// Sounds lists the effect names Play and Build accept.
var Sounds = []string{"click", "drone", "hover"}

// SoundManager plays short interface effects through one master gain.
// Nothing is global: callers own the manager and feed Streamer to an output.
type SoundManager struct {
	mu     sync.Mutex
	rate   beep.SampleRate
	mixer  *silentMixer
	master *Gain
	rng    *rand.Rand
	muted  bool
	played map[string]int
}

func NewSoundManager(rate beep.SampleRate, masterGain float64, seed int64) *SoundManager {
	mixer := &silentMixer{}
	return &SoundManager{
		rate:   rate,
		mixer:  mixer,
		master: NewGain(mixer, masterGain, rate),
		rng:    rand.New(rand.NewSource(seed)),
		played: map[string]int{},
	}
}

// Streamer is the manager's output, already scaled by the master gain.
func (sm *SoundManager) Streamer() beep.Streamer { return sm }

func (sm *SoundManager) Stream(samples [][2]float64) (int, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.master.Stream(samples)
}

func (sm *SoundManager) Err() error { return nil }

func (sm *SoundManager) SetMuted(m bool) {
	sm.mu.Lock()
	sm.muted = m
	sm.mu.Unlock()
}

func (sm *SoundManager) Muted() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.muted
}

// Active reports how many voices are still sounding.
func (sm *SoundManager) Active() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.mixer.Len()
}

func (sm *SoundManager) Played(name string) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.played[name]
}

func (sm *SoundManager) Hover() { _ = sm.Play("hover") }
func (sm *SoundManager) Click() { _ = sm.Play("click") }

// Play starts the named one-shot effect. Muted managers drop the request.
func (sm *SoundManager) Play(name string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if name == "drone" {
		return fmt.Errorf("%w: drone is continuous", ErrUnknownSound)
	}
	s, err := sm.build(name)
	if err != nil {
		return err
	}
	if sm.muted || sm.mixer.Len() >= MaxVoices {
		return nil
	}
	sm.mixer.Add(s)
	sm.played[name]++
	return nil
}

func (sm *SoundManager) build(name string) (beep.Streamer, error) {
	switch name {
	case "hover":
		return NewHover(sm.rng, sm.rate), nil
	case "click":
		return NewClick(sm.rate), nil
	case "drone":
		return NewDrone(sm.rate), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSound, name)
}

// Render synthesises the named sound offline, without the master gain, and
// returns the left channel. Continuous sounds are cut at d; one-shots stop
// at their natural end or d, whichever comes first.
func Render(name string, d time.Duration, rate beep.SampleRate, seed int64) ([]float64, error) {
	sm := NewSoundManager(rate, 1, seed)
	s, err := sm.build(name)
	if err != nil {
		return nil, err
	}
	return Collect(beep.Take(rate.N(d), s)), nil
}

// Collect drains a finite streamer into a mono buffer.
func Collect(s beep.Streamer) []float64 {
	var out []float64
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			out = append(out, buf[i][0])
		}
		if !ok {
			return out
		}
	}
}

func SoundNames() []string {
	names := append([]string(nil), Sounds...)
	sort.Strings(names)
	return names
}
