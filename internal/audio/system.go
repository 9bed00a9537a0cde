package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/san-kum/livingcore/internal/logging"
	"go.uber.org/zap"
)

const (
	// UnmutedGain is the ambient bus level while sound is on.
	UnmutedGain = 0.4
	// MuteTimeConstant is how fast the ambient bus eases to its target, in
	// seconds.
	MuteTimeConstant = 0.1
	DefaultMusicGain = 0.2
)

// Opener returns a decoded stream for a 1-based track index.
type Opener func(index int) (beep.StreamSeekCloser, beep.Format, error)

// DirOpener loads dir/songN.mp3.
func DirOpener(dir string) Opener {
	return func(index int) (beep.StreamSeekCloser, beep.Format, error) {
		f, err := os.Open(filepath.Join(dir, fmt.Sprintf("song%d.mp3", index)))
		if err != nil {
			return nil, beep.Format{}, err
		}
		return mp3.Decode(f)
	}
}

// System is the ambient audio: the drone bed behind a smoothed master gain
// plus a playlist that pauses while muted. It starts muted.
type System struct {
	mu     sync.Mutex
	rate   beep.SampleRate
	master *Gain
	mix    *silentMixer

	tracks  []string
	current int
	open    Opener
	music   *beep.Ctrl
	track   beep.StreamSeekCloser
	gain    float64
	buf     [][2]float64
	muted   bool
	logger  *zap.Logger

	// Started reports whether Init has run.
	started bool
}

type SystemOptions struct {
	Tracks    []string
	Open      Opener
	MusicGain float64
	Drone     bool
}

func NewSystem(rate beep.SampleRate, opts SystemOptions, logger *zap.Logger) *System {
	mix := &silentMixer{}
	if opts.Drone {
		mix.Add(NewDrone(rate))
	}
	gain := opts.MusicGain
	if gain <= 0 {
		gain = DefaultMusicGain
	}
	master := NewGain(mix, 0, rate)
	master.SetTimeConstant(MuteTimeConstant)
	return &System{
		rate:   rate,
		master: master,
		mix:    mix,
		tracks: opts.Tracks,
		open:   opts.Open,
		gain:   gain,
		muted:  true,
		logger: logging.OrNop(logger),
	}
}

// Init loads the first track. Calling it again does nothing.
func (s *System) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.playTrack(1)
}

func (s *System) TotalTracks() int { return len(s.tracks) }

func (s *System) Current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *System) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

func (s *System) MasterGain() float64 { return s.master.Value() }

// ToggleMute flips mute, easing the ambient bus to 0 or UnmutedGain and
// pausing or resuming the music. It returns the new muted state.
func (s *System) ToggleMute() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		s.started = true
		s.playTrack(1)
	}
	s.muted = !s.muted
	if s.muted {
		s.master.SetTarget(0)
	} else {
		s.master.SetTarget(UnmutedGain)
	}
	if s.music != nil {
		s.music.Paused = s.muted
	}
	return s.muted
}

func (s *System) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playTrack(s.current + 1)
}

func (s *System) Prev() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playTrack(s.current - 1)
}

// PlayTrack selects a 1-based track, wrapping past either end.
func (s *System) PlayTrack(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playTrack(index)
}

func (s *System) playTrack(index int) {
	total := len(s.tracks)
	if total == 0 {
		return
	}
	if index > total {
		index = 1
	}
	if index < 1 {
		index = total
	}
	s.current = index

	if s.track != nil {
		s.track.Close()
		s.track = nil
	}
	s.music = nil
	if s.open == nil {
		return
	}

	stream, format, err := s.open(index)
	if err != nil {
		s.logger.Warn("track unavailable", zap.Int("track", index), zap.Error(err))
		return
	}
	s.track = stream

	var src beep.Streamer = stream
	if format.SampleRate != s.rate && format.SampleRate > 0 {
		src = beep.Resample(4, format.SampleRate, s.rate, stream)
	}
	s.music = &beep.Ctrl{Streamer: &trackEnd{Streamer: src, sys: s, index: index}, Paused: s.muted}
}

// TrackName returns the display name of a 1-based track.
func (s *System) TrackName(index int) string {
	if index >= 1 && index <= len(s.tracks) {
		return s.tracks[index-1]
	}
	return fmt.Sprintf("TRACK %d", index)
}

// Label formats the position as "NN / TT".
func (s *System) Label() string {
	return fmt.Sprintf("%02d / %02d", s.Current(), len(s.tracks))
}

func (s *System) NowPlaying() string {
	return "NOW PLAYING: " + s.TrackName(s.Current())
}

func (s *System) Stream(samples [][2]float64) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, _ := s.master.Stream(samples)
	if s.music == nil {
		return n, true
	}
	if cap(s.buf) < len(samples) {
		s.buf = make([][2]float64, len(samples))
	}
	buf := s.buf[:len(samples)]
	m, _ := s.music.Stream(buf)
	for i := 0; i < m; i++ {
		samples[i][0] += buf[i][0] * s.gain
		samples[i][1] += buf[i][1] * s.gain
	}
	return len(samples), true
}

func (s *System) Err() error { return nil }

// Close releases the open track.
func (s *System) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.track != nil {
		err := s.track.Close()
		s.track = nil
		return err
	}
	return nil
}

// trackEnd advances the playlist when its track runs out. It is only
// streamed with sys.mu held.
type trackEnd struct {
	beep.Streamer
	sys   *System
	index int
}

func (t *trackEnd) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.Streamer.Stream(samples)
	if !ok && t.sys.current == t.index {
		t.sys.playTrack(t.index + 1)
	}
	return n, ok
}
