// Package automation scripts input for headless runs and sweeps integrator
// parameters across them.
package automation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/san-kum/livingcore/internal/core"
	"github.com/san-kum/livingcore/internal/input"
	"github.com/san-kum/livingcore/internal/ticker"
	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyScenario = errors.New("automation: scenario has no frames")
	ErrBadStep       = errors.New("automation: invalid step")
)

// orbitRate is the pointer's angular speed in radians per frame.
const orbitRate = 1.0 / 60

// Scenario defines a scripted input sequence
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step holds input for a run of frames. Fields left empty keep the state
// the previous step left behind.
type Step struct {
	Frames int `yaml:"frames"`
	// Pointer is a client position [x, y] set when the step starts.
	Pointer []float64 `yaml:"pointer"`
	// Orbit circles the pointer around the viewport centre, in pixels.
	Orbit float64 `yaml:"orbit"`
	// ScrollTo ramps the page scroll linearly to this offset.
	ScrollTo *float64 `yaml:"scroll_to"`
	// Tilt is [beta, gamma] in degrees.
	Tilt        []float64 `yaml:"tilt"`
	Resize      []int     `yaml:"resize"`
	FinePointer *bool     `yaml:"fine_pointer"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// Default orbits the pointer for the whole run and scrolls through the
// first third of it.
func Default(frames int) *Scenario {
	ramp := frames / 3
	scroll := float64(ramp) * 12
	return &Scenario{
		Name:        "orbit",
		Description: "pointer orbit with an early scroll",
		Steps: []Step{
			{Frames: ramp, Orbit: 180, ScrollTo: &scroll},
			{Frames: frames - ramp, Orbit: 180},
		},
	}
}

func (s *Scenario) Validate() error {
	if s.Frames() <= 0 {
		return ErrEmptyScenario
	}
	for i, st := range s.Steps {
		switch {
		case st.Frames < 0:
			return fmt.Errorf("%w: step %d has negative frames", ErrBadStep, i+1)
		case st.Pointer != nil && len(st.Pointer) != 2:
			return fmt.Errorf("%w: step %d pointer needs [x, y]", ErrBadStep, i+1)
		case st.Tilt != nil && len(st.Tilt) != 2:
			return fmt.Errorf("%w: step %d tilt needs [beta, gamma]", ErrBadStep, i+1)
		case st.Resize != nil && (len(st.Resize) != 2 || st.Resize[0] <= 0 || st.Resize[1] <= 0):
			return fmt.Errorf("%w: step %d resize needs [width, height]", ErrBadStep, i+1)
		}
	}
	return nil
}

func (s *Scenario) Frames() int {
	n := 0
	for _, st := range s.Steps {
		n += st.Frames
	}
	return n
}

// Play drives c through the scenario, advancing src by dt per frame. It
// returns how many frames ran.
func (s *Scenario) Play(ctx context.Context, c *core.Core, src *ticker.Manual, dt float64) (int, error) {
	in := c.Input()
	frame := 0
	scrollY := 0.0

	for i, st := range s.Steps {
		if st.Resize != nil {
			c.Resize(st.Resize[0], st.Resize[1])
		}
		if st.FinePointer != nil {
			in.SetFinePointer(*st.FinePointer)
		}
		if st.Tilt != nil {
			in.Orientation(input.OrientationEvent{Beta: st.Tilt[0], Gamma: st.Tilt[1], HasBeta: true, HasGamma: true})
		}
		if st.Pointer != nil {
			in.PointerMove(st.Pointer[0], st.Pointer[1])
		}
		from := scrollY

		for f := 0; f < st.Frames; f++ {
			if frame%60 == 0 && ctx.Err() != nil {
				return frame, fmt.Errorf("step %d: %w", i+1, ctx.Err())
			}
			if st.Orbit > 0 {
				vp := in.Viewport()
				a := float64(frame) * orbitRate
				in.PointerMove(float64(vp.Width)/2+st.Orbit*math.Cos(a), float64(vp.Height)/2+st.Orbit*math.Sin(a))
			}
			if st.ScrollTo != nil {
				scrollY = from + (*st.ScrollTo-from)*float64(f+1)/float64(st.Frames)
				in.Scroll(scrollY)
			}
			src.Advance(dt)
			frame++
		}
	}
	return frame, nil
}
