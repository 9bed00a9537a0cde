package automation

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/livingcore/internal/core"
	"github.com/san-kum/livingcore/internal/frame"
	"github.com/san-kum/livingcore/internal/render"
	"github.com/san-kum/livingcore/internal/storage"
	"github.com/san-kum/livingcore/internal/ticker"
	"golang.org/x/sync/errgroup"
)

var ErrUnknownParam = errors.New("automation: unknown parameter")

var tunable = map[string]func(*frame.Params) *float64{
	"scroll_decay":   func(p *frame.Params) *float64 { return &p.ScrollDecay },
	"pan_scale":      func(p *frame.Params) *float64 { return &p.PanScale },
	"pan_blend":      func(p *frame.Params) *float64 { return &p.PanBlend },
	"spin":           func(p *frame.Params) *float64 { return &p.Spin },
	"amplitude":      func(p *frame.Params) *float64 { return &p.Amplitude },
	"mesh_amplitude": func(p *frame.Params) *float64 { return &p.MeshAmplitude },
	"repel_radius":   func(p *frame.Params) *float64 { return &p.RepelRadius },
	"repel_strength": func(p *frame.Params) *float64 { return &p.RepelStrength },
	"repel_blend":    func(p *frame.Params) *float64 { return &p.RepelBlend },
	"spring_blend":   func(p *frame.Params) *float64 { return &p.SpringBlend },
}

// SetParam sets a numeric integrator parameter by its config name.
func SetParam(p *frame.Params, name string, v float64) error {
	field, ok := tunable[name]
	if !ok {
		return fmt.Errorf("%w: %s (available: %v)", ErrUnknownParam, name, ParamNames())
	}
	*field(p) = v
	return nil
}

func ParamNames() []string {
	names := make([]string, 0, len(tunable))
	for name := range tunable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParameterSweep replays one scenario across a range of parameter values.
type ParameterSweep struct {
	Param    string
	Min, Max float64
	Steps    int
	Scenario *Scenario
	Dt       float64
	Workers  int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	Value   float64
	Points  int
	Metrics map[string]float64
}

// Values returns the swept parameter values, Min and Max included.
func (sw *ParameterSweep) Values() []float64 {
	if sw.Steps <= 1 {
		return []float64{sw.Min}
	}
	out := make([]float64, sw.Steps)
	step := (sw.Max - sw.Min) / float64(sw.Steps-1)
	for i := range out {
		out[i] = sw.Min + float64(i)*step
	}
	return out
}

// RunSweep builds a fresh core per value from base and runs them
// concurrently. Results come back in value order.
func RunSweep(ctx context.Context, sw *ParameterSweep, base core.Options) ([]SweepResult, error) {
	if sw.Scenario == nil {
		return nil, ErrEmptyScenario
	}
	if _, ok := tunable[sw.Param]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownParam, sw.Param)
	}
	dt := sw.Dt
	if dt <= 0 {
		dt = 1.0 / 60
	}

	values := sw.Values()
	results := make([]SweepResult, len(values))
	g, ctx := errgroup.WithContext(ctx)
	if sw.Workers > 0 {
		g.SetLimit(sw.Workers)
	}
	for i, v := range values {
		g.Go(func() error {
			opts := base
			if err := SetParam(&opts.Params, sw.Param, v); err != nil {
				return err
			}
			c := core.New(opts, &render.Discard{}, nil)
			rec := &storage.Recorder{}
			c.AddObserver(rec)
			src := ticker.NewManual()
			c.Attach(src)
			if _, err := sw.Scenario.Play(ctx, c, src, dt); err != nil {
				return err
			}
			results[i] = SweepResult{Value: v, Points: c.Field().Len(), Metrics: rec.Metrics()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
