// Package core wires the field, input, integrator and renderer into one
// frame loop driven by a tick source.
package core

import (
	"math/rand"

	"github.com/san-kum/livingcore/internal/field"
	"github.com/san-kum/livingcore/internal/frame"
	"github.com/san-kum/livingcore/internal/input"
	"github.com/san-kum/livingcore/internal/logging"
	"github.com/san-kum/livingcore/internal/render"
	"github.com/san-kum/livingcore/internal/ticker"
	"go.uber.org/zap"
)

// Observer sees every frame after it has been handed to the renderer.
type Observer interface {
	OnFrame(t ticker.Tick, s frame.Stats)
}

type ObserverFunc func(ticker.Tick, frame.Stats)

func (f ObserverFunc) OnFrame(t ticker.Tick, s frame.Stats) { f(t, s) }

type Options struct {
	Kind field.Kind
	// Count is the cloud size; zero picks it from the viewport width.
	Count int
	Cloud field.CloudParams

	MeshRadius float64
	// MeshDetail below zero picks the detail from the viewport width.
	MeshDetail int

	Params   frame.Params
	Viewport input.Viewport
	Seed     int64

	// CellWidth and CellHeight convert viewport pixels to renderer surface
	// units. Zero means 1.
	CellWidth, CellHeight int

	// Workers splits each step across goroutines for large fields.
	Workers int
}

func DefaultOptions() Options {
	return Options{
		Kind:       field.KindCloud,
		Cloud:      field.DefaultCloudParams(),
		MeshRadius: 60,
		MeshDetail: -1,
		Params:     frame.DefaultParams(),
		Viewport:   input.Viewport{Width: 1280, Height: 720, FinePointer: true},
	}
}

type Core struct {
	opts      Options
	field     *field.Field
	input     *input.Aggregator
	integ     *frame.Integrator
	camera    frame.CameraState
	renderer  render.Renderer
	observers []Observer
	last      frame.Stats
	frames    int
	rng       *rand.Rand
	logger    *zap.Logger
}

// New builds the field and wires the loop. A nil renderer is valid: the
// loop runs but nothing is drawn.
func New(opts Options, r render.Renderer, logger *zap.Logger) *Core {
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	c := &Core{
		opts:     opts,
		input:    input.NewAggregator(opts.Viewport),
		integ:    frame.New(opts.Params),
		renderer: r,
		rng:      rand.New(rand.NewSource(seed)),
		logger:   logging.OrNop(logger),
	}
	c.integ.SetWorkers(opts.Workers)
	c.Rebuild(opts.Count)
	if r != nil {
		c.resizeSurface()
		r.Upload(c.field)
	}
	return c
}

func (c *Core) Field() *field.Field           { return c.field }
func (c *Core) Input() *input.Aggregator      { return c.input }
func (c *Core) Integrator() *frame.Integrator { return c.integ }
func (c *Core) Camera() frame.CameraState     { return c.camera }
func (c *Core) Renderer() render.Renderer     { return c.renderer }
func (c *Core) LastStats() frame.Stats        { return c.last }
func (c *Core) Frames() int                   { return c.frames }
func (c *Core) AddObserver(o Observer)        { c.observers = append(c.observers, o) }
func (c *Core) SetParams(p frame.Params)      { c.integ.SetParams(p) }

// Attach subscribes the loop to a tick source.
func (c *Core) Attach(src ticker.Source) {
	src.OnTick(c.Frame)
}

// Frame runs one integrator step and hands the result to the renderer.
func (c *Core) Frame(t ticker.Tick) {
	st := c.input.State()
	vp := c.input.Viewport()

	c.last = c.integ.Step(t.Elapsed, c.field, st, &c.camera, vp)
	c.frames++

	if c.renderer != nil {
		if c.field.Dirty {
			c.renderer.Upload(c.field)
		}
		if err := c.renderer.Draw(c.camera); err != nil {
			c.logger.Warn("draw failed", zap.Error(err), zap.Int("frame", t.Frame))
		}
	}

	for _, o := range c.observers {
		o.OnFrame(t, c.last)
	}
}

// Resize updates the viewport and the renderer's projection. The field is
// left alone: point count only changes through Rebuild.
func (c *Core) Resize(width, height int) {
	c.input.Resize(width, height)
	if c.renderer != nil {
		c.resizeSurface()
	}
	c.logger.Debug("viewport resized",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Bool("repulsion", c.integ.RepulsionActive(c.input.Viewport())))
}

func (c *Core) resizeSurface() {
	vp := c.input.Viewport()
	cw, ch := c.opts.CellWidth, c.opts.CellHeight
	if cw <= 0 {
		cw = 1
	}
	if ch <= 0 {
		ch = 1
	}
	c.renderer.Resize(vp.Width/cw, vp.Height/ch)
}

// Rebuild regenerates the field. count applies to clouds; zero picks the
// count from the current viewport width.
func (c *Core) Rebuild(count int) {
	vp := c.input.Viewport()
	mobile := c.opts.Params.MobileWidth
	if mobile <= 0 {
		mobile = field.DefaultMobileWidth
	}

	switch c.opts.Kind {
	case field.KindMesh:
		detail := c.opts.MeshDetail
		if detail < 0 {
			detail = field.MeshDetailForWidth(vp.Width, mobile)
		}
		c.field = field.GenerateMesh(c.opts.MeshRadius, detail)
	default:
		if count <= 0 {
			count = field.ParticleCountForWidth(vp.Width, mobile)
		}
		c.field = field.GenerateCloud(count, c.rng, c.opts.Cloud)
	}

	c.logger.Debug("field built",
		zap.Stringer("kind", c.opts.Kind),
		zap.Int("points", c.field.Len()),
		zap.Int("edges", len(c.field.Edges)))
}
