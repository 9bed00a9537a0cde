package core

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/livingcore/internal/field"
	"github.com/san-kum/livingcore/internal/frame"
	"github.com/san-kum/livingcore/internal/input"
	"github.com/san-kum/livingcore/internal/render"
	"github.com/san-kum/livingcore/internal/ticker"
)

const dt = 1.0 / 60

func testOptions() Options {
	opts := DefaultOptions()
	opts.Count = 1000
	opts.Seed = 42
	return opts
}

func TestCore_FramesDriveRenderer(t *testing.T) {
	d := &render.Discard{}
	c := New(testOptions(), d, nil)

	src := ticker.NewManual()
	c.Attach(src)
	src.Run(60, dt)

	if c.Frames() != 60 {
		t.Errorf("expected 60 frames, got %d", c.Frames())
	}
	if d.Draws != 60 {
		t.Errorf("expected 60 draws, got %d", d.Draws)
	}
	// One upload at construction plus one per dirty frame.
	if d.Uploads != 61 {
		t.Errorf("expected 61 uploads, got %d", d.Uploads)
	}
	if c.Field().Dirty {
		t.Error("field should be clean after upload")
	}
}

func TestCore_NilRendererIsNoop(t *testing.T) {
	c := New(testOptions(), nil, nil)
	src := ticker.NewManual()
	c.Attach(src)
	src.Run(5, dt)

	if c.Frames() != 5 {
		t.Errorf("expected 5 frames, got %d", c.Frames())
	}
	c.Resize(400, 800)
}

func TestCore_Observer(t *testing.T) {
	c := New(testOptions(), nil, nil)
	var seen []ticker.Tick
	c.AddObserver(ObserverFunc(func(tk ticker.Tick, _ frame.Stats) { seen = append(seen, tk) }))

	src := ticker.NewManual()
	c.Attach(src)
	src.Run(3, dt)

	if len(seen) != 3 || seen[2].Frame != 3 {
		t.Errorf("observer saw %+v", seen)
	}
}

func TestCore_DefaultCountFollowsViewport(t *testing.T) {
	opts := DefaultOptions()
	opts.Seed = 1
	opts.Viewport = input.Viewport{Width: 390, Height: 844}
	c := New(opts, nil, nil)
	if c.Field().Len() != field.MobileParticleCount {
		t.Errorf("expected %d points, got %d", field.MobileParticleCount, c.Field().Len())
	}
}

func TestCore_MeshDetailFollowsViewport(t *testing.T) {
	opts := DefaultOptions()
	opts.Kind = field.KindMesh
	opts.Viewport = input.Viewport{Width: 390, Height: 844}
	c := New(opts, nil, nil)

	want := field.GenerateMesh(60, field.MobileMeshDetail).Len()
	if c.Field().Len() != want {
		t.Errorf("expected %d vertices, got %d", want, c.Field().Len())
	}
}

func TestCore_ResizeBelowThresholdMidSession(t *testing.T) {
	term := render.NewTerminal(80, 24)
	opts := testOptions()
	opts.CellWidth, opts.CellHeight = 8, 16
	c := New(opts, term, nil)

	src := ticker.NewManual()
	c.Attach(src)

	c.Input().PointerMove(640, 360)
	src.Run(20, dt)
	if !c.LastStats().RepulsionActive {
		t.Fatal("repulsion should run on a wide viewport")
	}

	rests := make([]mgl64.Vec3, c.Field().Len())
	for i, p := range c.Field().Points {
		rests[i] = p.Rest
	}

	c.Resize(600, 900)
	src.Advance(dt)

	if c.LastStats().RepulsionActive || c.LastStats().Repelled != 0 {
		t.Errorf("repulsion should be off after resize: %+v", c.LastStats())
	}
	if term.Canvas().Width != 75 || term.Canvas().Height != 56 {
		t.Errorf("surface not resized: %dx%d", term.Canvas().Width, term.Canvas().Height)
	}
	for i, p := range c.Field().Points {
		if p.Rest != rests[i] {
			t.Fatalf("rest position %d changed", i)
		}
	}
}

func TestCore_Rebuild(t *testing.T) {
	c := New(testOptions(), nil, nil)
	c.Rebuild(10)
	if c.Field().Len() != 10 {
		t.Errorf("expected 10 points, got %d", c.Field().Len())
	}
}

type failingRenderer struct{ render.Discard }

func (f *failingRenderer) Draw(frame.CameraState) error { return errors.New("context lost") }

func TestCore_DrawErrorDoesNotStopLoop(t *testing.T) {
	c := New(testOptions(), &failingRenderer{}, nil)
	src := ticker.NewManual()
	c.Attach(src)
	src.Run(3, dt)
	if c.Frames() != 3 {
		t.Errorf("expected loop to keep running, got %d frames", c.Frames())
	}
}

func TestCore_WorkersOption(t *testing.T) {
	opts := testOptions()
	opts.Count = 10000
	opts.Workers = 4
	c := New(opts, nil, nil)
	if c.Integrator().Workers() != 4 {
		t.Errorf("expected 4 workers, got %d", c.Integrator().Workers())
	}

	serialOpts := opts
	serialOpts.Workers = 0
	serial := New(serialOpts, nil, nil)
	if serial.Integrator().Workers() != 1 {
		t.Errorf("expected zero workers to mean 1, got %d", serial.Integrator().Workers())
	}

	for _, core := range []*Core{c, serial} {
		src := ticker.NewManual()
		core.Attach(src)
		core.Input().PointerMove(640, 360)
		src.Run(20, dt)
	}
	if c.LastStats().Repelled != serial.LastStats().Repelled {
		t.Errorf("repelled differs: %d vs %d", c.LastStats().Repelled, serial.LastStats().Repelled)
	}
	if c.LastStats().MaxDisplacement != serial.LastStats().MaxDisplacement {
		t.Errorf("max displacement differs: %v vs %v", c.LastStats().MaxDisplacement, serial.LastStats().MaxDisplacement)
	}
}
