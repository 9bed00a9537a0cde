// Package render hands integrated fields to a drawing surface.
package render

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/livingcore/internal/field"
	"github.com/san-kum/livingcore/internal/frame"
)

var ErrNoSurface = errors.New("render: no drawing surface")

// Renderer owns a drawing surface and its projection.
type Renderer interface {
	// Upload copies the field's display positions; it clears f.Dirty.
	Upload(f *field.Field)
	Draw(cam frame.CameraState) error
	// Resize updates projection and surface size. It never touches the field.
	Resize(width, height int)
}

// Discard accepts uploads and draws nothing. Headless runs use it.
type Discard struct {
	Uploads int
	Draws   int
}

func (d *Discard) Upload(f *field.Field) {
	if f != nil {
		f.Dirty = false
	}
	d.Uploads++
}

func (d *Discard) Draw(frame.CameraState) error { d.Draws++; return nil }
func (d *Discard) Resize(int, int)              {}

// Recorder keeps what it was handed so tests and headless runs can inspect
// the loop's output without a surface.
type Recorder struct {
	Cameras []frame.CameraState
	Points  []int
	Width   int
	Height  int
	// Last holds the display positions from the most recent upload.
	Last []float32
}

func (r *Recorder) Upload(f *field.Field) {
	if f == nil {
		return
	}
	r.Last = f.Positions(r.Last)
	r.Points = append(r.Points, f.Len())
	f.Dirty = false
}

func (r *Recorder) Draw(cs frame.CameraState) error {
	r.Cameras = append(r.Cameras, cs)
	return nil
}

func (r *Recorder) Resize(width, height int) {
	r.Width, r.Height = width, height
}

// Terminal draws the field as braille dots, one terminal cell per 2x4 dots.
type Terminal struct {
	canvas *Canvas
	camera *Camera

	kind      field.Kind
	positions []float32
	colors    []colorful.Color
	sizes     []float64
	edges     [][2]int
	edgeColor colorful.Color
}

// NewTerminal sizes the canvas in terminal cells.
func NewTerminal(cols, rows int) *Terminal {
	t := &Terminal{canvas: NewCanvas(cols, rows)}
	t.camera = NewCamera(t.aspect())
	return t
}

func (t *Terminal) Canvas() *Canvas { return t.canvas }
func (t *Terminal) Camera() *Camera { return t.camera }

func (t *Terminal) aspect() float64 {
	return float64(t.canvas.SubWidth()) / float64(t.canvas.SubHeight())
}

func (t *Terminal) Resize(cols, rows int) {
	t.canvas.Resize(cols, rows)
	t.camera.SetAspect(t.aspect())
}

func (t *Terminal) Upload(f *field.Field) {
	if f == nil {
		return
	}
	t.kind = f.Kind
	t.positions = f.Positions(t.positions)
	if cap(t.colors) < len(f.Points) {
		t.colors = make([]colorful.Color, len(f.Points))
		t.sizes = make([]float64, len(f.Points))
	}
	t.colors = t.colors[:len(f.Points)]
	t.sizes = t.sizes[:len(f.Points)]
	for i := range f.Points {
		t.colors[i] = f.Points[i].Color
		t.sizes[i] = f.Points[i].Size
	}
	t.edges = f.Edges
	if len(f.Points) > 0 {
		t.edgeColor = f.Points[0].Color
	}
	f.Dirty = false
}

func (t *Terminal) Draw(cs frame.CameraState) error {
	if t.canvas == nil {
		return ErrNoSurface
	}
	t.canvas.Clear()
	t.camera.Update(cs)

	sw, sh := float64(t.canvas.SubWidth()), float64(t.canvas.SubHeight())
	toScreen := func(ndc mgl64.Vec2) (int, int) {
		return int((ndc.X() + 1) / 2 * sw), int((1 - ndc.Y()) / 2 * sh)
	}

	n := len(t.positions) / 3
	if t.kind == field.KindMesh && len(t.edges) > 0 {
		for _, e := range t.edges {
			if e[0] >= n || e[1] >= n {
				continue
			}
			a, _, okA := t.camera.Project(t.vertex(e[0]))
			b, _, okB := t.camera.Project(t.vertex(e[1]))
			if !okA || !okB {
				continue
			}
			x0, y0 := toScreen(a)
			x1, y1 := toScreen(b)
			t.canvas.DrawLine(x0, y0, x1, y1, t.edgeColor)
		}
		return nil
	}

	for i := 0; i < n; i++ {
		ndc, depth, ok := t.camera.Project(t.vertex(i))
		if !ok {
			continue
		}
		x, y := toScreen(ndc)
		col := t.colors[i]
		t.canvas.SetColor(x, y, col)
		// Size attenuation: near, large points cover a 2x2 block.
		if t.sizes[i]*400/depth > 6 {
			t.canvas.SetColor(x+1, y, col)
			t.canvas.SetColor(x, y+1, col)
			t.canvas.SetColor(x+1, y+1, col)
		}
	}
	return nil
}

func (t *Terminal) vertex(i int) mgl64.Vec3 {
	return mgl64.Vec3{float64(t.positions[i*3]), float64(t.positions[i*3+1]), float64(t.positions[i*3+2])}
}

// String returns the last drawn frame without colour.
func (t *Terminal) String() string { return t.canvas.String() }

// View returns the last drawn frame with colour.
func (t *Terminal) View() string { return t.canvas.Styled() }
