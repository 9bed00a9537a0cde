package render

import (
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/livingcore/internal/field"
	"github.com/san-kum/livingcore/internal/frame"
)

func TestCanvas_SetAndClear(t *testing.T) {
	c := NewCanvas(4, 2)

	c.Set(0, 0)
	c.Set(1, 3)
	c.Set(-1, 2)
	c.Set(100, 100)

	if !c.IsSet(0, 0) || !c.IsSet(1, 3) {
		t.Error("expected dots to be set")
	}
	if c.IsSet(1, 0) {
		t.Error("unexpected dot")
	}
	if got := c.DotCount(); got != 2 {
		t.Errorf("expected 2 dots, got %d", got)
	}
	if r := c.Grid[0][0]; r != brailleBlank|0x1|0x80 {
		t.Errorf("unexpected rune %U", r)
	}

	c.Clear()
	if got := c.DotCount(); got != 0 {
		t.Errorf("expected empty canvas, got %d dots", got)
	}
}

func TestCanvas_DrawLine(t *testing.T) {
	c := NewCanvas(10, 3)
	white := colorful.Color{R: 1, G: 1, B: 1}
	c.DrawLine(0, 0, 19, 0, white)

	if got := c.DotCount(); got != 20 {
		t.Errorf("expected 20 dots on a horizontal line, got %d", got)
	}
	if !c.IsSet(0, 0) || !c.IsSet(19, 0) {
		t.Error("line endpoints not set")
	}
	if c.Tint[0][9] != white {
		t.Error("line colour not recorded")
	}
}

func TestCanvas_String(t *testing.T) {
	c := NewCanvas(3, 2)
	lines := strings.Split(strings.TrimRight(c.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(lines))
	}
	if len([]rune(lines[0])) != 3 {
		t.Errorf("expected 3 cells, got %d", len([]rune(lines[0])))
	}
	if !strings.Contains(c.Styled(), string(rune(brailleBlank))) {
		t.Error("styled output lost the grid")
	}
}

func TestCamera_Project(t *testing.T) {
	cam := NewCamera(1)
	cam.Update(frame.CameraState{})

	ndc, depth, ok := cam.Project(mgl64.Vec3{})
	if !ok {
		t.Fatal("origin should be visible")
	}
	if math.Abs(ndc.X()) > 1e-9 || math.Abs(ndc.Y()) > 1e-9 {
		t.Errorf("origin should project to centre, got %v", ndc)
	}
	if math.Abs(depth-DefaultDistance) > 1e-9 {
		t.Errorf("expected depth %v, got %v", DefaultDistance, depth)
	}

	if _, _, ok := cam.Project(mgl64.Vec3{0, 0, 200}); ok {
		t.Error("point behind the camera should be culled")
	}

	right, _, _ := cam.Project(mgl64.Vec3{10, 0, 0})
	if right.X() <= 0 {
		t.Errorf("+x should project right of centre, got %v", right)
	}
}

func TestTerminal_DrawPoint(t *testing.T) {
	term := NewTerminal(20, 10)
	f := &field.Field{Points: []field.Point{{Color: colorful.Color{R: 1, G: 1, B: 1}, Size: 1}}}
	f.Dirty = true

	term.Upload(f)
	if f.Dirty {
		t.Error("upload should clear the dirty flag")
	}
	if err := term.Draw(frame.CameraState{}); err != nil {
		t.Fatal(err)
	}
	if got := term.Canvas().DotCount(); got != 1 {
		t.Errorf("expected 1 dot, got %d", got)
	}
	if !term.Canvas().IsSet(20, 20) {
		t.Error("origin should land in the middle of the canvas")
	}
}

func TestTerminal_DrawMesh(t *testing.T) {
	term := NewTerminal(40, 20)
	f := field.GenerateMesh(60, 1)

	term.Upload(f)
	if err := term.Draw(frame.CameraState{}); err != nil {
		t.Fatal(err)
	}
	if got := term.Canvas().DotCount(); got < len(f.Edges)/2 {
		t.Errorf("expected the wireframe to cover the canvas, got %d dots", got)
	}
}

func TestTerminal_ResizeKeepsField(t *testing.T) {
	term := NewTerminal(20, 10)
	f := field.GenerateMesh(60, 0)
	before := f.Points[3].Rest

	term.Upload(f)
	term.Resize(60, 30)
	if term.Canvas().Width != 60 || term.Canvas().Height != 30 {
		t.Errorf("canvas not resized: %dx%d", term.Canvas().Width, term.Canvas().Height)
	}
	if f.Points[3].Rest != before || f.Len() != 12 {
		t.Error("resize must not touch the field")
	}
	if err := term.Draw(frame.CameraState{}); err != nil {
		t.Fatal(err)
	}
}

func TestDiscard(t *testing.T) {
	d := &Discard{}
	f := &field.Field{Dirty: true}
	d.Upload(f)
	_ = d.Draw(frame.CameraState{})
	if f.Dirty || d.Uploads != 1 || d.Draws != 1 {
		t.Errorf("unexpected discard state %+v dirty=%v", d, f.Dirty)
	}
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	f := field.GenerateMesh(60, 0)
	f.Dirty = true

	r.Resize(120, 40)
	r.Upload(f)
	_ = r.Draw(frame.CameraState{RotationY: 0.5})

	if f.Dirty {
		t.Error("upload should clear dirty")
	}
	if len(r.Points) != 1 || r.Points[0] != 12 {
		t.Errorf("points = %v", r.Points)
	}
	if len(r.Last) != 36 {
		t.Errorf("positions = %d floats, want 36", len(r.Last))
	}
	if len(r.Cameras) != 1 || r.Cameras[0].RotationY != 0.5 {
		t.Errorf("cameras = %+v", r.Cameras)
	}
	if r.Width != 120 || r.Height != 40 {
		t.Errorf("size = %dx%d", r.Width, r.Height)
	}
}

func TestCanvasSVG(t *testing.T) {
	c := NewCanvas(2, 1)
	c.SetColor(0, 0, colorful.Color{R: 1})
	c.SetColor(3, 3, colorful.Color{G: 1})

	svg := c.SVG(2)
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("not an svg document")
	}
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("circles = %d, want 2", n)
	}
	if !strings.Contains(svg, `fill="#ff0000"`) || !strings.Contains(svg, `fill="#00ff00"`) {
		t.Error("dot colours missing")
	}
	if !strings.Contains(svg, `width="8" height="8"`) {
		t.Error("unexpected svg size")
	}
}
