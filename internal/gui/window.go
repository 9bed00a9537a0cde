package gui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/livingcore/internal/field"
	"github.com/san-kum/livingcore/internal/frame"
	"github.com/san-kum/livingcore/internal/render"
)

var (
	ColBg      = rl.NewColor(5, 5, 5, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColAccent  = rl.NewColor(76, 201, 240, 255)
)

// Window draws the field into the raylib window. The window must be open
// before Draw is called.
type Window struct {
	kind      field.Kind
	positions []float32
	colors    []rl.Color
	edges     [][2]int
	width     int
	height    int

	// Overlay, when set, draws 2D content on top of each frame.
	Overlay func()
}

func NewWindow(width, height int) *Window {
	return &Window{width: width, height: height}
}

func (w *Window) Resize(width, height int) {
	w.width, w.height = width, height
}

func (w *Window) Upload(f *field.Field) {
	if f == nil {
		return
	}
	w.kind = f.Kind
	w.positions = f.Positions(w.positions)
	if cap(w.colors) < len(f.Points) {
		w.colors = make([]rl.Color, len(f.Points))
	}
	w.colors = w.colors[:len(f.Points)]
	for i := range f.Points {
		w.colors[i] = toRL(f.Points[i].Color, 0.8)
	}
	w.edges = f.Edges
	f.Dirty = false
}

func toRL(c colorful.Color, alpha float64) rl.Color {
	r, g, b := c.Clamped().RGB255()
	return rl.NewColor(r, g, b, uint8(alpha*255))
}

// camera mirrors render.Camera: eye at (x, y, distance) looking at the
// origin.
func camera(cs frame.CameraState) rl.Camera3D {
	return rl.NewCamera3D(
		rl.NewVector3(float32(cs.X), float32(cs.Y), render.DefaultDistance),
		rl.NewVector3(0, 0, 0),
		rl.NewVector3(0, 1, 0),
		render.DefaultFOV,
		rl.CameraPerspective,
	)
}

func (w *Window) Draw(cs frame.CameraState) error {
	if !rl.IsWindowReady() {
		return render.ErrNoSurface
	}
	model := mgl64.HomogRotate3DY(cs.RotationY).Mul4(mgl64.HomogRotate3DX(cs.RotationX))
	vertex := func(i int) rl.Vector3 {
		p := model.Mul4x1(mgl64.Vec4{
			float64(w.positions[i*3]), float64(w.positions[i*3+1]), float64(w.positions[i*3+2]), 1,
		})
		return rl.NewVector3(float32(p.X()), float32(p.Y()), float32(p.Z()))
	}

	rl.BeginDrawing()
	rl.ClearBackground(ColBg)
	rl.BeginMode3D(camera(cs))

	n := len(w.positions) / 3
	if w.kind == field.KindMesh {
		for _, e := range w.edges {
			if e[0] >= n || e[1] >= n {
				continue
			}
			rl.DrawLine3D(vertex(e[0]), vertex(e[1]), w.colors[e[0]])
		}
	} else {
		for i := 0; i < n; i++ {
			rl.DrawPoint3D(vertex(i), w.colors[i])
		}
	}

	rl.EndMode3D()
	if w.Overlay != nil {
		w.Overlay()
	}
	rl.EndDrawing()
	return nil
}
