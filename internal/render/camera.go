package render

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/livingcore/internal/frame"
)

const (
	DefaultFOV      = 75.0
	DefaultDistance = 150.0
	DefaultNear     = 0.1
	DefaultFar      = 1000.0
)

// Camera is a perspective camera looking at the origin from +z.
type Camera struct {
	FOV, Near, Far float64
	Distance       float64
	Aspect         float64

	proj mgl64.Mat4
	mvp  mgl64.Mat4
}

func NewCamera(aspect float64) *Camera {
	c := &Camera{FOV: DefaultFOV, Near: DefaultNear, Far: DefaultFar, Distance: DefaultDistance}
	c.SetAspect(aspect)
	return c
}

// SetAspect updates the projection matrix; called on resize.
func (c *Camera) SetAspect(aspect float64) {
	if aspect <= 0 {
		aspect = 1
	}
	c.Aspect = aspect
	c.proj = mgl64.Perspective(mgl64.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

// Update rebuilds the view and group rotation for this frame's camera state.
func (c *Camera) Update(cs frame.CameraState) {
	eye := mgl64.Vec3{cs.X, cs.Y, c.Distance}
	view := mgl64.LookAtV(eye, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})
	model := mgl64.HomogRotate3DY(cs.RotationY).Mul4(mgl64.HomogRotate3DX(cs.RotationX))
	c.mvp = c.proj.Mul4(view).Mul4(model)
}

// Project maps a world point to normalized device coordinates. depth is the
// clip-space w (distance along the view axis); ok is false behind the camera
// or outside the frustum depth range.
func (c *Camera) Project(p mgl64.Vec3) (ndc mgl64.Vec2, depth float64, ok bool) {
	clip := c.mvp.Mul4x1(p.Vec4(1))
	w := clip.W()
	if w <= c.Near {
		return mgl64.Vec2{}, 0, false
	}
	z := clip.Z() / w
	if z < -1 || z > 1 {
		return mgl64.Vec2{}, 0, false
	}
	return mgl64.Vec2{clip.X() / w, clip.Y() / w}, w, true
}
