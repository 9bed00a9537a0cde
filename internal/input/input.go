package input

import "math"

const (
	MaxTiltDegrees  = 45.0
	DefaultTiltGain = 500.0
)

// State is the latest pointer, scroll and tilt reading. Handlers overwrite
// it; the frame integrator reads it once per frame and decays ScrollVelocity.
type State struct {
	// PointerX/Y are offsets from the viewport centre in pixels.
	PointerX, PointerY float64
	// PointerNDCX/Y are normalized device coordinates, +y up.
	PointerNDCX, PointerNDCY float64
	// HasPointer is false until the first pointer or tilt reading.
	HasPointer bool

	ScrollVelocity float64
	LastScrollY    float64

	TiltX, TiltY float64
	HasTilt      bool
}

// Viewport is what the host surface reports about itself.
type Viewport struct {
	Width, Height int
	// FinePointer is false for touch or other coarse pointing devices.
	FinePointer bool
}

// OrientationEvent mirrors a device-orientation reading in degrees. Beta is
// front-back tilt, Gamma left-right. Either may be missing.
type OrientationEvent struct {
	Beta, Gamma       float64
	HasBeta, HasGamma bool
}

// Aggregator owns the input state and the viewport it is measured against.
type Aggregator struct {
	state    State
	viewport Viewport
	tiltGain float64
}

func NewAggregator(vp Viewport) *Aggregator {
	return &Aggregator{viewport: vp, tiltGain: DefaultTiltGain}
}

func (a *Aggregator) State() *State      { return &a.state }
func (a *Aggregator) Viewport() Viewport { return a.viewport }

func (a *Aggregator) SetTiltGain(g float64) { a.tiltGain = g }

// PointerMove records a pointer position in viewport pixels.
func (a *Aggregator) PointerMove(clientX, clientY float64) {
	halfW := float64(a.viewport.Width) / 2
	halfH := float64(a.viewport.Height) / 2
	a.state.PointerX = clientX - halfW
	a.state.PointerY = clientY - halfH

	if a.viewport.Width > 0 {
		a.state.PointerNDCX = clientX/float64(a.viewport.Width)*2 - 1
	}
	if a.viewport.Height > 0 {
		a.state.PointerNDCY = -(clientY/float64(a.viewport.Height))*2 + 1
	}
	a.state.HasPointer = true
}

// Scroll records the new scroll offset; the delta becomes the velocity.
func (a *Aggregator) Scroll(scrollY float64) {
	a.state.ScrollVelocity = scrollY - a.state.LastScrollY
	a.state.LastScrollY = scrollY
}

// Orientation turns device tilt into a pointer offset. Events without a
// front-back reading are dropped.
func (a *Aggregator) Orientation(ev OrientationEvent) {
	if !ev.HasBeta {
		return
	}
	gamma := 0.0
	if ev.HasGamma {
		gamma = ev.Gamma
	}

	a.state.TiltX = clampTilt(gamma)
	a.state.TiltY = clampTilt(ev.Beta)
	a.state.HasTilt = true
	a.state.HasPointer = true
	a.state.PointerX = a.state.TiltX * a.tiltGain
	a.state.PointerY = a.state.TiltY * a.tiltGain
}

func (a *Aggregator) Resize(width, height int) {
	a.viewport.Width = width
	a.viewport.Height = height
}

func (a *Aggregator) SetFinePointer(fine bool) { a.viewport.FinePointer = fine }

func clampTilt(deg float64) float64 {
	if math.IsNaN(deg) {
		return 0
	}
	return math.Min(math.Max(deg, -MaxTiltDegrees), MaxTiltDegrees) / MaxTiltDegrees
}
