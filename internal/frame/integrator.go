package frame

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/livingcore/internal/field"
	"github.com/san-kum/livingcore/internal/input"
)

// CameraState is the smoothed camera pan and the group rotation derived
// from input each frame.
type CameraState struct {
	X, Y             float64
	TargetX, TargetY float64
	RotationX        float64
	RotationY        float64
}

// Stats summarizes one Step.
type Stats struct {
	Elapsed         float64
	Repelled        int
	RepulsionActive bool
	MaxDisplacement float64
	ScrollVelocity  float64
	CameraX         float64
	CameraY         float64
}

type Integrator struct {
	params  Params
	workers int
	parts   []partial
}

func New(p Params) *Integrator {
	return &Integrator{params: p, workers: 1}
}

// SetWorkers splits large fields across n goroutines. One or less keeps the
// step on the caller's goroutine.
func (in *Integrator) SetWorkers(n int) { in.workers = max(n, 1) }
func (in *Integrator) Workers() int     { return in.workers }

func (in *Integrator) Params() Params     { return in.params }
func (in *Integrator) SetParams(p Params) { in.params = p }

// RepulsionActive reports whether pointer physics runs for this viewport:
// only on wide viewports with a fine pointer, for performance.
func (in *Integrator) RepulsionActive(vp input.Viewport) bool {
	if !in.params.Repulsion {
		return false
	}
	if vp.Width < in.params.MobileWidth {
		return false
	}
	if in.params.RequireFinePointer && !vp.FinePointer {
		return false
	}
	return true
}

// Step advances the field to elapsed seconds. It mutates f, s and cam and
// marks f dirty. With one worker it never allocates.
func (in *Integrator) Step(elapsed float64, f *field.Field, s *input.State, cam *CameraState, vp input.Viewport) Stats {
	p := &in.params

	s.ScrollVelocity *= p.ScrollDecay

	cam.TargetX = s.PointerX * p.PanScale
	cam.TargetY = s.PointerY * p.PanScale
	cam.X += (cam.TargetX - cam.X) * p.PanBlend
	cam.Y += (-cam.TargetY - cam.Y) * p.PanBlend

	cam.RotationY = elapsed*p.Spin + s.PointerX*p.PointerSpin + s.ScrollVelocity*p.ScrollSpin
	cam.RotationX = s.PointerY * p.PointerTiltX

	stats := Stats{
		Elapsed:         elapsed,
		ScrollVelocity:  s.ScrollVelocity,
		RepulsionActive: in.RepulsionActive(vp),
		CameraX:         cam.X,
		CameraY:         cam.Y,
	}
	if f == nil {
		return stats
	}

	pull := pointerPull{
		active: stats.RepulsionActive && s.HasPointer,
		x:      s.PointerNDCX * p.WorldScaleX,
		y:      s.PointerNDCY * p.WorldScaleY,
		r2:     p.RepelRadius * p.RepelRadius,
	}

	n := len(f.Points)
	workers := chunks(n, in.workers, parallelChunk)
	if workers <= 1 {
		part := in.stepRange(f, 0, n, elapsed, pull)
		stats.Repelled, stats.MaxDisplacement = part.repelled, part.maxDisplacement
	} else {
		if cap(in.parts) < workers {
			in.parts = make([]partial, workers)
		}
		parts := in.parts[:workers]
		ParallelFor(n, workers, func(w, start, end int) {
			parts[w] = in.stepRange(f, start, end, elapsed, pull)
		})
		for _, part := range parts {
			stats.Repelled += part.repelled
			stats.MaxDisplacement = max(stats.MaxDisplacement, part.maxDisplacement)
		}
	}

	f.Dirty = true
	return stats
}

type pointerPull struct {
	active bool
	x, y   float64
	r2     float64
}

type partial struct {
	repelled        int
	maxDisplacement float64
}

// stepRange integrates points [start, end).
func (in *Integrator) stepRange(f *field.Field, start, end int, elapsed float64, pull pointerPull) partial {
	p := &in.params
	var out partial
	for i := start; i < end; i++ {
		pt := &f.Points[i]
		in.oscillate(f.Kind, pt, elapsed)

		tx, ty := pt.Rest.X(), pt.Rest.Y()
		blend := p.SpringBlend

		if pull.active {
			dx := pt.Rest.X() - pull.x
			dy := pt.Rest.Y() - pull.y
			d2 := dx*dx + dy*dy
			if d2 < pull.r2 {
				force := (pull.r2 - d2) / pull.r2
				angle := math.Atan2(dy, dx)
				tx += math.Cos(angle) * force * p.RepelStrength
				ty += math.Sin(angle) * force * p.RepelStrength
				blend = p.RepelBlend
				out.repelled++
			}
		}

		pt.Current[0] += (tx - pt.Current[0]) * blend
		pt.Current[1] += (ty - pt.Current[1]) * blend

		if d := pt.Displacement(); d > out.maxDisplacement {
			out.maxDisplacement = d
		}
	}
	return out
}

func (in *Integrator) oscillate(kind field.Kind, pt *field.Point, t float64) {
	p := &in.params
	if kind == field.KindMesh {
		if p.MeshAmplitude == 0 || pt.Rest.Len() == 0 {
			pt.Offset = mgl64.Vec3{}
			return
		}
		n := pt.Rest.Normalize()
		pt.Offset = n.Mul(p.MeshAmplitude * math.Sin(t*p.MeshRate+pt.Phase))
		return
	}
	pt.Offset = mgl64.Vec3{
		math.Cos(t*p.RateX+pt.Phase) * p.Amplitude,
		math.Sin(t*p.RateY+pt.Phase) * p.Amplitude,
		0,
	}
}

// OscillationBound is the largest distance Offset can reach for the kind.
func (in *Integrator) OscillationBound(kind field.Kind) float64 {
	if kind == field.KindMesh {
		return math.Abs(in.params.MeshAmplitude)
	}
	return math.Abs(in.params.Amplitude) * math.Sqrt2
}
