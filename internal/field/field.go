package field

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

// Kind distinguishes the scattered particle cloud from the subdivided sphere.
type Kind int

const (
	KindCloud Kind = iota
	KindMesh
)

func (k Kind) String() string {
	if k == KindMesh {
		return "mesh"
	}
	return "cloud"
}

const (
	DefaultMobileWidth   = 768
	MobileParticleCount  = 8000
	DesktopParticleCount = 25000
)

// Point is one vertex of the field. Current is the physics position the
// integrator springs around; Offset is this frame's oscillation on top of it.
type Point struct {
	Rest    mgl64.Vec3
	Current mgl64.Vec3
	Offset  mgl64.Vec3
	Color   colorful.Color
	Size    float64
	Phase   float64
}

// Display is where the point is drawn this frame.
func (p *Point) Display() mgl64.Vec3 { return p.Current.Add(p.Offset) }

// Displacement is the distance between the physics position and rest.
func (p *Point) Displacement() float64 { return p.Current.Sub(p.Rest).Len() }

type Field struct {
	Kind   Kind
	Points []Point
	Edges  [][2]int
	// Dirty is set by the integrator and cleared by the renderer on upload.
	Dirty bool
}

func (f *Field) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Points)
}

// Reset puts every point back at rest with no oscillation.
func (f *Field) Reset() {
	for i := range f.Points {
		f.Points[i].Current = f.Points[i].Rest
		f.Points[i].Offset = mgl64.Vec3{}
	}
	f.Dirty = true
}

// Positions flattens display positions into xyz triples, the layout GPU
// buffers expect.
func (f *Field) Positions(dst []float32) []float32 {
	n := len(f.Points) * 3
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	for i := range f.Points {
		d := f.Points[i].Display()
		dst[i*3] = float32(d.X())
		dst[i*3+1] = float32(d.Y())
		dst[i*3+2] = float32(d.Z())
	}
	return dst
}

// Bounds returns the axis-aligned extent of the rest positions.
func (f *Field) Bounds() (lo, hi mgl64.Vec3) {
	if len(f.Points) == 0 {
		return
	}
	lo, hi = f.Points[0].Rest, f.Points[0].Rest
	for _, p := range f.Points[1:] {
		for a := 0; a < 3; a++ {
			lo[a] = math.Min(lo[a], p.Rest[a])
			hi[a] = math.Max(hi[a], p.Rest[a])
		}
	}
	return lo, hi
}

// ParticleCountForWidth picks the cloud size for a viewport width.
func ParticleCountForWidth(width, mobileWidth int) int {
	if width < mobileWidth {
		return MobileParticleCount
	}
	return DesktopParticleCount
}

func newRand(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return rand.New(rand.NewSource(rand.Int63()))
}
