package field

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	MobileMeshDetail  = 2
	DesktopMeshDetail = 4
	maxMeshDetail     = 6

	// rippleWaveNumber turns a vertex position into a phase so neighbouring
	// vertices move together.
	rippleWaveNumber = 0.05
)

var (
	meshColor = colorful.Color{R: 0.298, G: 0.788, B: 0.941}

	t0 = (1 + math.Sqrt(5)) / 2

	icosaVertices = []mgl64.Vec3{
		{-1, t0, 0}, {1, t0, 0}, {-1, -t0, 0}, {1, -t0, 0},
		{0, -1, t0}, {0, 1, t0}, {0, -1, -t0}, {0, 1, -t0},
		{t0, 0, -1}, {t0, 0, 1}, {-t0, 0, -1}, {-t0, 0, 1},
	}

	icosaFaces = [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
)

// MeshDetailForWidth lowers the subdivision level on narrow viewports.
func MeshDetailForWidth(width, mobileWidth int) int {
	if width < mobileWidth {
		return MobileMeshDetail
	}
	return DesktopMeshDetail
}

// GenerateMesh builds an icosphere of the given radius subdivided detail
// times. Vertices are shared between faces, so the edge list is the
// wireframe.
func GenerateMesh(radius float64, detail int) *Field {
	if detail < 0 {
		detail = 0
	}
	if detail > maxMeshDetail {
		detail = maxMeshDetail
	}

	verts := make([]mgl64.Vec3, len(icosaVertices))
	for i, v := range icosaVertices {
		verts[i] = v.Normalize()
	}
	faces := append([][3]int(nil), icosaFaces...)

	for d := 0; d < detail; d++ {
		cache := make(map[[2]int]int)
		midpoint := func(a, b int) int {
			key := [2]int{a, b}
			if a > b {
				key = [2]int{b, a}
			}
			if idx, ok := cache[key]; ok {
				return idx
			}
			m := verts[a].Add(verts[b]).Mul(0.5).Normalize()
			verts = append(verts, m)
			cache[key] = len(verts) - 1
			return len(verts) - 1
		}

		next := make([][3]int, 0, len(faces)*4)
		for _, f := range faces {
			ab := midpoint(f[0], f[1])
			bc := midpoint(f[1], f[2])
			ca := midpoint(f[2], f[0])
			next = append(next,
				[3]int{f[0], ab, ca},
				[3]int{f[1], bc, ab},
				[3]int{f[2], ca, bc},
				[3]int{ab, bc, ca},
			)
		}
		faces = next
	}

	f := &Field{Kind: KindMesh, Points: make([]Point, len(verts)), Dirty: true}
	for i, v := range verts {
		pos := v.Mul(radius)
		phase := math.Mod((pos.X()+pos.Y()+pos.Z())*rippleWaveNumber, 2*math.Pi)
		if phase < 0 {
			phase += 2 * math.Pi
		}
		f.Points[i] = Point{
			Rest:    pos,
			Current: pos,
			Color:   meshColor,
			Size:    1,
			Phase:   phase,
		}
	}
	f.Edges = edgesOf(faces)
	return f
}

func edgesOf(faces [][3]int) [][2]int {
	seen := make(map[[2]int]struct{}, len(faces)*3/2)
	edges := make([][2]int, 0, len(faces)*3/2)
	add := func(a, b int) {
		if a > b {
			a, b = b, a
		}
		k := [2]int{a, b}
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		edges = append(edges, k)
	}
	for _, f := range faces {
		add(f[0], f[1])
		add(f[1], f[2])
		add(f[2], f[0])
	}
	return edges
}
