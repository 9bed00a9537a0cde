package field

import (
	"math"
	"math/rand"
	"testing"
)

func TestGenerateCloud_Counts(t *testing.T) {
	tests := []struct {
		name  string
		count int
		want  int
	}{
		{"empty", 0, 0},
		{"negative", -5, 0},
		{"one", 1, 1},
		{"thousand", 1000, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := GenerateCloud(tt.count, rand.New(rand.NewSource(1)), DefaultCloudParams())
			if f.Len() != tt.want {
				t.Fatalf("expected %d points, got %d", tt.want, f.Len())
			}
			for i, p := range f.Points {
				if p.Current != p.Rest {
					t.Fatalf("point %d: current %v != rest %v", i, p.Current, p.Rest)
				}
			}
		})
	}
}

func TestGenerateCloud_Ranges(t *testing.T) {
	p := DefaultCloudParams()
	f := GenerateCloud(5000, rand.New(rand.NewSource(7)), p)

	accent := 0
	for i, pt := range f.Points {
		r := math.Hypot(pt.Rest.X(), pt.Rest.Z())
		if r < p.MinRadius-1e-9 || r >= p.MinRadius+p.RadiusSpread {
			t.Errorf("point %d radius %.3f out of range", i, r)
		}
		if y := pt.Rest.Y(); y < -p.Height/2 || y >= p.Height/2 {
			t.Errorf("point %d height %.3f out of range", i, y)
		}
		if pt.Size < 1.5 || pt.Size >= 4.0 {
			t.Errorf("point %d size %.3f out of range", i, pt.Size)
		}
		if pt.Phase < 0 || pt.Phase >= 2*math.Pi {
			t.Errorf("point %d phase %.3f out of range", i, pt.Phase)
		}
		if pt.Color.R != pt.Color.G || pt.Color.G != pt.Color.B {
			accent++
		}
	}

	ratio := float64(accent) / float64(f.Len())
	if ratio < 0.07 || ratio > 0.13 {
		t.Errorf("expected ~10%% accent points, got %.3f", ratio)
	}
}

func TestGenerateMesh_Topology(t *testing.T) {
	for detail := 0; detail <= 3; detail++ {
		f := GenerateMesh(60, detail)
		pow := int(math.Pow(4, float64(detail)))
		if want := 10*pow + 2; f.Len() != want {
			t.Errorf("detail %d: expected %d vertices, got %d", detail, want, f.Len())
		}
		if want := 30 * pow; len(f.Edges) != want {
			t.Errorf("detail %d: expected %d edges, got %d", detail, want, len(f.Edges))
		}
		for i, p := range f.Points {
			if math.Abs(p.Rest.Len()-60) > 1e-9 {
				t.Fatalf("detail %d vertex %d not on sphere: %.6f", detail, i, p.Rest.Len())
			}
			if p.Phase < 0 || p.Phase >= 2*math.Pi {
				t.Fatalf("detail %d vertex %d phase %.3f out of range", detail, i, p.Phase)
			}
		}
	}
}

func TestWidthThresholds(t *testing.T) {
	if got := MeshDetailForWidth(500, DefaultMobileWidth); got != MobileMeshDetail {
		t.Errorf("narrow viewport: expected detail %d, got %d", MobileMeshDetail, got)
	}
	if got := MeshDetailForWidth(1280, DefaultMobileWidth); got != DesktopMeshDetail {
		t.Errorf("wide viewport: expected detail %d, got %d", DesktopMeshDetail, got)
	}
	if got := ParticleCountForWidth(767, DefaultMobileWidth); got != MobileParticleCount {
		t.Errorf("expected mobile count, got %d", got)
	}
	if got := ParticleCountForWidth(768, DefaultMobileWidth); got != DesktopParticleCount {
		t.Errorf("expected desktop count, got %d", got)
	}
}

func TestField_ResetAndPositions(t *testing.T) {
	f := GenerateCloud(10, rand.New(rand.NewSource(3)), DefaultCloudParams())
	f.Points[0].Current[0] += 40
	f.Points[0].Offset[1] = 5

	buf := f.Positions(nil)
	if len(buf) != 30 {
		t.Fatalf("expected 30 floats, got %d", len(buf))
	}
	if math.Abs(float64(buf[1])-(f.Points[0].Rest.Y()+5)) > 1e-3 {
		t.Errorf("display y not offset: %v", buf[1])
	}

	f.Reset()
	if f.Points[0].Displacement() != 0 || f.Points[0].Offset.Len() != 0 {
		t.Error("Reset did not restore rest position")
	}
}
