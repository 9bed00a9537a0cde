package field

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

// CloudParams describes the cylindrical scatter.
type CloudParams struct {
	MinRadius    float64 `yaml:"min_radius"`
	RadiusSpread float64 `yaml:"radius_spread"`
	Height       float64 `yaml:"height"`
	AccentRatio  float64 `yaml:"accent_ratio"`
	AccentColor  string  `yaml:"accent_color"`
	MinLightness float64 `yaml:"min_lightness"`
	MinSize      float64 `yaml:"min_size"`
	SizeSpread   float64 `yaml:"size_spread"`
}

func DefaultCloudParams() CloudParams {
	return CloudParams{
		MinRadius:    50,
		RadiusSpread: 300,
		Height:       600,
		AccentRatio:  0.10,
		AccentColor:  "#4cc9f0",
		MinLightness: 0.4,
		MinSize:      1.5,
		SizeSpread:   2.5,
	}
}

// GenerateCloud scatters count points in a hollow cylinder around the y axis.
// A nil rng draws from a freshly seeded source.
func GenerateCloud(count int, rng *rand.Rand, p CloudParams) *Field {
	if count < 0 {
		count = 0
	}
	rng = newRand(rng)

	accent, err := colorful.Hex(p.AccentColor)
	if err != nil {
		accent = colorful.Color{R: 0.298, G: 0.788, B: 0.941}
	}

	f := &Field{Kind: KindCloud, Points: make([]Point, count), Dirty: true}
	for i := range f.Points {
		radius := p.MinRadius + rng.Float64()*p.RadiusSpread
		theta := rng.Float64() * 2 * math.Pi
		y := (rng.Float64() - 0.5) * p.Height

		pos := mgl64.Vec3{math.Cos(theta) * radius, y, math.Sin(theta) * radius}

		var c colorful.Color
		if rng.Float64() < p.AccentRatio {
			c = accent
		} else {
			c = colorful.Hsl(0, 0, p.MinLightness+rng.Float64()*(1-p.MinLightness))
		}

		f.Points[i] = Point{
			Rest:    pos,
			Current: pos,
			Color:   c,
			Size:    p.MinSize + rng.Float64()*p.SizeSpread,
			Phase:   rng.Float64() * 2 * math.Pi,
		}
	}
	return f
}
