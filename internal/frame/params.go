package frame

// Params holds the tuned constants of the frame integrator. They are
// empirical; none has a derivation beyond "looks right at 60 fps".
type Params struct {
	// ScrollDecay is applied once per Step, not per second, so the decay
	// rate follows the frame rate.
	ScrollDecay float64 `yaml:"scroll_decay"`

	PanScale float64 `yaml:"pan_scale"`
	PanBlend float64 `yaml:"pan_blend"`

	Spin         float64 `yaml:"spin"`
	PointerSpin  float64 `yaml:"pointer_spin"`
	ScrollSpin   float64 `yaml:"scroll_spin"`
	PointerTiltX float64 `yaml:"pointer_tilt_x"`

	Amplitude float64 `yaml:"amplitude"`
	RateX     float64 `yaml:"rate_x"`
	RateY     float64 `yaml:"rate_y"`

	MeshAmplitude float64 `yaml:"mesh_amplitude"`
	MeshRate      float64 `yaml:"mesh_rate"`

	Repulsion          bool    `yaml:"repulsion"`
	RepelRadius        float64 `yaml:"repel_radius"`
	RepelStrength      float64 `yaml:"repel_strength"`
	RepelBlend         float64 `yaml:"repel_blend"`
	SpringBlend        float64 `yaml:"spring_blend"`
	WorldScaleX        float64 `yaml:"world_scale_x"`
	WorldScaleY        float64 `yaml:"world_scale_y"`
	MobileWidth        int     `yaml:"mobile_width"`
	RequireFinePointer bool    `yaml:"require_fine_pointer"`
}

func DefaultParams() Params {
	return Params{
		ScrollDecay: 0.95,

		PanScale: 0.05,
		PanBlend: 0.05,

		Spin:         0.03,
		PointerSpin:  0.0005,
		ScrollSpin:   0.002,
		PointerTiltX: 0.0002,

		Amplitude: 12,
		RateX:     0.5,
		RateY:     0.8,

		MeshAmplitude: 3,
		MeshRate:      1.2,

		Repulsion:          true,
		RepelRadius:        100,
		RepelStrength:      30,
		RepelBlend:         0.1,
		SpringBlend:        0.03,
		WorldScaleX:        300,
		WorldScaleY:        200,
		MobileWidth:        768,
		RequireFinePointer: true,
	}
}
