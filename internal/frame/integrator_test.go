package frame_test

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/livingcore/internal/field"
	"github.com/san-kum/livingcore/internal/frame"
	"github.com/san-kum/livingcore/internal/input"
)

const dt = 1.0 / 60

var (
	desktop = input.Viewport{Width: 1280, Height: 720, FinePointer: true}
	phone   = input.Viewport{Width: 390, Height: 844, FinePointer: false}
)

func singlePoint(rest mgl64.Vec3) *field.Field {
	return &field.Field{Points: []field.Point{{Rest: rest, Current: rest, Size: 2}}}
}

var _ = Describe("Integrator", func() {
	var (
		params frame.Params
		state  *input.State
		cam    *frame.CameraState
	)

	BeforeEach(func() {
		params = frame.DefaultParams()
		state = &input.State{}
		cam = &frame.CameraState{}
	})

	Describe("rest restoration", func() {
		It("leaves every point at rest when repulsion and oscillation are off", func() {
			params.Repulsion = false
			params.Amplitude = 0
			integ := frame.New(params)
			f := field.GenerateCloud(500, rand.New(rand.NewSource(11)), field.DefaultCloudParams())

			for i := 0; i < 120; i++ {
				integ.Step(float64(i)*dt, f, state, cam, desktop)
			}
			for _, p := range f.Points {
				Expect(p.Current).To(Equal(p.Rest))
				Expect(p.Display()).To(Equal(p.Rest))
			}
		})

		It("springs a displaced point back to within 1% in about 150 steps", func() {
			params.Amplitude = 0
			integ := frame.New(params)
			f := singlePoint(mgl64.Vec3{200, 150, 0})
			f.Points[0].Current = mgl64.Vec3{250, 150, 0}

			steps := 0
			for f.Points[0].Displacement() > 0.5 && steps < 1000 {
				integ.Step(float64(steps)*dt, f, state, cam, desktop)
				steps++
			}
			Expect(steps).To(BeNumerically("<=", 155))
			Expect(f.Points[0].Current.Z()).To(Equal(0.0))
		})
	})

	Describe("scroll velocity", func() {
		It("decays geometrically without crossing zero", func() {
			integ := frame.New(params)
			state.ScrollVelocity = 80
			prev := state.ScrollVelocity

			for k := 1; k <= 200; k++ {
				integ.Step(float64(k)*dt, nil, state, cam, desktop)
				Expect(state.ScrollVelocity).To(BeNumerically("~", 80*math.Pow(0.95, float64(k)), 1e-9))
				Expect(state.ScrollVelocity).To(BeNumerically(">", 0))
				Expect(state.ScrollVelocity).To(BeNumerically("<", prev))
				prev = state.ScrollVelocity
			}
		})

		It("keeps a negative velocity negative", func() {
			integ := frame.New(params)
			state.ScrollVelocity = -30
			for k := 0; k < 50; k++ {
				integ.Step(0, nil, state, cam, desktop)
			}
			Expect(state.ScrollVelocity).To(BeNumerically("<", 0))
			Expect(state.ScrollVelocity).To(BeNumerically("~", -30*math.Pow(0.95, 50), 1e-9))
		})
	})

	Describe("pointer repulsion", func() {
		BeforeEach(func() {
			params.Amplitude = 0
			state.HasPointer = true
		})

		It("pushes a point inside the radius away from the pointer", func() {
			integ := frame.New(params)
			f := singlePoint(mgl64.Vec3{30, -20, 40})

			stats := integ.Step(0, f, state, cam, desktop)

			Expect(stats.RepulsionActive).To(BeTrue())
			Expect(stats.Repelled).To(Equal(1))
			rest := math.Hypot(30, -20)
			moved := math.Hypot(f.Points[0].Current.X(), f.Points[0].Current.Y())
			Expect(moved).To(BeNumerically(">", rest))
			Expect(f.Points[0].Current.Z()).To(Equal(40.0))
		})

		It("maps pointer coordinates through the world scale", func() {
			integ := frame.New(params)
			state.PointerNDCX, state.PointerNDCY = 0.5, -0.5
			f := singlePoint(mgl64.Vec3{150, -100 + 10, 0})

			stats := integ.Step(0, f, state, cam, desktop)
			Expect(stats.Repelled).To(Equal(1))
			Expect(f.Points[0].Current.Y()).To(BeNumerically(">", -90))
		})

		It("ignores points outside the radius", func() {
			integ := frame.New(params)
			f := singlePoint(mgl64.Vec3{150, 0, 0})

			stats := integ.Step(0, f, state, cam, desktop)
			Expect(stats.Repelled).To(Equal(0))
			Expect(f.Points[0].Current).To(Equal(f.Points[0].Rest))
		})

		It("stays off on coarse or narrow viewports", func() {
			integ := frame.New(params)
			f := singlePoint(mgl64.Vec3{10, 10, 0})

			stats := integ.Step(0, f, state, cam, phone)
			Expect(stats.RepulsionActive).To(BeFalse())
			Expect(f.Points[0].Current).To(Equal(f.Points[0].Rest))

			coarseWide := desktop
			coarseWide.FinePointer = false
			Expect(integ.RepulsionActive(coarseWide)).To(BeFalse())
		})

		It("waits for the first pointer reading", func() {
			integ := frame.New(params)
			state.HasPointer = false
			f := singlePoint(mgl64.Vec3{5, 5, 0})

			stats := integ.Step(0, f, state, cam, desktop)
			Expect(stats.Repelled).To(Equal(0))
		})

		It("turns off after a mid-session resize without touching rest positions", func() {
			integ := frame.New(params)
			f := field.GenerateCloud(2000, rand.New(rand.NewSource(5)), field.DefaultCloudParams())
			rests := make([]mgl64.Vec3, f.Len())
			for i, p := range f.Points {
				rests[i] = p.Rest
			}

			var stats frame.Stats
			for i := 0; i < 30; i++ {
				stats = integ.Step(float64(i)*dt, f, state, cam, desktop)
			}
			Expect(stats.Repelled).To(BeNumerically(">", 0))
			Expect(stats.MaxDisplacement).To(BeNumerically(">", 0))

			stats = integ.Step(31*dt, f, state, cam, phone)
			Expect(stats.RepulsionActive).To(BeFalse())
			Expect(stats.Repelled).To(Equal(0))
			Expect(f.Len()).To(Equal(len(rests)))
			for i, p := range f.Points {
				Expect(p.Rest).To(Equal(rests[i]))
			}

			for i := 0; i < 400; i++ {
				stats = integ.Step(float64(32+i)*dt, f, state, cam, phone)
			}
			Expect(stats.MaxDisplacement).To(BeNumerically("<", 1e-3))
		})
	})

	Describe("oscillation", func() {
		It("keeps a quiet field within the amplitude bound", func() {
			integ := frame.New(params)
			f := field.GenerateCloud(1000, rand.New(rand.NewSource(21)), field.DefaultCloudParams())
			bound := integ.OscillationBound(field.KindCloud)

			for i := 0; i < 60; i++ {
				integ.Step(float64(i)*dt, f, state, cam, desktop)
			}
			for _, p := range f.Points {
				Expect(p.Display().Sub(p.Rest).Len()).To(BeNumerically("<=", bound+1e-9))
			}
		})

		It("breathes mesh vertices along their normals", func() {
			integ := frame.New(params)
			f := field.GenerateMesh(60, 1)

			integ.Step(1.3, f, state, cam, desktop)
			for _, p := range f.Points {
				Expect(p.Offset.Len()).To(BeNumerically("<=", params.MeshAmplitude+1e-9))
				if p.Offset.Len() > 1e-6 {
					cross := p.Offset.Cross(p.Rest).Len()
					Expect(cross).To(BeNumerically("<", 1e-6))
				}
			}
		})

		It("keeps a vertex at the origin still", func() {
			integ := frame.New(params)
			f := singlePoint(mgl64.Vec3{})
			f.Kind = field.KindMesh

			integ.Step(1.3, f, state, cam, desktop)
			p := f.Points[0]
			Expect(p.Offset).To(Equal(mgl64.Vec3{}))
			Expect(math.IsNaN(p.Current.X())).To(BeFalse())
			Expect(math.IsNaN(p.Display().Len())).To(BeFalse())
		})
	})

	Describe("camera", func() {
		It("eases toward the scaled pointer offset", func() {
			integ := frame.New(params)
			state.PointerX, state.PointerY = 200, -100

			integ.Step(0, nil, state, cam, desktop)
			Expect(cam.TargetX).To(BeNumerically("~", 10, 1e-12))
			Expect(cam.X).To(BeNumerically("~", 0.5, 1e-12))
			Expect(cam.Y).To(BeNumerically("~", 0.25, 1e-12))

			for i := 0; i < 400; i++ {
				integ.Step(0, nil, state, cam, desktop)
			}
			Expect(cam.X).To(BeNumerically("~", 10, 1e-6))
			Expect(cam.Y).To(BeNumerically("~", 5, 1e-6))
		})

		It("spins slowly with time and scroll", func() {
			integ := frame.New(params)
			integ.Step(10, nil, state, cam, desktop)
			Expect(cam.RotationY).To(BeNumerically("~", 0.3, 1e-12))

			state.ScrollVelocity = 100
			integ.Step(10, nil, state, cam, desktop)
			Expect(cam.RotationY).To(BeNumerically("~", 0.3+95*0.002, 1e-12))
		})
	})

	Describe("workers", func() {
		It("splits a large field without changing the result", func() {
			cloud := func() *field.Field {
				return field.GenerateCloud(12000, rand.New(rand.NewSource(7)), field.DefaultCloudParams())
			}
			serial, parallel := cloud(), cloud()
			one, many := frame.New(params), frame.New(params)
			many.SetWorkers(4)
			Expect(one.Workers()).To(Equal(1))

			state.HasPointer = true
			state.PointerNDCX, state.PointerNDCY = 0.1, -0.2
			camA, camB := &frame.CameraState{}, &frame.CameraState{}
			stateB := *state

			var a, b frame.Stats
			for i := 0; i < 30; i++ {
				a = one.Step(float64(i)*dt, serial, state, camA, desktop)
				b = many.Step(float64(i)*dt, parallel, &stateB, camB, desktop)
			}
			Expect(b.Repelled).To(Equal(a.Repelled))
			Expect(b.MaxDisplacement).To(Equal(a.MaxDisplacement))
			Expect(parallel.Positions(nil)).To(Equal(serial.Positions(nil)))
		})

		It("covers every index exactly once", func() {
			seen := make([]int, 1000)
			frame.ParallelFor(len(seen), 3, func(_, start, end int) {
				for i := start; i < end; i++ {
					seen[i]++
				}
			})
			for _, n := range seen {
				Expect(n).To(Equal(1))
			}
		})
	})
})
