package powertrain

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/drivesim/internal/curve"
)

func testClutch() *Clutch {
	return &Clutch{
		TravelToEngagement:    curve.Linear(0, 1, 1, 0),
		EngagementToMaxTorque: curve.Linear(0, 0, 1, 600),
		FrictionCoefficient:   0.3,
		MaxEngagedForce:       8000,
		MeanRadius:            0.1,
		Surfaces:              2,
	}
}

var _ = Describe("Clutch", func() {
	var c *Clutch

	BeforeEach(func() {
		c = testClutch()
	})

	It("derives its ceiling from friction, force, radius and surfaces", func() {
		Expect(c.Ceiling()).To(BeNumerically("~", 480, 1e-9))
	})

	Context("with the pedal released", func() {
		It("is fully engaged", func() {
			Expect(c.Engagement(0)).To(Equal(1.0))
		})

		It("passes torque below capacity unchanged", func() {
			Expect(c.Transfer(0, 200, 3000, 1000)).To(BeNumerically("~", 200, 1e-9))
		})

		It("limits torque above capacity to the curve-derived capacity", func() {
			Expect(c.Transfer(0, 600, 3000, 1000)).To(BeNumerically("~", 480, 1e-9))
		})

		It("limits engine braking to the negative capacity", func() {
			Expect(c.Transfer(0, -900, 1000, 3000)).To(BeNumerically("~", -480, 1e-9))
		})
	})

	Context("with the pedal pressed", func() {
		It("is open and transfers nothing", func() {
			Expect(c.Transfer(1, 300, 3000, 0)).To(Equal(0.0))
			Expect(c.State()).To(Equal(ClutchOpen))
		})

		It("stays open regardless of the differential", func() {
			c.Transfer(1, 300, 1000, 1000)
			Expect(c.State()).To(Equal(ClutchOpen))
		})
	})

	It("has no capacity without clamping force", func() {
		c.MaxEngagedForce = 0
		Expect(c.Transfer(0, 300, 3000, 1000)).To(Equal(0.0))
		Expect(c.State()).To(Equal(ClutchOpen))
	})

	It("clamps out-of-range pedal travel before lookup", func() {
		Expect(c.Engagement(-3)).To(Equal(1.0))
		Expect(c.Engagement(7)).To(Equal(0.0))
	})

	It("gives identical results for identical inputs", func() {
		first := c.Transfer(0.4, 250, 2100, 1800)
		firstState := c.State()
		for i := 0; i < 5; i++ {
			Expect(c.Transfer(0.4, 250, 2100, 1800)).To(Equal(first))
			Expect(c.State()).To(Equal(firstState))
		}
	})

	It("heats while slipping and cools toward ambient", func() {
		c.HeatCapacity = 500
		c.CoolingRate = 0.05
		c.TemperatureC = 20
		c.Heat(200, 1500, 20, 0.1)
		hot := c.TemperatureC
		Expect(hot).To(BeNumerically(">", 20))
		for i := 0; i < 1000; i++ {
			c.Heat(0, 0, 20, 0.1)
		}
		Expect(c.TemperatureC).To(BeNumerically("<", hot))
		Expect(c.TemperatureC).To(BeNumerically("~", 20, 0.1))
	})
})

var _ = DescribeTable("ClassifyState",
	func(maxTorque, diff float64, want ClutchState) {
		Expect(ClassifyState(maxTorque, diff, DefaultLockedToleranceRPM, DefaultMicroSlipRPM)).To(Equal(want))
	},
	Entry("zero differential", 100.0, 0.0, ClutchLocked),
	Entry("within lock tolerance", 100.0, 0.5, ClutchLocked),
	Entry("micro slip", 100.0, 7.0, ClutchMicroSlipping),
	Entry("negative micro slip", 100.0, -7.0, ClutchMicroSlipping),
	Entry("just past micro slip", 100.0, 10.5, ClutchSlipping),
	Entry("large differential", 100.0, 500.0, ClutchSlipping),
	Entry("huge differential", 100.0, 6000.0, ClutchSlipping),
	Entry("no capacity", 0.0, 0.0, ClutchOpen),
	Entry("no capacity slipping", 0.0, 3000.0, ClutchOpen),
)

var _ = Describe("ClassifyState over the differential domain", func() {
	It("assigns exactly one state to every differential", func() {
		prev := ClutchLocked
		for d := 0.0; d <= 2000; d += 0.25 {
			s := ClassifyState(50, d, DefaultLockedToleranceRPM, DefaultMicroSlipRPM)
			Expect(s).To(BeElementOf(ClutchLocked, ClutchMicroSlipping, ClutchSlipping))
			Expect(int(s)).To(BeNumerically("<=", int(prev)), "state must not re-tighten as slip grows")
			prev = s
		}
	})
})
