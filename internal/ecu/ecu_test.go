package ecu

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"
)

const dt = 1.0 / 120

var _ = Describe("Step", func() {
	var cfg Config

	BeforeEach(func() {
		cfg = DefaultConfig()
	})

	running := State{Power: EngineRunning}
	warm := func(rpm float64) Reading {
		return Reading{RPM: rpm, OilTemperatureC: cfg.OperatingOilTempC, Running: true}
	}

	Describe("idle control", func() {
		It("applies the large correction well below the operating idle", func() {
			in := Inputs{KeyInserted: true}
			_, a := Step(running, cfg, in, warm(cfg.OperatingIdleRPM-500), dt)
			Expect(a.Throttle0to1).To(Equal(cfg.LargeCorrection0to1))
		})

		It("applies the small correction for a moderate error", func() {
			in := Inputs{KeyInserted: true}
			_, a := Step(running, cfg, in, warm(cfg.OperatingIdleRPM-50), dt)
			Expect(a.Throttle0to1).To(Equal(cfg.SmallCorrection0to1))
		})

		It("does nothing inside the small threshold", func() {
			in := Inputs{KeyInserted: true}
			_, a := Step(running, cfg, in, warm(cfg.OperatingIdleRPM+5), dt)
			Expect(a.Throttle0to1).To(Equal(0.0))
		})

		It("never drives the throttle negative", func() {
			in := Inputs{KeyInserted: true}
			_, a := Step(running, cfg, in, warm(cfg.OperatingIdleRPM+1000), dt)
			Expect(a.Throttle0to1).To(Equal(0.0))
		})

		It("ignores pedal travel inside the deadband", func() {
			in := Inputs{KeyInserted: true, PedalTravelAccelerator0to1: cfg.AcceleratorDeadband / 2}
			_, a := Step(running, cfg, in, warm(cfg.OperatingIdleRPM-500), dt)
			Expect(a.Throttle0to1).To(Equal(cfg.LargeCorrection0to1))

			_, a = Step(running, cfg, in, warm(cfg.OperatingIdleRPM+5), dt)
			Expect(a.Throttle0to1).To(Equal(0.0))
		})

		It("is inactive while the driver presses the accelerator", func() {
			in := Inputs{KeyInserted: true, PedalTravelAccelerator0to1: 0.3}
			_, a := Step(running, cfg, in, warm(cfg.OperatingIdleRPM-500), dt)
			Expect(a.Throttle0to1).To(Equal(0.3))
		})

		It("targets a higher idle when cold", func() {
			Expect(DesiredIdleRPM(cfg, cfg.ColdOilTempC)).To(Equal(cfg.ColdIdleRPM))
			Expect(DesiredIdleRPM(cfg, cfg.OperatingOilTempC)).To(Equal(cfg.OperatingIdleRPM))
			mid := DesiredIdleRPM(cfg, (cfg.ColdOilTempC+cfg.OperatingOilTempC)/2)
			Expect(mid).To(BeNumerically("~", (cfg.ColdIdleRPM+cfg.OperatingIdleRPM)/2, 1e-9))
			Expect(DesiredIdleRPM(cfg, -40)).To(Equal(cfg.ColdIdleRPM))
		})
	})

	Describe("rev limiter", func() {
		It("cuts the throttle at full pedal above the cutoff", func() {
			in := Inputs{KeyInserted: true, PedalTravelAccelerator0to1: 1}
			_, a := Step(running, cfg, in, warm(cfg.RevLimiterRPM+1), dt)
			Expect(a.Throttle0to1).To(Equal(0.0))
		})

		It("only acts for that tick", func() {
			in := Inputs{KeyInserted: true, PedalTravelAccelerator0to1: 1}
			s, _ := Step(running, cfg, in, warm(cfg.RevLimiterRPM+1), dt)
			_, a := Step(s, cfg, in, warm(cfg.RevLimiterRPM-100), dt)
			Expect(a.Throttle0to1).To(Equal(1.0))
		})
	})

	Describe("power state", func() {
		DescribeTable("transitions",
			func(from PowerState, in Inputs, r Reading, want PowerState) {
				next, _ := Step(State{Power: from}, cfg, in, r, dt)
				Expect(next.Power).To(Equal(want))
			},
			Entry("key inserted", Off, Inputs{KeyInserted: true}, Reading{}, AccessoriesOn),
			Entry("no key stays off", Off, Inputs{IgnitionKeyTurned: true}, Reading{}, Off),
			Entry("key turned starts cranking", AccessoriesOn,
				Inputs{KeyInserted: true, IgnitionKeyTurned: true}, Reading{}, StarterFiring),
			Entry("key turned while running does not crank", AccessoriesOn,
				Inputs{KeyInserted: true, IgnitionKeyTurned: true}, Reading{Running: true}, AccessoriesOn),
			Entry("engine catches", StarterFiring,
				Inputs{KeyInserted: true, IgnitionKeyTurned: true}, Reading{RPM: 700, Running: true}, EngineRunning),
			Entry("key released while cranking", StarterFiring,
				Inputs{KeyInserted: true}, Reading{RPM: 200}, AccessoriesOn),
			Entry("stall", EngineRunning, Inputs{KeyInserted: true}, Reading{RPM: 0}, AccessoriesOn),
			Entry("key removed while running", EngineRunning, Inputs{}, Reading{RPM: 800, Running: true}, Off),
		)

		It("gives up cranking after the crank limit", func() {
			in := Inputs{KeyInserted: true, IgnitionKeyTurned: true}
			s := State{Power: StarterFiring}
			for i := 0; i < int(cfg.MaxCrankSeconds/dt)+10; i++ {
				s, _ = Step(s, cfg, in, Reading{RPM: 150}, dt)
			}
			Expect(s.Power).To(Equal(AccessoriesOn))
			Expect(s.CrankLockout).To(BeTrue())

			s, _ = Step(s, cfg, Inputs{KeyInserted: true}, Reading{}, dt)
			Expect(s.CrankLockout).To(BeFalse())
			s, _ = Step(s, cfg, in, Reading{}, dt)
			Expect(s.Power).To(Equal(StarterFiring))
		})

		It("fires the starter and ignition while cranking", func() {
			in := Inputs{KeyInserted: true, IgnitionKeyTurned: true, Headlights: true}
			s, a := Step(State{Power: AccessoriesOn}, cfg, in, Reading{}, dt)
			Expect(s.Power).To(Equal(StarterFiring))
			Expect(a.Starter).To(BeTrue())
			Expect(a.Ignition).To(BeTrue())
			Expect(a.Headlights).To(BeFalse())
			Expect(a.Throttle0to1).To(Equal(cfg.CrankThrottle0to1))
		})

		It("holds no throttle without ignition", func() {
			in := Inputs{KeyInserted: true, PedalTravelAccelerator0to1: 1}
			_, a := Step(State{Power: AccessoriesOn}, cfg, in, Reading{}, dt)
			Expect(a.Throttle0to1).To(Equal(0.0))
			Expect(a.Ignition).To(BeFalse())
		})
	})

	It("clamps out of range inputs", func() {
		in := Inputs{
			KeyInserted:                true,
			Handbrake0to1:              4,
			PedalTravelClutch0to1:      -1,
			PedalTravelAccelerator0to1: 9,
			PedalTravelBrake0to1:       1.5,
			Steer:                      -3,
		}
		_, a := Step(running, cfg, in, warm(3000), dt)
		Expect(a.Handbrake0to1).To(Equal(1.0))
		Expect(a.Clutch0to1).To(Equal(0.0))
		Expect(a.Throttle0to1).To(Equal(1.0))
		Expect(a.Brake0to1).To(Equal(1.0))
		Expect(a.Steer).To(Equal(-1.0))
	})
})

var _ = Describe("ECU", func() {
	It("walks from off to running", func() {
		e := New(DefaultConfig(), zerolog.Nop())
		key := Inputs{KeyInserted: true, IgnitionKeyTurned: true}

		e.Update(key, Reading{}, dt)
		Expect(e.State()).To(Equal(AccessoriesOn))
		e.Update(key, Reading{}, dt)
		Expect(e.State()).To(Equal(StarterFiring))
		Expect(e.Actions().Starter).To(BeTrue())
		e.Update(key, Reading{RPM: 900, Running: true}, dt)
		Expect(e.State()).To(Equal(EngineRunning))
		Expect(e.Actions().Starter).To(BeFalse())

		e.Reset()
		Expect(e.State()).To(Equal(Off))
	})
})
