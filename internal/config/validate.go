package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/drivesim/internal/curve"
	"github.com/san-kum/drivesim/internal/powertrain"
	"github.com/san-kum/drivesim/internal/wheel"
)

var (
	ErrInvalid = errors.New("config: invalid value")
	ErrUnknown = errors.New("config: unknown name")
)

// Layouts accepted in drive.layout.
var Layouts = []string{"fwd", "rwd", "awd"}

// Validate reports every problem in the definition at once. The simulation
// core assumes a validated config and does not re-check any of this.
func (c *Config) Validate() error {
	var errs []error
	bad := func(field, format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s: %s", ErrInvalid, field, fmt.Sprintf(format, args...)))
	}
	positive := func(field string, v float64) {
		if !(v > 0) || math.IsInf(v, 0) {
			bad(field, "must be positive, got %g", v)
		}
	}
	table := func(field string, pairs [][2]float64) {
		if err := curve.FromPairs(pairs).Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrInvalid, field, err))
		}
	}

	positive("dt", c.Dt)
	positive("duration", c.Duration)

	e := c.Engine
	positive("engine.bore_mm", e.BoreMM)
	positive("engine.stroke_mm", e.StrokeMM)
	if e.Cylinders <= 0 {
		bad("engine.cylinders", "must be positive, got %d", e.Cylinders)
	}
	if _, err := powertrain.ParseCycle(e.Cycle); err != nil {
		errs = append(errs, fmt.Errorf("%w: engine.cycle: %w", ErrUnknown, err))
	}
	if _, err := powertrain.ParseArrangement(e.Arrangement); err != nil {
		errs = append(errs, fmt.Errorf("%w: engine.arrangement: %w", ErrUnknown, err))
	}
	positive("engine inertia", e.CrankInertia+e.FlywheelInertia)
	positive("engine.stall_rpm", e.StallRPM)
	table("engine.torque_curve", e.TorqueCurve)
	if e.FrictionTorque < 0 || e.ViscousFriction < 0 {
		bad("engine friction", "must not be negative")
	}

	if c.ECU.RevLimiterRPM <= c.ECU.OperatingIdleRPM {
		bad("ecu.rev_limiter_rpm", "must be above the operating idle (%g)", c.ECU.OperatingIdleRPM)
	}
	if c.ECU.LargeDiffRPM < c.ECU.SmallDiffRPM {
		bad("ecu.large_diff_rpm", "must not be below small_diff_rpm")
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"ecu.small_correction", c.ECU.SmallCorrection0to1},
		{"ecu.large_correction", c.ECU.LargeCorrection0to1},
		{"ecu.crank_throttle", c.ECU.CrankThrottle0to1},
	} {
		if f.v < 0 || f.v > 1 {
			bad(f.name, "must be within [0,1], got %g", f.v)
		}
	}

	t := c.Transmission
	switch t.Type {
	case TransmissionManual, "":
		table("clutch.travel_to_engagement", c.Clutch.TravelToEngagement)
		table("clutch.engagement_to_max_torque", c.Clutch.EngagementToMaxTorque)
		if c.Clutch.MaxEngagedForce < 0 || c.Clutch.FrictionCoefficient < 0 {
			bad("clutch", "force and friction must not be negative")
		}
	case TransmissionAutomatic:
		positive("transmission.converter.stall_rpm", t.Converter.StallRPM)
		positive("transmission.converter.stall_torque", t.Converter.StallTorque)
	default:
		errs = append(errs, fmt.Errorf("%w: transmission.type %q", ErrUnknown, t.Type))
	}
	if len(t.Ratios) == 0 {
		bad("transmission.ratios", "empty")
	}
	forward := 0
	for i, r := range t.Ratios {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			bad(fmt.Sprintf("transmission.ratios[%d]", i), "not finite")
		}
		if r > 0 {
			forward++
		}
	}
	if len(t.Ratios) > 0 && forward == 0 {
		bad("transmission.ratios", "no forward gear")
	}
	positive("transmission.final_drive", t.FinalDrive)
	if t.Efficiency <= 0 || t.Efficiency > 1 {
		bad("transmission.efficiency", "must be within (0,1], got %g", t.Efficiency)
	}

	if !validLayout(c.Drive.Layout) {
		errs = append(errs, fmt.Errorf("%w: drive.layout %q", ErrUnknown, c.Drive.Layout))
	}
	if c.Drive.FrontSplit < 0 || c.Drive.FrontSplit > 1 {
		bad("drive.front_split", "must be within [0,1], got %g", c.Drive.FrontSplit)
	}

	positive("chassis.mass_kg", c.Chassis.MassKg)
	positive("chassis.width", c.Chassis.Width)
	positive("chassis.height", c.Chassis.Height)
	positive("chassis.length", c.Chassis.Length)

	validateWheel := func(field string, w wheel.Config) {
		positive(field+".radius", w.Radius)
		if w.SuspensionMin < 0 || w.SuspensionMin >= w.SuspensionMax {
			bad(field, "suspension limits need 0 <= min < max, got %g/%g", w.SuspensionMin, w.SuspensionMax)
		}
		if w.SuspensionNormal < w.SuspensionMin || w.SuspensionNormal > w.SuspensionMax {
			bad(field+".suspension_normal", "must be within [min,max], got %g", w.SuspensionNormal)
		}
		if w.Stiffness < 0 || w.Damping < 0 {
			bad(field, "stiffness and damping must not be negative")
		}
		if w.Mu < 0 || w.Mu2 < 0 {
			bad(field, "friction must not be negative")
		}
	}
	validateWheel("wheels.front", c.Wheels.Front)
	validateWheel("wheels.rear", c.Wheels.Rear)
	positive("wheels.track", c.Wheels.Track)
	positive("wheels.wheelbase", c.Wheels.Wheelbase)

	return errors.Join(errs...)
}

func validLayout(s string) bool {
	for _, l := range Layouts {
		if s == l {
			return true
		}
	}
	return false
}
