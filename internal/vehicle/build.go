package vehicle

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/san-kum/drivesim/internal/config"
	"github.com/san-kum/drivesim/internal/curve"
	"github.com/san-kum/drivesim/internal/ecu"
	"github.com/san-kum/drivesim/internal/integrators"
	"github.com/san-kum/drivesim/internal/physics"
	"github.com/san-kum/drivesim/internal/powertrain"
	"github.com/san-kum/drivesim/internal/wheel"
)

// New validates cfg and builds a vehicle parked at its spawn point with the
// engine off.
func New(cfg *config.Config, logger zerolog.Logger) (*Vehicle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cycle, err := powertrain.ParseCycle(cfg.Engine.Cycle)
	if err != nil {
		return nil, err
	}
	arrangement, err := powertrain.ParseArrangement(cfg.Engine.Arrangement)
	if err != nil {
		return nil, err
	}
	layout, err := ParseLayout(cfg.Drive.Layout)
	if err != nil {
		return nil, err
	}
	stepper, ok := integrators.ByName(cfg.Integrator)
	if !ok {
		return nil, fmt.Errorf("%w: integrator %q", config.ErrUnknown, cfg.Integrator)
	}

	pressure := cfg.Environment.PressurePa
	if pressure <= 0 {
		pressure = physics.StandardPressurePa
	}
	env := physics.NewEnvironment(cfg.Environment.TemperatureC, pressure)

	ec := cfg.Engine
	engine := &powertrain.Engine{
		BoreMM:            ec.BoreMM,
		StrokeMM:          ec.StrokeMM,
		Cylinders:         ec.Cylinders,
		Arrangement:       arrangement,
		Cycle:             cycle,
		MassKg:            ec.MassKg,
		CrankInertia:      ec.CrankInertia,
		FlywheelInertia:   ec.FlywheelInertia,
		StallRPM:          ec.StallRPM,
		CrankRPM:          ec.CrankRPM,
		TorqueCurve:       curve.FromPairs(ec.TorqueCurve),
		FrictionTorque:    ec.FrictionTorque,
		ViscousFriction:   ec.ViscousFriction,
		OperatingOilTempC: ec.OperatingOilTempC,
		OilWarmRate:       ec.OilWarmRate,
		Integrator:        stepper,
	}

	tc := cfg.Transmission
	v := &Vehicle{
		Name:   cfg.Name,
		Engine: engine,
		Starter: &powertrain.Starter{
			StallTorque: cfg.Starter.StallTorque,
			NoLoadRPM:   cfg.Starter.NoLoadRPM,
			PinionRatio: cfg.Starter.PinionRatio,
		},
		ECU:     ecu.New(cfg.ECU, logger),
		GearBox: powertrain.NewGearBox(tc.Ratios, tc.FinalDrive, tc.Efficiency),
		Body: physics.Body{
			FrontalArea:     cfg.Chassis.FrontalArea,
			DragCoefficient: cfg.Chassis.DragCoefficient,
		},
		Chassis: physics.NewChassis(cfg.Chassis.MassKg,
			mgl64.Vec3{cfg.Chassis.Width, cfg.Chassis.Height, cfg.Chassis.Length}),
		Layout:     layout,
		FrontSplit: cfg.Drive.FrontSplit,
		Env:        env,
		Spawn:      mgl64.Vec3{0, cfg.Chassis.SpawnHeight, 0},
		Logger:     logger,
	}

	if tc.Type == config.TransmissionAutomatic {
		v.Converter = &powertrain.TorqueConverter{
			StallRPM:           tc.Converter.StallRPM,
			StallTorque:        tc.Converter.StallTorque,
			StallTorqueRatio:   tc.Converter.StallTorqueRatio,
			CouplingSpeedRatio: tc.Converter.CouplingSpeedRatio,
		}
	} else {
		cc := cfg.Clutch
		v.Clutch = &powertrain.Clutch{
			TravelToEngagement:    curve.FromPairs(cc.TravelToEngagement),
			EngagementToMaxTorque: curve.FromPairs(cc.EngagementToMaxTorque),
			FrictionCoefficient:   cc.FrictionCoefficient,
			MaxEngagedForce:       cc.MaxEngagedForce,
			MeanRadius:            cc.MeanRadius,
			Surfaces:              cc.Surfaces,
			LockedToleranceRPM:    cc.LockedToleranceRPM,
			MicroSlipRPM:          cc.MicroSlipRPM,
			HeatCapacity:          cc.HeatCapacity,
			CoolingRate:           cc.CoolingRate,
		}
	}

	v.Wheels = buildWheels(cfg.Wheels, layout, cfg.Drive.FrontSplit)

	shaft := tc.ShaftInertia
	if fd := tc.FinalDrive; fd != 0 {
		for _, w := range v.Wheels {
			if w.Driven {
				shaft += 0.5 * w.Mass * w.Radius * w.Radius / (fd * fd)
			}
		}
	}
	v.DriveShaft = &powertrain.DriveShaft{Inertia: shaft}

	v.Reset()
	return v, nil
}

// buildWheels places four wheels around the centre of mass. +X is left and
// +Z is forward.
func buildWheels(wc config.WheelsConfig, layout Layout, frontSplit float64) []*wheel.Wheel {
	front, rear := layout.AxleShares(frontSplit)
	x, z, y := wc.Track/2, wc.Wheelbase/2, wc.AttachHeight
	specs := []struct {
		name  string
		cfg   wheel.Config
		pos   mgl64.Vec3
		front bool
	}{
		{"fl", wc.Front, mgl64.Vec3{x, y, z}, true},
		{"fr", wc.Front, mgl64.Vec3{-x, y, z}, true},
		{"rl", wc.Rear, mgl64.Vec3{x, y, -z}, false},
		{"rr", wc.Rear, mgl64.Vec3{-x, y, -z}, false},
	}
	wheels := make([]*wheel.Wheel, len(specs))
	for i, s := range specs {
		w := wheel.New(s.name, s.cfg, s.pos)
		w.Front = s.front
		w.Steered = s.front
		w.Handbrake = !s.front
		if s.front {
			w.Driven = front > 0
		} else {
			w.Driven = rear > 0
		}
		wheels[i] = w
	}
	return wheels
}
