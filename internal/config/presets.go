package config

import (
	"sort"

	"github.com/san-kum/drivesim/internal/ecu"
	"github.com/san-kum/drivesim/internal/wheel"
)

// Presets builds a fresh copy of each bundled vehicle on every call, so
// callers may mutate what they get.
var Presets = map[string]func() *Config{
	"hatchback":  Hatchback,
	"pickup_4wd": Pickup4WD,
	"sedan_auto": SedanAuto,
	"kart_2t":    Kart2T,
}

func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func roadWheel(radius, stiffness, damping float64) wheel.Config {
	return wheel.Config{
		Radius:                 radius,
		Mass:                   15,
		SuspensionMin:          0.2,
		SuspensionNormal:       0.4,
		SuspensionMax:          0.55,
		Stiffness:              stiffness,
		Damping:                damping,
		BumpStop:               4,
		Mu:                     1.0,
		Mu2:                    1.0,
		SlipCoefficient:        0.01,
		MaxSteerAngle:          0.6,
		SteerTorqueCoefficient: 30,
		RollingResistance:      0.015,
		AngularDamping:         50,
	}
}

func Hatchback() *Config {
	return &Config{
		Name:       "hatchback",
		Integrator: "rk4",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Engine: EngineConfig{
			BoreMM: 80, StrokeMM: 70, Cylinders: 4,
			Arrangement: "inline", Cycle: "four_stroke",
			MassKg: 110, CrankInertia: 0.08, FlywheelInertia: 0.12,
			StallRPM: 400, CrankRPM: 250,
			TorqueCurve: [][2]float64{
				{500, 70}, {1000, 95}, {2000, 115}, {3500, 130},
				{4500, 128}, {6000, 110}, {7000, 85},
			},
			FrictionTorque: 6, ViscousFriction: 0.01,
			OperatingOilTempC: 90, OilWarmRate: 0.05,
		},
		Starter: StarterConfig{StallTorque: 12, NoLoadRPM: 3000, PinionRatio: 12},
		ECU:     ecu.DefaultConfig(),
		Clutch: ClutchConfig{
			TravelToEngagement:    [][2]float64{{0, 1}, {0.25, 1}, {0.75, 0}, {1, 0}},
			EngagementToMaxTorque: [][2]float64{{0, 0}, {0.3, 40}, {1, 260}},
			FrictionCoefficient:   0.3,
			MaxEngagedForce:       4500,
			MeanRadius:            0.1,
			Surfaces:              2,
			LockedToleranceRPM:    1,
			MicroSlipRPM:          10,
			HeatCapacity:          800,
			CoolingRate:           0.02,
		},
		Transmission: TransmissionConfig{
			Type:         TransmissionManual,
			Ratios:       []float64{-3.3, 0, 3.5, 2.1, 1.4, 1.05, 0.85},
			FinalDrive:   4.1,
			Efficiency:   0.95,
			ShaftInertia: 0.05,
		},
		Drive: DriveConfig{Layout: "fwd", FrontSplit: 1},
		Chassis: ChassisConfig{
			MassKg: 1100, Width: 1.75, Height: 1.2, Length: 4.0,
			FrontalArea: 2.1, DragCoefficient: 0.32, SpawnHeight: 0.45,
		},
		Wheels: WheelsConfig{
			Front:     roadWheel(0.3, 18000, 1800),
			Rear:      roadWheel(0.3, 16000, 1600),
			Track:     1.5,
			Wheelbase: 2.5,
		},
		Environment: EnvironmentConfig{TemperatureC: 15, PressurePa: 101325},
		Driver:      DriverConfig{Kind: "cruise", TargetSpeed: 20, Kp: 0.15, Ki: 0.02, Kd: 0.01},
	}
}

func Pickup4WD() *Config {
	c := Hatchback()
	c.Name = "pickup_4wd"
	c.Engine = EngineConfig{
		BoreMM: 96, StrokeMM: 86, Cylinders: 6,
		Arrangement: "v", Cycle: "four_stroke",
		MassKg: 190, CrankInertia: 0.15, FlywheelInertia: 0.25,
		StallRPM: 350, CrankRPM: 220,
		TorqueCurve: [][2]float64{
			{500, 180}, {1000, 260}, {2000, 320}, {3000, 340},
			{4500, 310}, {5500, 270}, {6000, 230},
		},
		FrictionTorque: 14, ViscousFriction: 0.025,
		OperatingOilTempC: 95, OilWarmRate: 0.04,
	}
	c.ECU.RevLimiterRPM = 5800
	c.ECU.OperatingIdleRPM = 700
	c.ECU.ColdIdleRPM = 1000
	c.Starter = StarterConfig{StallTorque: 18, NoLoadRPM: 2800, PinionRatio: 13}
	c.Clutch.MaxEngagedForce = 8000
	c.Clutch.EngagementToMaxTorque = [][2]float64{{0, 0}, {0.3, 90}, {1, 480}}
	c.Transmission.Ratios = []float64{-4.0, 0, 4.2, 2.5, 1.6, 1.15, 0.9}
	c.Transmission.FinalDrive = 3.7
	c.Transmission.ShaftInertia = 0.09
	c.Drive = DriveConfig{Layout: "awd", FrontSplit: 0.4}
	c.Chassis = ChassisConfig{
		MassKg: 2100, Width: 1.95, Height: 1.8, Length: 5.3,
		FrontalArea: 3.2, DragCoefficient: 0.45, SpawnHeight: 0.55,
	}
	c.Wheels.Front = roadWheel(0.38, 34000, 3400)
	c.Wheels.Rear = roadWheel(0.38, 36000, 3600)
	c.Wheels.Front.SuspensionMax = 0.7
	c.Wheels.Rear.SuspensionMax = 0.7
	c.Wheels.Track = 1.7
	c.Wheels.Wheelbase = 3.2
	c.Driver.TargetSpeed = 15
	return c
}

func SedanAuto() *Config {
	c := Hatchback()
	c.Name = "sedan_auto"
	c.Engine.BoreMM = 86
	c.Engine.StrokeMM = 86
	c.Engine.TorqueCurve = [][2]float64{
		{500, 110}, {1000, 150}, {2000, 185}, {3500, 200},
		{4500, 195}, {6000, 165}, {6500, 140},
	}
	c.Engine.FrictionTorque = 9
	c.ECU.RevLimiterRPM = 6300
	c.ECU.SmallCorrection0to1 = 0.12
	c.ECU.LargeCorrection0to1 = 0.3
	c.Transmission = TransmissionConfig{
		Type:         TransmissionAutomatic,
		Ratios:       []float64{-3.0, 0, 2.8, 1.6, 1.0},
		FinalDrive:   3.6,
		Efficiency:   0.92,
		ShaftInertia: 0.06,
		Converter: ConverterConfig{
			StallRPM:           2400,
			StallTorque:        120,
			StallTorqueRatio:   2.0,
			CouplingSpeedRatio: 0.85,
		},
	}
	c.Drive = DriveConfig{Layout: "rwd"}
	c.Chassis.MassKg = 1450
	c.Chassis.Length = 4.8
	c.Chassis.FrontalArea = 2.2
	c.Chassis.DragCoefficient = 0.28
	c.Wheels.Front = roadWheel(0.32, 22000, 2200)
	c.Wheels.Rear = roadWheel(0.32, 22000, 2200)
	c.Wheels.Wheelbase = 2.8
	c.Driver.TargetSpeed = 25
	return c
}

func Kart2T() *Config {
	c := Hatchback()
	c.Name = "kart_2t"
	c.Engine = EngineConfig{
		BoreMM: 54, StrokeMM: 54.5, Cylinders: 1,
		Arrangement: "inline", Cycle: "two_stroke",
		MassKg: 12, CrankInertia: 0.004, FlywheelInertia: 0.006,
		StallRPM: 1200, CrankRPM: 600,
		TorqueCurve: [][2]float64{
			{1000, 4}, {4000, 7}, {8000, 10}, {11000, 11.5}, {13500, 9}, {15000, 6},
		},
		FrictionTorque: 0.6, ViscousFriction: 0.0004,
		OperatingOilTempC: 110, OilWarmRate: 0.2,
	}
	c.ECU.ColdIdleRPM = 2600
	c.ECU.OperatingIdleRPM = 2200
	c.ECU.SmallDiffRPM = 80
	c.ECU.LargeDiffRPM = 400
	c.ECU.SmallCorrection0to1 = 0.1
	c.ECU.LargeCorrection0to1 = 0.25
	c.ECU.RevLimiterRPM = 15000
	c.ECU.OperatingOilTempC = 110
	c.Starter = StarterConfig{StallTorque: 1.2, NoLoadRPM: 9000, PinionRatio: 6}
	c.Clutch = ClutchConfig{
		TravelToEngagement:    [][2]float64{{0, 1}, {0.2, 1}, {0.8, 0}, {1, 0}},
		EngagementToMaxTorque: [][2]float64{{0, 0}, {1, 30}},
		FrictionCoefficient:   0.35,
		MaxEngagedForce:       600,
		MeanRadius:            0.05,
		Surfaces:              3,
		HeatCapacity:          120,
		CoolingRate:           0.05,
	}
	c.Transmission = TransmissionConfig{
		Type:         TransmissionManual,
		Ratios:       []float64{0, 1},
		FinalDrive:   7.0,
		Efficiency:   0.97,
		ShaftInertia: 0.01,
	}
	c.Drive = DriveConfig{Layout: "rwd"}
	c.Chassis = ChassisConfig{
		MassKg: 165, Width: 1.3, Height: 0.5, Length: 1.8,
		FrontalArea: 0.6, DragCoefficient: 0.8, SpawnHeight: 0.2,
	}
	kart := func(radius float64) wheel.Config {
		w := roadWheel(radius, 12000, 500)
		w.Mass = 2
		w.SuspensionMin = 0.1
		w.SuspensionNormal = 0.15
		w.SuspensionMax = 0.2
		w.Mu = 1.2
		w.Mu2 = 1.2
		return w
	}
	c.Wheels = WheelsConfig{Front: kart(0.13), Rear: kart(0.14), Track: 1.1, Wheelbase: 1.05}
	c.Driver.TargetSpeed = 12
	return c
}
