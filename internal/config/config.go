package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/drivesim/internal/ecu"
	"github.com/san-kum/drivesim/internal/wheel"
)

const (
	DefaultDt       = 1.0 / 120
	DefaultDuration = 20.0
	DefaultPreset   = "hatchback"
)

// Config is a complete vehicle definition plus the run parameters used to
// simulate it.
type Config struct {
	Name       string  `yaml:"name"`
	Integrator string  `yaml:"integrator"`
	Dt         float64 `yaml:"dt"`
	Duration   float64 `yaml:"duration"`

	Engine       EngineConfig       `yaml:"engine"`
	Starter      StarterConfig      `yaml:"starter"`
	ECU          ecu.Config         `yaml:"ecu"`
	Clutch       ClutchConfig       `yaml:"clutch"`
	Transmission TransmissionConfig `yaml:"transmission"`
	Drive        DriveConfig        `yaml:"drive"`
	Chassis      ChassisConfig      `yaml:"chassis"`
	Wheels       WheelsConfig       `yaml:"wheels"`
	Environment  EnvironmentConfig  `yaml:"environment"`
	Driver       DriverConfig       `yaml:"driver"`
}

type EngineConfig struct {
	BoreMM      float64 `yaml:"bore_mm"`
	StrokeMM    float64 `yaml:"stroke_mm"`
	Cylinders   int     `yaml:"cylinders"`
	Arrangement string  `yaml:"arrangement"`
	Cycle       string  `yaml:"cycle"`

	MassKg          float64 `yaml:"mass_kg"`
	CrankInertia    float64 `yaml:"crank_inertia"`
	FlywheelInertia float64 `yaml:"flywheel_inertia"`
	StallRPM        float64 `yaml:"stall_rpm"`
	CrankRPM        float64 `yaml:"crank_rpm"`

	// TorqueCurve is a list of [rpm, Nm] pairs at full throttle.
	TorqueCurve     [][2]float64 `yaml:"torque_curve"`
	FrictionTorque  float64      `yaml:"friction_torque"`
	ViscousFriction float64      `yaml:"viscous_friction"`

	OperatingOilTempC float64 `yaml:"operating_oil_temp_c"`
	OilWarmRate       float64 `yaml:"oil_warm_rate"`
}

type StarterConfig struct {
	StallTorque float64 `yaml:"stall_torque"`
	NoLoadRPM   float64 `yaml:"no_load_rpm"`
	PinionRatio float64 `yaml:"pinion_ratio"`
}

type ClutchConfig struct {
	// TravelToEngagement is a list of [pedal travel, engagement] pairs.
	TravelToEngagement [][2]float64 `yaml:"travel_to_engagement"`
	// EngagementToMaxTorque is a list of [engagement, Nm] pairs.
	EngagementToMaxTorque [][2]float64 `yaml:"engagement_to_max_torque"`

	FrictionCoefficient float64 `yaml:"friction_coefficient"`
	MaxEngagedForce     float64 `yaml:"max_engaged_force"`
	MeanRadius          float64 `yaml:"mean_radius"`
	Surfaces            int     `yaml:"surfaces"`
	LockedToleranceRPM  float64 `yaml:"locked_tolerance_rpm"`
	MicroSlipRPM        float64 `yaml:"micro_slip_rpm"`
	HeatCapacity        float64 `yaml:"heat_capacity"`
	CoolingRate         float64 `yaml:"cooling_rate"`
}

const (
	TransmissionManual    = "manual"
	TransmissionAutomatic = "automatic"
)

type TransmissionConfig struct {
	Type         string          `yaml:"type"`
	Ratios       []float64       `yaml:"ratios"`
	FinalDrive   float64         `yaml:"final_drive"`
	Efficiency   float64         `yaml:"efficiency"`
	ShaftInertia float64         `yaml:"shaft_inertia"`
	Converter    ConverterConfig `yaml:"converter"`
}

type ConverterConfig struct {
	StallRPM           float64 `yaml:"stall_rpm"`
	StallTorque        float64 `yaml:"stall_torque"`
	StallTorqueRatio   float64 `yaml:"stall_torque_ratio"`
	CouplingSpeedRatio float64 `yaml:"coupling_speed_ratio"`
}

type DriveConfig struct {
	Layout string `yaml:"layout"`
	// FrontSplit is the share of drive torque sent to the front axle on
	// four-wheel drive layouts.
	FrontSplit float64 `yaml:"front_split"`
}

type ChassisConfig struct {
	MassKg          float64 `yaml:"mass_kg"`
	Width           float64 `yaml:"width"`
	Height          float64 `yaml:"height"`
	Length          float64 `yaml:"length"`
	FrontalArea     float64 `yaml:"frontal_area"`
	DragCoefficient float64 `yaml:"drag_coefficient"`
	SpawnHeight     float64 `yaml:"spawn_height"`
}

type WheelsConfig struct {
	Front wheel.Config `yaml:"front"`
	Rear  wheel.Config `yaml:"rear"`
	// Track and Wheelbase place the four suspension tops around the centre
	// of mass; AttachHeight is their offset along the chassis up axis.
	Track        float64 `yaml:"track"`
	Wheelbase    float64 `yaml:"wheelbase"`
	AttachHeight float64 `yaml:"attach_height"`
}

type EnvironmentConfig struct {
	TemperatureC float64 `yaml:"temperature_c"`
	PressurePa   float64 `yaml:"pressure_pa"`
}

type DriverConfig struct {
	Kind        string  `yaml:"kind"`
	TargetSpeed float64 `yaml:"target_speed"` // m/s
	Kp          float64 `yaml:"kp"`
	Ki          float64 `yaml:"ki"`
	Kd          float64 `yaml:"kd"`
	Scenario    string  `yaml:"scenario"`
}

// DefaultConfig returns the hatchback preset.
func DefaultConfig() *Config {
	return Hatchback()
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
