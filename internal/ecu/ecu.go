// Package ecu implements the engine control unit: the ignition power state
// machine, closed-loop idle control and the rev limiter.
//
// The transition logic is the pure function [Step]. [ECU] wraps it with the
// state a vehicle carries between ticks.
package ecu

import (
	"math"

	"github.com/rs/zerolog"
)

type PowerState int

const (
	Off PowerState = iota
	AccessoriesOn
	StarterFiring
	EngineRunning
)

func (s PowerState) String() string {
	switch s {
	case AccessoriesOn:
		return "accessories_on"
	case StarterFiring:
		return "accessories_off_starter_firing"
	case EngineRunning:
		return "accessories_on_engine_running"
	}
	return "off"
}

// Ignition reports whether the coils are powered in this state.
func (s PowerState) Ignition() bool { return s == StarterFiring || s == EngineRunning }

// Accessories reports whether accessory loads such as headlights are powered.
func (s PowerState) Accessories() bool { return s == AccessoriesOn || s == EngineRunning }

type Config struct {
	ColdIdleRPM       float64 `yaml:"cold_idle_rpm"`
	OperatingIdleRPM  float64 `yaml:"operating_idle_rpm"`
	ColdOilTempC      float64 `yaml:"cold_oil_temp_c"`
	OperatingOilTempC float64 `yaml:"operating_oil_temp_c"`

	SmallDiffRPM        float64 `yaml:"small_diff_rpm"`
	LargeDiffRPM        float64 `yaml:"large_diff_rpm"`
	SmallCorrection0to1 float64 `yaml:"small_correction"`
	LargeCorrection0to1 float64 `yaml:"large_correction"`

	// CrankThrottle0to1 is held open while the starter fires so the engine
	// can catch without the driver touching the pedal.
	CrankThrottle0to1 float64 `yaml:"crank_throttle"`

	// AcceleratorDeadband is the pedal travel treated as released.
	AcceleratorDeadband float64 `yaml:"accelerator_deadband"`
	RevLimiterRPM       float64 `yaml:"rev_limiter_rpm"`
	// MaxCrankSeconds drops back to AccessoriesOn after cranking this long
	// without a start. Zero cranks for as long as the key is held.
	MaxCrankSeconds float64 `yaml:"max_crank_seconds"`
}

func DefaultConfig() Config {
	return Config{
		ColdIdleRPM:         1100,
		OperatingIdleRPM:    800,
		ColdOilTempC:        0,
		OperatingOilTempC:   90,
		SmallDiffRPM:        25,
		LargeDiffRPM:        150,
		SmallCorrection0to1: 0.06,
		LargeCorrection0to1: 0.15,
		CrankThrottle0to1:   0.15,
		AcceleratorDeadband: 0.01,
		RevLimiterRPM:       6800,
		MaxCrankSeconds:     5,
	}
}

// Inputs are the driver controls for one tick.
type Inputs struct {
	Headlights        bool
	KeyInserted       bool
	IgnitionKeyTurned bool

	Handbrake0to1              float64
	PedalTravelClutch0to1      float64
	PedalTravelAccelerator0to1 float64
	PedalTravelBrake0to1       float64
	// Steer is -1 (full right) to 1 (full left).
	Steer float64
}

// Clamped returns a copy with every analogue value inside its range. Out of
// range values are clamped, never rejected.
func (in Inputs) Clamped() Inputs {
	in.Handbrake0to1 = clamp(in.Handbrake0to1, 0, 1)
	in.PedalTravelClutch0to1 = clamp(in.PedalTravelClutch0to1, 0, 1)
	in.PedalTravelAccelerator0to1 = clamp(in.PedalTravelAccelerator0to1, 0, 1)
	in.PedalTravelBrake0to1 = clamp(in.PedalTravelBrake0to1, 0, 1)
	in.Steer = clamp(in.Steer, -1, 1)
	return in
}

// Reading is what the ECU senses from the engine at the start of a tick.
type Reading struct {
	RPM             float64
	OilTemperatureC float64
	Running         bool
}

// Actions are the authoritative per-tick outputs consumed by the engine,
// clutch and wheels.
type Actions struct {
	Headlights    bool
	Handbrake0to1 float64
	Clutch0to1    float64
	Throttle0to1  float64
	Brake0to1     float64
	Steer         float64

	Ignition bool
	Starter  bool
}

type State struct {
	Power PowerState
	// Elapsed is the time spent in Power.
	Elapsed float64
	// CrankLockout is set when cranking timed out and holds until the key
	// is released.
	CrankLockout bool
}

// DesiredIdleRPM interpolates between the cold and operating idle targets by
// oil temperature.
func DesiredIdleRPM(cfg Config, oilC float64) float64 {
	span := cfg.OperatingOilTempC - cfg.ColdOilTempC
	if span <= 0 {
		return cfg.OperatingIdleRPM
	}
	t := clamp((oilC-cfg.ColdOilTempC)/span, 0, 1)
	return cfg.ColdIdleRPM + (cfg.OperatingIdleRPM-cfg.ColdIdleRPM)*t
}

// IdleCorrection returns the signed throttle correction for the difference
// between the desired and current RPM.
func IdleCorrection(cfg Config, desiredRPM, rpm float64) float64 {
	delta := desiredRPM - rpm
	mag := math.Abs(delta)
	var c float64
	switch {
	case mag >= cfg.LargeDiffRPM:
		c = cfg.LargeCorrection0to1
	case mag >= cfg.SmallDiffRPM:
		c = cfg.SmallCorrection0to1
	default:
		return 0
	}
	if delta < 0 {
		return -c
	}
	return c
}

// Transition returns the power state after one tick. At most one transition
// happens per call.
func Transition(s State, cfg Config, in Inputs, r Reading) PowerState {
	if !in.KeyInserted {
		return Off
	}
	switch s.Power {
	case Off:
		return AccessoriesOn
	case AccessoriesOn:
		if in.IgnitionKeyTurned && !r.Running && !s.CrankLockout {
			return StarterFiring
		}
	case StarterFiring:
		switch {
		case r.Running:
			return EngineRunning
		case !in.IgnitionKeyTurned:
			return AccessoriesOn
		case cfg.MaxCrankSeconds > 0 && s.Elapsed >= cfg.MaxCrankSeconds:
			return AccessoriesOn
		}
	case EngineRunning:
		if !r.Running {
			return AccessoriesOn
		}
	}
	return s.Power
}

// Step is the ECU update for one tick. It does not mutate anything.
func Step(s State, cfg Config, in Inputs, r Reading, dt float64) (State, Actions) {
	in = in.Clamped()

	next := State{
		Power:        Transition(s, cfg, in, r),
		CrankLockout: s.CrankLockout && in.IgnitionKeyTurned,
	}
	if next.Power == s.Power {
		next.Elapsed = s.Elapsed + dt
	}
	if s.Power == StarterFiring && next.Power == AccessoriesOn && in.IgnitionKeyTurned {
		next.CrankLockout = true
	}

	a := Actions{
		Headlights:    in.Headlights && next.Power.Accessories(),
		Handbrake0to1: in.Handbrake0to1,
		Clutch0to1:    in.PedalTravelClutch0to1,
		Brake0to1:     in.PedalTravelBrake0to1,
		Steer:         in.Steer,
		Ignition:      next.Power.Ignition(),
		Starter:       next.Power == StarterFiring,
	}

	if a.Ignition {
		a.Throttle0to1 = in.PedalTravelAccelerator0to1
	}
	released := in.PedalTravelAccelerator0to1 <= cfg.AcceleratorDeadband
	switch {
	case next.Power == StarterFiring && released:
		a.Throttle0to1 = clamp(cfg.CrankThrottle0to1, 0, 1)
	case next.Power == EngineRunning && released:
		// pedal travel inside the deadband does not add to the idle throttle
		desired := DesiredIdleRPM(cfg, r.OilTemperatureC)
		a.Throttle0to1 = clamp(IdleCorrection(cfg, desired, r.RPM), 0, 1)
	}
	if cfg.RevLimiterRPM > 0 && r.RPM >= cfg.RevLimiterRPM {
		a.Throttle0to1 = 0
	}
	return next, a
}

// ECU carries the power state between ticks.
type ECU struct {
	Config Config
	Logger zerolog.Logger

	state   State
	actions Actions
}

func New(cfg Config, logger zerolog.Logger) *ECU {
	return &ECU{Config: cfg, Logger: logger}
}

func (e *ECU) Update(in Inputs, r Reading, dt float64) Actions {
	prev := e.state.Power
	e.state, e.actions = Step(e.state, e.Config, in, r, dt)
	if e.state.Power != prev {
		e.Logger.Info().
			Stringer("from", prev).
			Stringer("to", e.state.Power).
			Float64("rpm", r.RPM).
			Msg("ecu power state changed")
	}
	return e.actions
}

func (e *ECU) State() PowerState { return e.state.Power }

func (e *ECU) Actions() Actions { return e.actions }

func (e *ECU) Reset() {
	e.state = State{}
	e.actions = Actions{}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
