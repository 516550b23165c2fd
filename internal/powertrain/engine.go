package powertrain

import (
	"fmt"
	"math"

	"github.com/san-kum/drivesim/internal/curve"
	"github.com/san-kum/drivesim/internal/dynamo"
	"github.com/san-kum/drivesim/internal/integrators"
)

type Cycle int

const (
	FourStroke Cycle = iota
	TwoStroke
)

func (c Cycle) String() string {
	if c == TwoStroke {
		return "two_stroke"
	}
	return "four_stroke"
}

func ParseCycle(s string) (Cycle, error) {
	switch s {
	case "four_stroke", "4", "":
		return FourStroke, nil
	case "two_stroke", "2":
		return TwoStroke, nil
	}
	return FourStroke, fmt.Errorf("%q: %w", s, ErrUnknownCycle)
}

type Arrangement int

const (
	Inline Arrangement = iota
	VShape
	Boxer
)

func (a Arrangement) String() string {
	switch a {
	case VShape:
		return "v"
	case Boxer:
		return "boxer"
	}
	return "inline"
}

func ParseArrangement(s string) (Arrangement, error) {
	switch s {
	case "inline", "":
		return Inline, nil
	case "v":
		return VShape, nil
	case "boxer", "flat":
		return Boxer, nil
	}
	return Inline, fmt.Errorf("%q: %w", s, ErrUnknownArrangement)
}

// Displacement returns the swept volume in litres for bore and stroke in mm.
func Displacement(boreMM, strokeMM float64, cylinders int) float64 {
	return math.Pi / 4 * boreMM * boreMM * strokeMM * float64(cylinders) / 1e6
}

func RevsPerPowerStroke(c Cycle) float64 {
	if c == TwoStroke {
		return 1
	}
	return 2
}

// FiringStrokesPerSec is per cylinder.
func FiringStrokesPerSec(rpm float64, c Cycle) float64 {
	return rpm / (60 * RevsPerPowerStroke(c))
}

// MeanPistonSpeed returns m/s for a stroke in mm.
func MeanPistonSpeed(strokeMM, rpm float64) float64 {
	return 2 * strokeMM / 1000 * rpm / 60
}

// BMEP returns brake mean effective pressure in Pa. Zero displacement gives 0.
func BMEP(torqueNm, displacementL float64, c Cycle) float64 {
	m3 := displacementL / 1000
	if m3 <= 0 {
		return 0
	}
	return 2 * math.Pi * RevsPerPowerStroke(c) * torqueNm / m3
}

func EstimatedPowerKW(cylinders int, boreMM, strokeMM, bmepPa, rpm float64, c Cycle) float64 {
	bore, stroke := boreMM/1000, strokeMM/1000
	return float64(cylinders) * math.Pi / 4 * bore * bore * stroke * bmepPa * FiringStrokesPerSec(rpm, c) * 0.001
}

func RPMFromAngularVelocity(w float64) float64 { return w * 60 / (2 * math.Pi) }

func AngularVelocityFromRPM(rpm float64) float64 { return rpm * 2 * math.Pi / 60 }

// Engine is the crankshaft model. Static fields come from configuration;
// Angle, AngularVelocity, Ignition and OilTemperatureC are the dynamic state.
type Engine struct {
	BoreMM      float64
	StrokeMM    float64
	Cylinders   int
	Arrangement Arrangement
	Cycle       Cycle

	MassKg          float64
	CrankInertia    float64 // kg m^2, crank and rotating assembly
	FlywheelInertia float64

	StallRPM float64
	CrankRPM float64

	// TorqueCurve maps RPM to full-throttle torque in Nm.
	TorqueCurve curve.Curve
	// FrictionTorque is the constant part of internal friction, Nm.
	FrictionTorque float64
	// ViscousFriction adds Nm per rad/s of crank speed.
	ViscousFriction float64

	OperatingOilTempC float64
	OilWarmRate       float64 // fraction of the gap closed per second

	Integrator dynamo.Integrator

	Angle           float64
	AngularVelocity float64
	Ignition        bool
	OilTemperatureC float64
}

func (e *Engine) Displacement() float64 {
	return Displacement(e.BoreMM, e.StrokeMM, e.Cylinders)
}

func (e *Engine) Inertia() float64 { return e.CrankInertia + e.FlywheelInertia }

func (e *Engine) RPM() float64 { return RPMFromAngularVelocity(e.AngularVelocity) }

func (e *Engine) SetRPM(rpm float64) { e.AngularVelocity = AngularVelocityFromRPM(math.Max(0, rpm)) }

func (e *Engine) IsRunning() bool { return e.Ignition && e.RPM() > e.StallRPM }

func (e *Engine) FiringStrokesPerSec() float64 { return FiringStrokesPerSec(e.RPM(), e.Cycle) }

func (e *Engine) MeanPistonSpeed() float64 { return MeanPistonSpeed(e.StrokeMM, e.RPM()) }

func (e *Engine) BMEP(torqueNm float64) float64 {
	return BMEP(torqueNm, e.Displacement(), e.Cycle)
}

func (e *Engine) EstimatedPowerKW(torqueNm float64) float64 {
	return EstimatedPowerKW(e.Cylinders, e.BoreMM, e.StrokeMM, e.BMEP(torqueNm), e.RPM(), e.Cycle)
}

// CombustionTorque is the torque the cylinders produce this tick. There is
// no combustion without ignition or below half the cranking speed.
func (e *Engine) CombustionTorque(throttle0to1, densityRatio float64) float64 {
	if !e.Ignition || e.RPM() < e.CrankRPM/2 {
		return 0
	}
	throttle := clamp01(throttle0to1)
	return e.TorqueCurve.Lookup(e.RPM()) * throttle * math.Max(0, densityRatio)
}

// Friction opposes rotation; a stopped crank has none.
func (e *Engine) Friction() float64 {
	if e.AngularVelocity <= 0 {
		return 0
	}
	return e.FrictionTorque + e.ViscousFriction*e.AngularVelocity
}

func (e *Engine) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	alpha := 0.0
	if inertia := e.Inertia(); inertia > 0 && len(u) > 0 {
		alpha = u[0] / inertia
	}
	return dynamo.State{x[1], alpha}
}

func (e *Engine) StateDim() int   { return 2 }
func (e *Engine) ControlDim() int { return 1 }

// Integrate advances the crank by one step under the net torque. Angular
// velocity never goes negative; the angle wraps once per engine cycle.
func (e *Engine) Integrate(netTorque, dt float64) {
	if e.Integrator == nil {
		e.Integrator = integrators.NewEuler()
	}
	x := dynamo.State{e.Angle, e.AngularVelocity}
	x = e.Integrator.Step(e, x, dynamo.Control{netTorque}, 0, dt)
	if !x.IsValid() {
		return
	}
	e.AngularVelocity = math.Max(0, x[1])
	cycle := 2 * math.Pi * RevsPerPowerStroke(e.Cycle)
	e.Angle = math.Mod(x[0], cycle)
	if e.Angle < 0 {
		e.Angle += cycle
	}
}

// WarmUp moves oil temperature toward operating temperature while running
// and toward ambient otherwise.
func (e *Engine) WarmUp(ambientC, dt float64) {
	target := ambientC
	if e.IsRunning() {
		target = e.OperatingOilTempC
	}
	k := math.Min(1, e.OilWarmRate*dt)
	e.OilTemperatureC += (target - e.OilTemperatureC) * k
}

var _ dynamo.Configurable = (*Engine)(nil)

func (e *Engine) GetParams() map[string]float64 {
	return map[string]float64{
		"friction":         e.FrictionTorque,
		"viscous_friction": e.ViscousFriction,
		"flywheel_inertia": e.FlywheelInertia,
		"stall_rpm":        e.StallRPM,
	}
}

func (e *Engine) SetParam(name string, value float64) error {
	switch name {
	case "friction":
		e.FrictionTorque = value
	case "viscous_friction":
		e.ViscousFriction = value
	case "flywheel_inertia":
		e.FlywheelInertia = value
	case "stall_rpm":
		e.StallRPM = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
