// Package vehicle assembles the powertrain, ECU, wheels and body into one
// vehicle and runs them in a fixed order every tick.
package vehicle

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/san-kum/drivesim/internal/ecu"
	"github.com/san-kum/drivesim/internal/physics"
	"github.com/san-kum/drivesim/internal/powertrain"
	"github.com/san-kum/drivesim/internal/wheel"
)

// Inputs are the driver controls. Analogue values are clamped by the ECU.
type Inputs = ecu.Inputs

// Vehicle owns every component exclusively. The collision space passed to
// Tick is only read.
type Vehicle struct {
	Name string

	Engine     *powertrain.Engine
	Starter    *powertrain.Starter
	ECU        *ecu.ECU
	Clutch     *powertrain.Clutch          // nil with an automatic gearbox
	Converter  *powertrain.TorqueConverter // nil with a manual gearbox
	GearBox    *powertrain.GearBox
	DriveShaft *powertrain.DriveShaft
	Body       physics.Body
	Chassis    *physics.Chassis
	Wheels     []*wheel.Wheel

	Layout     Layout
	FrontSplit float64
	Env        physics.Environment
	Spawn      mgl64.Vec3
	Logger     zerolog.Logger

	time         float64
	actions      ecu.Actions
	combustion   float64
	clutchTorque float64
	drag         mgl64.Vec3
	stalls       int
	wasRunning   bool
	spinning     bool
	results      []wheel.Result
}

// Tick advances the vehicle by dt:
//
//  1. ECU update
//  2. clutch or torque converter transfer
//  3. crankshaft integration
//  4. gearbox and driveshaft propagation
//  5. wheels
//  6. aerodynamic drag
//
// Forces are accumulated on the chassis; integrating them is the physics
// world's job.
func (v *Vehicle) Tick(in Inputs, space physics.Raycaster, dt float64) {
	if dt <= 0 {
		return
	}
	e := v.Engine

	reading := ecu.Reading{RPM: e.RPM(), OilTemperatureC: e.OilTemperatureC, Running: e.IsRunning()}
	v.actions = v.ECU.Update(in, reading, dt)
	e.Ignition = v.actions.Ignition
	v.Starter.Engaged = v.actions.Starter

	v.combustion = e.CombustionTorque(v.actions.Throttle0to1, v.Env.DensityRatio())
	engineNet := v.combustion + v.Starter.Torque(e.RPM()) - e.Friction()
	reaction, output := v.couple(engineNet, dt)
	v.clutchTorque = reaction

	e.Integrate(engineNet-reaction, dt)
	e.WarmUp(v.Env.TemperatureC, dt)
	v.detectStall()

	shaftTorque := v.GearBox.OutputTorque(output)
	requests := v.driveForces(shaftTorque)

	share := v.Chassis.Mass() / float64(len(v.Wheels))
	for i, w := range v.Wheels {
		v.results[i] = w.Update(v.Chassis, space, wheel.Input{
			Steer:         v.actions.Steer,
			Brake0to1:     v.actions.Brake0to1,
			Handbrake0to1: v.actions.Handbrake0to1,
			DriveForce:    requests[i],
			MassShare:     share,
		}, dt)
	}
	v.syncDriveShaft(shaftTorque, dt)

	v.drag = v.Body.Apply(v.Chassis, v.Env)
	v.time += dt
}

// couple returns the torque taken from the crank and the torque delivered
// to the gearbox input.
func (v *Vehicle) couple(engineNet, dt float64) (reaction, output float64) {
	rpmE := v.Engine.RPM()
	if v.GearBox.InNeutral() {
		if v.Clutch != nil {
			v.Clutch.Transfer(v.actions.Clutch0to1, 0, rpmE, rpmE)
			v.Clutch.Heat(0, 0, v.Env.TemperatureC, dt)
		}
		if v.Converter != nil {
			v.Converter.Transfer(0, rpmE, rpmE)
		}
		return 0, 0
	}

	rpmIn := v.GearBox.InputRPM(v.DriveShaft.RPM())
	sync := v.syncTorque(engineNet, rpmE, rpmIn, dt)
	if v.Converter != nil {
		return v.Converter.Transfer(sync, rpmE, rpmIn)
	}
	t := v.Clutch.Transfer(v.actions.Clutch0to1, sync, rpmE, rpmIn)
	v.Clutch.Heat(t, rpmE-rpmIn, v.Env.TemperatureC, dt)
	return t, t
}

// syncTorque is the torque that brings the crank and the gearbox input to
// the same speed by the end of the tick.
func (v *Vehicle) syncTorque(engineNet, rpmE, rpmIn, dt float64) float64 {
	ie := v.Engine.Inertia()
	ratio := v.GearBox.Ratio()
	if ie <= 0 || ratio == 0 {
		return 0
	}
	id := v.lineInertia() / (ratio * ratio)
	if id <= 0 {
		return 0
	}
	dw := powertrain.AngularVelocityFromRPM(rpmE - rpmIn)
	return (dw/dt + engineNet/ie) / (1/ie + 1/id)
}

// lineInertia is the inertia seen at the driveshaft: the shaft and driven
// wheels, plus the vehicle mass while the driven wheels grip.
func (v *Vehicle) lineInertia() float64 {
	inertia := v.DriveShaft.Inertia
	fd := v.GearBox.FinalDrive
	if fd == 0 || v.spinning {
		return inertia
	}
	for _, w := range v.Wheels {
		if w.Driven && w.Contact {
			return inertia + v.Chassis.Mass()*w.Radius*w.Radius/(fd*fd)
		}
	}
	return inertia
}

func (v *Vehicle) driveForces(shaftTorque float64) []float64 {
	out := make([]float64, len(v.Wheels))
	axle := shaftTorque * v.GearBox.FinalDrive * v.GearBox.Efficiency
	if axle == 0 {
		return out
	}
	front, rear := v.Layout.AxleShares(v.FrontSplit)
	nf, nr := 0, 0
	for _, w := range v.Wheels {
		switch {
		case !w.Driven:
		case w.Front:
			nf++
		default:
			nr++
		}
	}
	for i, w := range v.Wheels {
		if !w.Driven || w.Radius <= 0 {
			continue
		}
		if w.Front {
			out[i] = axle * front / float64(nf) / w.Radius
		} else {
			out[i] = axle * rear / float64(nr) / w.Radius
		}
	}
	return out
}

// syncDriveShaft ties the driveshaft to the road while the driven wheels
// grip and lets the excess torque spin it up when they do not.
func (v *Vehicle) syncDriveShaft(shaftTorque, dt float64) {
	ds := v.DriveShaft
	fd := v.GearBox.FinalDrive

	var roadSum, applied float64
	grounded := 0
	saturated := false
	for i, w := range v.Wheels {
		if !w.Driven || !w.Contact || w.Radius <= 0 {
			continue
		}
		r := v.results[i]
		roadSum += r.LongitudinalSpeed / w.Radius
		applied += r.DriveForce * w.Radius
		saturated = saturated || r.Saturated
		grounded++
	}

	switch {
	case grounded == 0 || fd == 0:
		ds.ApplyImpulse(shaftTorque * dt)
		v.spinning = grounded == 0
	case saturated:
		road := roadSum / float64(grounded) * fd
		excess := shaftTorque - applied/(fd*v.GearBox.Efficiency)
		ds.ApplyImpulse(excess * dt)
		if excess > 0 {
			ds.AngularVelocity = math.Max(ds.AngularVelocity, road)
		} else {
			ds.AngularVelocity = math.Min(ds.AngularVelocity, road)
		}
		v.spinning = true
	default:
		ds.AngularVelocity = roadSum / float64(grounded) * fd
		v.spinning = false
	}
	ds.Integrate(dt)

	if fd == 0 {
		return
	}
	for _, w := range v.Wheels {
		if w.Driven && (v.spinning || !w.Contact) {
			w.SpinVelocity = ds.AngularVelocity / fd
		}
	}
}

func (v *Vehicle) detectStall() {
	running := v.Engine.IsRunning()
	if v.wasRunning && !running && v.Engine.Ignition {
		v.stalls++
		v.Logger.Warn().
			Float64("time", v.time).
			Str("gear", v.GearBox.Label(v.GearBox.Gear())).
			Msg("engine stalled")
	}
	v.wasRunning = running
}

func (v *Vehicle) Shift(gear int) error {
	from := v.GearBox.Gear()
	if err := v.GearBox.Shift(gear); err != nil {
		v.Logger.Debug().Int("from", from).Int("to", gear).Err(err).Msg("shift rejected")
		return err
	}
	if from != gear {
		v.Logger.Debug().
			Str("from", v.GearBox.Label(from)).
			Str("to", v.GearBox.Label(gear)).
			Msg("shifted")
	}
	return nil
}

func (v *Vehicle) ShiftUp() error   { return v.Shift(v.GearBox.Gear() + 1) }
func (v *Vehicle) ShiftDown() error { return v.Shift(v.GearBox.Gear() - 1) }

// ShiftNeutral selects the first neutral ratio, if there is one.
func (v *Vehicle) ShiftNeutral() error {
	n := v.GearBox.Neutral()
	if n < 0 {
		return v.Shift(-1)
	}
	return v.Shift(n)
}

func (v *Vehicle) FlywheelRPM() float64 { return v.Engine.RPM() }

// RPMAfterClutch is the gearbox input shaft speed. In neutral the input
// shaft turns with the clutch disc, so it follows the engine unless the
// clutch is open.
func (v *Vehicle) RPMAfterClutch() float64 {
	if v.GearBox.InNeutral() {
		if v.Clutch != nil && v.Clutch.State() == powertrain.ClutchOpen {
			return 0
		}
		return v.Engine.RPM()
	}
	return v.GearBox.InputRPM(v.DriveShaft.RPM())
}

// RPMAfterGearbox is the gearbox output speed, 0 in neutral.
func (v *Vehicle) RPMAfterGearbox() float64 {
	return v.GearBox.OutputRPM(v.RPMAfterClutch())
}

func (v *Vehicle) Actions() ecu.Actions { return v.actions }

func (v *Vehicle) Time() float64 { return v.time }

func (v *Vehicle) Stalls() int { return v.stalls }

// ForwardSpeed is the chassis velocity along its forward axis.
func (v *Vehicle) ForwardSpeed() float64 {
	fwd := v.Chassis.Orientation().Rotate(physics.LocalForward)
	return v.Chassis.LinearVelocity().Dot(fwd)
}

func (v *Vehicle) Telemetry() Telemetry {
	e := v.Engine
	brake := math.Max(0, v.combustion-e.Friction())
	t := Telemetry{
		Time:             v.time,
		ECUState:         v.ECU.State(),
		Actions:          v.actions,
		Running:          e.IsRunning(),
		Stalls:           v.stalls,
		ClutchTorque:     v.clutchTorque,
		Gear:             v.GearBox.Gear(),
		GearLabel:        v.GearBox.Label(v.GearBox.Gear()),
		EngineRPM:        e.RPM(),
		RPMAfterClutch:   v.RPMAfterClutch(),
		RPMAfterGearbox:  v.RPMAfterGearbox(),
		CombustionTorque: v.combustion,
		BrakeTorque:      brake,
		PowerKW:          e.EstimatedPowerKW(brake),
		BMEP:             e.BMEP(brake),
		OilTemperatureC:  e.OilTemperatureC,
		Speed:            v.ForwardSpeed(),
		Position:         v.Chassis.Position(),
		Drag:             v.drag.Len(),
		Wheels:           make([]WheelTelemetry, len(v.Wheels)),
	}
	if v.Clutch != nil {
		t.ClutchState = v.Clutch.State()
		t.ClutchTemperatureC = v.Clutch.TemperatureC
	}
	if v.Converter != nil {
		t.ConverterSlip = v.Converter.Slip()
	}
	for i, w := range v.Wheels {
		t.Wheels[i] = WheelTelemetry{
			Name:        w.Name,
			Contact:     w.Contact,
			Traction:    w.Traction,
			Compression: w.Compression,
			NormalLoad:  w.NormalLoad,
			DriveForce:  v.results[i].DriveForce,
			SpinRPM:     powertrain.RPMFromAngularVelocity(w.SpinVelocity),
			SteerAngle:  w.SteerAngle,
		}
	}
	return t
}

// Reset puts the vehicle back at its spawn point, at rest, engine off and
// in neutral.
func (v *Vehicle) Reset() {
	v.Chassis.SetPosition(v.Spawn)
	v.Chassis.SetOrientation(mgl64.QuatIdent())
	v.Chassis.SetLinearVelocity(mgl64.Vec3{})
	v.Chassis.SetAngularVelocity(mgl64.Vec3{})

	v.Engine.AngularVelocity = 0
	v.Engine.Angle = 0
	v.Engine.Ignition = false
	v.Engine.OilTemperatureC = v.Env.TemperatureC
	v.Starter.Engaged = false
	v.ECU.Reset()
	if v.Clutch != nil {
		v.Clutch.TemperatureC = v.Env.TemperatureC
	}
	if n := v.GearBox.Neutral(); n >= 0 {
		_ = v.GearBox.Shift(n)
	}
	v.DriveShaft.AngularVelocity = 0
	v.DriveShaft.Angle = 0
	for _, w := range v.Wheels {
		w.Reset(v.Env.TemperatureC)
	}

	v.time = 0
	v.actions = ecu.Actions{}
	v.combustion = 0
	v.clutchTorque = 0
	v.drag = mgl64.Vec3{}
	v.stalls = 0
	v.wasRunning = false
	v.spinning = false
	v.results = make([]wheel.Result, len(v.Wheels))
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
