package powertrain

import (
	"math"

	"github.com/san-kum/drivesim/internal/curve"
)

type ClutchState int

const (
	ClutchOpen ClutchState = iota
	ClutchSlipping
	ClutchMicroSlipping
	ClutchLocked
)

func (s ClutchState) String() string {
	switch s {
	case ClutchSlipping:
		return "slipping"
	case ClutchMicroSlipping:
		return "micro_slipping"
	case ClutchLocked:
		return "locked"
	}
	return "open"
}

const (
	DefaultLockedToleranceRPM = 1.0
	DefaultMicroSlipRPM       = 10.0
)

// Clutch couples the crankshaft to the gearbox input shaft. Pedal travel is
// 0 for released (fully engaged) to 1 for pressed (open).
type Clutch struct {
	// TravelToEngagement maps pedal travel to engagement in [0,1].
	TravelToEngagement curve.Curve
	// EngagementToMaxTorque maps engagement to torque capacity in Nm. The
	// result is clamped to Ceiling.
	EngagementToMaxTorque curve.Curve

	FrictionCoefficient float64
	MaxEngagedForce     float64 // N
	MeanRadius          float64 // m
	Surfaces            int

	LockedToleranceRPM float64
	MicroSlipRPM       float64

	HeatCapacity float64 // J/K
	CoolingRate  float64 // 1/s
	TemperatureC float64

	state      ClutchState
	engagement float64
	maxTorque  float64
}

// Ceiling is the torque capacity of the fully engaged clutch.
func (c *Clutch) Ceiling() float64 {
	surfaces := c.Surfaces
	if surfaces <= 0 {
		surfaces = 1
	}
	return math.Max(0, c.FrictionCoefficient*c.MaxEngagedForce*c.MeanRadius*float64(surfaces))
}

func (c *Clutch) Engagement(pedal float64) float64 {
	return clamp01(c.TravelToEngagement.Lookup(clamp01(pedal)))
}

func (c *Clutch) MaxTorque(pedal float64) float64 {
	return clamp(c.EngagementToMaxTorque.Lookup(c.Engagement(pedal)), 0, c.Ceiling())
}

// ClassifyState derives the clutch state from its capacity and the speed
// difference across it.
func ClassifyState(maxTorque, diffRPM, lockedTolerance, microSlip float64) ClutchState {
	if maxTorque <= 0 {
		return ClutchOpen
	}
	d := math.Abs(diffRPM)
	switch {
	case d <= lockedTolerance:
		return ClutchLocked
	case d <= microSlip:
		return ClutchMicroSlipping
	}
	return ClutchSlipping
}

// TransferTorque limits the requested torque to the clutch capacity in the
// direction the faster side drags the slower one. The result is never larger
// than maxTorque in magnitude.
func TransferTorque(inputTorque, maxTorque, engineRPM, drivetrainRPM float64) float64 {
	if maxTorque <= 0 || math.IsNaN(inputTorque) {
		return 0
	}
	var out float64
	if engineRPM > drivetrainRPM {
		out = math.Min(inputTorque, maxTorque)
	} else {
		out = math.Max(inputTorque, -maxTorque)
	}
	return clamp(out, -maxTorque, maxTorque)
}

// Transfer evaluates the clutch for one tick and records its state. Calling
// it twice with the same arguments gives the same result.
func (c *Clutch) Transfer(pedal, inputTorque, engineRPM, drivetrainRPM float64) float64 {
	c.engagement = c.Engagement(pedal)
	c.maxTorque = c.MaxTorque(pedal)
	c.state = ClassifyState(c.maxTorque, engineRPM-drivetrainRPM, c.lockedTolerance(), c.microSlip())
	return TransferTorque(inputTorque, c.maxTorque, engineRPM, drivetrainRPM)
}

// Heat adds slip power to the clutch temperature and cools it toward
// ambient. A zero heat capacity disables the thermal model.
func (c *Clutch) Heat(torque, diffRPM, ambientC, dt float64) {
	if c.HeatCapacity <= 0 {
		return
	}
	power := math.Abs(torque * AngularVelocityFromRPM(diffRPM))
	c.TemperatureC += power * dt / c.HeatCapacity
	c.TemperatureC -= (c.TemperatureC - ambientC) * math.Min(1, c.CoolingRate*dt)
}

func (c *Clutch) State() ClutchState      { return c.state }
func (c *Clutch) LastEngagement() float64 { return c.engagement }
func (c *Clutch) LastMaxTorque() float64  { return c.maxTorque }

func (c *Clutch) lockedTolerance() float64 {
	if c.LockedToleranceRPM > 0 {
		return c.LockedToleranceRPM
	}
	return DefaultLockedToleranceRPM
}

func (c *Clutch) microSlip() float64 {
	if c.MicroSlipRPM > 0 {
		return c.MicroSlipRPM
	}
	return DefaultMicroSlipRPM
}
