package control

import (
	"fmt"
	"math"
	"strconv"

	"github.com/san-kum/drivesim/internal/dynamo"
	"github.com/san-kum/drivesim/internal/ecu"
	"github.com/san-kum/drivesim/internal/sim"
	"github.com/san-kum/drivesim/internal/vehicle"
)

type phase int

const (
	phaseStart phase = iota
	phaseLaunch
	phaseDrive
	phaseShift
)

// Cruise starts the engine, pulls away in first and holds PID.Target
// (m/s). Positive PID output is throttle, negative output is brake.
type Cruise struct {
	PID     *PID
	TopGear int

	UpshiftRPM     float64
	DownshiftRPM   float64
	LaunchSeconds  float64
	LaunchThrottle float64
	ShiftSeconds   float64
	// Below ReclutchRPM in first gear the clutch goes down again.
	ReclutchRPM float64

	key        keyHand
	phase      phase
	phaseStart float64
	gear       int
}

func NewCruise(pid *PID, topGear int) *Cruise {
	pid.OutputMin, pid.OutputMax = -1, 1
	return &Cruise{
		PID:            pid,
		TopGear:        max(topGear, 1),
		UpshiftRPM:     4500,
		DownshiftRPM:   1500,
		LaunchSeconds:  1.5,
		LaunchThrottle: 0.35,
		ShiftSeconds:   0.3,
		ReclutchRPM:    900,
	}
}

func (c *Cruise) Drive(t vehicle.Telemetry) sim.Command {
	in := c.key.inputs(t)
	if t.ECUState != ecu.EngineRunning {
		c.enter(phaseStart, t.Time)
		c.gear = 0
		c.PID.Reset()
		in.PedalTravelClutch0to1 = 1
		return sim.Command{Inputs: in, Gear: "N"}
	}

	u := c.PID.Compute(t.Speed, t.Time)
	throttle := math.Max(u, 0)
	in.PedalTravelBrake0to1 = math.Max(-u, 0)
	elapsed := t.Time - c.phaseStart

	switch c.phase {
	case phaseStart:
		c.gear = 1
		c.enter(phaseLaunch, t.Time)
		elapsed = 0
		fallthrough
	case phaseLaunch:
		in.PedalTravelClutch0to1 = 1 - elapsed/c.LaunchSeconds
		if in.PedalTravelBrake0to1 == 0 {
			throttle = math.Max(throttle, c.LaunchThrottle)
		}
		if elapsed >= c.LaunchSeconds {
			c.enter(phaseDrive, t.Time)
		}
	case phaseShift:
		in.PedalTravelClutch0to1 = 1
		throttle = 0
		if elapsed >= c.ShiftSeconds {
			c.enter(phaseDrive, t.Time)
		}
	case phaseDrive:
		switch {
		case c.gear == 1 && t.EngineRPM < c.ReclutchRPM && throttle < c.LaunchThrottle:
			c.enter(phaseLaunch, t.Time)
			in.PedalTravelClutch0to1 = 1
		case t.EngineRPM > c.UpshiftRPM && c.gear < c.TopGear:
			c.gear++
			c.enter(phaseShift, t.Time)
			in.PedalTravelClutch0to1 = 1
			throttle = 0
		case t.EngineRPM < c.DownshiftRPM && c.gear > 1:
			c.gear--
			c.enter(phaseShift, t.Time)
			in.PedalTravelClutch0to1 = 1
			throttle = 0
		}
	}

	in.PedalTravelAccelerator0to1 = throttle
	return sim.Command{Inputs: in, Gear: strconv.Itoa(c.gear)}
}

func (c *Cruise) enter(p phase, t float64) {
	c.phase = p
	c.phaseStart = t
}

var (
	_ dynamo.Configurable = (*Cruise)(nil)
	_ dynamo.Configurable = (*PID)(nil)
)

func (c *Cruise) GetParams() map[string]float64 {
	params := c.PID.GetParams()
	params["upshift_rpm"] = c.UpshiftRPM
	params["downshift_rpm"] = c.DownshiftRPM
	return params
}

func (c *Cruise) SetParam(name string, value float64) error {
	switch name {
	case "upshift_rpm":
		if value <= c.DownshiftRPM {
			return fmt.Errorf("control: upshift rpm %.0f must exceed downshift rpm %.0f", value, c.DownshiftRPM)
		}
		c.UpshiftRPM = value
	case "downshift_rpm":
		c.DownshiftRPM = value
	default:
		return c.PID.SetParam(name, value)
	}
	return nil
}
