package control

import (
	"github.com/san-kum/drivesim/internal/ecu"
	"github.com/san-kum/drivesim/internal/sim"
	"github.com/san-kum/drivesim/internal/vehicle"
)

// keyHand turns the key until the engine runs. After a failed crank it lets
// go for one tick so the ECU lockout clears.
type keyHand struct {
	prev ecu.PowerState
}

func (k *keyHand) inputs(t vehicle.Telemetry) vehicle.Inputs {
	failed := k.prev == ecu.StarterFiring && t.ECUState == ecu.AccessoriesOn
	k.prev = t.ECUState
	return vehicle.Inputs{
		KeyInserted:       true,
		IgnitionKeyTurned: t.ECUState != ecu.EngineRunning && !failed,
	}
}

// Idle starts the engine and leaves it idling in neutral with the
// handbrake pulled.
type Idle struct {
	key keyHand
}

func NewIdle() *Idle { return &Idle{} }

func (d *Idle) Drive(t vehicle.Telemetry) sim.Command {
	in := d.key.inputs(t)
	in.Handbrake0to1 = 1
	in.PedalTravelClutch0to1 = 1
	if t.ECUState == ecu.EngineRunning {
		in.PedalTravelClutch0to1 = 0
	}
	return sim.Command{Inputs: in, Gear: "N"}
}

// Parked does nothing at all.
type Parked struct{}

func (Parked) Drive(vehicle.Telemetry) sim.Command { return sim.Command{} }
