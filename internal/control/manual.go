package control

import (
	"github.com/san-kum/drivesim/internal/sim"
	"github.com/san-kum/drivesim/internal/vehicle"
)

// Manual replays a manually set command every tick. The live dashboard
// writes into it from keyboard input.
type Manual struct {
	Cmd sim.Command
}

func NewManual() *Manual {
	return &Manual{Cmd: sim.Command{Inputs: vehicle.Inputs{KeyInserted: true}}}
}

// Set replaces the inputs. A gear request is consumed by the next Drive.
func (m *Manual) Set(cmd sim.Command) {
	m.Cmd = cmd
}

func (m *Manual) Drive(vehicle.Telemetry) sim.Command {
	cmd := m.Cmd
	m.Cmd.Gear = ""
	return cmd
}
