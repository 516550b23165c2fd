// Package control provides the drivers that operate a vehicle during a
// simulation run.
//
// Drivers implement [sim.Driver] and turn the latest telemetry into pedal,
// key and gear commands:
//
//   - [Cruise]: starts the engine, launches and holds a target speed with a
//     [PID] on throttle and brake, shifting on engine speed
//   - [Idle]: starts the engine and keeps it idling in neutral
//   - [Parked]: leaves everything untouched
//   - [Manual]: replays whatever command was last set, for interactive use
//
// # Usage
//
//	pid := control.NewPID(0.15, 0.02, 0.01, 20) // Kp, Ki, Kd, target m/s
//	d := control.NewCruise(pid, 5)               // five forward gears
//	s := sim.New(v, world, d)
//
// [Cruise] and [PID] implement [dynamo.Configurable]. Their parameters
// (kp, ki, kd, target, upshift_rpm, downshift_rpm) are set through
// experiment.Config.DriverParams and adjusted in `drivesim live --autopilot`.
package control
