// Package dynamo provides the numerical primitives shared by the rotating
// parts of the drivetrain.
//
// The package defines the small set of types used to integrate first-order
// systems (dX/dt = f(X, u, t)) one fixed step at a time:
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems
//   - [Integrator]: numerical stepper interface
//   - [Configurable]: named parameters adjusted by experiments and the live dashboard
//
// The crankshaft is the main client: its state is {angle, angular velocity}
// and its single control input is the net torque acting on it.
//
//	crank := &powertrain.Engine{FlywheelInertia: 0.1, StallRPM: 400}
//	crank.Integrator = integrators.NewRK4()
//	crank.Integrate(netTorque, dt)
package dynamo
