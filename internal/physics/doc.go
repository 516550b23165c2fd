// Package physics holds the pieces of the outside world the vehicle core
// talks to, plus small reference implementations so the core can run
// headless:
//
//   - [Environment]: ambient air temperature, pressure and density
//   - [Body]: aerodynamic drag on the chassis
//   - [Raycaster] and [Spaces]: collision queries, closest contact wins
//   - [RigidBody] and [Chassis]: force/torque application and integration
//
// Axes are right handed with +Y up. A chassis faces +Z in its local frame
// and its suspension points along -Y.
//
//	world := physics.NewWorld(physics.Spaces{physics.Ground(0)})
//	body := physics.NewChassis(1200, mgl64.Vec3{1.8, 1.4, 4.2})
//	world.Add(body)
//	world.Step(1.0 / 120)
package physics
