// Package powertrain models the rotating parts between the crankshaft and
// the wheels:
//
//   - [Engine]: crankshaft geometry, combustion torque and integration
//   - [Starter]: DC starter motor
//   - [Clutch]: friction clutch with a derived [ClutchState]
//   - [TorqueConverter]: fluid coupling for automatic transmissions
//   - [GearBox]: signed ratio list, final drive and efficiency
//   - [DriveShaft]: inertia and impulse integration
//
// Nothing in this package returns an error for numeric edge cases. A zero
// ratio, displacement or inertia resolves to a zero result so that the
// surrounding simulation stays stable.
package powertrain
