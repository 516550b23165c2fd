package powertrain

import "math"

// Starter is a DC motor geared to the flywheel through a pinion.
type Starter struct {
	StallTorque float64 // motor torque at 0 rpm, Nm
	NoLoadRPM   float64 // motor speed with no load
	PinionRatio float64 // motor turns per crank turn
	Engaged     bool
}

// Torque returns the torque delivered at the crank for the given engine
// speed. A disengaged starter delivers nothing.
func (s *Starter) Torque(engineRPM float64) float64 {
	if !s.Engaged || s.NoLoadRPM <= 0 {
		return 0
	}
	ratio := s.PinionRatio
	if ratio <= 0 {
		ratio = 1
	}
	motorRPM := engineRPM * ratio
	motor := s.StallTorque * (1 - motorRPM/s.NoLoadRPM)
	return math.Max(0, motor) * ratio
}
