package powertrain

import "math"

// TorqueConverter is a fluid coupling between the engine and an automatic
// gearbox. Below StallRPM it behaves as a slipping coupling whose torque
// rises with engine speed squared; above it the coupling blends toward a
// direct lock-up.
type TorqueConverter struct {
	StallRPM float64
	// StallTorque is the torque absorbed at StallRPM with the turbine held.
	StallTorque float64
	// StallTorqueRatio is the multiplication at zero speed ratio.
	StallTorqueRatio float64
	// CouplingSpeedRatio is where multiplication ends.
	CouplingSpeedRatio float64

	slip float64
}

// Transfer returns the torque drawn from the impeller (engine side) and the
// torque delivered by the turbine. directTorque is what a locked clutch
// would transmit and is used for the lock-up blend.
func (tc *TorqueConverter) Transfer(directTorque, engineRPM, turbineRPM float64) (impeller, turbine float64) {
	if engineRPM <= 0 || tc.StallRPM <= 0 {
		tc.slip = 0
		return 0, 0
	}
	sr := math.Max(0, turbineRPM) / engineRPM
	tc.slip = 1 - sr

	n := engineRPM / tc.StallRPM
	fluid := tc.StallTorque * n * n * tc.slip

	mult := 1.0
	if tc.slip > 0 && tc.StallTorqueRatio > 1 {
		coupling := tc.CouplingSpeedRatio
		if coupling <= 0 {
			coupling = 1
		}
		mult += (tc.StallTorqueRatio - 1) * clamp01(1-sr/coupling)
	}

	lock := clamp01((engineRPM - tc.StallRPM) / tc.StallRPM)
	impeller = (1-lock)*fluid + lock*directTorque
	turbine = (1-lock)*fluid*mult + lock*directTorque
	return impeller, turbine
}

// Slip is 1 - turbine/engine speed from the last Transfer.
func (tc *TorqueConverter) Slip() float64 { return tc.slip }
