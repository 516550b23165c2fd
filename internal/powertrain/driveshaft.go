package powertrain

import "math"

// DriveShaft is the gearbox output shaft ahead of the final drive.
type DriveShaft struct {
	Inertia         float64
	AngularVelocity float64
	Angle           float64
}

func (d *DriveShaft) InverseInertia() float64 {
	if d.Inertia <= 0 {
		return 0
	}
	return 1 / d.Inertia
}

// ApplyImpulse changes angular velocity by impulse / inertia.
func (d *DriveShaft) ApplyImpulse(j float64) {
	d.AngularVelocity += j * d.InverseInertia()
}

func (d *DriveShaft) Integrate(dt float64) {
	d.Angle = math.Mod(d.Angle+d.AngularVelocity*dt, 2*math.Pi)
}

func (d *DriveShaft) RPM() float64 { return RPMFromAngularVelocity(d.AngularVelocity) }

func (d *DriveShaft) SetRPM(rpm float64) { d.AngularVelocity = AngularVelocityFromRPM(rpm) }
