package physics

import "github.com/go-gl/mathgl/mgl64"

// Body carries the aerodynamic parameters of the chassis.
type Body struct {
	FrontalArea     float64 // m^2
	DragCoefficient float64
}

// Drag returns frontalArea*dragCoefficient*|v|^2 opposing v, scaled by the
// ambient density relative to standard air (a factor of exactly 1 in the
// standard atmosphere).
func (b Body) Drag(v mgl64.Vec3, env Environment) mgl64.Vec3 {
	speed := v.Len()
	if speed == 0 {
		return mgl64.Vec3{}
	}
	mag := b.FrontalArea * b.DragCoefficient * speed * speed * env.DensityRatio()
	return v.Mul(-mag / speed)
}

// Apply pushes the drag force through the chassis centre of mass.
func (b Body) Apply(rb RigidBody, env Environment) mgl64.Vec3 {
	f := b.Drag(rb.LinearVelocity(), env)
	rb.AddForce(f)
	return f
}
