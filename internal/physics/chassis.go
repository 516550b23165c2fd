package physics

import (
	"github.com/go-gl/mathgl/mgl64"
)

// DefaultGravity points down the world Y axis.
var DefaultGravity = mgl64.Vec3{0, -9.81, 0}

// Chassis is a box-shaped rigid body integrated with semi-implicit Euler.
// Forces and torques accumulate between steps and are cleared by Step.
type Chassis struct {
	mass    float64
	inertia mgl64.Vec3 // principal moments, body frame
	Gravity mgl64.Vec3

	pos    mgl64.Vec3
	rot    mgl64.Quat
	vel    mgl64.Vec3
	angVel mgl64.Vec3

	force  mgl64.Vec3
	torque mgl64.Vec3
}

// NewChassis builds a solid box of the given mass and full extents
// (width, height, length).
func NewChassis(mass float64, size mgl64.Vec3) *Chassis {
	x2, y2, z2 := size[0]*size[0], size[1]*size[1], size[2]*size[2]
	return &Chassis{
		mass: mass,
		inertia: mgl64.Vec3{
			mass / 12 * (y2 + z2),
			mass / 12 * (x2 + z2),
			mass / 12 * (x2 + y2),
		},
		Gravity: DefaultGravity,
		rot:     mgl64.QuatIdent(),
	}
}

func (c *Chassis) Mass() float64               { return c.mass }
func (c *Chassis) Inertia() mgl64.Vec3         { return c.inertia }
func (c *Chassis) Position() mgl64.Vec3        { return c.pos }
func (c *Chassis) SetPosition(p mgl64.Vec3)    { c.pos = p }
func (c *Chassis) Orientation() mgl64.Quat     { return c.rot }
func (c *Chassis) SetOrientation(q mgl64.Quat) { c.rot = q.Normalize() }
func (c *Chassis) LinearVelocity() mgl64.Vec3  { return c.vel }
func (c *Chassis) SetLinearVelocity(v mgl64.Vec3) {
	c.vel = v
}
func (c *Chassis) AngularVelocity() mgl64.Vec3 { return c.angVel }
func (c *Chassis) SetAngularVelocity(w mgl64.Vec3) {
	c.angVel = w
}

func (c *Chassis) VelocityAtPoint(p mgl64.Vec3) mgl64.Vec3 {
	return c.vel.Add(c.angVel.Cross(p.Sub(c.pos)))
}

func (c *Chassis) AddForce(f mgl64.Vec3) { c.force = c.force.Add(f) }

func (c *Chassis) AddForceAtPos(f, p mgl64.Vec3) {
	c.force = c.force.Add(f)
	c.torque = c.torque.Add(p.Sub(c.pos).Cross(f))
}

func (c *Chassis) AddTorque(t mgl64.Vec3) { c.torque = c.torque.Add(t) }

// PendingForce and PendingTorque expose the accumulators for inspection
// before the next Step.
func (c *Chassis) PendingForce() mgl64.Vec3  { return c.force }
func (c *Chassis) PendingTorque() mgl64.Vec3 { return c.torque }

// Valid reports whether position and velocities are finite.
func (c *Chassis) Valid() bool {
	return finite(c.pos) && finite(c.vel) && finite(c.angVel)
}

func (c *Chassis) Step(dt float64) {
	if c.mass > 0 {
		c.vel = c.vel.Add(c.force.Mul(dt / c.mass)).Add(c.Gravity.Mul(dt))
	}

	local := c.rot.Conjugate().Rotate(c.torque)
	var alpha mgl64.Vec3
	for i := 0; i < 3; i++ {
		if c.inertia[i] > 0 {
			alpha[i] = local[i] / c.inertia[i]
		}
	}
	c.angVel = c.angVel.Add(c.rot.Rotate(alpha).Mul(dt))

	c.pos = c.pos.Add(c.vel.Mul(dt))

	spin := mgl64.Quat{W: 0, V: c.angVel}
	c.rot = c.rot.Add(spin.Mul(c.rot).Scale(0.5 * dt)).Normalize()

	c.force = mgl64.Vec3{}
	c.torque = mgl64.Vec3{}
}
