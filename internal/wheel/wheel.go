// Package wheel implements the raycast wheel: suspension, ground contact,
// tyre friction, drive, braking and steering.
//
// Each tick a ray is cast from the suspension top along the chassis down
// axis. The resulting forces go to the chassis through physics.RigidBody;
// the collision space is only read.
package wheel

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/drivesim/internal/physics"
)

type Config struct {
	Radius float64 `yaml:"radius"`
	Mass   float64 `yaml:"mass"`

	SuspensionMin    float64 `yaml:"suspension_min"`
	SuspensionNormal float64 `yaml:"suspension_normal"`
	SuspensionMax    float64 `yaml:"suspension_max"`
	Stiffness        float64 `yaml:"stiffness"`
	Damping          float64 `yaml:"damping"`
	// BumpStop multiplies Stiffness for travel past SuspensionMin.
	BumpStop float64 `yaml:"bump_stop"`

	Mu  float64 `yaml:"mu"`
	Mu2 float64 `yaml:"mu2"`
	// SlipCoefficient scales longitudinal speed into the slip scalar.
	SlipCoefficient float64 `yaml:"slip_coefficient"`

	MaxSteerAngle          float64 `yaml:"max_steer_angle"` // radians
	SteerTorqueCoefficient float64 `yaml:"steer_torque_coefficient"`

	RollingResistance float64 `yaml:"rolling_resistance"` // fraction of grip
	AngularDamping    float64 `yaml:"angular_damping"`    // N m s/rad
}

// Input is what the vehicle hands each wheel for one tick.
type Input struct {
	Steer         float64 // -1..1
	Brake0to1     float64
	Handbrake0to1 float64
	// DriveForce is the requested tractive force at the contact patch.
	DriveForce float64
	// MassShare is the chassis mass this wheel is responsible for stopping.
	MassShare float64
}

// Result reports what the wheel did this tick.
type Result struct {
	Force             mgl64.Vec3
	DriveForce        float64
	GripLimit         float64
	LongitudinalSpeed float64
	// Saturated is set when the requested drive force exceeded grip.
	Saturated bool
}

type Wheel struct {
	Config
	Name string
	// Attachment is the suspension top in the chassis frame.
	Attachment mgl64.Vec3

	Front     bool
	Steered   bool
	Driven    bool
	Handbrake bool

	Contact       bool
	Depth         float64
	Compression   float64
	NormalLoad    float64
	Traction      float64
	ContactNormal mgl64.Vec3
	ContactPoint  mgl64.Vec3
	GeomID        int
	Forward       mgl64.Vec3
	SteerAngle    float64
	SpinAngle     float64
	SpinVelocity  float64
	TemperatureC  float64

	prevCompression float64
}

func New(name string, cfg Config, attachment mgl64.Vec3) *Wheel {
	return &Wheel{
		Name:       name,
		Config:     cfg,
		Attachment: attachment,
		Depth:      cfg.SuspensionMax,
		Forward:    physics.LocalForward,
	}
}

// CompressionAt returns clamp(max - depth, 0, max - min).
func CompressionAt(depth, suspensionMin, suspensionMax float64) float64 {
	return clamp(suspensionMax-depth, 0, math.Max(0, suspensionMax-suspensionMin))
}

// FrictionCoefficients derives longitudinal and lateral friction from the
// slip scalar and the vertical component of the contact normal.
func FrictionCoefficients(mu, mu2, slip, normalY float64) (float64, float64) {
	k := math.Max(0, normalY) / (1 + math.Max(0, slip))
	return mu * k, mu2 * k
}

// Update runs one tick of the wheel against the given collision space and
// pushes the resulting force into rb.
func (w *Wheel) Update(rb physics.RigidBody, space physics.Raycaster, in Input, dt float64) Result {
	rot := rb.Orientation()
	up := rot.Rotate(physics.LocalUp)
	down := up.Mul(-1)
	top := rb.Position().Add(rot.Rotate(w.Attachment))

	w.SteerAngle = 0
	if w.Steered {
		w.SteerAngle = clamp(in.Steer, -1, 1) * w.MaxSteerAngle
	}
	fwd := mgl64.QuatRotate(w.SteerAngle, up).Rotate(rot.Rotate(physics.LocalForward))
	w.Forward = fwd

	var c physics.Contact
	ok := space != nil && w.SuspensionMax > 0
	if ok {
		c, ok = space.Raycast(top, down, w.SuspensionMax)
	}
	if !ok || c.Depth > w.SuspensionMax {
		w.release()
		w.SpinAngle = math.Mod(w.SpinAngle+w.SpinVelocity*dt, 2*math.Pi)
		return Result{}
	}

	w.Contact = true
	w.Traction = 1
	w.GeomID = c.GeomID
	w.ContactNormal = c.Normal
	w.ContactPoint = c.Position
	w.Depth = clamp(c.Depth, w.SuspensionMin, w.SuspensionMax)
	w.Compression = CompressionAt(w.Depth, w.SuspensionMin, w.SuspensionMax)

	load := w.Stiffness * w.Compression
	if dt > 0 {
		load += w.Damping * (w.Compression - w.prevCompression) / dt
	}
	if c.Depth < w.SuspensionMin {
		load += w.Stiffness * w.BumpStop * (w.SuspensionMin - c.Depth)
	}
	load = math.Max(0, load)
	w.prevCompression = w.Compression
	w.NormalLoad = load

	n := c.Normal
	fwd = fwd.Sub(n.Mul(fwd.Dot(n)))
	if fwd.Len() < 1e-9 {
		fwd = rot.Rotate(physics.LocalForward)
	}
	fwd = fwd.Normalize()
	lat := n.Cross(fwd)
	if lat.Len() > 1e-9 {
		lat = lat.Normalize()
	}

	v := rb.VelocityAtPoint(c.Position)
	vLong := v.Dot(fwd)
	vLat := v.Dot(lat)

	slip := w.SlipCoefficient * math.Abs(vLong)
	mu, mu2 := FrictionCoefficients(w.Mu, w.Mu2, slip, n.Y())
	grip := mu * load

	res := Result{GripLimit: grip, LongitudinalSpeed: vLong}
	res.DriveForce = clamp(in.DriveForce, -grip, grip)
	res.Saturated = math.Abs(in.DriveForce) > grip

	stop := 0.0
	if dt > 0 {
		stop = in.MassShare / dt
	}

	brake := clamp(in.Brake0to1, 0, 1)
	if w.Handbrake {
		brake = math.Max(brake, clamp(in.Handbrake0to1, 0, 1))
	}
	// Braking and rolling resistance may stop the wheel but never reverse it.
	resist := math.Min(math.Abs(vLong)*stop, grip*(w.RollingResistance+brake))
	long := res.DriveForce - math.Copysign(resist, vLong)

	side := clamp(-vLat*stop, -mu2*load, mu2*load)

	res.Force = up.Mul(load).Add(fwd.Mul(long)).Add(lat.Mul(side))
	rb.AddForceAtPos(res.Force, c.Position)

	if w.Steered && w.SteerTorqueCoefficient != 0 {
		rb.AddTorque(up.Mul(w.SteerTorqueCoefficient * clamp(in.Steer, -1, 1) * vLong))
	}
	if w.AngularDamping > 0 {
		rb.AddTorque(rb.AngularVelocity().Mul(-w.AngularDamping * (1 + brake)))
	}

	if brake >= 1 && w.Handbrake {
		w.SpinVelocity = 0
	} else if w.Radius > 0 {
		w.SpinVelocity = vLong / w.Radius
	}
	w.SpinAngle = math.Mod(w.SpinAngle+w.SpinVelocity*dt, 2*math.Pi)
	return res
}

func (w *Wheel) release() {
	w.Contact = false
	w.Traction = 0
	w.Depth = w.SuspensionMax
	w.Compression = 0
	w.NormalLoad = 0
	w.ContactNormal = mgl64.Vec3{}
	w.GeomID = 0
	w.prevCompression = 0
}

// Reset returns the dynamic state to a fully extended, stationary wheel.
func (w *Wheel) Reset(ambientC float64) {
	w.release()
	w.SpinAngle = 0
	w.SpinVelocity = 0
	w.SteerAngle = 0
	w.TemperatureC = ambientC
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
