package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	LocalForward = mgl64.Vec3{0, 0, 1}
	LocalUp      = mgl64.Vec3{0, 1, 0}
	LocalDown    = mgl64.Vec3{0, -1, 0}
)

// Contact is the nearest hit of a ray. Depth is the distance along the ray
// from its origin.
type Contact struct {
	Depth    float64
	Position mgl64.Vec3
	Normal   mgl64.Vec3
	GeomID   int
}

// Raycaster is a read-only geometric query. Implementations must not
// modify any world state.
type Raycaster interface {
	Raycast(origin, dir mgl64.Vec3, maxLen float64) (Contact, bool)
}

// RigidBody is the write path into the solver: forces and torques in world
// space, plus velocity access.
type RigidBody interface {
	Mass() float64
	Position() mgl64.Vec3
	Orientation() mgl64.Quat
	LinearVelocity() mgl64.Vec3
	SetLinearVelocity(v mgl64.Vec3)
	AngularVelocity() mgl64.Vec3
	SetAngularVelocity(w mgl64.Vec3)
	VelocityAtPoint(p mgl64.Vec3) mgl64.Vec3
	AddForce(f mgl64.Vec3)
	AddForceAtPos(f, p mgl64.Vec3)
	AddTorque(t mgl64.Vec3)
}

// Spaces unifies several collision spaces (static scenery, dynamic props)
// behind one query that returns the closest contact over all of them.
type Spaces []Raycaster

func (s Spaces) Raycast(origin, dir mgl64.Vec3, maxLen float64) (Contact, bool) {
	var best Contact
	found := false
	for _, space := range s {
		if space == nil {
			continue
		}
		c, ok := space.Raycast(origin, dir, maxLen)
		if !ok {
			continue
		}
		if !found || c.Depth < best.Depth {
			best, found = c, true
		}
	}
	return best, found
}

// World steps a set of chassis against a fixed gravity.
type World struct {
	Space  Raycaster
	bodies []*Chassis
}

func NewWorld(space Raycaster) *World {
	return &World{Space: space}
}

func (w *World) Add(c *Chassis) { w.bodies = append(w.bodies, c) }

func (w *World) Bodies() []*Chassis { return w.bodies }

func (w *World) Step(dt float64) {
	for _, b := range w.bodies {
		b.Step(dt)
	}
}

func finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
