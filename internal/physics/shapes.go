package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const parallelEpsilon = 1e-9

// Plane is the half space below {p : Normal.p = Offset}. Normal should be a
// unit vector; a tilted normal makes a ramp.
type Plane struct {
	Normal mgl64.Vec3
	Offset float64
	ID     int
}

// Ground is a horizontal plane at the given height.
func Ground(height float64) Plane {
	return Plane{Normal: LocalUp, Offset: height}
}

// Incline is a plane through the origin rising along +Z with the given
// grade angle in radians.
func Incline(angle float64) Plane {
	n := mgl64.Vec3{0, math.Cos(angle), -math.Sin(angle)}
	return Plane{Normal: n, Offset: 0}
}

func (p Plane) Raycast(origin, dir mgl64.Vec3, maxLen float64) (Contact, bool) {
	height := p.Normal.Dot(origin) - p.Offset
	if height < 0 {
		// Origin already below the surface: fully penetrated.
		return Contact{Depth: 0, Position: origin, Normal: p.Normal, GeomID: p.ID}, true
	}
	denom := p.Normal.Dot(dir)
	if denom > -parallelEpsilon {
		return Contact{}, false
	}
	t := -height / denom
	if t > maxLen {
		return Contact{}, false
	}
	return Contact{
		Depth:    t,
		Position: origin.Add(dir.Mul(t)),
		Normal:   p.Normal,
		GeomID:   p.ID,
	}, true
}

// Box is an axis aligned obstacle, typically a kerb or a loose prop placed
// in a dynamic space.
type Box struct {
	Min, Max mgl64.Vec3
	ID       int
}

func (b Box) Raycast(origin, dir mgl64.Vec3, maxLen float64) (Contact, bool) {
	tMin, tMax := 0.0, maxLen
	var normal mgl64.Vec3

	for axis := 0; axis < 3; axis++ {
		o, d := origin[axis], dir[axis]
		lo, hi := b.Min[axis], b.Max[axis]
		if math.Abs(d) < parallelEpsilon {
			if o < lo || o > hi {
				return Contact{}, false
			}
			continue
		}
		t1, t2 := (lo-o)/d, (hi-o)/d
		sign := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1.0
		}
		if t1 > tMin {
			tMin = t1
			normal = mgl64.Vec3{}
			normal[axis] = sign
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return Contact{}, false
		}
	}

	if normal == (mgl64.Vec3{}) {
		// Origin inside the box.
		normal = dir.Mul(-1)
	}
	return Contact{
		Depth:    tMin,
		Position: origin.Add(dir.Mul(tMin)),
		Normal:   normal,
		GeomID:   b.ID,
	}, true
}
