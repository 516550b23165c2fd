package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestAirDensity(t *testing.T) {
	if math.Abs(StandardDensity-1.225) > 0.001 {
		t.Errorf("standard density = %v, want ~1.225", StandardDensity)
	}
	hot := NewEnvironment(40, StandardPressurePa)
	if hot.Density >= StandardDensity {
		t.Errorf("hot air should be thinner: %v", hot.Density)
	}
	if AirDensity(StandardPressurePa, -300) != 0 {
		t.Error("below absolute zero should give 0")
	}
	if r := StandardEnvironment().DensityRatio(); math.Abs(r-1) > 1e-12 {
		t.Errorf("standard density ratio = %v", r)
	}
}

func TestBodyDrag(t *testing.T) {
	b := Body{FrontalArea: 2.0, DragCoefficient: 0.3}
	env := StandardEnvironment()

	f := b.Drag(mgl64.Vec3{0, 0, 10}, env)
	want := -2.0 * 0.3 * 100
	if math.Abs(f.Z()-want) > 1e-9 || f.X() != 0 || f.Y() != 0 {
		t.Errorf("drag = %v, want (0,0,%v)", f, want)
	}

	if f := b.Drag(mgl64.Vec3{}, env); f != (mgl64.Vec3{}) {
		t.Errorf("drag at rest = %v", f)
	}
}

func TestPlaneRaycast(t *testing.T) {
	g := Ground(0)
	tests := []struct {
		name   string
		origin mgl64.Vec3
		maxLen float64
		hit    bool
		depth  float64
	}{
		{"hit", mgl64.Vec3{0, 0.4, 0}, 0.5, true, 0.4},
		{"beyond max", mgl64.Vec3{0, 0.6, 0}, 0.5, false, 0},
		{"below surface", mgl64.Vec3{0, -0.1, 0}, 0.5, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := g.Raycast(tt.origin, LocalDown, tt.maxLen)
			if ok != tt.hit {
				t.Fatalf("hit = %v, want %v", ok, tt.hit)
			}
			if ok && math.Abs(c.Depth-tt.depth) > 1e-12 {
				t.Errorf("depth = %v, want %v", c.Depth, tt.depth)
			}
		})
	}

	if _, ok := g.Raycast(mgl64.Vec3{0, 1, 0}, LocalUp, 10); ok {
		t.Error("ray pointing away should miss")
	}
}

func TestBoxRaycast(t *testing.T) {
	kerb := Box{Min: mgl64.Vec3{-1, 0, -1}, Max: mgl64.Vec3{1, 0.1, 1}, ID: 7}

	c, ok := kerb.Raycast(mgl64.Vec3{0, 0.5, 0}, LocalDown, 1)
	if !ok {
		t.Fatal("expected hit")
	}
	if math.Abs(c.Depth-0.4) > 1e-12 {
		t.Errorf("depth = %v, want 0.4", c.Depth)
	}
	if c.Normal != LocalUp {
		t.Errorf("normal = %v, want up", c.Normal)
	}
	if c.GeomID != 7 {
		t.Errorf("geom id = %d", c.GeomID)
	}

	if _, ok := kerb.Raycast(mgl64.Vec3{3, 0.5, 0}, LocalDown, 1); ok {
		t.Error("ray beside the box should miss")
	}
}

func TestSpacesClosestWins(t *testing.T) {
	static := Spaces{Ground(0)}
	dynamic := Spaces{Box{Min: mgl64.Vec3{-1, 0, -1}, Max: mgl64.Vec3{1, 0.2, 1}, ID: 2}}
	all := Spaces{static, dynamic, nil}

	c, ok := all.Raycast(mgl64.Vec3{0, 0.5, 0}, LocalDown, 1)
	if !ok || c.GeomID != 2 || math.Abs(c.Depth-0.3) > 1e-12 {
		t.Errorf("got %+v ok=%v, want box at depth 0.3", c, ok)
	}

	c, ok = all.Raycast(mgl64.Vec3{5, 0.5, 0}, LocalDown, 1)
	if !ok || c.GeomID != 0 || math.Abs(c.Depth-0.5) > 1e-12 {
		t.Errorf("got %+v ok=%v, want ground at depth 0.5", c, ok)
	}

	if _, ok := (Spaces{}).Raycast(mgl64.Vec3{}, LocalDown, 1); ok {
		t.Error("empty spaces should not hit")
	}
}

func TestChassisFreeFall(t *testing.T) {
	c := NewChassis(1000, mgl64.Vec3{2, 1, 4})
	c.SetPosition(mgl64.Vec3{0, 10, 0})
	for i := 0; i < 100; i++ {
		c.Step(0.01)
	}
	if math.Abs(c.LinearVelocity().Y()+9.81) > 1e-9 {
		t.Errorf("vy = %v, want -9.81", c.LinearVelocity().Y())
	}
	if !c.Valid() {
		t.Error("state should be finite")
	}
}

func TestChassisForceAtPosSpins(t *testing.T) {
	c := NewChassis(1000, mgl64.Vec3{2, 1, 4})
	c.Gravity = mgl64.Vec3{}

	// A forward push on the +X side yaws the body about -Y.
	c.AddForceAtPos(mgl64.Vec3{0, 0, 100}, mgl64.Vec3{1, 0, 0})
	want := mgl64.Vec3{1, 0, 0}.Cross(mgl64.Vec3{0, 0, 100})
	if !c.PendingTorque().ApproxEqual(want) {
		t.Errorf("torque = %v, want %v", c.PendingTorque(), want)
	}
	c.Step(0.01)
	if c.AngularVelocity().Y() >= 0 {
		t.Errorf("expected negative yaw rate, got %v", c.AngularVelocity())
	}
	if c.PendingForce() != (mgl64.Vec3{}) {
		t.Error("accumulators should clear after Step")
	}
	if math.Abs(c.Orientation().Len()-1) > 1e-9 {
		t.Error("orientation should stay normalized")
	}
}

func TestWorldStep(t *testing.T) {
	w := NewWorld(Ground(0))
	a := NewChassis(500, mgl64.Vec3{1, 1, 1})
	w.Add(a)
	w.Step(0.1)
	if len(w.Bodies()) != 1 || a.LinearVelocity().Y() >= 0 {
		t.Error("world step should integrate gravity")
	}
}
