package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/drivesim/internal/dynamo"
)

// flywheel spins up under a constant torque u[0] with unit inertia.
type flywheel struct{}

func (flywheel) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{x[1], u[0]}
}
func (flywheel) StateDim() int   { return 2 }
func (flywheel) ControlDim() int { return 1 }

type oscillator struct{}

func (oscillator) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}
func (oscillator) StateDim() int   { return 2 }
func (oscillator) ControlDim() int { return 0 }

func TestRK4Accuracy(t *testing.T) {
	integ := NewRK4()
	x := dynamo.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(oscillator{}, x, nil, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestConstantTorque(t *testing.T) {
	tests := []struct {
		name  string
		integ dynamo.Integrator
		tol   float64
	}{
		{"euler", NewEuler(), 0.06},
		{"rk4", NewRK4(), 1e-9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := dynamo.State{0, 0}
			u := dynamo.Control{2.0}
			dt := 0.01
			for i := 0; i < 100; i++ {
				x = tt.integ.Step(flywheel{}, x, u, float64(i)*dt, dt)
			}
			// omega = a*t, angle = a*t^2/2
			if math.Abs(x[1]-2.0) > 1e-9 {
				t.Errorf("omega = %v, want 2", x[1])
			}
			if math.Abs(x[0]-1.0) > tt.tol {
				t.Errorf("angle = %v, want 1", x[0])
			}
		})
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"euler", "rk4", ""} {
		if _, ok := ByName(name); !ok {
			t.Errorf("ByName(%q) not found", name)
		}
	}
	if _, ok := ByName("verlet"); ok {
		t.Error("unexpected integrator for unknown name")
	}
}
