package dynamo

import "math"

// State is the vector a System integrates, e.g. crank {angle, speed}.
type State []float64

// IsValid reports whether every component is finite.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Control holds the inputs held constant over one step.
type Control []float64

// System is a first-order ODE dX/dt = Derive(X, u, t).
type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

// Integrator advances a System by one fixed step.
type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

// Configurable exposes named float parameters for tuning between or during
// runs. The engine and the cruise driver implement it.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
