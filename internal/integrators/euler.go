package integrators

import "github.com/san-kum/drivesim/internal/dynamo"

// Euler is the explicit first-order stepper. It is the cheapest choice for
// the crankshaft, whose derivative only depends on the torque input.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	dx := dyn.Derive(x, u, t)
	result := make(dynamo.State, len(x))
	axpy(result, x, dx, dt)
	return result
}

// axpy writes x + h*k into dst.
func axpy(dst, x, k dynamo.State, h float64) {
	for i := range x {
		dst[i] = x[i] + h*k[i]
	}
}
