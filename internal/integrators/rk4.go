package integrators

import "github.com/san-kum/drivesim/internal/dynamo"

// RK4 is the classic fourth-order Runge-Kutta stepper. Stage buffers are
// reused between calls, so an RK4 value must not be shared between
// goroutines.
type RK4 struct {
	k       [4]dynamo.State
	scratch dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) resize(n int) {
	if len(r.scratch) == n {
		return
	}
	for i := range r.k {
		r.k[i] = make(dynamo.State, n)
	}
	r.scratch = make(dynamo.State, n)
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	r.resize(n)

	copy(r.k[0], dyn.Derive(x, u, t))

	axpy(r.scratch, x, r.k[0], dt/2)
	copy(r.k[1], dyn.Derive(r.scratch, u, t+dt/2))

	axpy(r.scratch, x, r.k[1], dt/2)
	copy(r.k[2], dyn.Derive(r.scratch, u, t+dt/2))

	axpy(r.scratch, x, r.k[2], dt)
	copy(r.k[3], dyn.Derive(r.scratch, u, t+dt))

	out := make(dynamo.State, n)
	h := dt / 6
	for i := 0; i < n; i++ {
		out[i] = x[i] + h*(r.k[0][i]+2*r.k[1][i]+2*r.k[2][i]+r.k[3][i])
	}
	return out
}

// ByName returns the stepper registered under name.
func ByName(name string) (dynamo.Integrator, bool) {
	switch name {
	case "euler":
		return NewEuler(), true
	case "rk4", "":
		return NewRK4(), true
	}
	return nil, false
}
