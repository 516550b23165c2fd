package control

import (
	"fmt"
	"math"
)

// PID tracks Target. When OutputMin < OutputMax the output is clamped and
// the integral stops growing while saturated.
type PID struct {
	Kp        float64
	Ki        float64
	Kd        float64
	Target    float64
	OutputMin float64
	OutputMax float64
	integral  float64
	prevErr   float64
	prevT     float64
	first     bool
}

func NewPID(kp, ki, kd, target float64) *PID {
	return &PID{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
		first:  true,
	}
}

// Compute returns the control output for a measurement taken at time t.
func (p *PID) Compute(measured, t float64) float64 {
	err := p.Target - measured

	if p.first {
		p.prevErr = err
		p.prevT = t
		p.first = false
		return p.limit(p.Kp * err)
	}

	dt := t - p.prevT
	if dt <= 0 {
		return p.limit(p.Kp*err + p.Ki*p.integral)
	}

	derivative := (err - p.prevErr) / dt
	p.prevErr = err
	p.prevT = t

	integral := p.integral + err*dt
	u := p.Kp*err + p.Ki*integral + p.Kd*derivative
	if limited := p.limit(u); limited != u {
		return limited
	}
	p.integral = integral
	return u
}

func (p *PID) limit(u float64) float64 {
	if p.OutputMin >= p.OutputMax {
		return u
	}
	return math.Max(p.OutputMin, math.Min(p.OutputMax, u))
}

// Reset clears integral and derivative state
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
}

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"kp":     p.Kp,
		"ki":     p.Ki,
		"kd":     p.Kd,
		"target": p.Target,
	}
}

// SetParam adjusts a PID parameter
func (p *PID) SetParam(name string, value float64) error {
	switch name {
	case "kp":
		p.Kp = value
	case "ki":
		p.Ki = value
	case "kd":
		p.Kd = value
	case "target":
		p.Target = value
	default:
		return fmt.Errorf("pid: unknown parameter %q", name)
	}
	return nil
}
