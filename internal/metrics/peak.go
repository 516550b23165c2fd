package metrics

import (
	"math"

	"github.com/san-kum/drivesim/internal/vehicle"
)

// Peak keeps the largest value a selector returns over a run.
type Peak struct {
	name   string
	pick   func(vehicle.Telemetry) float64
	peak   float64
	primed bool
}

func NewPeak(name string, pick func(vehicle.Telemetry) float64) *Peak {
	return &Peak{name: name, pick: pick}
}

func NewPeakRPM() *Peak {
	return NewPeak("peak_rpm", func(t vehicle.Telemetry) float64 { return t.EngineRPM })
}

func NewPeakPower() *Peak {
	return NewPeak("peak_power_kw", func(t vehicle.Telemetry) float64 { return t.PowerKW })
}

func NewTopSpeed() *Peak {
	return NewPeak("top_speed_kmh", func(t vehicle.Telemetry) float64 { return math.Abs(t.SpeedKmh()) })
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(t vehicle.Telemetry) {
	v := p.pick(t)
	if !p.primed || v > p.peak {
		p.peak = v
		p.primed = true
	}
}

func (p *Peak) Value() float64 { return p.peak }

func (p *Peak) Reset() {
	p.peak = 0
	p.primed = false
}
