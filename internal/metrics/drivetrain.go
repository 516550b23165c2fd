package metrics

import (
	"math"

	"github.com/san-kum/drivesim/internal/powertrain"
	"github.com/san-kum/drivesim/internal/sim"
	"github.com/san-kum/drivesim/internal/vehicle"
)

type StallCount struct {
	stalls int
}

func NewStallCount() *StallCount { return &StallCount{} }

func (s *StallCount) Name() string { return "stalls" }

func (s *StallCount) Observe(t vehicle.Telemetry) { s.stalls = t.Stalls }

func (s *StallCount) Value() float64 { return float64(s.stalls) }

func (s *StallCount) Reset() { s.stalls = 0 }

// ClutchSlipTime accumulates the seconds the clutch spent slipping, micro
// slip included.
type ClutchSlipTime struct {
	seconds float64
	prevT   float64
	primed  bool
}

func NewClutchSlipTime() *ClutchSlipTime { return &ClutchSlipTime{} }

func (c *ClutchSlipTime) Name() string { return "clutch_slip_s" }

func (c *ClutchSlipTime) Observe(t vehicle.Telemetry) {
	if c.primed && (t.ClutchState == powertrain.ClutchSlipping || t.ClutchState == powertrain.ClutchMicroSlipping) {
		c.seconds += t.Time - c.prevT
	}
	c.prevT = t.Time
	c.primed = true
}

func (c *ClutchSlipTime) Value() float64 { return c.seconds }

func (c *ClutchSlipTime) Reset() {
	c.seconds = 0
	c.prevT = 0
	c.primed = false
}

// ContactRatio is the mean fraction of wheels on the ground.
type ContactRatio struct {
	sum     float64
	samples int
}

func NewContactRatio() *ContactRatio { return &ContactRatio{} }

func (c *ContactRatio) Name() string { return "contact_ratio" }

func (c *ContactRatio) Observe(t vehicle.Telemetry) {
	c.sum += t.ContactRatio()
	c.samples++
}

func (c *ContactRatio) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ContactRatio) Reset() {
	c.sum = 0
	c.samples = 0
}

// OverRev is the fraction of samples with the engine above threshold rpm.
type OverRev struct {
	threshold  float64
	violations int
	samples    int
}

func NewOverRev(threshold float64) *OverRev {
	return &OverRev{threshold: threshold}
}

func (o *OverRev) Name() string { return "over_rev" }

func (o *OverRev) Observe(t vehicle.Telemetry) {
	o.samples++
	if t.EngineRPM > o.threshold {
		o.violations++
	}
}

func (o *OverRev) Value() float64 {
	if o.samples == 0 {
		return 0
	}
	return float64(o.violations) / float64(o.samples)
}

func (o *OverRev) Reset() {
	o.violations = 0
	o.samples = 0
}

// SpeedRMSE is the root mean square deviation of forward speed from a
// target, in m/s, over samples after the first Settle seconds.
type SpeedRMSE struct {
	Target float64
	Settle float64
	sumSq  float64
	n      int
}

func NewSpeedRMSE(target, settle float64) *SpeedRMSE {
	return &SpeedRMSE{Target: target, Settle: settle}
}

func (s *SpeedRMSE) Name() string { return "speed_rmse" }

func (s *SpeedRMSE) Observe(t vehicle.Telemetry) {
	if t.Time < s.Settle {
		return
	}
	d := t.Speed - s.Target
	s.sumSq += d * d
	s.n++
}

func (s *SpeedRMSE) Value() float64 {
	if s.n == 0 {
		return 0
	}
	return math.Sqrt(s.sumSq / float64(s.n))
}

func (s *SpeedRMSE) Reset() {
	s.sumSq = 0
	s.n = 0
}

// Standard is the metric set the CLI attaches to every run.
func Standard(revLimitRPM float64) []sim.Metric {
	return []sim.Metric{
		NewPeakRPM(),
		NewPeakPower(),
		NewTopSpeed(),
		NewStallCount(),
		NewClutchSlipTime(),
		NewContactRatio(),
		NewOverRev(revLimitRPM),
	}
}
