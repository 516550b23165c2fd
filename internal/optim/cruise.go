package optim

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/san-kum/drivesim/internal/experiment"
	"github.com/san-kum/drivesim/internal/metrics"
	"github.com/san-kum/drivesim/internal/sim"
)

// stallPenalty is added to the speed error, in m/s, for every stall.
const stallPenalty = 100

// CruiseTuning searches cruise driver gains for the lowest speed error
// after the launch has settled.
type CruiseTuning struct {
	Preset   string
	Kp, Ki   []float64
	Duration float64
	Settle   float64
}

// Tune returns the best kp/ki pair for the preset's target speed.
func (c *CruiseTuning) Tune(ctx context.Context, registry *experiment.Registry, logger zerolog.Logger) (*Best, error) {
	search := NewGridSearch([]string{"kp", "ki"}, [][]float64{c.Kp, c.Ki})

	build := func(p map[string]float64) (*experiment.Experiment, error) {
		vcfg, err := registry.GetPreset(c.Preset)
		if err != nil {
			return nil, err
		}
		vcfg.Driver.Kind = "cruise"

		driver, err := registry.GetDriver("cruise", vcfg)
		if err != nil {
			return nil, err
		}
		ms := append(registry.DefaultMetrics(vcfg), metrics.NewSpeedRMSE(vcfg.Driver.TargetSpeed, c.Settle))

		exp := experiment.New(experiment.Config{
			Preset:       c.Preset,
			Driver:       "cruise",
			Duration:     c.Duration,
			SampleEvery:  1000,
			DriverParams: p,
		})
		if err := exp.Setup(vcfg, driver, ms, logger); err != nil {
			return nil, err
		}
		logger.Debug().Float64("kp", p["kp"]).Float64("ki", p["ki"]).Msg("evaluating cruise gains")
		return exp, nil
	}

	objective := func(r *sim.Result) float64 {
		return r.Metrics["speed_rmse"] + stallPenalty*r.Metrics["stalls"]
	}
	return search.Search(ctx, build, objective)
}
