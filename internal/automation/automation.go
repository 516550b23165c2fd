package automation

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/san-kum/drivesim/internal/config"
	"github.com/san-kum/drivesim/internal/experiment"
	"github.com/san-kum/drivesim/internal/physics"
	"github.com/san-kum/drivesim/internal/sim"
	"github.com/san-kum/drivesim/internal/vehicle"
)

// RunScenario plays a scenario against its preset. An empty preset means
// config.DefaultPreset.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, logger zerolog.Logger) (*sim.Result, error) {
	preset := scenario.Preset
	if preset == "" {
		preset = config.DefaultPreset
	}
	vcfg, err := registry.GetPreset(preset)
	if err != nil {
		return nil, err
	}

	exp := experiment.New(experiment.Config{
		Preset:   preset,
		Dt:       scenario.Dt,
		Duration: scenario.Duration,
		Slope:    scenario.Slope,
	})
	if err := exp.Setup(vcfg, NewPlayer(scenario), registry.DefaultMetrics(vcfg), logger); err != nil {
		return nil, fmt.Errorf("scenario %s setup: %w", scenario.Name, err)
	}

	logger.Info().Str("scenario", scenario.Name).Str("preset", preset).Int("events", len(scenario.Events)).Msg("running scenario")

	result, err := exp.Run(ctx)
	if err != nil {
		return result, fmt.Errorf("scenario %s run: %w", scenario.Name, err)
	}
	return result, nil
}

// ParameterSweep runs one experiment per value of an engine parameter
type ParameterSweep struct {
	Preset    string
	Driver    string
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Duration  float64
	Dt        float64
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue float64
	Metrics    map[string]float64
	Final      vehicle.Telemetry
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry, logger zerolog.Logger) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d", sweep.NumSteps)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		exp, err := experiment.Build(registry, experiment.Config{
			Preset:   sweep.Preset,
			Driver:   sweep.Driver,
			Dt:       sweep.Dt,
			Duration: sweep.Duration,
			Params:   map[string]float64{sweep.ParamName: paramVal},
		}, logger)
		if err != nil {
			return nil, err
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		results = append(results, SweepResult{
			ParamValue: paramVal,
			Metrics:    result.Metrics,
			Final:      result.Final,
		})

		logger.Debug().Msgf("Sweep %d/%d: %s=%.4f", i+1, sweep.NumSteps, sweep.ParamName, paramVal)
	}

	return results, nil
}

// MonteCarloConfig describes a batch of cold starts at random ambient
// temperatures.
type MonteCarloConfig struct {
	Preset           string
	Driver           string
	BaseTemperatureC float64
	Perturbation     float64
	NumTrials        int
	Duration         float64
	Dt               float64
	Seed             int64
	Workers          int
}

// MonteCarloResult holds the outcome of one trial
type MonteCarloResult struct {
	TrialID      int
	TemperatureC float64
	Started      bool // running at the end without a stall
	Stalls       int
	FinalRPM     float64
}

// RunMonteCarlo runs the trials in parallel, one vehicle per goroutine.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, registry *experiment.Registry, logger zerolog.Logger) ([]MonteCarloResult, error) {
	base, err := registry.GetPreset(cfg.Preset)
	if err != nil {
		return nil, err
	}
	driver := cfg.Driver
	if driver == "" {
		driver = "idle"
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	temps := make([]float64, cfg.NumTrials)
	for i := range temps {
		temps[i] = cfg.BaseTemperatureC + (rng.Float64()-0.5)*2*cfg.Perturbation
	}

	factory := func(i int) (*sim.Simulator, error) {
		vcfg, err := registry.GetPreset(cfg.Preset)
		if err != nil {
			return nil, err
		}
		vcfg.Environment.TemperatureC = temps[i]
		d, err := registry.GetDriver(driver, vcfg)
		if err != nil {
			return nil, err
		}
		v, err := vehicle.New(vcfg, logger)
		if err != nil {
			return nil, err
		}
		return sim.New(v, physics.NewWorld(physics.Ground(0)), d), nil
	}

	simCfg := sim.Config{Dt: cfg.Dt, Duration: cfg.Duration, SampleEvery: 1 << 30, ValidateState: true}
	if simCfg.Dt == 0 {
		simCfg.Dt = base.Dt
	}
	if simCfg.Duration == 0 {
		simCfg.Duration = base.Duration
	}

	runs, err := sim.NewEnsemble(factory, cfg.NumTrials, cfg.Workers).Run(ctx, simCfg)
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, 0, cfg.NumTrials)
	for trial, r := range runs {
		results = append(results, MonteCarloResult{
			TrialID:      trial,
			TemperatureC: temps[trial],
			Started:      r.Final.Running && r.Final.Stalls == 0,
			Stalls:       r.Final.Stalls,
			FinalRPM:     r.Final.EngineRPM,
		})
	}

	logger.Info().Int("trials", cfg.NumTrials).Msg("Monte Carlo complete")
	return results, nil
}

// MonteCarloStats counts started and failed trials
func MonteCarloStats(results []MonteCarloResult) (started int, failed int) {
	for _, r := range results {
		if r.Started {
			started++
		} else {
			failed++
		}
	}
	return
}
