package experiment

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/san-kum/drivesim/internal/config"
	"github.com/san-kum/drivesim/internal/dynamo"
	"github.com/san-kum/drivesim/internal/physics"
	"github.com/san-kum/drivesim/internal/sim"
	"github.com/san-kum/drivesim/internal/vehicle"
)

type Config struct {
	Preset      string
	Driver      string
	Dt          float64
	Duration    float64
	SampleEvery int
	// Slope tilts the ground plane about the X axis, in radians. Positive
	// values climb ahead of the spawn point.
	Slope float64
	// Params are applied to the engine through SetParam before the run.
	Params map[string]float64
	// DriverParams tune the driver the same way. The driver must be
	// dynamo.Configurable when any are set.
	DriverParams map[string]float64
}

type Experiment struct {
	cfg       Config
	vehicle   *vehicle.Vehicle
	simulator *sim.Simulator
}

func New(cfg Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup builds the vehicle and its world. Zero Dt and Duration in the
// experiment config are taken from the vehicle config.
func (e *Experiment) Setup(vcfg *config.Config, driver sim.Driver, metrics []sim.Metric, logger zerolog.Logger) error {
	v, err := vehicle.New(vcfg, logger)
	if err != nil {
		return err
	}
	if err := ApplyParams(v.Engine, e.cfg.Params); err != nil {
		return err
	}
	if len(e.cfg.DriverParams) > 0 {
		tunable, ok := driver.(dynamo.Configurable)
		if !ok {
			return fmt.Errorf("driver %T has no tunable parameters", driver)
		}
		if err := ApplyParams(tunable, e.cfg.DriverParams); err != nil {
			return err
		}
	}

	if e.cfg.Dt == 0 {
		e.cfg.Dt = vcfg.Dt
	}
	if e.cfg.Duration == 0 {
		e.cfg.Duration = vcfg.Duration
	}

	space := physics.Ground(0)
	if e.cfg.Slope != 0 {
		space = physics.Incline(e.cfg.Slope)
	}

	e.vehicle = v
	e.simulator = sim.New(v, physics.NewWorld(space), driver)
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

// ApplyParams sets every value in params on target, stopping at the first
// rejected one.
func ApplyParams(target dynamo.Configurable, params map[string]float64) error {
	for name, value := range params {
		if err := target.SetParam(name, value); err != nil {
			return fmt.Errorf("param %s: %w", name, err)
		}
	}
	return nil
}

// Build looks the preset and driver up in r and sets the experiment up.
func Build(r *Registry, cfg Config, logger zerolog.Logger) (*Experiment, error) {
	vcfg, err := r.GetPreset(cfg.Preset)
	if err != nil {
		return nil, err
	}
	return BuildFromConfig(r, vcfg, cfg, logger)
}

// BuildFromConfig is Build for a vehicle config loaded from a file.
func BuildFromConfig(r *Registry, vcfg *config.Config, cfg Config, logger zerolog.Logger) (*Experiment, error) {
	driver, err := r.GetDriver(cfg.Driver, vcfg)
	if err != nil {
		return nil, err
	}
	e := New(cfg)
	if err := e.Setup(vcfg, driver, r.DefaultMetrics(vcfg), logger); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	simCfg := sim.Config{
		Dt:            e.cfg.Dt,
		Duration:      e.cfg.Duration,
		SampleEvery:   e.cfg.SampleEvery,
		ValidateState: true,
	}

	return e.simulator.Run(ctx, simCfg)
}

func (e *Experiment) Config() Config { return e.cfg }

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) Vehicle() *vehicle.Vehicle { return e.vehicle }
