package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/san-kum/drivesim/internal/physics"
	"github.com/san-kum/drivesim/internal/vehicle"
)

// Simulator drives one vehicle through a physics world at a fixed step.
type Simulator struct {
	vehicle   *vehicle.Vehicle
	world     *physics.World
	driver    Driver
	metrics   []Metric
	observers []Observer
	logger    zerolog.Logger
}

// New adds the vehicle chassis to the world if it is not there yet.
func New(v *vehicle.Vehicle, world *physics.World, driver Driver) *Simulator {
	found := false
	for _, b := range world.Bodies() {
		if b == v.Chassis {
			found = true
			break
		}
	}
	if !found {
		world.Add(v.Chassis)
	}
	return &Simulator{
		vehicle:   v,
		world:     world,
		driver:    driver,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    v.Logger,
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Vehicle() *vehicle.Vehicle { return s.vehicle }
func (s *Simulator) World() *physics.World     { return s.world }

// Step runs the driver, the vehicle tick and the world integration once and
// returns the telemetry after the step.
func (s *Simulator) Step(dt float64) vehicle.Telemetry {
	v := s.vehicle
	cmd := s.driver.Drive(v.Telemetry())
	if cmd.Gear != "" && cmd.Gear != v.GearBox.Label(v.GearBox.Gear()) {
		if idx, err := v.GearBox.Index(cmd.Gear); err != nil {
			s.logger.Debug().Str("gear", cmd.Gear).Err(err).Msg("unknown gear requested")
		} else {
			_ = v.Shift(idx)
		}
	}
	v.Tick(cmd.Inputs, s.world.Space, dt)
	s.world.Step(dt)
	return v.Telemetry()
}

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	every := max(cfg.SampleEvery, 1)
	result := &Result{
		Times:   make([]float64, 0, steps/every+1),
		Rows:    make([][]float64, 0, steps/every+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	tel := s.vehicle.Telemetry()
	result.Times = append(result.Times, tel.Time)
	result.Rows = append(result.Rows, tel.Values())

	s.logger.Info().
		Str("vehicle", s.vehicle.Name).
		Float64("dt", cfg.Dt).
		Float64("duration", cfg.Duration).
		Msg("run started")

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			result.Final = tel
			return result, ctx.Err()
		default:
		}

		tel = s.Step(cfg.Dt)

		if cfg.ValidateState && !s.valid() {
			err := SimError{Step: i, Time: tel.Time, Message: "invalid state (NaN/Inf)"}
			s.logger.Error().Err(err).Msg("run aborted")
			result.Errors = append(result.Errors, err)
			break
		}

		for _, m := range s.metrics {
			m.Observe(tel)
		}
		for _, obs := range s.observers {
			obs.OnStep(tel)
		}

		result.StepsTaken++
		if result.StepsTaken%every == 0 {
			result.Times = append(result.Times, tel.Time)
			result.Rows = append(result.Rows, tel.Values())
		}
	}

	result.Final = tel
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.logger.Info().
		Int("steps", result.StepsTaken).
		Int("stalls", tel.Stalls).
		Float64("speed_kmh", tel.SpeedKmh()).
		Msg("run finished")

	return result, nil
}

// RunWithCallback steps until the duration elapses or callback returns
// false. Nothing is recorded.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(vehicle.Telemetry) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	start := s.vehicle.Time()
	for s.vehicle.Time()-start < cfg.Duration {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		tel := s.Step(cfg.Dt)
		if cfg.ValidateState && !s.valid() {
			return fmt.Errorf("invalid state at t=%.4f", tel.Time)
		}
		if !callback(tel) {
			return nil
		}
	}

	return nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.SampleEvery < 0 {
		return fmt.Errorf("sample interval must not be negative, got %d", cfg.SampleEvery)
	}
	return nil
}

func (s *Simulator) valid() bool {
	w := s.vehicle.Engine.AngularVelocity
	return s.vehicle.Chassis.Valid() && !math.IsNaN(w) && !math.IsInf(w, 0)
}
