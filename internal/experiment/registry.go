package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/drivesim/internal/config"
	"github.com/san-kum/drivesim/internal/control"
	"github.com/san-kum/drivesim/internal/metrics"
	"github.com/san-kum/drivesim/internal/sim"
)

// DriverFactory builds a driver for the given vehicle configuration.
type DriverFactory func(cfg *config.Config) (sim.Driver, error)

type Registry struct {
	presets map[string]func() *config.Config
	drivers map[string]DriverFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		presets: make(map[string]func() *config.Config),
		drivers: make(map[string]DriverFactory),
	}

	for name, build := range config.Presets {
		r.presets[name] = build
	}

	r.drivers["cruise"] = func(cfg *config.Config) (sim.Driver, error) {
		d := cfg.Driver
		pid := control.NewPID(d.Kp, d.Ki, d.Kd, d.TargetSpeed)
		return control.NewCruise(pid, ForwardGears(cfg.Transmission.Ratios)), nil
	}
	r.drivers["idle"] = func(*config.Config) (sim.Driver, error) { return control.NewIdle(), nil }
	r.drivers["parked"] = func(*config.Config) (sim.Driver, error) { return control.Parked{}, nil }

	return r
}

// RegisterDriver adds or replaces a driver kind.
func (r *Registry) RegisterDriver(name string, f DriverFactory) {
	r.drivers[name] = f
}

func (r *Registry) GetPreset(name string) (*config.Config, error) {
	fn, ok := r.presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset: %s", name)
	}
	return fn(), nil
}

// GetDriver builds the driver named kind. An empty kind falls back to
// cfg.Driver.Kind.
func (r *Registry) GetDriver(kind string, cfg *config.Config) (sim.Driver, error) {
	if kind == "" {
		kind = cfg.Driver.Kind
	}
	fn, ok := r.drivers[kind]
	if !ok {
		return nil, fmt.Errorf("unknown driver: %s", kind)
	}
	return fn(cfg)
}

func (r *Registry) ListPresets() []string { return sortedKeys(r.presets) }

func (r *Registry) ListDrivers() []string { return sortedKeys(r.drivers) }

func (r *Registry) DefaultMetrics(cfg *config.Config) []sim.Metric {
	return metrics.Standard(cfg.ECU.RevLimiterRPM)
}

// ForwardGears counts the positive ratios.
func ForwardGears(ratios []float64) int {
	n := 0
	for _, r := range ratios {
		if r > 0 {
			n++
		}
	}
	return n
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
