package metrics

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/san-kum/drivesim/internal/vehicle"
)

const instrumentationName = "github.com/san-kum/drivesim/internal/metrics"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Instruments publishes a run through OpenTelemetry. It is a sim.Observer.
// Without a configured global provider every instrument is a no-op.
type Instruments struct {
	attrs metric.MeasurementOption

	ticks   metric.Int64Counter
	stalls  metric.Int64Counter
	rpm     metric.Float64ObservableGauge
	speed   metric.Float64ObservableGauge
	reg     metric.Registration
	mu      sync.RWMutex
	last    vehicle.Telemetry
	counted int
}

func NewInstruments(vehicleName string) (*Instruments, error) {
	return NewInstrumentsWithMeter(meter(), vehicleName)
}

func NewInstrumentsWithMeter(m metric.Meter, vehicleName string) (*Instruments, error) {
	in := &Instruments{
		attrs: metric.WithAttributes(attribute.String("vehicle", vehicleName)),
	}

	var err error
	in.ticks, err = m.Int64Counter(
		"drivesim.ticks",
		metric.WithDescription("Simulation ticks executed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tick counter: %w", err)
	}

	in.stalls, err = m.Int64Counter(
		"drivesim.engine.stalls",
		metric.WithDescription("Engine stalls while the ignition was on"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating stall counter: %w", err)
	}

	in.rpm, err = m.Float64ObservableGauge(
		"drivesim.engine.rpm",
		metric.WithDescription("Crankshaft speed"),
		metric.WithUnit("{rpm}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rpm gauge: %w", err)
	}

	in.speed, err = m.Float64ObservableGauge(
		"drivesim.vehicle.speed",
		metric.WithDescription("Forward speed"),
		metric.WithUnit("m/s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating speed gauge: %w", err)
	}

	in.reg, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			in.mu.RLock()
			defer in.mu.RUnlock()
			o.ObserveFloat64(in.rpm, in.last.EngineRPM, in.attrs)
			o.ObserveFloat64(in.speed, in.last.Speed, in.attrs)
			return nil
		},
		in.rpm, in.speed,
	)
	if err != nil {
		return nil, fmt.Errorf("registering gauge callback: %w", err)
	}

	return in, nil
}

func (in *Instruments) OnStep(t vehicle.Telemetry) {
	ctx := context.Background()
	in.ticks.Add(ctx, 1, in.attrs)

	in.mu.Lock()
	newStalls := t.Stalls - in.counted
	in.counted = t.Stalls
	in.last = t
	in.mu.Unlock()

	if newStalls > 0 {
		in.stalls.Add(ctx, int64(newStalls), in.attrs)
	}
}

// Last returns the most recent telemetry seen.
func (in *Instruments) Last() vehicle.Telemetry {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.last
}

// Close unregisters the gauge callback.
func (in *Instruments) Close() error {
	return in.reg.Unregister()
}
