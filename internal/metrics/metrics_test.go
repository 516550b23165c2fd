package metrics

import (
	"math"
	"testing"

	"go.opentelemetry.io/otel/metric/noop"

	"github.com/san-kum/drivesim/internal/powertrain"
	"github.com/san-kum/drivesim/internal/vehicle"
)

func TestPeak(t *testing.T) {
	m := NewPeakRPM()
	for _, rpm := range []float64{800, 4200, 3100} {
		m.Observe(vehicle.Telemetry{EngineRPM: rpm})
	}
	if m.Value() != 4200 {
		t.Errorf("expected 4200, got %v", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestTopSpeedReverse(t *testing.T) {
	m := NewTopSpeed()
	m.Observe(vehicle.Telemetry{Speed: -5})
	if math.Abs(m.Value()-18) > 1e-9 {
		t.Errorf("expected 18 km/h, got %v", m.Value())
	}
}

func TestClutchSlipTime(t *testing.T) {
	m := NewClutchSlipTime()
	states := []powertrain.ClutchState{
		powertrain.ClutchOpen,
		powertrain.ClutchSlipping,
		powertrain.ClutchSlipping,
		powertrain.ClutchMicroSlipping,
		powertrain.ClutchLocked,
	}
	for i, s := range states {
		m.Observe(vehicle.Telemetry{Time: float64(i) * 0.5, ClutchState: s})
	}
	if math.Abs(m.Value()-1.5) > 1e-12 {
		t.Errorf("expected 1.5 s of slip, got %v", m.Value())
	}
}

func TestContactRatio(t *testing.T) {
	m := NewContactRatio()
	if m.Value() != 0 {
		t.Error("empty ratio should be 0")
	}
	m.Observe(vehicle.Telemetry{Wheels: []vehicle.WheelTelemetry{{Contact: true}, {Contact: true}}})
	m.Observe(vehicle.Telemetry{Wheels: []vehicle.WheelTelemetry{{Contact: true}, {Contact: false}}})
	if m.Value() != 0.75 {
		t.Errorf("expected 0.75, got %v", m.Value())
	}
}

func TestOverRev(t *testing.T) {
	m := NewOverRev(6000)
	for _, rpm := range []float64{5000, 6500, 7000, 2000} {
		m.Observe(vehicle.Telemetry{EngineRPM: rpm})
	}
	if m.Value() != 0.5 {
		t.Errorf("expected 0.5, got %v", m.Value())
	}
}

func TestStallCount(t *testing.T) {
	m := NewStallCount()
	m.Observe(vehicle.Telemetry{Stalls: 2})
	if m.Value() != 2 {
		t.Errorf("expected 2, got %v", m.Value())
	}
}

func TestSpeedRMSE(t *testing.T) {
	m := NewSpeedRMSE(10, 1)
	m.Observe(vehicle.Telemetry{Time: 0.5, Speed: 0})
	if m.Value() != 0 {
		t.Errorf("samples before settle must be ignored, got %v", m.Value())
	}
	m.Observe(vehicle.Telemetry{Time: 1, Speed: 7})
	m.Observe(vehicle.Telemetry{Time: 2, Speed: 14})
	if math.Abs(m.Value()-math.Sqrt(12.5)) > 1e-12 {
		t.Errorf("expected sqrt(12.5), got %v", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("reset")
	}
}

func TestStandardNamesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, m := range Standard(6800) {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
}

func TestInstruments(t *testing.T) {
	in, err := NewInstrumentsWithMeter(noop.Meter{}, "hatchback")
	if err != nil {
		t.Fatalf("instruments: %v", err)
	}
	defer in.Close()

	in.OnStep(vehicle.Telemetry{EngineRPM: 900, Stalls: 1})
	in.OnStep(vehicle.Telemetry{EngineRPM: 950, Stalls: 1})

	if in.Last().EngineRPM != 950 {
		t.Errorf("expected last rpm 950, got %v", in.Last().EngineRPM)
	}
	if in.counted != 1 {
		t.Errorf("expected 1 counted stall, got %d", in.counted)
	}
}

func TestInstrumentsGlobalMeter(t *testing.T) {
	if _, err := NewInstruments("kart_2t"); err != nil {
		t.Fatalf("global meter should default to no-op: %v", err)
	}
}
