package automation

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/san-kum/drivesim/internal/config"
	"github.com/san-kum/drivesim/internal/experiment"
	"github.com/san-kum/drivesim/internal/vehicle"
)

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario("testdata/launch.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Name != "launch" || s.Preset != "hatchback" {
		t.Errorf("unexpected header %+v", s)
	}
	if len(s.Events) != 7 {
		t.Errorf("expected 7 events, got %d", len(s.Events))
	}
	if s.End() != 9 {
		t.Errorf("expected end 9, got %v", s.End())
	}
}

func TestScenarioValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"pedal above one", "events:\n  - at: 1\n    throttle: 1.5\n"},
		{"negative time", "events:\n  - at: -1\n"},
		{"steer out of range", "events:\n  - at: 0\n    steer: -2\n"},
		{"negative duration", "duration: -3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseScenario([]byte(tt.yaml)); !errors.Is(err, ErrInvalidScenario) {
				t.Errorf("expected ErrInvalidScenario, got %v", err)
			}
		})
	}
}

func TestPlayerRamps(t *testing.T) {
	s, err := ParseScenario([]byte(`
events:
  - at: 1
    clutch: 1
  - at: 0
    key: true
  - at: 2
    over: 2
    clutch: 0
    steer: -0.5
`))
	if err != nil {
		t.Fatal(err)
	}
	p := NewPlayer(s)

	tests := []struct {
		time   float64
		clutch float64
		steer  float64
	}{
		{0, 0, 0},
		{1, 1, 0},
		{2, 1, 0},
		{3, 0.5, -0.25},
		{4, 0, -0.5},
		{10, 0, -0.5},
	}
	for _, tt := range tests {
		cmd := p.Drive(vehicle.Telemetry{Time: tt.time})
		if !cmd.Inputs.KeyInserted {
			t.Errorf("t=%v: key should be inserted", tt.time)
		}
		if math.Abs(cmd.Inputs.PedalTravelClutch0to1-tt.clutch) > 1e-9 {
			t.Errorf("t=%v: clutch %v, want %v", tt.time, cmd.Inputs.PedalTravelClutch0to1, tt.clutch)
		}
		if math.Abs(cmd.Inputs.Steer-tt.steer) > 1e-9 {
			t.Errorf("t=%v: steer %v, want %v", tt.time, cmd.Inputs.Steer, tt.steer)
		}
	}
	if !p.Done() {
		t.Error("player should be done")
	}
}

func TestPlayerGearOnce(t *testing.T) {
	s, err := ParseScenario([]byte("events:\n  - at: 0\n    gear: \"2\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	p := NewPlayer(s)
	if cmd := p.Drive(vehicle.Telemetry{}); cmd.Gear != "2" {
		t.Errorf("expected gear 2, got %q", cmd.Gear)
	}
	if cmd := p.Drive(vehicle.Telemetry{Time: 0.1}); cmd.Gear != "" {
		t.Errorf("gear request should not repeat, got %q", cmd.Gear)
	}
}

func TestDriverFactory(t *testing.T) {
	cfg := config.DefaultConfig()
	if _, err := DriverFactory(cfg); !errors.Is(err, ErrInvalidScenario) {
		t.Errorf("expected ErrInvalidScenario without a file, got %v", err)
	}

	cfg.Driver.Scenario = "testdata/launch.yaml"
	d, err := DriverFactory(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := d.(*Player); !ok {
		t.Errorf("expected *Player, got %T", d)
	}
}

func TestRunScenario(t *testing.T) {
	s, err := LoadScenario("testdata/launch.yaml")
	if err != nil {
		t.Fatal(err)
	}

	result, err := RunScenario(context.Background(), s, experiment.NewRegistry(), zerolog.Nop())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.Metrics["stalls"] != 0 {
		t.Errorf("expected no stalls, got %v", result.Metrics["stalls"])
	}
	if result.Metrics["top_speed_kmh"] < 5 {
		t.Errorf("expected the car to pull away, top speed %.1f km/h", result.Metrics["top_speed_kmh"])
	}
	if math.Abs(result.Final.Speed) > 0.5 {
		t.Errorf("expected the car to stop, speed %.2f", result.Final.Speed)
	}
	if !result.Final.Running {
		t.Error("engine should still be running")
	}
}

func TestRunSweep(t *testing.T) {
	reg := experiment.NewRegistry()

	if _, err := RunSweep(context.Background(), &ParameterSweep{NumSteps: 1}, reg, zerolog.Nop()); err == nil {
		t.Error("expected error for a single step sweep")
	}

	results, err := RunSweep(context.Background(), &ParameterSweep{
		Preset:    "kart_2t",
		Driver:    "parked",
		ParamName: "friction",
		ParamMin:  1,
		ParamMax:  3,
		NumSteps:  3,
		Duration:  0.5,
	}, reg, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, want := range []float64{1, 2, 3} {
		if math.Abs(results[i].ParamValue-want) > 1e-12 {
			t.Errorf("step %d: value %v, want %v", i, results[i].ParamValue, want)
		}
	}
}

func TestRunMonteCarlo(t *testing.T) {
	cfg := &MonteCarloConfig{
		Preset:           "hatchback",
		BaseTemperatureC: 15,
		Perturbation:     10,
		NumTrials:        3,
		Duration:         4,
		Seed:             7,
		Workers:          2,
	}

	results, err := RunMonteCarlo(context.Background(), cfg, experiment.NewRegistry(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 trials, got %d", len(results))
	}
	for _, r := range results {
		if r.TemperatureC < 5 || r.TemperatureC > 25 {
			t.Errorf("trial %d: temperature %.1f outside the perturbation band", r.TrialID, r.TemperatureC)
		}
	}

	started, failed := MonteCarloStats(results)
	if started != 3 || failed != 0 {
		t.Errorf("expected 3 starts, got %d started and %d failed", started, failed)
	}

	again, err := RunMonteCarlo(context.Background(), cfg, experiment.NewRegistry(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	for i := range results {
		if results[i].TemperatureC != again[i].TemperatureC {
			t.Error("same seed should draw the same temperatures")
		}
	}
}
