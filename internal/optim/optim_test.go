package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/san-kum/drivesim/internal/experiment"
	"github.com/san-kum/drivesim/internal/sim"
)

func TestLinspace(t *testing.T) {
	got := Linspace(0, 1, 5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Linspace = %v, want %v", got, want)
		}
	}
	if len(Linspace(3, 4, 1)) != 1 {
		t.Error("single point")
	}
}

func TestGridSearch(t *testing.T) {
	registry := experiment.NewRegistry()
	search := NewGridSearch([]string{"friction"}, [][]float64{{5, 10, 15}})

	scores := map[float64]float64{5: 3, 10: 1, 15: 2}
	var last map[string]float64
	build := func(p map[string]float64) (*experiment.Experiment, error) {
		last = p
		return experiment.Build(registry, experiment.Config{
			Preset:   "hatchback",
			Driver:   "parked",
			Duration: 0.1,
			Params:   p,
		}, zerolog.Nop())
	}

	best, err := search.Search(context.Background(), build, func(*sim.Result) float64 {
		return scores[last["friction"]]
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if best.Params["friction"] != 10 || best.Score != 1 {
		t.Errorf("unexpected best %+v", best)
	}
	if best.Evaluated != 3 || best.Failed != 0 {
		t.Errorf("expected 3 clean evaluations, got %+v", best)
	}
}

func TestGridSearchBuildErrors(t *testing.T) {
	search := NewGridSearch([]string{"boost"}, [][]float64{{1, 2}})
	_, err := search.Search(context.Background(), func(p map[string]float64) (*experiment.Experiment, error) {
		return experiment.Build(experiment.NewRegistry(), experiment.Config{Preset: "kart_2t", Driver: "parked", Params: p}, zerolog.Nop())
	}, MetricObjective("stalls"))
	if !errors.Is(err, ErrNoCandidate) {
		t.Errorf("unknown params should fail every point, got %v", err)
	}
}

func TestGridSearchAllFail(t *testing.T) {
	search := NewGridSearch([]string{"a"}, [][]float64{{1, 2}})
	best, err := search.Search(context.Background(), func(map[string]float64) (*experiment.Experiment, error) {
		return nil, errors.New("nope")
	}, MetricObjective("stalls"))
	if !errors.Is(err, ErrNoCandidate) {
		t.Fatalf("expected ErrNoCandidate, got %v", err)
	}
	if best.Failed != 2 {
		t.Errorf("expected 2 failures, got %d", best.Failed)
	}
}

func TestGridSearchCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	search := NewGridSearch([]string{"a"}, [][]float64{{1}})
	_, err := search.Search(ctx, func(map[string]float64) (*experiment.Experiment, error) {
		t.Fatal("nothing should be built after cancel")
		return nil, nil
	}, MetricObjective("stalls"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestGridSearchMismatch(t *testing.T) {
	if _, err := NewGridSearch([]string{"a", "b"}, [][]float64{{1}}).Search(context.Background(), nil, nil); err == nil {
		t.Error("expected mismatch error")
	}
}

func TestCruiseTuning(t *testing.T) {
	if testing.Short() {
		t.Skip("runs several cruise launches")
	}
	tuning := &CruiseTuning{
		Preset:   "hatchback",
		Kp:       []float64{0.15, 0.3},
		Ki:       []float64{0.02},
		Duration: 15,
		Settle:   10,
	}
	best, err := tuning.Tune(context.Background(), experiment.NewRegistry(), zerolog.Nop())
	if err != nil {
		t.Fatalf("tune failed: %v", err)
	}
	if best.Evaluated != 2 {
		t.Errorf("expected 2 evaluations, got %d", best.Evaluated)
	}
	if best.Params == nil || best.Params["ki"] != 0.02 {
		t.Errorf("unexpected best %+v", best)
	}
}
