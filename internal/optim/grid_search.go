// Package optim searches parameter grids for the combination that
// minimises a score computed from a run.
package optim

import (
	"context"
	"errors"
	"math"

	"github.com/san-kum/drivesim/internal/experiment"
	"github.com/san-kum/drivesim/internal/sim"
)

// Objective scores a finished run; lower is better.
type Objective func(*sim.Result) float64

// MetricObjective scores a run by one of its metrics.
func MetricObjective(name string) Objective {
	return func(r *sim.Result) float64 { return r.Metrics[name] }
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Best is the outcome of a search. Failed counts grid points whose
// experiment could not be built or run.
type Best struct {
	Params    map[string]float64
	Score     float64
	Evaluated int
	Failed    int
}

var ErrNoCandidate = errors.New("optim: no grid point completed")

// Search runs every point of the grid. It stops early only when ctx is
// done.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	objective Objective,
) (*Best, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, errors.New("optim: one range per parameter required")
	}

	best := &Best{Score: math.Inf(1)}
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), buildExperiment, objective, best); err != nil {
		return best, err
	}
	if best.Params == nil {
		return best, ErrNoCandidate
	}
	return best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	objective Objective,
	best *Best,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		best.Evaluated++
		exp, err := buildExperiment(current)
		if err != nil {
			best.Failed++
			return nil
		}

		result, err := exp.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			best.Failed++
			return nil
		}

		if val := objective(result); val < best.Score {
			best.Score = val
			best.Params = make(map[string]float64, len(current))
			for k, v := range current {
				best.Params[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, buildExperiment, objective, best); err != nil {
			return err
		}
	}
	return nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}
