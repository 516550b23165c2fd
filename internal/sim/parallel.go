package sim

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// Factory builds the simulator for run i. Every run must get its own
// vehicle, world and driver; nothing is shared between goroutines.
type Factory func(i int) (*Simulator, error)

type Ensemble struct {
	factory Factory
	numRuns int
	workers int
}

// NewEnsemble runs at most workers simulators at once. workers <= 0 means
// one per CPU.
func NewEnsemble(factory Factory, numRuns, workers int) *Ensemble {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Ensemble{factory: factory, numRuns: numRuns, workers: workers}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)
	semaphore := make(chan struct{}, e.workers)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		semaphore <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-semaphore }()

			sim, err := e.factory(idx)
			if err != nil {
				errs[idx] = fmt.Errorf("run %d: %w", idx, err)
				return
			}
			results[idx], errs[idx] = sim.Run(ctx, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
