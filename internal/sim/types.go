package sim

import (
	"fmt"

	"github.com/san-kum/drivesim/internal/vehicle"
)

// Command is what a driver asks of the vehicle for one tick.
type Command struct {
	Inputs vehicle.Inputs
	// Gear is a gear label ("R", "N", "1", ...). Empty keeps the current gear.
	Gear string
}

// Driver decides the next command from the latest telemetry.
type Driver interface {
	Drive(t vehicle.Telemetry) Command
}

type DriverFunc func(t vehicle.Telemetry) Command

func (f DriverFunc) Drive(t vehicle.Telemetry) Command { return f(t) }

type Metric interface {
	Name() string
	Observe(t vehicle.Telemetry)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(t vehicle.Telemetry)
}

type Config struct {
	Dt       float64
	Duration float64
	// SampleEvery keeps every n-th telemetry row. 0 and 1 keep all of them.
	SampleEvery   int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            1.0 / 120,
		Duration:      20,
		SampleEvery:   1,
		ValidateState: true,
	}
}

// Result holds the sampled telemetry rows (see vehicle.Columns) and the
// final metric values.
type Result struct {
	Times      []float64
	Rows       [][]float64
	Final      vehicle.Telemetry
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

type SimError struct {
	Step    int
	Time    float64
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
