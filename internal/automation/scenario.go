package automation

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/drivesim/internal/config"
	"github.com/san-kum/drivesim/internal/sim"
	"github.com/san-kum/drivesim/internal/vehicle"
)

var ErrInvalidScenario = errors.New("automation: invalid scenario")

// Scenario is a scripted drive: a timeline of control events played back
// against one preset.
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Preset      string  `yaml:"preset"`
	Duration    float64 `yaml:"duration"`
	Dt          float64 `yaml:"dt"`
	Slope       float64 `yaml:"slope"`
	Events      []Event `yaml:"events"`
}

// Event changes the held controls at time At. Unset fields keep their
// value. With Over > 0 the pedal and steer values ramp linearly from
// where they are to the new value over that many seconds.
type Event struct {
	At         float64  `yaml:"at"`
	Over       float64  `yaml:"over"`
	Key        *bool    `yaml:"key"`
	TurnKey    *bool    `yaml:"turn_key"`
	Headlights *bool    `yaml:"headlights"`
	Throttle   *float64 `yaml:"throttle"`
	Clutch     *float64 `yaml:"clutch"`
	Brake      *float64 `yaml:"brake"`
	Handbrake  *float64 `yaml:"handbrake"`
	Steer      *float64 `yaml:"steer"`
	Gear       string   `yaml:"gear"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (s *Scenario) Validate() error {
	var errs []error
	if s.Duration < 0 {
		errs = append(errs, fmt.Errorf("duration %g is negative", s.Duration))
	}
	if s.Dt < 0 {
		errs = append(errs, fmt.Errorf("dt %g is negative", s.Dt))
	}
	for i, ev := range s.Events {
		if ev.At < 0 || ev.Over < 0 {
			errs = append(errs, fmt.Errorf("event %d: negative time", i))
		}
		pedals := []struct {
			name  string
			value *float64
		}{
			{"throttle", ev.Throttle},
			{"clutch", ev.Clutch},
			{"brake", ev.Brake},
			{"handbrake", ev.Handbrake},
		}
		for _, p := range pedals {
			if p.value != nil && (*p.value < 0 || *p.value > 1) {
				errs = append(errs, fmt.Errorf("event %d: %s %g outside [0, 1]", i, p.name, *p.value))
			}
		}
		if ev.Steer != nil && (*ev.Steer < -1 || *ev.Steer > 1) {
			errs = append(errs, fmt.Errorf("event %d: steer %g outside [-1, 1]", i, *ev.Steer))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidScenario, errors.Join(errs...))
	}
	return nil
}

// End is the time of the last event, ramps included.
func (s *Scenario) End() float64 {
	end := 0.0
	for _, ev := range s.Events {
		end = max(end, ev.At+ev.Over)
	}
	return end
}

type axis int

const (
	axisThrottle axis = iota
	axisClutch
	axisBrake
	axisHandbrake
	axisSteer
	numAxes
)

type ramp struct {
	from, to    float64
	start, over float64
}

func (r ramp) at(t float64) float64 {
	if r.over <= 0 || t >= r.start+r.over {
		return r.to
	}
	f := max(0, (t-r.start)/r.over)
	return r.from + (r.to-r.from)*f
}

// Player plays a scenario back as a sim.Driver.
type Player struct {
	events []Event
	next   int
	in     vehicle.Inputs
	axes   [numAxes]ramp
	gear   string
}

func NewPlayer(s *Scenario) *Player {
	events := make([]Event, len(s.Events))
	copy(events, s.Events)
	sort.SliceStable(events, func(i, j int) bool { return events[i].At < events[j].At })
	return &Player{events: events}
}

func (p *Player) Drive(t vehicle.Telemetry) sim.Command {
	const eps = 1e-9
	for p.next < len(p.events) && p.events[p.next].At <= t.Time+eps {
		p.apply(p.events[p.next], t.Time)
		p.next++
	}

	in := p.in
	in.PedalTravelAccelerator0to1 = p.axes[axisThrottle].at(t.Time)
	in.PedalTravelClutch0to1 = p.axes[axisClutch].at(t.Time)
	in.PedalTravelBrake0to1 = p.axes[axisBrake].at(t.Time)
	in.Handbrake0to1 = p.axes[axisHandbrake].at(t.Time)
	in.Steer = p.axes[axisSteer].at(t.Time)

	cmd := sim.Command{Inputs: in, Gear: p.gear}
	p.gear = ""
	return cmd
}

func (p *Player) apply(ev Event, now float64) {
	if ev.Key != nil {
		p.in.KeyInserted = *ev.Key
	}
	if ev.TurnKey != nil {
		p.in.IgnitionKeyTurned = *ev.TurnKey
	}
	if ev.Headlights != nil {
		p.in.Headlights = *ev.Headlights
	}
	if ev.Gear != "" {
		p.gear = ev.Gear
	}
	for a, v := range map[axis]*float64{
		axisThrottle: ev.Throttle, axisClutch: ev.Clutch, axisBrake: ev.Brake,
		axisHandbrake: ev.Handbrake, axisSteer: ev.Steer,
	} {
		if v == nil {
			continue
		}
		p.axes[a] = ramp{from: p.axes[a].at(now), to: *v, start: now, over: ev.Over}
	}
}

// Done reports whether every event has been applied.
func (p *Player) Done() bool { return p.next >= len(p.events) }

// DriverFactory builds a Player from the scenario file named in the
// vehicle config. Register it as the "scenario" driver kind.
func DriverFactory(cfg *config.Config) (sim.Driver, error) {
	if cfg.Driver.Scenario == "" {
		return nil, fmt.Errorf("%w: driver.scenario is empty", ErrInvalidScenario)
	}
	s, err := LoadScenario(cfg.Driver.Scenario)
	if err != nil {
		return nil, err
	}
	return NewPlayer(s), nil
}
