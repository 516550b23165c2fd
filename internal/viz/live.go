package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/drivesim/internal/control"
	"github.com/san-kum/drivesim/internal/dynamo"
	"github.com/san-kum/drivesim/internal/ecu"
	"github.com/san-kum/drivesim/internal/sim"
	"github.com/san-kum/drivesim/internal/vehicle"
)

const (
	frameRate       = 60
	historyCapacity = 600
	trailCapacity   = 4000
	mapWidth        = 30
	mapHeight       = 12
	pedalStep       = 0.1
	steerStep       = 0.1
	tuneFactor      = 1.1
	tuneFloor       = 0.01
)

type TickMsg time.Time

// EngineSound is fed the engine speed and throttle once per frame.
type EngineSound interface {
	UpdateEngine(rpm, load float64)
}

// Model is the bubbletea model of the live dashboard. A nil driver means
// another driver is at the wheel and the pedal keys do nothing.
type Model struct {
	sim    *sim.Simulator
	driver *control.Manual
	dt     float64
	name   string

	tel          vehicle.Telemetry
	running      bool
	showHelp     bool
	rpmHistory   []float64
	speedHistory []float64
	trailX       []float64
	trailZ       []float64
	canvas       *Canvas
	sound        EngineSound

	tuneName   string
	tunable    dynamo.Configurable
	tuneParams []string
	tuneIndex  int
	tuneErr    error
}

func NewModel(s *sim.Simulator, driver *control.Manual, dt float64, name string) Model {
	return Model{
		sim:          s,
		driver:       driver,
		dt:           dt,
		name:         name,
		tel:          s.Vehicle().Telemetry(),
		running:      true,
		rpmHistory:   make([]float64, 0, historyCapacity),
		speedHistory: make([]float64, 0, historyCapacity),
		trailX:       make([]float64, 0, trailCapacity),
		trailZ:       make([]float64, 0, trailCapacity),
		canvas:       NewCanvas(mapWidth, mapHeight),
	}
}

// WithSound attaches an engine sound sink.
func (m Model) WithSound(s EngineSound) Model {
	m.sound = s
	return m
}

// WithTuning lets the keyboard adjust the parameters of c while driving.
func (m Model) WithTuning(name string, c dynamo.Configurable) Model {
	params := c.GetParams()
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)

	m.tuneName = name
	m.tunable = c
	m.tuneParams = names
	m.tuneIndex = 0
	return m
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

// Update maps keys onto the manual driver and advances the simulation by
// one frame of wall clock time on every tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.handleKey(msg.String()) {
			return m, tea.Quit
		}
	case TickMsg:
		if m.running {
			m.advance(1.0 / frameRate)
		}
		return m, tick()
	}
	return m, nil
}

// handleKey applies one key press and reports whether to quit.
func (m *Model) handleKey(key string) bool {
	switch key {
	case "q", "ctrl+c":
		return true
	case " ":
		m.running = !m.running
		return false
	case "?":
		m.showHelp = !m.showHelp
		return false
	case "t":
		NextTheme()
		return false
	case "ctrl+r":
		m.reset()
		return false
	case "tab":
		if len(m.tuneParams) > 0 {
			m.tuneIndex = (m.tuneIndex + 1) % len(m.tuneParams)
		}
		return false
	case "+", "=":
		m.tune(tuneFactor)
		return false
	case "-":
		m.tune(1 / tuneFactor)
		return false
	}
	if m.driver == nil {
		return false
	}

	in := &m.driver.Cmd.Inputs
	switch key {
	case "k":
		in.KeyInserted = !in.KeyInserted
		if !in.KeyInserted {
			in.IgnitionKeyTurned = false
		}
	case "i":
		in.IgnitionKeyTurned = !in.IgnitionKeyTurned
	case "w", "up":
		in.PedalTravelAccelerator0to1 = step(in.PedalTravelAccelerator0to1, pedalStep)
	case "s", "down":
		in.PedalTravelAccelerator0to1 = step(in.PedalTravelAccelerator0to1, -pedalStep)
	case "b":
		in.PedalTravelBrake0to1 = step(in.PedalTravelBrake0to1, 2*pedalStep)
	case "v":
		in.PedalTravelBrake0to1 = step(in.PedalTravelBrake0to1, -2*pedalStep)
	case "c":
		if in.PedalTravelClutch0to1 > 0.5 {
			in.PedalTravelClutch0to1 = 0
		} else {
			in.PedalTravelClutch0to1 = 1
		}
	case "[":
		in.PedalTravelClutch0to1 = step(in.PedalTravelClutch0to1, -pedalStep)
	case "]":
		in.PedalTravelClutch0to1 = step(in.PedalTravelClutch0to1, pedalStep)
	case "p":
		if in.Handbrake0to1 > 0 {
			in.Handbrake0to1 = 0
		} else {
			in.Handbrake0to1 = 1
		}
	case "h":
		in.Headlights = !in.Headlights
	case "left", "a":
		in.Steer = math.Min(in.Steer+steerStep, 1)
	case "right", "d":
		in.Steer = math.Max(in.Steer-steerStep, -1)
	case "x":
		in.Steer = 0
	case "r", "R":
		m.driver.Cmd.Gear = "R"
	case "n", "N":
		m.driver.Cmd.Gear = "N"
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.driver.Cmd.Gear = key
	}
	return false
}

// tune scales the selected parameter. A zero value is raised to tuneFloor
// so it can grow.
func (m *Model) tune(factor float64) {
	if m.tunable == nil || len(m.tuneParams) == 0 {
		return
	}
	name := m.tuneParams[m.tuneIndex]
	v := m.tunable.GetParams()[name]
	if v == 0 && factor > 1 {
		v = tuneFloor
	} else {
		v *= factor
	}
	m.tuneErr = m.tunable.SetParam(name, v)
}

func step(v, d float64) float64 {
	return math.Min(math.Max(v+d, 0), 1)
}

// advance steps the simulator through wall seconds of simulated time.
func (m *Model) advance(wall float64) {
	n := max(int(math.Round(wall/m.dt)), 1)
	for i := 0; i < n; i++ {
		m.tel = m.sim.Step(m.dt)
	}

	m.rpmHistory = push(m.rpmHistory, m.tel.EngineRPM, historyCapacity)
	m.speedHistory = push(m.speedHistory, m.tel.SpeedKmh(), historyCapacity)
	m.trailX = push(m.trailX, m.tel.Position.X(), trailCapacity)
	m.trailZ = push(m.trailZ, m.tel.Position.Z(), trailCapacity)
	if m.sound != nil {
		m.sound.UpdateEngine(m.tel.EngineRPM, m.tel.Actions.Throttle0to1)
	}
}

func push(buf []float64, v float64, capacity int) []float64 {
	buf = append(buf, v)
	if len(buf) > capacity {
		buf = buf[1:]
	}
	return buf
}

func (m *Model) reset() {
	m.sim.Vehicle().Reset()
	if m.driver != nil {
		m.driver.Set(sim.Command{Inputs: vehicle.Inputs{KeyInserted: true}})
	}
	m.tel = m.sim.Vehicle().Telemetry()
	m.rpmHistory = m.rpmHistory[:0]
	m.speedHistory = m.speedHistory[:0]
	m.trailX = m.trailX[:0]
	m.trailZ = m.trailZ[:0]
}

// View renders the TUI interface.
func (m Model) View() string {
	tel := m.tel
	limit := m.sim.Vehicle().ECU.Config.RevLimiterRPM
	if limit <= 0 {
		limit = 8000
	}
	scale := limit * 1.1

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(m.status() + "\n\n")

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", tel.Time))
	row("Power", powerLabel(tel.ECUState))
	row("RPM", fmt.Sprintf("%s %5.0f", GaugeBar(tel.EngineRPM, scale, limit/scale, 24), tel.EngineRPM))
	row("Speed", fmt.Sprintf("%6.1f km/h", tel.SpeedKmh()))
	row("Gear", fmt.Sprintf("%-3s clutch %s", tel.GearLabel, tel.ClutchState))
	row("Torque", fmt.Sprintf("%6.1f Nm  %5.1f kW", tel.CombustionTorque, tel.PowerKW))
	row("Oil", fmt.Sprintf("%5.1f °C  clutch %5.1f °C", tel.OilTemperatureC, tel.ClutchTemperatureC))
	row("Stalls", fmt.Sprintf("%d", tel.Stalls))
	s.WriteString("\n")
	if m.driver != nil {
		in := m.driver.Cmd.Inputs
		row("Throttle", GaugeBar(in.PedalTravelAccelerator0to1, 1, 0, 12))
		row("Brake", GaugeBar(in.PedalTravelBrake0to1, 1, 0, 12))
		row("Clutch", GaugeBar(in.PedalTravelClutch0to1, 1, 0, 12))
		row("Steer", fmt.Sprintf("%+.1f", in.Steer))
	} else {
		a := tel.Actions
		row("Throttle", GaugeBar(a.Throttle0to1, 1, 0, 12))
		row("Brake", GaugeBar(a.Brake0to1, 1, 0, 12))
		row("Clutch", GaugeBar(a.Clutch0to1, 1, 0, 12))
		row("Steer", fmt.Sprintf("%+.1f", a.Steer))
	}
	if line := m.tuneView(); line != "" {
		row("Tune", line)
	}

	if len(m.rpmHistory) > 1 {
		chart := asciigraph.Plot(m.rpmHistory, asciigraph.Height(5), asciigraph.Width(36), asciigraph.Caption("RPM"))
		s.WriteString("\n" + graphStyle.Render(chart) + "\n")
	}
	s.WriteString(labelStyle.Render("Speed") + SparklineChart(m.speedHistory, 36) + "\n")

	left := panelStyle.Render(s.String())
	right := panelStyle.Render(m.mapView() + "\n" + m.wheelView())
	view := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	help := "K:Key I:Crank W/S:Throttle B/V:Brake C:Clutch [ ]:Slip P:Handbrake\n" +
		"A/D:Steer R N 1-9:Gear SP:Pause ^R:Reset T:Theme Q:Quit"
	if m.tunable != nil {
		help += "\nTAB:Next param +/-:Adjust"
	}
	if m.showHelp {
		return view + "\n" + helpStyle.Render(help)
	}
	return view + "\n" + helpStyle.Render("?:Help")
}

func (m Model) tuneView() string {
	if m.tunable == nil || len(m.tuneParams) == 0 {
		return ""
	}
	name := m.tuneParams[m.tuneIndex]
	line := fmt.Sprintf("%s.%s = %.4g", m.tuneName, name, m.tunable.GetParams()[name])
	if m.tuneErr != nil {
		line += " " + alertStyle.Render(m.tuneErr.Error())
	}
	return line
}

func (m Model) status() string {
	switch {
	case !m.running:
		return warnStyle.Render("PAUSED")
	case m.tel.Running:
		return okStyle.Render("ENGINE RUNNING")
	case m.tel.ECUState == ecu.StarterFiring:
		return warnStyle.Render("CRANKING")
	default:
		return alertStyle.Render("ENGINE OFF")
	}
}

func powerLabel(s ecu.PowerState) string {
	return strings.ToUpper(strings.ReplaceAll(s.String(), "_", " "))
}

func (m Model) mapView() string {
	m.canvas.Clear()
	m.canvas.DrawPath(m.trailX, m.trailZ)
	return graphStyle.Render(m.canvas.String())
}

func (m Model) wheelView() string {
	var b strings.Builder
	for _, w := range m.tel.Wheels {
		contact := alertStyle.Render("air")
		if w.Contact {
			contact = okStyle.Render("ground")
		}
		fmt.Fprintf(&b, "%-12s %s %6.0f rpm %5.2f\n", w.Name, contact, w.SpinRPM, w.Compression)
	}
	return b.String()
}
