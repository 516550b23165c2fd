// Package tui prints a plain ANSI view of a running simulation. It needs no
// keyboard and works over any terminal, unlike the bubbletea dashboard.
package tui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/san-kum/drivesim/internal/vehicle"
)

const (
	width       = 60
	barHeight   = 8
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"

	// full scale of the suspension bars, in metres of compression
	travelScale = 0.25
)

// LiveRenderer is a sim.Observer that redraws at most frameRate times per
// second. frameRate <= 0 redraws on every step.
type LiveRenderer struct {
	name      string
	frameRate int
	maxRPM    float64
	out       io.Writer
	lastFrame time.Time
}

func NewLiveRenderer(name string, frameRate int, maxRPM float64) *LiveRenderer {
	if maxRPM <= 0 {
		maxRPM = 8000
	}
	return &LiveRenderer{name: name, frameRate: frameRate, maxRPM: maxRPM, out: os.Stdout}
}

// SetOutput redirects the frames, stdout by default.
func (r *LiveRenderer) SetOutput(w io.Writer) { r.out = w }

func (r *LiveRenderer) OnStep(t vehicle.Telemetry) {
	if r.frameRate > 0 {
		if time.Since(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
			return
		}
		r.lastFrame = time.Now()
	}
	fmt.Fprint(r.out, r.Frame(t))
}

// Frame renders one screen for t.
func (r *LiveRenderer) Frame(t vehicle.Telemetry) string {
	var b strings.Builder
	b.WriteString(clearScreen)
	fmt.Fprintf(&b, "  %s  t=%.2fs  %s\n", r.name, t.Time, t.ECUState)
	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	fmt.Fprintf(&b, "  rpm   [%s] %5.0f\n", bar(t.EngineRPM/r.maxRPM, width-16), t.EngineRPM)
	fmt.Fprintf(&b, "  speed %6.1f km/h  gear %-2s  clutch %s\n", t.SpeedKmh(), t.GearLabel, t.ClutchState)
	fmt.Fprintf(&b, "  pedals thr %.2f  brk %.2f  clu %.2f\n", t.Actions.Throttle0to1, t.Actions.Brake0to1, t.Actions.Clutch0to1)
	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	b.WriteString(suspension(t.Wheels))
	fmt.Fprintf(&b, "  stalls %d  oil %.1f°C\n", t.Stalls, t.OilTemperatureC)
	return b.String()
}

func bar(frac float64, n int) string {
	filled := int(frac * float64(n))
	filled = min(max(filled, 0), n)
	return strings.Repeat("#", filled) + strings.Repeat(".", n-filled)
}

// suspension draws one column per wheel, filled from the bottom in
// proportion to its compression. Airborne wheels are marked with '^'.
func suspension(wheels []vehicle.WheelTelemetry) string {
	if len(wheels) == 0 {
		return ""
	}
	var b strings.Builder
	for row := barHeight; row > 0; row-- {
		b.WriteString("  ")
		for _, w := range wheels {
			level := int(w.Compression / travelScale * barHeight)
			c := ' '
			if level >= row {
				c = '|'
			}
			fmt.Fprintf(&b, "  %c%c  ", c, c)
		}
		b.WriteString("\n")
	}
	b.WriteString("  ")
	for _, w := range wheels {
		if w.Contact {
			b.WriteString("  OO  ")
		} else {
			b.WriteString("  ^^  ")
		}
	}
	b.WriteString("\n  " + strings.Repeat("=", 6*len(wheels)) + "\n")
	return b.String()
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }
