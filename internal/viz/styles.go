package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	panelStyle  lipgloss.Style
	headerStyle lipgloss.Style
	labelStyle  lipgloss.Style
	valueStyle  lipgloss.Style
	graphStyle  lipgloss.Style
	helpStyle   lipgloss.Style
	okStyle     lipgloss.Style
	warnStyle   lipgloss.Style
	alertStyle  lipgloss.Style
)

func init() { applyTheme(CurrentTheme) }

func applyTheme(t Theme) {
	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Muted).
		Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(t.Primary).MarginBottom(1)
	labelStyle = lipgloss.NewStyle().Foreground(t.Muted).Width(12)
	valueStyle = lipgloss.NewStyle().Foreground(t.Text)
	graphStyle = lipgloss.NewStyle().Foreground(t.Secondary)
	helpStyle = lipgloss.NewStyle().Foreground(t.Muted).Italic(true).MarginTop(1)
	okStyle = lipgloss.NewStyle().Bold(true).Foreground(t.Success)
	warnStyle = lipgloss.NewStyle().Bold(true).Foreground(t.Warning)
	alertStyle = lipgloss.NewStyle().Bold(true).Foreground(t.Error)
}

// GaugeBar renders value/limit as a bar. The part beyond redline (a
// fraction of limit, ignored when <= 0) is drawn in the alert color.
func GaugeBar(value, limit, redline float64, width int) string {
	if limit <= 0 || width <= 0 {
		return strings.Repeat("░", max(width, 0))
	}
	filled := int(value / limit * float64(width))
	filled = min(max(filled, 0), width)

	red := width
	if redline > 0 {
		red = min(int(redline*float64(width)), width)
	}

	var b strings.Builder
	if filled <= red {
		b.WriteString(okStyle.Render(strings.Repeat("█", filled)))
	} else {
		b.WriteString(okStyle.Render(strings.Repeat("█", red)))
		b.WriteString(alertStyle.Render(strings.Repeat("█", filled-red)))
	}
	b.WriteString(strings.Repeat("░", width-filled))
	return b.String()
}

// SparklineChart renders a mini sparkline of the last width values.
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var result strings.Builder
	for _, v := range values {
		idx := int((v - lo) / rng * float64(len(chars)-1))
		result.WriteRune(chars[min(max(idx, 0), len(chars)-1)])
	}
	return graphStyle.Render(result.String())
}
