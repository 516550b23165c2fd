package export

import (
	"strings"
	"testing"

	"github.com/san-kum/drivesim/internal/analysis"
)

func TestTrackSVG(t *testing.T) {
	svg := TrackSVG([]float64{0, 0, 5}, []float64{0, 10, 20}, 200)
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("not an svg document:\n%s", svg)
	}
	if strings.Count(svg, " L") != 2 {
		t.Errorf("expected 2 line segments:\n%s", svg)
	}
	if strings.Count(svg, "<circle") != 2 {
		t.Error("start and end markers missing")
	}
}

func TestTrajectoryToSVGBounds(t *testing.T) {
	pts := []analysis.Point{{X: 0, Y: 0}, {X: 10, Y: 1}}
	svg := TrajectoryToSVG(pts, 100, 100, "#fff", true)
	start := strings.Index(svg, `d="M`)
	if start < 0 {
		t.Fatalf("no path:\n%s", svg)
	}
	path := svg[start+4:]
	path = path[:strings.Index(path, `"`)]
	if strings.Contains(path, "NaN") || strings.Contains(path, "-") {
		t.Errorf("points should land inside the view box: %s", path)
	}
	if TrajectoryToSVG(pts[:1], 100, 100, "#fff", false) != "" {
		t.Error("a single point is not a trajectory")
	}
}

func TestPortraitSVG(t *testing.T) {
	p := analysis.NewPhasePortrait("rpm", []float64{800, 900, 1000}, "clutch_torque", []float64{0, 50, 20})
	if !strings.Contains(PortraitSVG(p, 300, 200), `width="300"`) {
		t.Error("size not applied")
	}
	if PortraitSVG(nil, 1, 1) != "" {
		t.Error("nil portrait")
	}
}
