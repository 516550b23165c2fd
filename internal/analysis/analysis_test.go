package analysis

import (
	"math"
	"strings"
	"testing"
)

func TestFFTPadding(t *testing.T) {
	out := FFT([]float64{1, 1, 1})
	if len(out) != 4 {
		t.Fatalf("expected padded length 4, got %d", len(out))
	}
	if real(out[0]) != 3 {
		t.Errorf("dc term = %v, want 3", out[0])
	}
}

func TestDominantFrequency(t *testing.T) {
	const dt = 1.0 / 128
	samples := make([]float64, 256)
	for i := range samples {
		samples[i] = 800 + 40*math.Sin(2*math.Pi*4*float64(i)*dt)
	}

	hz, amp := DominantFrequency(samples, dt)
	if math.Abs(hz-4) > 1e-9 {
		t.Errorf("expected 4 Hz, got %v", hz)
	}
	if math.Abs(amp-40) > 1 {
		t.Errorf("expected amplitude near 40, got %v", amp)
	}

	if hz, _ := DominantFrequency([]float64{1, 2}, dt); hz != 0 {
		t.Errorf("short input should give 0, got %v", hz)
	}
}

func TestPhasePortrait(t *testing.T) {
	xs := []float64{-1, 0, 1, 2}
	ys := []float64{1, 0, -1}
	p := NewPhasePortrait("rpm", xs, "clutch_torque", ys)
	if len(p.Points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(p.Points))
	}

	art := PhasePortraitToASCII(p, 20, 10)
	lines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	if len(lines) != 10 {
		t.Errorf("expected 10 rows, got %d", len(lines))
	}
	if strings.Count(art, "•") != 3 {
		t.Errorf("expected 3 plotted points:\n%s", art)
	}
	if PhasePortraitToASCII(nil, 20, 10) != "" {
		t.Error("nil portrait should render empty")
	}
}

func TestSection(t *testing.T) {
	cross := []float64{-1, 1, -1, 1, 3}
	xs := []float64{0, 10, 20, 30, 40}
	ys := []float64{0, 1, 2, 3, 4}

	s := NewSection(cross, 0, xs, ys)
	if len(s.Points) != 2 {
		t.Fatalf("expected 2 crossings, got %d", len(s.Points))
	}
	if s.Points[0].X != 5 || s.Points[1].Y != 2.5 {
		t.Errorf("unexpected interpolation %+v", s.Points)
	}
	if SectionToASCII(NewSection(cross, 10, xs, ys), 10, 5) != "No crossings detected" {
		t.Error("expected no crossings above the signal")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{3, -4, 1})
	if s.Min != -4 || s.Max != 3 || s.N != 3 {
		t.Errorf("unexpected summary %+v", s)
	}
	if math.Abs(s.Mean) > 1e-12 || math.Abs(s.RMS-math.Sqrt(26.0/3)) > 1e-12 {
		t.Errorf("unexpected mean/rms %+v", s)
	}
	if Summarize(nil).N != 0 {
		t.Error("empty input")
	}
}
