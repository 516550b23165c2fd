package audio

import (
	"math"
	"testing"
)

func buffers(n int) [][]float32 {
	return [][]float32{make([]float32, n), make([]float32, n)}
}

func TestFiringFrequency(t *testing.T) {
	s := NewSynth(4)
	if f := s.FiringFrequency(3000); f != 100 {
		t.Errorf("4 cylinders at 3000 rpm: got %v Hz, want 100", f)
	}
	if f := NewSynth(0).FiringFrequency(6000); f != 50 {
		t.Errorf("cylinder count should clamp to 1, got %v Hz", f)
	}
}

func TestFillSilentWhenStopped(t *testing.T) {
	s := NewSynth(4)
	out := buffers(BufferSize)
	s.Fill(out)
	for ch := range out {
		for i, v := range out[ch] {
			if v != 0 {
				t.Fatalf("channel %d sample %d = %v, want silence", ch, i, v)
			}
		}
	}
}

func TestFillRunningEngine(t *testing.T) {
	s := NewSynth(4)
	s.UpdateEngine(3000, 1.5)
	out := buffers(BufferSize)
	peak := 0.0
	for range 20 {
		s.Fill(out)
	}
	for _, v := range out[0] {
		peak = math.Max(peak, math.Abs(float64(v)))
		if math.IsNaN(float64(v)) {
			t.Fatal("NaN sample")
		}
	}
	if peak == 0 {
		t.Error("running engine should make sound")
	}
	if peak > 1 {
		t.Errorf("output clips, peak %v", peak)
	}
}

func TestPlayerStub(t *testing.T) {
	p := NewPlayer(6)
	if p.Synth == nil || p.Cylinders != 6 {
		t.Fatal("player should wrap a synth")
	}
	if !p.Available() {
		if err := p.Start(); err == nil {
			t.Error("stub player should refuse to start")
		}
	}
	p.Stop()
}
