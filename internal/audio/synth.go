// Package audio synthesizes engine sound from live telemetry.
package audio

import (
	"math"
	"sync"
)

const (
	SampleRate = 44100
	BufferSize = 1024
)

// Synth turns engine speed and load into a stereo signal. The fundamental
// is the firing frequency of a four stroke engine: rpm/60 * cylinders/2.
type Synth struct {
	Cylinders int

	mu        sync.Mutex
	rpm       float64
	load      float64
	rpmSmooth float64

	phase       float64
	filterState [2]float64
	delayLine   [2][]float64
	delayHead   int
}

func NewSynth(cylinders int) *Synth {
	rate := float64(SampleRate)
	delayLen := int(rate * 0.012)
	return &Synth{
		Cylinders: max(cylinders, 1),
		delayLine: [2][]float64{make([]float64, delayLen), make([]float64, delayLen)},
	}
}

// UpdateEngine is safe to call from the simulation goroutine while the
// audio callback is running.
func (s *Synth) UpdateEngine(rpm, load float64) {
	s.mu.Lock()
	s.rpm = math.Max(rpm, 0)
	s.load = math.Max(0, math.Min(load, 1))
	s.mu.Unlock()
}

// FiringFrequency is the fundamental in Hz at the given engine speed.
func (s *Synth) FiringFrequency(rpm float64) float64 {
	return rpm / 60 * float64(s.Cylinders) / 2
}

// triangle is a band friendly stand in for the exhaust pulse.
func triangle(phase float64) float64 {
	p := phase - math.Floor(phase)
	return 4.0*math.Abs(p-0.5) - 1.0
}

// lpf is a one pole low pass filter.
func lpf(sample, cutoff, dt, state float64) float64 {
	rc := 1.0 / (2.0 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	return state + alpha*(sample-state)
}

// Fill writes one buffer of samples into each channel of out. A stopped
// engine is silent.
func (s *Synth) Fill(out [][]float32) {
	s.mu.Lock()
	rpm, load := s.rpm, s.load
	s.mu.Unlock()

	dt := 1.0 / float64(SampleRate)
	cutoff := 400.0 + 2600.0*load
	vol := 0.15 + 0.25*load

	for i := range out[0] {
		s.rpmSmooth = s.rpmSmooth*0.999 + rpm*0.001
		f := s.FiringFrequency(s.rpmSmooth)

		sample := 0.0
		if f > 1 {
			s.phase += f * dt
			if s.phase > 1 {
				s.phase -= math.Floor(s.phase)
			}
			sample = 0.6*triangle(s.phase) + 0.3*triangle(2*s.phase) + 0.1*triangle(0.5*s.phase)
		}

		for ch := range out {
			if ch > 1 {
				out[ch][i] = 0
				continue
			}
			s.filterState[ch] = lpf(sample, cutoff, dt, s.filterState[ch])
			echo := s.delayLine[ch][s.delayHead]
			mix := s.filterState[ch] + echo*0.2
			s.delayLine[ch][s.delayHead] = s.filterState[ch]
			out[ch][i] = float32(mix * vol)
		}
		s.delayHead = (s.delayHead + 1) % len(s.delayLine[0])
	}
}
