package powertrain

import (
	"fmt"
	"strconv"
)

// GearBox holds a signed ratio list. Negative ratios are reverse, zero is
// neutral. The current index is always valid.
type GearBox struct {
	Ratios     []float64
	FinalDrive float64
	Efficiency float64

	current int
}

// NewGearBox starts in neutral if the list has one, otherwise in gear 0. An
// empty list becomes a single neutral.
func NewGearBox(ratios []float64, finalDrive, efficiency float64) *GearBox {
	if len(ratios) == 0 {
		ratios = []float64{0}
	}
	r := make([]float64, len(ratios))
	copy(r, ratios)
	if efficiency <= 0 || efficiency > 1 {
		efficiency = 1
	}
	g := &GearBox{Ratios: r, FinalDrive: finalDrive, Efficiency: efficiency}
	if n := g.Neutral(); n >= 0 {
		g.current = n
	}
	return g
}

func (g *GearBox) Count() int { return len(g.Ratios) }

func (g *GearBox) Gear() int { return g.current }

func (g *GearBox) Ratio() float64 { return g.Ratios[g.current] }

func (g *GearBox) InNeutral() bool { return g.Ratio() == 0 }

// Neutral returns the index of the first zero ratio or -1.
func (g *GearBox) Neutral() int {
	for i, r := range g.Ratios {
		if r == 0 {
			return i
		}
	}
	return -1
}

func (g *GearBox) Shift(i int) error {
	if i < 0 || i >= len(g.Ratios) {
		return fmt.Errorf("shift to %d of %d: %w", i, len(g.Ratios), ErrGearOutOfRange)
	}
	g.current = i
	return nil
}

func (g *GearBox) ShiftUp() error   { return g.Shift(g.current + 1) }
func (g *GearBox) ShiftDown() error { return g.Shift(g.current - 1) }

// OutputTorque is the ideal torque at the gearbox output. Efficiency is
// applied where the torque reaches the wheels.
func (g *GearBox) OutputTorque(in float64) float64 {
	return in * g.Ratio()
}

// OutputRPM is 0 in neutral.
func (g *GearBox) OutputRPM(in float64) float64 {
	r := g.Ratio()
	if r == 0 {
		return 0
	}
	return in / r
}

func (g *GearBox) InputRPM(out float64) float64 {
	return out * g.Ratio()
}

// Label returns "R", "N" or the 1-based forward gear number for index i.
func (g *GearBox) Label(i int) string {
	if i < 0 || i >= len(g.Ratios) {
		return "?"
	}
	r := g.Ratios[i]
	switch {
	case r < 0:
		return "R"
	case r == 0:
		return "N"
	}
	n := 0
	for j := 0; j <= i; j++ {
		if g.Ratios[j] > 0 {
			n++
		}
	}
	return strconv.Itoa(n)
}

// Index is the inverse of Label. With several reverse gears "R" selects the
// first one.
func (g *GearBox) Index(label string) (int, error) {
	for i := range g.Ratios {
		if g.Label(i) == label {
			return i, nil
		}
	}
	return 0, fmt.Errorf("gear %q: %w", label, ErrGearOutOfRange)
}
