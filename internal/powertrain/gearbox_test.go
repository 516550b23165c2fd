package powertrain

import (
	"errors"
	"math"
	"testing"
)

func TestGearBoxShift(t *testing.T) {
	g := NewGearBox([]float64{-3.5, 0, 3.6, 2.1, 1.4, 1.0}, 4.1, 1)
	if g.Gear() != 1 || !g.InNeutral() {
		t.Fatalf("expected to start in neutral, got gear %d", g.Gear())
	}

	tests := []struct {
		target  int
		want    int
		wantErr bool
	}{
		{2, 2, false},
		{5, 5, false},
		{6, 5, true},
		{-1, 5, true},
		{0, 0, false},
		{100, 0, true},
	}
	for _, tt := range tests {
		err := g.Shift(tt.target)
		if tt.wantErr && !errors.Is(err, ErrGearOutOfRange) {
			t.Errorf("shift %d: expected ErrGearOutOfRange, got %v", tt.target, err)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("shift %d: %v", tt.target, err)
		}
		if g.Gear() != tt.want {
			t.Errorf("shift %d: gear = %d, want %d", tt.target, g.Gear(), tt.want)
		}
		if g.Gear() < 0 || g.Gear() >= g.Count() {
			t.Fatalf("gear index %d out of range", g.Gear())
		}
	}

	if err := g.ShiftDown(); err == nil {
		t.Error("shift below reverse should fail")
	}
}

func TestGearBoxTransfer(t *testing.T) {
	g := NewGearBox([]float64{-3, 0, 2}, 4, 1)
	if g.OutputTorque(100) != 0 || g.OutputRPM(3000) != 0 {
		t.Error("neutral must transmit nothing")
	}
	_ = g.Shift(2)
	if g.OutputTorque(100) != 200 {
		t.Errorf("expected 200, got %v", g.OutputTorque(100))
	}
	if g.OutputRPM(3000) != 1500 || g.InputRPM(1500) != 3000 {
		t.Error("rpm relation broken")
	}
	_ = g.Shift(0)
	if g.OutputRPM(3000) != -1000 {
		t.Errorf("reverse should turn backwards, got %v", g.OutputRPM(3000))
	}

	lossy := NewGearBox([]float64{-3, 0, 3}, 4, 0.95)
	_ = lossy.Shift(2)
	if got := lossy.OutputTorque(100); got != 300 {
		t.Errorf("output torque should be input times ratio, got %v", got)
	}
}

func TestGearBoxEmpty(t *testing.T) {
	g := NewGearBox(nil, 3, 0)
	if g.Count() != 1 || !g.InNeutral() {
		t.Error("empty ratio list should become neutral")
	}
	if g.Efficiency != 1 {
		t.Errorf("invalid efficiency should fall back to 1, got %v", g.Efficiency)
	}
}

func TestGearBoxLabel(t *testing.T) {
	g := NewGearBox([]float64{-3, 0, 3, 2, 1}, 4, 1)
	want := []string{"R", "N", "1", "2", "3"}
	for i, w := range want {
		if got := g.Label(i); got != w {
			t.Errorf("Label(%d) = %q, want %q", i, got, w)
		}
	}
	if g.Label(9) != "?" {
		t.Error("out of range label")
	}
	for i, w := range want {
		got, err := g.Index(w)
		if err != nil || got != i {
			t.Errorf("Index(%q) = %d, %v, want %d", w, got, err, i)
		}
	}
	if _, err := g.Index("7"); !errors.Is(err, ErrGearOutOfRange) {
		t.Errorf("expected ErrGearOutOfRange, got %v", err)
	}
}

func TestDriveShaft(t *testing.T) {
	d := &DriveShaft{Inertia: 0.5}
	d.ApplyImpulse(2)
	if d.AngularVelocity != 4 {
		t.Errorf("expected 4 rad/s, got %v", d.AngularVelocity)
	}
	d.Integrate(0.25)
	if math.Abs(d.Angle-1) > 1e-12 {
		t.Errorf("expected angle 1, got %v", d.Angle)
	}

	zero := &DriveShaft{}
	zero.ApplyImpulse(10)
	if zero.AngularVelocity != 0 || zero.InverseInertia() != 0 {
		t.Error("zero inertia must ignore impulses")
	}
}

func TestTorqueConverter(t *testing.T) {
	tc := &TorqueConverter{StallRPM: 2000, StallTorque: 200, StallTorqueRatio: 2, CouplingSpeedRatio: 0.85}

	imp, tur := tc.Transfer(0, 2000, 0)
	if math.Abs(imp-200) > 1e-9 || math.Abs(tur-400) > 1e-9 {
		t.Errorf("at stall expected 200/400, got %v/%v", imp, tur)
	}

	impLow, _ := tc.Transfer(0, 1000, 0)
	if impLow >= imp {
		t.Error("torque should scale with engine speed below stall")
	}

	imp, tur = tc.Transfer(0, 1500, 1500)
	if imp != 0 || tur != 0 {
		t.Errorf("no slip should give no fluid torque, got %v/%v", imp, tur)
	}

	imp, tur = tc.Transfer(150, 4000, 3900)
	if imp != 150 || tur != 150 {
		t.Errorf("far above stall should be direct coupling, got %v/%v", imp, tur)
	}

	imp, tur = tc.Transfer(100, 0, 0)
	if imp != 0 || tur != 0 || tc.Slip() != 0 {
		t.Error("stopped engine should transmit nothing")
	}
}
