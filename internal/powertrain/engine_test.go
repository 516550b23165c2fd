package powertrain

import (
	"math"
	"testing"

	"github.com/san-kum/drivesim/internal/curve"
	"github.com/san-kum/drivesim/internal/integrators"
)

func TestDisplacement(t *testing.T) {
	got := Displacement(80, 70, 4)
	if math.Abs(got-1.407) > 0.001 {
		t.Errorf("expected ~1.407 L, got %.4f", got)
	}
	if Displacement(80, 70, 0) != 0 {
		t.Error("zero cylinders should give zero displacement")
	}
}

func TestFiringStrokesRatio(t *testing.T) {
	for _, rpm := range []float64{0, 1, 800, 3333.3, 7000, 12000} {
		four := FiringStrokesPerSec(rpm, FourStroke)
		two := FiringStrokesPerSec(rpm, TwoStroke)
		if math.Abs(four-0.5*two) > 1e-12 {
			t.Errorf("rpm %v: four-stroke %v is not half of two-stroke %v", rpm, four, two)
		}
	}
	if got := FiringStrokesPerSec(6000, TwoStroke); got != 100 {
		t.Errorf("expected 100 strokes/s, got %v", got)
	}
}

func TestMeanPistonSpeed(t *testing.T) {
	if got := MeanPistonSpeed(70, 6000); math.Abs(got-14) > 1e-9 {
		t.Errorf("expected 14 m/s, got %v", got)
	}
}

func TestBMEPAndPowerMonotonic(t *testing.T) {
	disp := Displacement(80, 70, 4)
	for _, c := range []Cycle{FourStroke, TwoStroke} {
		prevB, prevP := -math.MaxFloat64, -math.MaxFloat64
		for torque := 0.0; torque <= 300; torque += 10 {
			b := BMEP(torque, disp, c)
			p := EstimatedPowerKW(4, 80, 70, b, 5000, c)
			if b <= prevB || p <= prevP {
				t.Fatalf("%v: not increasing at %v Nm (bmep %v, power %v)", c, torque, b, p)
			}
			prevB, prevP = b, p
		}
	}
}

func TestBMEPZeroDisplacement(t *testing.T) {
	if got := BMEP(100, 0, FourStroke); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}

func TestEstimatedPowerMatchesShaftPower(t *testing.T) {
	// Shaft power is torque * omega; the BMEP route must agree.
	e := &Engine{BoreMM: 80, StrokeMM: 70, Cylinders: 4, Cycle: FourStroke}
	e.SetRPM(4000)
	want := 120 * e.AngularVelocity / 1000
	if got := e.EstimatedPowerKW(120); math.Abs(got-want) > 1e-6 {
		t.Errorf("expected %.4f kW, got %.4f", want, got)
	}
}

func testEngine() *Engine {
	return &Engine{
		BoreMM: 80, StrokeMM: 70, Cylinders: 4,
		CrankInertia: 0.1, FlywheelInertia: 0.1,
		StallRPM: 400, CrankRPM: 250,
		TorqueCurve:       curve.FromPairs([][2]float64{{0, 60}, {3000, 140}, {6500, 110}}),
		FrictionTorque:    10,
		OperatingOilTempC: 90,
		OilWarmRate:       0.5,
		Integrator:        integrators.NewEuler(),
	}
}

func TestEngineIntegrate(t *testing.T) {
	e := testEngine()
	e.Integrate(10, 0.1)
	if math.Abs(e.AngularVelocity-5) > 1e-12 {
		t.Errorf("expected omega 5, got %v", e.AngularVelocity)
	}

	e.Integrate(-1000, 0.1)
	if e.AngularVelocity != 0 {
		t.Errorf("angular velocity must not go negative, got %v", e.AngularVelocity)
	}
	if e.RPM() < 0 {
		t.Error("rpm must be non-negative")
	}
}

func TestEngineRK4(t *testing.T) {
	e := testEngine()
	e.Integrator = integrators.NewRK4()
	for i := 0; i < 10; i++ {
		e.Integrate(2, 0.01)
	}
	if math.Abs(e.AngularVelocity-1) > 1e-9 {
		t.Errorf("expected omega 1, got %v", e.AngularVelocity)
	}
	if math.Abs(e.Angle-0.05) > 1e-9 {
		t.Errorf("expected angle 0.05, got %v", e.Angle)
	}
}

func TestEngineCombustion(t *testing.T) {
	e := testEngine()
	e.SetRPM(3000)
	if e.CombustionTorque(1, 1) != 0 {
		t.Error("no combustion without ignition")
	}
	e.Ignition = true
	if got := e.CombustionTorque(1, 1); math.Abs(got-140) > 1e-9 {
		t.Errorf("expected 140, got %v", got)
	}
	if got := e.CombustionTorque(2, 1); math.Abs(got-140) > 1e-9 {
		t.Errorf("throttle should clamp to 1, got %v", got)
	}
	if got := e.CombustionTorque(0.5, 0.9); math.Abs(got-63) > 1e-9 {
		t.Errorf("expected 63, got %v", got)
	}
	e.SetRPM(100)
	if e.CombustionTorque(1, 1) != 0 {
		t.Error("no combustion below half cranking speed")
	}
}

func TestEngineIsRunning(t *testing.T) {
	e := testEngine()
	e.SetRPM(800)
	if e.IsRunning() {
		t.Error("engine without ignition is not running")
	}
	e.Ignition = true
	if !e.IsRunning() {
		t.Error("expected running")
	}
	e.SetRPM(300)
	if e.IsRunning() {
		t.Error("below stall rpm is not running")
	}
}

func TestEngineWarmUp(t *testing.T) {
	e := testEngine()
	e.OilTemperatureC = 20
	e.Ignition = true
	e.SetRPM(900)
	for i := 0; i < 200; i++ {
		e.WarmUp(20, 0.1)
	}
	if math.Abs(e.OilTemperatureC-90) > 0.5 {
		t.Errorf("expected oil near 90C, got %v", e.OilTemperatureC)
	}
	e.Ignition = false
	for i := 0; i < 200; i++ {
		e.WarmUp(20, 0.1)
	}
	if math.Abs(e.OilTemperatureC-20) > 0.5 {
		t.Errorf("expected oil near ambient, got %v", e.OilTemperatureC)
	}
}

func TestEngineParams(t *testing.T) {
	e := testEngine()
	if err := e.SetParam("friction", 12); err != nil {
		t.Fatal(err)
	}
	if e.GetParams()["friction"] != 12 {
		t.Error("param not applied")
	}
	if err := e.SetParam("nope", 1); err == nil {
		t.Error("expected error for unknown param")
	}
}

func TestParseCycle(t *testing.T) {
	tests := []struct {
		in      string
		want    Cycle
		wantErr bool
	}{
		{"four_stroke", FourStroke, false},
		{"two_stroke", TwoStroke, false},
		{"", FourStroke, false},
		{"rotary", FourStroke, true},
	}
	for _, tt := range tests {
		got, err := ParseCycle(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseCycle(%q) = %v, %v", tt.in, got, err)
		}
	}
	if _, err := ParseArrangement("w"); err == nil {
		t.Error("expected error for unknown arrangement")
	}
}

func TestStarter(t *testing.T) {
	s := &Starter{StallTorque: 10, NoLoadRPM: 3000, PinionRatio: 12}
	if s.Torque(0) != 0 {
		t.Error("disengaged starter should deliver nothing")
	}
	s.Engaged = true
	if got := s.Torque(0); got != 120 {
		t.Errorf("expected 120 Nm at stall, got %v", got)
	}
	if got := s.Torque(250); got != 0 {
		t.Errorf("expected 0 at no-load speed, got %v", got)
	}
	if got := s.Torque(400); got != 0 {
		t.Errorf("starter must not brake the engine, got %v", got)
	}
}
