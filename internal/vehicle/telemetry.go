package vehicle

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/drivesim/internal/ecu"
	"github.com/san-kum/drivesim/internal/powertrain"
)

type WheelTelemetry struct {
	Name        string
	Contact     bool
	Traction    float64
	Compression float64
	NormalLoad  float64
	DriveForce  float64
	SpinRPM     float64
	SteerAngle  float64
}

// Telemetry is the per-tick snapshot a Vehicle exposes to the UI, metrics
// and storage.
type Telemetry struct {
	Time     float64
	ECUState ecu.PowerState
	Actions  ecu.Actions
	Running  bool
	Stalls   int

	ClutchState        powertrain.ClutchState
	ClutchTorque       float64
	ClutchTemperatureC float64
	ConverterSlip      float64

	Gear      int
	GearLabel string

	EngineRPM       float64
	RPMAfterClutch  float64
	RPMAfterGearbox float64

	CombustionTorque float64
	BrakeTorque      float64
	PowerKW          float64
	BMEP             float64
	OilTemperatureC  float64

	Speed    float64 // m/s along the chassis forward axis
	Position mgl64.Vec3
	Drag     float64

	Wheels []WheelTelemetry
}

func (t Telemetry) SpeedKmh() float64 { return t.Speed * 3.6 }

// ContactRatio is the fraction of wheels touching the ground.
func (t Telemetry) ContactRatio() float64 {
	if len(t.Wheels) == 0 {
		return 0
	}
	n := 0
	for _, w := range t.Wheels {
		if w.Contact {
			n++
		}
	}
	return float64(n) / float64(len(t.Wheels))
}

// Columns names the values returned by Values, in order.
var Columns = []string{
	"time", "ecu_state", "rpm", "rpm_after_clutch", "rpm_after_gearbox",
	"throttle", "clutch", "brake", "gear", "clutch_state", "clutch_torque",
	"combustion_torque", "power_kw", "oil_temp_c", "clutch_temp_c",
	"speed", "x", "y", "z", "contact_ratio",
}

// Values flattens the snapshot into a numeric row matching Columns.
func (t Telemetry) Values() []float64 {
	return []float64{
		t.Time,
		float64(t.ECUState),
		t.EngineRPM,
		t.RPMAfterClutch,
		t.RPMAfterGearbox,
		t.Actions.Throttle0to1,
		t.Actions.Clutch0to1,
		t.Actions.Brake0to1,
		float64(t.Gear),
		float64(t.ClutchState),
		t.ClutchTorque,
		t.CombustionTorque,
		t.PowerKW,
		t.OilTemperatureC,
		t.ClutchTemperatureC,
		t.Speed,
		t.Position.X(),
		t.Position.Y(),
		t.Position.Z(),
		t.ContactRatio(),
	}
}

// ColumnIndex returns the index of name in Columns or -1.
func ColumnIndex(name string) int {
	for i, c := range Columns {
		if c == name {
			return i
		}
	}
	return -1
}
