package physics

const (
	StandardTemperatureC = 15.0
	StandardPressurePa   = 101325.0
	// GasConstantAir is the specific gas constant of dry air in J/(kg K).
	GasConstantAir = 287.05
	kelvinOffset   = 273.15
)

// StandardDensity is the dry air density at 15 C and sea level pressure.
var StandardDensity = AirDensity(StandardPressurePa, StandardTemperatureC)

// Environment is read by the drag and engine models; nothing in the vehicle
// writes to it.
type Environment struct {
	TemperatureC float64
	PressurePa   float64
	Density      float64
}

func NewEnvironment(temperatureC, pressurePa float64) Environment {
	return Environment{
		TemperatureC: temperatureC,
		PressurePa:   pressurePa,
		Density:      AirDensity(pressurePa, temperatureC),
	}
}

func StandardEnvironment() Environment {
	return NewEnvironment(StandardTemperatureC, StandardPressurePa)
}

// AirDensity applies the ideal gas law. Temperatures at or below absolute
// zero give 0.
func AirDensity(pressurePa, temperatureC float64) float64 {
	kelvin := temperatureC + kelvinOffset
	if kelvin <= 0 || pressurePa <= 0 {
		return 0
	}
	return pressurePa / (GasConstantAir * kelvin)
}

// DensityRatio is Density relative to the standard atmosphere.
func (e Environment) DensityRatio() float64 {
	if StandardDensity == 0 {
		return 1
	}
	return e.Density / StandardDensity
}
