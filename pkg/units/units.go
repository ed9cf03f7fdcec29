// Package units converts gdivelog's stored quantities into the units the
// export schemas expect.
//
// Every function is total: a quantity that must be positive but is not
// yields "undefined" (ok == false) rather than an error, and the caller
// simply omits the field.
package units

import (
	"fmt"
	"strings"
)

// Conversion factors.
const (
	kelvinOffset      = 273.15
	litersPerCuft     = 28.3168466
	barPerPSI         = 0.0689475729
	pascalPerBar      = 100000.0
	litersPerCubicM   = 1000.0
	fahrenheitOffset  = 32.0
	metersPerFoot     = 0.3048
	kilogramsPerPound = 0.45359237
)

// DepthUnit selects meters or feet.
type DepthUnit byte

// TemperatureUnit selects Celsius or Fahrenheit.
type TemperatureUnit byte

// WeightUnit selects kilograms or pounds.
type WeightUnit byte

// PressureUnit selects bar or psi.
type PressureUnit byte

// VolumeUnit selects liters or cubic feet.
type VolumeUnit byte

// Unit selectors use the same single-byte flags as gdivelog's preferences file.
const (
	Meters     DepthUnit       = 'm'
	Feet       DepthUnit       = 'f'
	Celsius    TemperatureUnit = 'c'
	Fahrenheit TemperatureUnit = 'f'
	Kilograms  WeightUnit      = 'k'
	Pounds     WeightUnit      = 'l'
	Bar        PressureUnit    = 'b'
	PSI        PressureUnit    = 'p'
	Liters     VolumeUnit      = 'l'
	CubicFeet  VolumeUnit      = 'c'
)

// System is the set of unit selections in effect for one run.
type System struct {
	Depth       DepthUnit       `toml:"depth"`
	Temperature TemperatureUnit `toml:"temperature"`
	Weight      WeightUnit      `toml:"weight"`
	Pressure    PressureUnit    `toml:"pressure"`
	Volume      VolumeUnit      `toml:"volume"`
}

// Metric returns the all-metric system gdivelog uses by default.
func Metric() System {
	return System{
		Depth:       Meters,
		Temperature: Celsius,
		Weight:      Kilograms,
		Pressure:    Bar,
		Volume:      Liters,
	}
}

// IsMetric reports whether depths are displayed in meters.
func (s System) IsMetric() bool { return s.Depth == Meters }

// CelsiusToKelvin converts a temperature from °C to K.
func CelsiusToKelvin(c float64) float64 {
	return c + kelvinOffset
}

// CelsiusToFahrenheit converts a temperature from °C to °F.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + fahrenheitOffset
}

// PSIToBar converts a pressure from psi to bar.
func PSIToBar(psi float64) float64 {
	return psi * barPerPSI
}

// BarToPascal converts a pressure from bar to Pa.
func BarToPascal(bar float64) float64 {
	return bar * pascalPerBar
}

// ToBar converts a pressure recorded in the configured unit to bar.
func (s System) ToBar(p float64) float64 {
	if s.Pressure == PSI {
		return PSIToBar(p)
	}
	return p
}

// Pascal converts a recorded cylinder pressure to Pa.
// Non-positive pressures are undefined.
func (s System) Pascal(p float64) (float64, bool) {
	if p <= 0 {
		return 0, false
	}
	return BarToPascal(s.ToBar(p)), true
}

// TankVolume derives the tank volume in m³ from gdivelog's tank record.
//
// With cubic feet selected, gdivelog stores the free-gas capacity and the
// working pressure, so the water volume is capacity*28.3168466/wp (bar).
// With liters selected the stored value already is the water volume.
func (s System) TankVolume(volume, workingPressure float64) (float64, bool) {
	if s.Volume == CubicFeet {
		if volume <= 0 || workingPressure <= 0 {
			return 0, false
		}
		return volume * litersPerCuft / s.ToBar(workingPressure), true
	}
	if volume <= 0 {
		return 0, false
	}
	return volume / litersPerCubicM, true
}

// =============================================================================
// Display
// =============================================================================

// gdivelog stores depths in meters, temperatures in °C and weights in kg;
// the selectors only change how values are shown.

// MetersToFeet converts a depth from m to ft.
func MetersToFeet(m float64) float64 {
	return m / metersPerFoot
}

// KilogramsToPounds converts a weight from kg to lb.
func KilogramsToPounds(kg float64) float64 {
	return kg / kilogramsPerPound
}

// DisplayDepth returns a depth in the selected unit and its symbol.
func (s System) DisplayDepth(m float64) (float64, string) {
	if s.Depth == Feet {
		return MetersToFeet(m), "ft"
	}
	return m, "m"
}

// DisplayTemperature returns a temperature in the selected unit and its symbol.
func (s System) DisplayTemperature(c float64) (float64, string) {
	if s.Temperature == Fahrenheit {
		return CelsiusToFahrenheit(c), "°F"
	}
	return c, "°C"
}

// DisplayWeight returns a weight in the selected unit and its symbol.
func (s System) DisplayWeight(kg float64) (float64, string) {
	if s.Weight == Pounds {
		return KilogramsToPounds(kg), "lb"
	}
	return kg, "kg"
}

// =============================================================================
// Text decoding
// =============================================================================

var (
	depthNames = map[string]DepthUnit{
		"m": Meters, "meter": Meters, "meters": Meters, "metric": Meters,
		"f": Feet, "ft": Feet, "feet": Feet, "imperial": Feet,
	}
	temperatureNames = map[string]TemperatureUnit{
		"c": Celsius, "celsius": Celsius, "centigrade": Celsius,
		"f": Fahrenheit, "fahrenheit": Fahrenheit,
	}
	weightNames = map[string]WeightUnit{
		"k": Kilograms, "kg": Kilograms, "kilograms": Kilograms,
		"l": Pounds, "lb": Pounds, "lbs": Pounds, "pounds": Pounds,
	}
	pressureNames = map[string]PressureUnit{
		"b": Bar, "bar": Bar,
		"p": PSI, "psi": PSI,
	}
	volumeNames = map[string]VolumeUnit{
		"l": Liters, "liter": Liters, "liters": Liters, "litre": Liters, "litres": Liters,
		"c": CubicFeet, "cuft": CubicFeet, "cubicfeet": CubicFeet,
	}
)

func lookup[T any](names map[string]T, kind string, text []byte) (T, error) {
	key := strings.ToLower(strings.TrimSpace(string(text)))
	if u, ok := names[key]; ok {
		return u, nil
	}
	var zero T
	return zero, fmt.Errorf("unknown %s unit %q", kind, string(text))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *DepthUnit) UnmarshalText(text []byte) (err error) {
	*u, err = lookup(depthNames, "depth", text)
	return err
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *TemperatureUnit) UnmarshalText(text []byte) (err error) {
	*u, err = lookup(temperatureNames, "temperature", text)
	return err
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *WeightUnit) UnmarshalText(text []byte) (err error) {
	*u, err = lookup(weightNames, "weight", text)
	return err
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *PressureUnit) UnmarshalText(text []byte) (err error) {
	*u, err = lookup(pressureNames, "pressure", text)
	return err
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *VolumeUnit) UnmarshalText(text []byte) (err error) {
	*u, err = lookup(volumeNames, "volume", text)
	return err
}
