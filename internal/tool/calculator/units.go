package calculator

import (
	"errors"
	"fmt"
)

// ErrIncompatibleUnits is returned when two units measure different things.
var ErrIncompatibleUnits = errors.New("cannot convert between units")

var lengthToMeters = map[string]float64{
	"meter": 1, "meters": 1, "m": 1,
	"kilometer": 1000, "kilometers": 1000, "km": 1000,
	"centimeter": 0.01, "centimeters": 0.01, "cm": 0.01,
	"millimeter": 0.001, "millimeters": 0.001, "mm": 0.001,
	"mile": 1609.34, "miles": 1609.34, "mi": 1609.34,
	"foot": 0.3048, "feet": 0.3048, "ft": 0.3048,
	"inch": 0.0254, "inches": 0.0254, "in": 0.0254,
	"yard": 0.9144, "yards": 0.9144, "yd": 0.9144,
}

var weightToKilograms = map[string]float64{
	"kilogram": 1, "kilograms": 1, "kg": 1,
	"gram": 0.001, "grams": 0.001, "g": 0.001,
	"pound": 0.453592, "pounds": 0.453592, "lb": 0.453592, "lbs": 0.453592,
	"ounce": 0.0283495, "ounces": 0.0283495, "oz": 0.0283495,
}

var temperatureUnits = map[string]string{
	"celsius": "C", "c": "C",
	"fahrenheit": "F", "f": "F",
	"kelvin": "K", "k": "K",
}

func isTemperature(unit string) bool {
	_, ok := temperatureUnits[unit]
	return ok
}

func tempSymbol(unit string) string {
	return temperatureUnits[unit]
}

// Convert converts value between two lower-case units of the same kind.
func Convert(value float64, from, to string) (float64, error) {
	if isTemperature(from) && isTemperature(to) {
		return fromKelvin(toKelvin(value, tempSymbol(from)), tempSymbol(to)), nil
	}
	if f, ok := lengthToMeters[from]; ok {
		if t, ok := lengthToMeters[to]; ok {
			return value * f / t, nil
		}
	}
	if f, ok := weightToKilograms[from]; ok {
		if t, ok := weightToKilograms[to]; ok {
			return value * f / t, nil
		}
	}
	return 0, fmt.Errorf("%w %s and %s", ErrIncompatibleUnits, from, to)
}

func toKelvin(v float64, sym string) float64 {
	switch sym {
	case "C":
		return v + 273.15
	case "F":
		return (v-32)*5/9 + 273.15
	default:
		return v
	}
}

func fromKelvin(v float64, sym string) float64 {
	switch sym {
	case "C":
		return v - 273.15
	case "F":
		return (v-273.15)*9/5 + 32
	default:
		return v
	}
}
