package weather

import (
	"fmt"
	"math"
)

// Unit is the temperature display unit. Stored values stay Celsius.
type Unit string

const (
	Celsius    Unit = "celsius"
	Fahrenheit Unit = "fahrenheit"
)

// ToDisplayTemperature converts a Celsius value for display.
func ToDisplayTemperature(celsius float64, useCelsius bool) float64 {
	if useCelsius {
		return celsius
	}
	return celsius*9/5 + 32
}

// ParseUnit accepts "celsius"/"c" or "fahrenheit"/"f".
func ParseUnit(s string) (Unit, error) {
	switch s {
	case "celsius", "c", "C":
		return Celsius, nil
	case "fahrenheit", "f", "F":
		return Fahrenheit, nil
	}
	return "", fmt.Errorf("unknown unit %q", s)
}

func (u Unit) IsCelsius() bool {
	return u != Fahrenheit
}

// Convert maps a Celsius value to this unit.
func (u Unit) Convert(celsius float64) float64 {
	return ToDisplayTemperature(celsius, u.IsCelsius())
}

// Display converts and rounds to the nearest whole degree.
func (u Unit) Display(celsius float64) int {
	return int(math.Round(u.Convert(celsius)))
}

func (u Unit) Symbol() string {
	if u.IsCelsius() {
		return "°C"
	}
	return "°F"
}

func (u Unit) Toggle() Unit {
	if u.IsCelsius() {
		return Fahrenheit
	}
	return Celsius
}
