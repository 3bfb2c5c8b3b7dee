package services

import (
	"math"

	"github.com/raugupatis/raugupatis-log/internal/models"
)

// Readings outside this band, in °F, are rejected as typos.
const (
	minLoggedFahrenheit = -58.0
	maxLoggedFahrenheit = 212.0
)

func FahrenheitToCelsius(value float64) float64 {
	return (value - 32) * 5 / 9
}

func CelsiusToFahrenheit(value float64) float64 {
	return value*9/5 + 32
}

// ToStorageUnit converts a reading entered in unit to °F.
func ToStorageUnit(value float64, unit string) float64 {
	if unit == models.TempUnitCelsius {
		return CelsiusToFahrenheit(value)
	}
	return value
}

// ToDisplayUnit converts a stored °F value to unit, rounded to one decimal.
func ToDisplayUnit(fahrenheit float64, unit string) float64 {
	value := fahrenheit
	if unit == models.TempUnitCelsius {
		value = FahrenheitToCelsius(fahrenheit)
	}
	return math.Round(value*10) / 10
}

func TempUnitSymbol(unit string) string {
	if unit == models.TempUnitCelsius {
		return "°C"
	}
	return "°F"
}
