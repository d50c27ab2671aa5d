package weather

import (
	"fmt"
	"math"
)

const kphToMph = 0.621371

func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

func KphToMph(kph float64) float64 {
	return kph * kphToMph
}

// FormatTemp renders a Celsius value in the given unit system, rounded to a whole degree.
func FormatTemp(c float64, units UnitSystem) string {
	if units == Imperial {
		return fmt.Sprintf("%d°F", roundInt(CelsiusToFahrenheit(c)))
	}
	return fmt.Sprintf("%d°C", roundInt(c))
}

// FormatWind renders a km/h value in the given unit system with one decimal place.
func FormatWind(kph float64, units UnitSystem) string {
	if units == Imperial {
		return fmt.Sprintf("%.1f mph", KphToMph(kph))
	}
	return fmt.Sprintf("%.1f km/h", kph)
}

// roundInt rounds half up, so -2.5 becomes -2 and 2.5 becomes 3.
func roundInt(v float64) int {
	return int(math.Floor(v + 0.5))
}
