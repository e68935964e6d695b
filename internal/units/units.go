// Package units provides the angle units accepted for exported fault tables.
// Angles are computed and stored in radians.
package units

import (
	"math"
	"strings"
)

// Unit constants
const (
	Radians = "rad"
	Degrees = "deg"
)

// ValidAngleUnits contains all valid angle unit values
var ValidAngleUnits = []string{Radians, Degrees}

// IsValidAngle checks if the given unit is a valid angle unit
func IsValidAngle(unit string) bool {
	for _, u := range ValidAngleUnits {
		if unit == u {
			return true
		}
	}
	return false
}

// ValidAngleUnitsString returns the valid units for error messages
func ValidAngleUnitsString() string {
	return strings.Join(ValidAngleUnits, ", ")
}

// ConvertAngle converts an angle in radians to the target units. Unknown
// units leave the value in radians.
func ConvertAngle(rad float64, targetUnits string) float64 {
	switch targetUnits {
	case Degrees:
		return rad * 180 / math.Pi
	default:
		return rad
	}
}
