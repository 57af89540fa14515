package physics

import (
	"math"
	"time"

	"github.com/westphae/geomag/pkg/egm96"
	"github.com/westphae/geomag/pkg/wmm"
)

// Constants
const (
	T0              = 288.15    // Standard Sea Level Temperature (K)
	L               = 0.0065    // Temperature Lapse Rate (K/m) in Troposphere
	Rho0            = 1.225     // Standard Sea Level Air Density (kg/m^3)
	MolarMassAir    = 0.0289644 // Molar mass of dry air (kg/mol)
	UniversalGasR   = 8.3144598 // Universal gas constant (J/(mol·K))
	G               = 9.81      // Gravity (m/s^2) as used by the free-fall model
	DragCoefficient = 0.003     // Combined 1/2 * C_d * A / m (m^2/kg)
)

// TroposphereTop is the altitude (m) where the lapse-rate density model stops holding
const TroposphereTop = 11000

// densityExponent is the barometric density exponent for the troposphere
var densityExponent = 1 - (G*MolarMassAir)/UniversalGasR/L

// AirDensity returns the air density in kg/m^3 at the given altitude in meters.
// The DZ is assumed to be at sea level.
// https://en.wikipedia.org/wiki/Barometric_formula#Density_equations
func AirDensity(altM float64) float64 {
	return Rho0 * math.Pow(T0/(T0-L*altM), densityExponent)
}

// DragAcceleration returns the deceleration (m/s^2) of a jumper in free fall.
//
// The drag equation and Newton's second law give
//
//	a = 1/2 * rho * v^2 * C_d * A / m
//
// Everything except rho and v is folded into DragCoefficient, which was chosen to give a
// terminal velocity of 199 km/h at 1200 m.
func DragAcceleration(velocity, altM float64) float64 {
	return DragCoefficient * AirDensity(altM) * velocity * velocity
}

// TerminalVelocity returns the belly-to-earth terminal velocity (m/s) at the given altitude
func TerminalVelocity(altM float64) float64 {
	return math.Sqrt(G / (DragCoefficient * AirDensity(altM)))
}

// CalculateMagneticVariation calculates the magnetic declination for a given position and time
// Returns declination in degrees (+East, -West)
func CalculateMagneticVariation(lat, lon, altFt float64, date time.Time) float64 {
	altM := altFt * MetersPerFoot

	loc := egm96.NewLocationGeodetic(lat, lon, altM)

	mag, err := wmm.CalculateWMMMagneticField(loc, date)
	if err != nil {
		// Return 0 for safety if calculation fails
		return 0.0
	}

	return mag.D()
}
