package physics

import "math"

// Unit conversion factors
const (
	MetersPerNM   = 1852.0
	MetersPerFoot = 0.3048
	KnotsToMs     = MetersPerNM / 3600 // Conversion factor from Knots to m/s
	MsToKnots     = 1 / KnotsToMs      // Conversion factor from m/s to Knots
)

// DegToRad converts degrees to radians
func DegToRad(deg float64) float64 { return deg * math.Pi / 180 }

// RadToDeg converts radians to degrees
func RadToDeg(rad float64) float64 { return rad * 180 / math.Pi }

// KtToMs converts knots to m/s
func KtToMs(kt float64) float64 { return kt * KnotsToMs }

// MsToKt converts m/s to knots
func MsToKt(ms float64) float64 { return ms * MsToKnots }

// NMToM converts nautical miles to meters
func NMToM(nm float64) float64 { return nm * MetersPerNM }

// MToNM converts meters to nautical miles
func MToNM(m float64) float64 { return m / MetersPerNM }

// FtToM converts feet to meters
func FtToM(ft float64) float64 { return ft * MetersPerFoot }

// MToFt converts meters to feet
func MToFt(m float64) float64 { return m / MetersPerFoot }
