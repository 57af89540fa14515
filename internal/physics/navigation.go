package physics

import "math"

// All angles in this file are radians, clockwise from north. Wind directions are where the wind
// is coming FROM, which is antiparallel to every other direction.

// Vector2D represents a 2D vector
type Vector2D struct {
	X float64 // East component
	Y float64 // North component
}

// HeadingToVector converts a heading and magnitude to X/Y components
func HeadingToVector(heading float64, magnitude float64) Vector2D {
	return Vector2D{
		X: magnitude * math.Sin(heading),
		Y: magnitude * math.Cos(heading),
	}
}

// Heading returns the direction the vector points to
func (v Vector2D) Heading() float64 {
	return NormalizeAngle(math.Atan2(v.X, v.Y))
}

// Length returns the magnitude of the vector
func (v Vector2D) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// Scale returns the vector multiplied by s
func (v Vector2D) Scale(s float64) Vector2D {
	return Vector2D{X: v.X * s, Y: v.Y * s}
}

// Lerp interpolates linearly between v and w
func (v Vector2D) Lerp(w Vector2D, t float64) Vector2D {
	return Vector2D{
		X: v.X + (w.X-v.X)*t,
		Y: v.Y + (w.Y-v.Y)*t,
	}
}

// UpwindVector returns the vector pointing towards where the wind comes from.
// Its magnitude is the wind speed.
func UpwindVector(speed, direction float64) Vector2D {
	return HeadingToVector(direction, speed)
}

// WindVelocity returns the velocity of the air mass (U east, V north)
func WindVelocity(speed, direction float64) Vector2D {
	return UpwindVector(speed, direction).Scale(-1)
}

// WindFromUpwind converts an upwind vector back to speed and (from) direction.
// A zero vector yields direction 0.
func WindFromUpwind(v Vector2D) (speed, direction float64) {
	return v.Length(), v.Heading()
}

// NormalizeAngle maps an angle to [0, 2π)
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	if a >= 2*math.Pi {
		a = 0
	}
	return a
}

// NormalizeAngleDiff maps an angle difference to (-π, π]
func NormalizeAngleDiff(a float64) float64 {
	a = NormalizeAngle(a)
	if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// RoundTo rounds x to the nearest multiple of step. Halves round up.
func RoundTo(x, step float64) float64 {
	return step * math.Floor(x/step+0.5)
}

// SpeedOverGround returns the ground speed and ground track of an aircraft (or canopy) crabbing
// along track with the given true airspeed.
//
// The wind is split along and across the track. The crosswind is compensated by crabbing,
// which reduces the airspeed component along the track; the headwind is then subtracted.
// If the crosswind exceeds the airspeed the track cannot be flown and the aircraft flies
// backwards into the wind instead.
func SpeedOverGround(track, tas, windSpeed, windDirection float64) (speed, direction float64) {
	crosswind := windSpeed * math.Sin(windDirection-track)
	disc := tas*tas - crosswind*crosswind
	if disc < 0 {
		return tas - windSpeed, windDirection
	}
	headwind := windSpeed * math.Cos(windDirection-track)
	return math.Sqrt(disc) - headwind, track
}
