package spot

import (
	"math"

	"github.com/yegors/spotten/internal/physics"
)

// trackRoundingStep is the resolution of a computed line of flight
var trackRoundingStep = physics.DegToRad(5)

type spotSolution struct {
	track         float64
	offTrack      float64
	greenLight    float64 // before forward throw and green light delay
	jumpRunLength float64
}

// solveSpot finds the line of flight through the exit circle and the point where it enters the
// circle.
func (c *Calculator) solveSpot(circle Circle) spotSolution {
	windDirection := c.wind.At(c.config.ExitAltitude).Direction

	var track, offTrack float64
	switch {
	case c.fixedOffTrack == nil:
		if c.fixedTrack != nil {
			track = *c.fixedTrack
		} else {
			track = physics.NormalizeAngle(physics.RoundTo(windDirection, trackRoundingStep))
		}
		// The off track that puts the track straight through the circle's center
		offTrack = circle.X*math.Cos(track) - circle.Y*math.Sin(track)
		offTrack = physics.RoundTo(offTrack, RoundingStep)
	case c.fixedTrack == nil:
		// Approximation: flying into the exit wind. The track maximizing the time spent inside
		// the circle would be better.
		track = windDirection
		offTrack = *c.fixedOffTrack
	default:
		track = *c.fixedTrack
		offTrack = *c.fixedOffTrack
	}

	mid, half := chord(circle, track, offTrack)
	return spotSolution{
		track:         track,
		offTrack:      offTrack,
		greenLight:    mid - half,
		jumpRunLength: 2 * half,
	}
}

// chord intersects the line of flight with the circle. The line runs along track, offset
// sideways by offTrack. It returns the along-track distance from the DZ abeam to the middle of
// the chord, and half the chord's length. A line missing the circle has a zero-length chord.
func chord(circle Circle, track, offTrack float64) (mid, half float64) {
	dx := circle.X - offTrack*math.Cos(track)
	dy := circle.Y + offTrack*math.Sin(track)
	mid = dx*math.Sin(track) + dy*math.Cos(track)
	disc := mid*mid - dx*dx - dy*dy + circle.Radius*circle.Radius
	if disc < 0 {
		return mid, 0
	}
	return mid, math.Sqrt(disc)
}
