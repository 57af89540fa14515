package spot

import "github.com/yegors/spotten/internal/physics"

const (
	// canopyTimeStep is the integration step of the canopy simulation in seconds
	canopyTimeStep = 1.0

	// maxCanopySteps stops the walk when VerticalCanopySpeed is not positive
	maxCanopySteps = 100000
)

// deploymentCircle walks the canopy flight backwards from the landing, climbing from the ground
// to the deployment altitude.
//
// Below the final altitude the canopy flies the landing direction, so its ground track is
// subtracted. Above it the canopy is assumed to hold in circles: it only drifts with the wind,
// and the time spent there becomes the radius it could have covered instead.
func (c *Calculator) deploymentCircle(landingDirection float64, steps *[]CanopyStep) Circle {
	var (
		altitude float64
		pos      physics.Vector2D
		radius   float64
	)
	for n := 0; altitude < c.config.DeplAltitude && n < maxCanopySteps; n++ {
		wind := c.wind.At(altitude)
		final := altitude < c.config.FinalAltitude
		if final {
			speed, direction := physics.SpeedOverGround(
				landingDirection,
				c.config.HorizontalCanopySpeed,
				wind.Speed,
				wind.Direction,
			)
			track := physics.HeadingToVector(direction, speed*canopyTimeStep)
			pos.X -= track.X
			pos.Y -= track.Y
		} else {
			drift := wind.upwind().Scale(canopyTimeStep)
			pos.X += drift.X
			pos.Y += drift.Y
			radius += c.config.HorizontalCanopySpeed * canopyTimeStep
		}
		altitude += c.config.VerticalCanopySpeed * canopyTimeStep

		if steps != nil {
			*steps = append(*steps, CanopyStep{
				Altitude: altitude,
				X:        pos.X,
				Y:        pos.Y,
				Radius:   radius,
				Final:    final,
			})
		}
	}
	return Circle{X: pos.X, Y: pos.Y, Radius: radius}
}
