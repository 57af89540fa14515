package spot

import (
	"math"

	"github.com/yegors/spotten/internal/physics"
)

// freeFallTimeStep is the integration step of the free-fall simulation in seconds
const freeFallTimeStep = 0.2

// freeFallResult is the outcome of a free-fall simulation
type freeFallResult struct {
	DriftX, DriftY float64 // ground drift caused by the wind
	ThrowDistance  float64 // distance covered along the track thanks to the aircraft's speed
}

// freeFall integrates the jumper's fall from exit to deployment altitude. The jumper leaves
// the aircraft at JumpRunTAS and decelerates horizontally under drag while accelerating
// downwards under gravity.
func (c *Calculator) freeFall(steps *[]FreeFallStep) freeFallResult {
	const dt = freeFallTimeStep

	var (
		res        freeFallResult
		elapsed    float64
		altitude   = c.config.ExitAltitude
		horizontal = c.config.JumpRunTAS
		vertical   = 0.0
	)
	for altitude > c.config.DeplAltitude {
		wind := c.wind.At(altitude)
		drift := physics.WindVelocity(wind.Speed, wind.Direction).Scale(dt)
		res.DriftX += drift.X
		res.DriftY += drift.Y

		velocity := math.Hypot(horizontal, vertical)
		drag := physics.DragAcceleration(velocity, altitude)
		res.ThrowDistance += horizontal * dt
		altitude -= vertical * dt
		if velocity > 0 {
			horizontal -= horizontal / velocity * drag * dt
			vertical -= vertical / velocity * drag * dt
		}
		vertical += physics.G * dt
		elapsed += dt

		if steps != nil {
			*steps = append(*steps, FreeFallStep{
				Time:               elapsed,
				Altitude:           altitude,
				HorizontalVelocity: horizontal,
				VerticalVelocity:   vertical,
				DriftX:             res.DriftX,
				DriftY:             res.DriftY,
				ThrowDistance:      res.ThrowDistance,
			})
		}
	}
	return res
}
