package spot

import (
	"fmt"
	"math"

	"github.com/yegors/spotten/internal/physics"
)

// Note:
//  * Units: all values are in meters, seconds, m/s and radians.
//  * The origin is at the DZ; X increases to the east and Y to the north.
//  * Angles increase clockwise from north.
//  * Wind directions are antiparallel to other angles: they refer to where the wind comes from.
//  * Off track is positive to the right of the line of flight and negative to the left.
//  * The deployment altitude is where the canopy is fully open.
//  * Track and line of flight both refer to the aircraft's course over ground.

// RoundingStep is the resolution of published distances: 0.1 NM
const RoundingStep = 0.1 * physics.MetersPerNM

// MaxTimeBetweenGroups is reported when the aircraft makes no progress relative to the
// previous group's canopies, i.e. when no finite separation exists.
const MaxTimeBetweenGroups = 3600.0

// Input is everything the calculator needs to produce a spot
type Input struct {
	Winds                  []Wind          `json:"winds"`
	FixedLineOfFlight      *float64        `json:"fixed_line_of_flight,omitempty"`
	FixedOffTrack          *float64        `json:"fixed_off_track,omitempty"`
	FixedLandingDirections []float64       `json:"fixed_landing_directions,omitempty"`
	Config                 ConfigOverrides `json:"config"`
}

// Circle is a circle in DZ-centered coordinates
type Circle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// RedLight marks where the jump run must end
type RedLight struct {
	Bearing  float64 `json:"bearing"`
	Distance float64 `json:"distance"`
}

// Output is the computed spot
type Output struct {
	LineOfFlight     float64  `json:"line_of_flight"`
	GreenLight       float64  `json:"green_light"` // along track from the DZ, negative before it
	OffTrack         float64  `json:"off_track"`
	LandingDirection float64  `json:"landing_direction"`
	DeplCircle       Circle   `json:"depl_circle"`
	ExitCircle       Circle   `json:"exit_circle"`
	RedLight         RedLight `json:"red_light"`
	// TimeBetweenGroups is MaxTimeBetweenGroups when GroupSpacingUnbounded is set
	TimeBetweenGroups     float64 `json:"time_between_groups"`
	GroupSpacingUnbounded bool    `json:"group_spacing_unbounded"`
	JumpRunDuration       float64 `json:"jump_run_duration"`
	JumpRunLength         float64 `json:"jump_run_length"`
	ThrowDistance         float64 `json:"throw_distance"`
	GroundSpeed           float64 `json:"ground_speed"`
}

// Calculator computes the spot for one set of winds and parameters.
// It is immutable once created and safe for concurrent use.
type Calculator struct {
	wind                   *WindEstimator
	config                 Config
	fixedTrack             *float64
	fixedOffTrack          *float64
	fixedLandingDirections []float64
}

// NewCalculator creates a calculator. It fails only when the wind profile is empty.
func NewCalculator(input Input) (*Calculator, error) {
	wind, err := NewWindEstimator(input.Winds)
	if err != nil {
		return nil, fmt.Errorf("failed to create wind estimator: %w", err)
	}

	c := &Calculator{
		wind:          wind,
		config:        BuildConfig(input.Config),
		fixedTrack:    copyFloat(input.FixedLineOfFlight),
		fixedOffTrack: copyFloat(input.FixedOffTrack),
	}
	if len(input.FixedLandingDirections) > 0 {
		c.fixedLandingDirections = append([]float64(nil), input.FixedLandingDirections...)
	}
	return c, nil
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// Config returns the effective configuration
func (c *Calculator) Config() Config {
	return c.config
}

// Calculate computes the spot
func (c *Calculator) Calculate() Output {
	return c.calculate(nil)
}

func (c *Calculator) calculate(trace *Trace) Output {
	landingDirection := c.landingDirection()

	var canopySteps *[]CanopyStep
	var freeFallSteps *[]FreeFallStep
	if trace != nil {
		canopySteps, freeFallSteps = &trace.Canopy, &trace.FreeFall
	}

	deplCircle := c.deploymentCircle(landingDirection, canopySteps)
	ff := c.freeFall(freeFallSteps)

	exitCircle := deplCircle
	exitCircle.X -= ff.DriftX
	exitCircle.Y -= ff.DriftY
	s := c.solveSpot(exitCircle)

	// Move the exit point ahead by the forward throw
	exitCircle.X -= ff.ThrowDistance * math.Sin(s.track)
	exitCircle.Y -= ff.ThrowDistance * math.Cos(s.track)
	greenLight := s.greenLight - ff.ThrowDistance

	exitWind := c.wind.At(c.config.ExitAltitude)
	sog, _ := physics.SpeedOverGround(s.track, c.config.JumpRunTAS, exitWind.Speed, exitWind.Direction)

	// Leave time for the jumpers to get out after the light turns green
	greenLight -= c.config.GreenLightTime * sog
	greenLight = physics.RoundTo(greenLight, RoundingStep)

	out := Output{
		LineOfFlight:     s.track,
		GreenLight:       greenLight,
		OffTrack:         s.offTrack,
		LandingDirection: landingDirection,
		DeplCircle:       deplCircle,
		ExitCircle:       exitCircle,
		RedLight:         c.redLight(s.track, greenLight, sog),
		JumpRunLength:    s.jumpRunLength,
		ThrowDistance:    ff.ThrowDistance,
		GroundSpeed:      sog,
	}
	out.TimeBetweenGroups, out.GroupSpacingUnbounded = c.timeBetweenGroups(s.track, sog)
	if sog > 0 {
		out.JumpRunDuration = s.jumpRunLength / sog
	}
	return out
}

// landingDirection picks the fixed landing direction closest to the ground wind, or the ground
// wind direction itself when the DZ has no fixed directions.
func (c *Calculator) landingDirection() float64 {
	windDirection := c.wind.At(0).Direction
	if len(c.fixedLandingDirections) == 0 {
		return physics.NormalizeAngle(windDirection)
	}

	best := c.fixedLandingDirections[0]
	bestDelta := math.Abs(physics.NormalizeAngleDiff(windDirection - best))
	for _, ld := range c.fixedLandingDirections[1:] {
		delta := math.Abs(physics.NormalizeAngleDiff(windDirection - ld))
		if delta < bestDelta {
			best, bestDelta = ld, delta
		}
	}
	return physics.NormalizeAngle(best)
}

func (c *Calculator) redLight(track, greenLight, sog float64) RedLight {
	return RedLight{
		Bearing:  physics.NormalizeAngle(track + math.Pi),
		Distance: physics.RoundTo(greenLight+c.config.RedLightTime*sog, RoundingStep),
	}
}

// timeBetweenGroups returns the seconds to wait between groups so that their canopies open
// MetersBetweenGroups apart. The second value reports whether no finite spacing exists.
func (c *Calculator) timeBetweenGroups(track, sog float64) (float64, bool) {
	deplWind := c.wind.At(c.config.DeplAltitude)
	closingSpeed := sog + deplWind.Speed*math.Cos(deplWind.Direction-track)
	if closingSpeed <= 0 {
		return MaxTimeBetweenGroups, true
	}
	t := c.config.MetersBetweenGroups / closingSpeed
	return math.Ceil(math.Max(c.config.MinTimeBetweenGroups, t)), false
}
