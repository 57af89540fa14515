package briefing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/yegors/spotten/internal/dropzone"
	"github.com/yegors/spotten/internal/physics"
	"github.com/yegors/spotten/internal/spot"
)

// ErrInvalidForm is wrapped by every form validation error
var ErrInvalidForm = errors.New("invalid form input")

// Form limits
const (
	MaxWindSpeedKt = 200.0
	MaxOffTrackNM  = 5.0
)

// Altitudes of the forecast levels on the form, in feet above the DZ
const (
	altitudeFL100Ft  = 10000
	altitudeFL50Ft   = 5000
	altitude2000ftFt = 2000
)

// WindInput is a wind as read from a forecast
type WindInput struct {
	DirectionDeg float64 `json:"direction_deg"`
	SpeedKt      float64 `json:"speed_kt"`
}

// ParseWind parses a wind written as "direction/speed", e.g. "270/25". A "KT" suffix is
// accepted.
func ParseWind(s string) (WindInput, error) {
	dir, speed, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return WindInput{}, fmt.Errorf("%w: wind %q must be written as direction/speed", ErrInvalidForm, s)
	}
	speed = strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(speed)), "KT")

	d, err := strconv.ParseFloat(strings.TrimSpace(dir), 64)
	if err != nil {
		return WindInput{}, fmt.Errorf("%w: wind direction %q: %v", ErrInvalidForm, dir, err)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(speed), 64)
	if err != nil {
		return WindInput{}, fmt.Errorf("%w: wind speed %q: %v", ErrInvalidForm, speed, err)
	}
	return WindInput{DirectionDeg: d, SpeedKt: v}, nil
}

// FormInput is the state of the input form, in the units pilots use
type FormInput struct {
	DropzoneID string    `json:"dropzone_id"`
	WindFL100  WindInput `json:"wind_fl100"`
	WindFL50   WindInput `json:"wind_fl50"`
	Wind2000ft WindInput `json:"wind_2000ft"`
	WindGround WindInput `json:"wind_ground"`

	FixedLineOfFlightDeg *float64 `json:"fixed_line_of_flight_deg,omitempty"`
	FixedOffTrackNM      *float64 `json:"fixed_off_track_nm,omitempty"`
	// FixedGreenLightNM replaces the computed green light in the result
	FixedGreenLightNM *float64 `json:"fixed_green_light_nm,omitempty"`
}

// DefaultFormInput returns the form shown before anything has been entered: calm winds from
// north.
func DefaultFormInput() FormInput {
	calm := WindInput{DirectionDeg: 360, SpeedKt: 0}
	return FormInput{
		WindFL100:  calm,
		WindFL50:   calm,
		Wind2000ft: calm,
		WindGround: calm,
	}
}

// Validate checks that every value is within the form's limits
func (f FormInput) Validate() error {
	winds := []struct {
		label string
		wind  WindInput
	}{
		{"FL100", f.WindFL100},
		{"FL50", f.WindFL50},
		{"2000 ft", f.Wind2000ft},
		{"ground", f.WindGround},
	}
	for _, w := range winds {
		if w.wind.DirectionDeg < 0 || w.wind.DirectionDeg > 360 {
			return fmt.Errorf("%w: %s wind direction %.0f must be between 0 and 360", ErrInvalidForm, w.label, w.wind.DirectionDeg)
		}
		if w.wind.SpeedKt < 0 || w.wind.SpeedKt > MaxWindSpeedKt {
			return fmt.Errorf("%w: %s wind speed %.0f kt must be between 0 and %.0f", ErrInvalidForm, w.label, w.wind.SpeedKt, MaxWindSpeedKt)
		}
	}

	if lof := f.FixedLineOfFlightDeg; lof != nil && (*lof < 0 || *lof > 360) {
		return fmt.Errorf("%w: line of flight %.0f must be between 0 and 360", ErrInvalidForm, *lof)
	}
	if off := f.FixedOffTrackNM; off != nil && (*off < -MaxOffTrackNM || *off > MaxOffTrackNM) {
		return fmt.Errorf("%w: off track %.1f NM must be within %.0f NM", ErrInvalidForm, *off, MaxOffTrackNM)
	}
	return nil
}

// Winds returns the form's winds in display order, highest first
func (f FormInput) Winds() []LabeledWind {
	return []LabeledWind{
		{Label: "FL100", Wind: f.WindFL100},
		{Label: "FL50", Wind: f.WindFL50},
		{Label: "2000 ft", Wind: f.Wind2000ft},
		{Label: "GND", Wind: f.WindGround},
	}
}

// LabeledWind is a form wind with the name of its level
type LabeledWind struct {
	Label string
	Wind  WindInput
}

// ToInput converts the form into the calculator's metric input
func ToInput(f FormInput, dz dropzone.Dropzone, overrides spot.ConfigOverrides) spot.Input {
	metricWind := func(altFt float64, w WindInput) spot.Wind {
		return spot.Wind{
			Altitude:  physics.FtToM(altFt),
			Speed:     physics.KtToMs(w.SpeedKt),
			Direction: physics.DegToRad(w.DirectionDeg),
		}
	}

	input := spot.Input{
		Winds: []spot.Wind{
			metricWind(altitudeFL100Ft, f.WindFL100),
			metricWind(altitudeFL50Ft, f.WindFL50),
			metricWind(altitude2000ftFt, f.Wind2000ft),
			metricWind(0, f.WindGround),
		},
		FixedLandingDirections: dz.FixedLandingDirections(),
		Config:                 overrides,
	}
	if f.FixedLineOfFlightDeg != nil {
		lof := physics.NormalizeAngle(physics.DegToRad(*f.FixedLineOfFlightDeg))
		input.FixedLineOfFlight = &lof
	}
	if f.FixedOffTrackNM != nil {
		off := physics.NMToM(*f.FixedOffTrackNM)
		input.FixedOffTrack = &off
	}
	return input
}

// CircleNM is a circle in DZ-centered nautical miles
type CircleNM struct {
	XNM      float64 `json:"x_nm"`
	YNM      float64 `json:"y_nm"`
	RadiusNM float64 `json:"radius_nm"`
}

// RedLightNM is the red light in display units
type RedLightNM struct {
	BearingDeg float64 `json:"bearing_deg"`
	DistanceNM float64 `json:"distance_nm"`
}

// Spot is the calculated spot in display units
type Spot struct {
	LineOfFlightDeg       float64    `json:"line_of_flight_deg"`
	OffTrackNM            float64    `json:"off_track_nm"`
	GreenLightNM          float64    `json:"green_light_nm"`
	DeplCircle            CircleNM   `json:"depl_circle"`
	ExitCircle            CircleNM   `json:"exit_circle"`
	RedLight              RedLightNM `json:"red_light"`
	SecondsBetweenGroups  float64    `json:"seconds_between_groups"`
	GroupSpacingUnbounded bool       `json:"group_spacing_unbounded"`
	LandingDirectionDeg   float64    `json:"landing_direction_deg"`
	JumpRunDurationSecs   float64    `json:"jump_run_duration_secs"`
	JumpRunLengthNM       float64    `json:"jump_run_length_nm"`
	GroundSpeedKt         float64    `json:"ground_speed_kt"`
}

// FromOutput converts the calculator's output to display units. North is shown as 360.
func FromOutput(out spot.Output, f FormInput) Spot {
	circle := func(c spot.Circle) CircleNM {
		return CircleNM{
			XNM:      physics.MToNM(c.X),
			YNM:      physics.MToNM(c.Y),
			RadiusNM: physics.MToNM(c.Radius),
		}
	}

	s := Spot{
		LineOfFlightDeg: displayDirection(out.LineOfFlight),
		OffTrackNM:      physics.MToNM(out.OffTrack),
		GreenLightNM:    physics.MToNM(out.GreenLight),
		DeplCircle:      circle(out.DeplCircle),
		ExitCircle:      circle(out.ExitCircle),
		RedLight: RedLightNM{
			BearingDeg: physics.RadToDeg(out.RedLight.Bearing),
			DistanceNM: physics.MToNM(out.RedLight.Distance),
		},
		SecondsBetweenGroups:  out.TimeBetweenGroups,
		GroupSpacingUnbounded: out.GroupSpacingUnbounded,
		LandingDirectionDeg:   displayDirection(out.LandingDirection),
		JumpRunDurationSecs:   out.JumpRunDuration,
		JumpRunLengthNM:       physics.MToNM(out.JumpRunLength),
		GroundSpeedKt:         physics.MsToKt(out.GroundSpeed),
	}
	if f.FixedGreenLightNM != nil {
		s.GreenLightNM = *f.FixedGreenLightNM
	}
	return s
}

func displayDirection(rad float64) float64 {
	if rad == 0 {
		return 360
	}
	return physics.RadToDeg(rad)
}
