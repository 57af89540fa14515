package briefing

import (
	"fmt"
	"math"
	"strings"
)

// Briefing is the text handed to the pilot and the jumpers
type Briefing struct {
	PilotInfo []string `json:"pilot_info"`
	// MagneticLineOfFlight is empty when the dropzone has no known position
	MagneticLineOfFlight string   `json:"magnetic_line_of_flight,omitempty"`
	JumperInfo           []string `json:"jumper_info"`
	Winds                []string `json:"winds"`
}

// AngleString formats a direction in whole degrees within 001 to 360. North is "360°", never
// "000°".
func AngleString(deg float64) string {
	d := int(math.Floor(deg + 0.5))
	d = ((d-1)%360+360)%360 + 1
	return fmt.Sprintf("%03d°", d)
}

// NewBriefing formats the spot. variationDeg is the magnetic declination at the dropzone, east
// positive, or nil when it is unknown.
func NewBriefing(s Spot, f FormInput, variationDeg *float64) Briefing {
	greenLight := fmt.Sprintf("%.1f", s.GreenLightNM)
	if s.GreenLightNM > 0 {
		greenLight = "+" + greenLight
	}

	b := Briefing{
		PilotInfo: []string{
			fmt.Sprintf("Green light %s  %s NM", AngleString(s.LineOfFlightDeg), greenLight),
		},
	}
	if s.OffTrackNM != 0 {
		side := "Left"
		if s.OffTrackNM > 0 {
			side = "Right"
		}
		b.PilotInfo = append(b.PilotInfo, fmt.Sprintf("%s off track  %.1f NM", side, math.Abs(s.OffTrackNM)))
	}
	b.PilotInfo = append(b.PilotInfo,
		fmt.Sprintf("Red light:  %s  %.1f NM", AngleString(s.RedLight.BearingDeg), s.RedLight.DistanceNM))

	if variationDeg != nil {
		b.MagneticLineOfFlight = "MAG " + AngleString(s.LineOfFlightDeg-*variationDeg)
	}

	groups := fmt.Sprintf("%.0f seconds between groups", s.SecondsBetweenGroups)
	if s.GroupSpacingUnbounded {
		groups = "No safe separation between groups"
	}
	b.JumperInfo = []string{
		groups,
		fmt.Sprintf("Landing direction %s", AngleString(s.LandingDirectionDeg)),
	}

	for _, w := range f.Winds() {
		b.Winds = append(b.Winds, fmt.Sprintf("%s %.0f° / %.0f kt", w.Label, w.Wind.DirectionDeg, w.Wind.SpeedKt))
	}
	return b
}

// Text renders the briefing as plain text, one item per line
func (b Briefing) Text() string {
	var sb strings.Builder
	for _, line := range b.PilotInfo {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	if b.MagneticLineOfFlight != "" {
		sb.WriteString(b.MagneticLineOfFlight)
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	for _, line := range b.JumperInfo {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	for _, line := range b.Winds {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}
