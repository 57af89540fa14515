package spot

import "github.com/yegors/spotten/internal/physics"

// Config holds the aircraft and canopy performance parameters.
// Altitudes are above the DZ.
type Config struct {
	ExitAltitude          float64 `json:"exit_altitude"`           // m
	DeplAltitude          float64 `json:"depl_altitude"`           // m, canopy fully deployed
	FinalAltitude         float64 `json:"final_altitude"`          // m, start of final approach
	JumpRunTAS            float64 `json:"jump_run_tas"`            // m/s
	RedLightTime          float64 `json:"red_light_time"`          // s
	GreenLightTime        float64 `json:"green_light_time"`        // s
	HorizontalCanopySpeed float64 `json:"horizontal_canopy_speed"` // m/s
	VerticalCanopySpeed   float64 `json:"vertical_canopy_speed"`   // m/s
	MetersBetweenGroups   float64 `json:"meters_between_groups"`   // m
	MinTimeBetweenGroups  float64 `json:"min_time_between_groups"` // s
}

// DefaultConfig returns the default calculator configuration
func DefaultConfig() Config {
	return Config{
		ExitAltitude:  4000,
		DeplAltitude:  700,
		FinalAltitude: 100,
		JumpRunTAS:    physics.KtToMs(93),
		// TODO: 120 s is wanted, but the aircraft usually flies faster than JumpRunTAS
		RedLightTime:          150,
		GreenLightTime:        10,
		HorizontalCanopySpeed: 9,
		VerticalCanopySpeed:   4,
		MetersBetweenGroups:   250,
		MinTimeBetweenGroups:  5,
	}
}

// ConfigOverrides selectively replaces default configuration values. Nil fields keep the
// default.
type ConfigOverrides struct {
	ExitAltitude          *float64 `json:"exit_altitude,omitempty"`
	DeplAltitude          *float64 `json:"depl_altitude,omitempty"`
	FinalAltitude         *float64 `json:"final_altitude,omitempty"`
	JumpRunTAS            *float64 `json:"jump_run_tas,omitempty"`
	RedLightTime          *float64 `json:"red_light_time,omitempty"`
	GreenLightTime        *float64 `json:"green_light_time,omitempty"`
	HorizontalCanopySpeed *float64 `json:"horizontal_canopy_speed,omitempty"`
	VerticalCanopySpeed   *float64 `json:"vertical_canopy_speed,omitempty"`
	MetersBetweenGroups   *float64 `json:"meters_between_groups,omitempty"`
	MinTimeBetweenGroups  *float64 `json:"min_time_between_groups,omitempty"`
}

// BuildConfig merges the overrides over DefaultConfig
func BuildConfig(o ConfigOverrides) Config {
	return o.ApplyTo(DefaultConfig())
}

// ApplyTo returns base with every non-nil override applied
func (o ConfigOverrides) ApplyTo(base Config) Config {
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&base.ExitAltitude, o.ExitAltitude)
	set(&base.DeplAltitude, o.DeplAltitude)
	set(&base.FinalAltitude, o.FinalAltitude)
	set(&base.JumpRunTAS, o.JumpRunTAS)
	set(&base.RedLightTime, o.RedLightTime)
	set(&base.GreenLightTime, o.GreenLightTime)
	set(&base.HorizontalCanopySpeed, o.HorizontalCanopySpeed)
	set(&base.VerticalCanopySpeed, o.VerticalCanopySpeed)
	set(&base.MetersBetweenGroups, o.MetersBetweenGroups)
	set(&base.MinTimeBetweenGroups, o.MinTimeBetweenGroups)
	return base
}

// Merge returns o with every non-nil field of other taking precedence
func (o ConfigOverrides) Merge(other ConfigOverrides) ConfigOverrides {
	pick := func(a, b *float64) *float64 {
		if b != nil {
			return b
		}
		return a
	}
	return ConfigOverrides{
		ExitAltitude:          pick(o.ExitAltitude, other.ExitAltitude),
		DeplAltitude:          pick(o.DeplAltitude, other.DeplAltitude),
		FinalAltitude:         pick(o.FinalAltitude, other.FinalAltitude),
		JumpRunTAS:            pick(o.JumpRunTAS, other.JumpRunTAS),
		RedLightTime:          pick(o.RedLightTime, other.RedLightTime),
		GreenLightTime:        pick(o.GreenLightTime, other.GreenLightTime),
		HorizontalCanopySpeed: pick(o.HorizontalCanopySpeed, other.HorizontalCanopySpeed),
		VerticalCanopySpeed:   pick(o.VerticalCanopySpeed, other.VerticalCanopySpeed),
		MetersBetweenGroups:   pick(o.MetersBetweenGroups, other.MetersBetweenGroups),
		MinTimeBetweenGroups:  pick(o.MinTimeBetweenGroups, other.MinTimeBetweenGroups),
	}
}
