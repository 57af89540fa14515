package spot

import (
	"errors"
	"fmt"
	"math"

	"github.com/yegors/spotten/internal/physics"
)

// ErrInvalidInput is wrapped by every input and configuration validation error
var ErrInvalidInput = errors.New("invalid calculator input")

// Validate checks that the configuration describes a flyable jump. The calculator itself does
// not call it; input layers do before constructing one.
func (c Config) Validate() error {
	values := []struct {
		name string
		v    float64
	}{
		{"exit_altitude", c.ExitAltitude},
		{"depl_altitude", c.DeplAltitude},
		{"final_altitude", c.FinalAltitude},
		{"jump_run_tas", c.JumpRunTAS},
		{"red_light_time", c.RedLightTime},
		{"green_light_time", c.GreenLightTime},
		{"horizontal_canopy_speed", c.HorizontalCanopySpeed},
		{"vertical_canopy_speed", c.VerticalCanopySpeed},
		{"meters_between_groups", c.MetersBetweenGroups},
		{"min_time_between_groups", c.MinTimeBetweenGroups},
	}
	for _, f := range values {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number, got %v", ErrInvalidInput, f.name, f.v)
		}
	}

	if c.ExitAltitude > physics.TroposphereTop {
		return fmt.Errorf("%w: exit_altitude (%.0f m) must not exceed %d m", ErrInvalidInput, c.ExitAltitude, physics.TroposphereTop)
	}
	if c.DeplAltitude >= c.ExitAltitude {
		return fmt.Errorf("%w: depl_altitude (%.0f m) must be below exit_altitude (%.0f m)", ErrInvalidInput, c.DeplAltitude, c.ExitAltitude)
	}
	if c.FinalAltitude >= c.DeplAltitude {
		return fmt.Errorf("%w: final_altitude (%.0f m) must be below depl_altitude (%.0f m)", ErrInvalidInput, c.FinalAltitude, c.DeplAltitude)
	}
	if c.JumpRunTAS == 0 {
		return fmt.Errorf("%w: jump_run_tas must be positive", ErrInvalidInput)
	}
	if c.VerticalCanopySpeed == 0 {
		return fmt.Errorf("%w: vertical_canopy_speed must be positive", ErrInvalidInput)
	}
	return nil
}

// Validate checks the winds and the configuration the input resolves to. An empty profile is
// ErrNoWinds.
func (in Input) Validate() error {
	if len(in.Winds) == 0 {
		return ErrNoWinds
	}
	for i, w := range in.Winds {
		if math.IsNaN(w.Altitude) || math.IsInf(w.Altitude, 0) || w.Altitude < 0 {
			return fmt.Errorf("%w: wind %d altitude must be a non-negative number, got %v", ErrInvalidInput, i, w.Altitude)
		}
		if math.IsNaN(w.Speed) || math.IsInf(w.Speed, 0) || w.Speed < 0 {
			return fmt.Errorf("%w: wind %d speed must be a non-negative number, got %v", ErrInvalidInput, i, w.Speed)
		}
	}
	return BuildConfig(in.Config).Validate()
}
