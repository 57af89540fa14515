package briefing

import (
	"fmt"
	"time"

	"github.com/yegors/spotten/internal/dropzone"
	"github.com/yegors/spotten/internal/physics"
	"github.com/yegors/spotten/internal/spot"
	"github.com/yegors/spotten/pkg/logger"
)

// Result is a calculated spot with its briefing
type Result struct {
	Dropzone dropzone.Dropzone `json:"dropzone"`
	Spot     Spot              `json:"spot"`
	Briefing Briefing          `json:"briefing"`
	// MagneticVariationDeg is nil when the dropzone has no known position
	MagneticVariationDeg *float64 `json:"magnetic_variation_deg,omitempty"`
}

// Service turns form input into a briefing
type Service struct {
	catalog   *dropzone.Catalog
	overrides spot.ConfigOverrides
	logger    *logger.Logger
	now       func() time.Time
}

// NewService creates a briefing service. overrides is applied to every calculation.
func NewService(catalog *dropzone.Catalog, overrides spot.ConfigOverrides, logger *logger.Logger) *Service {
	return &Service{
		catalog:   catalog,
		overrides: overrides,
		logger:    logger.Named("briefing"),
		now:       time.Now,
	}
}

// Catalog returns the dropzone catalog
func (s *Service) Catalog() *dropzone.Catalog {
	return s.catalog
}

// Overrides returns the configuration applied to every calculation
func (s *Service) Overrides() spot.ConfigOverrides {
	return s.overrides
}

// Compute validates the form, calculates the spot and formats the briefing. An unknown dropzone
// falls back to the default one.
func (s *Service) Compute(f FormInput) (*Result, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	dz, err := s.catalog.Resolve(f.DropzoneID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve dropzone %q: %w", f.DropzoneID, err)
	}
	if dz.ID != f.DropzoneID && f.DropzoneID != "" {
		s.logger.Debug("Unknown dropzone, using default",
			logger.String("requested", f.DropzoneID),
			logger.String("dropzone", dz.ID))
	}

	calc, err := spot.NewCalculator(ToInput(f, dz, s.overrides))
	if err != nil {
		return nil, fmt.Errorf("failed to create calculator: %w", err)
	}
	out := calc.Calculate()

	res := &Result{
		Dropzone: dz,
		Spot:     FromOutput(out, f),
	}
	if dz.HasPosition() {
		v := physics.CalculateMagneticVariation(dz.Latitude, dz.Longitude, dz.ElevationFt, s.now())
		res.MagneticVariationDeg = &v
	}
	res.Briefing = NewBriefing(res.Spot, f, res.MagneticVariationDeg)

	s.logger.Debug("Spot calculated",
		logger.String("dropzone", dz.ID),
		logger.Float64("line_of_flight_deg", res.Spot.LineOfFlightDeg),
		logger.Float64("green_light_nm", res.Spot.GreenLightNM),
		logger.Float64("off_track_nm", res.Spot.OffTrackNM))

	return res, nil
}
