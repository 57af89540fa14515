package spot

import (
	"errors"
	"sort"

	"github.com/yegors/spotten/internal/physics"
)

// ErrNoWinds is returned when a wind profile has no samples
var ErrNoWinds = errors.New("wind profile has no samples")

// Wind is a wind sample. Direction is where the wind is coming from.
type Wind struct {
	Altitude  float64 `json:"altitude"`  // meters above the DZ
	Speed     float64 `json:"speed"`     // m/s
	Direction float64 `json:"direction"` // radians, clockwise from north
}

// upwind returns the wind as a vector pointing into the wind
func (w Wind) upwind() physics.Vector2D {
	return physics.UpwindVector(w.Speed, w.Direction)
}

// WindEstimator estimates the wind at any altitude from a sparse set of samples
type WindEstimator struct {
	samples []Wind // sorted by altitude
}

// NewWindEstimator creates a wind estimator. The samples may be given in any order.
func NewWindEstimator(winds []Wind) (*WindEstimator, error) {
	if len(winds) == 0 {
		return nil, ErrNoWinds
	}

	samples := make([]Wind, len(winds))
	copy(samples, winds)
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Altitude < samples[j].Altitude
	})

	return &WindEstimator{samples: samples}, nil
}

// Samples returns a copy of the samples in altitude order
func (e *WindEstimator) Samples() []Wind {
	out := make([]Wind, len(e.samples))
	copy(out, e.samples)
	return out
}

// At returns the wind at the given altitude.
//
// Below the lowest and above the highest sample the nearest sample is used. In between the
// wind is interpolated as a vector, so that e.g. 350° and 010° blend through north. Samples
// sharing an altitude form a step: at that altitude and above the last of them applies.
func (e *WindEstimator) At(altitude float64) Wind {
	first := e.samples[0]
	last := e.samples[len(e.samples)-1]
	if altitude < first.Altitude {
		return Wind{Altitude: altitude, Speed: first.Speed, Direction: first.Direction}
	}
	if altitude >= last.Altitude {
		return Wind{Altitude: altitude, Speed: last.Speed, Direction: last.Direction}
	}

	// first sample strictly above altitude; always in [1, len-1] here
	i := sort.Search(len(e.samples), func(i int) bool {
		return e.samples[i].Altitude > altitude
	})
	lower, upper := e.samples[i-1], e.samples[i]

	t := (altitude - lower.Altitude) / (upper.Altitude - lower.Altitude)
	if t == 0 {
		return Wind{Altitude: altitude, Speed: lower.Speed, Direction: lower.Direction}
	}

	speed, direction := physics.WindFromUpwind(lower.upwind().Lerp(upper.upwind(), t))
	return Wind{Altitude: altitude, Speed: speed, Direction: direction}
}
