package spot

import (
	"errors"
	"math"
	"testing"

	"github.com/yegors/spotten/internal/physics"
)

func TestNewWindEstimatorEmpty(t *testing.T) {
	_, err := NewWindEstimator(nil)
	if !errors.Is(err, ErrNoWinds) {
		t.Fatalf("expected ErrNoWinds, got %v", err)
	}
}

func TestWindEstimatorSortsSamples(t *testing.T) {
	winds := []Wind{
		{Altitude: 3000, Speed: 15, Direction: 1},
		{Altitude: 0, Speed: 5, Direction: 2},
		{Altitude: 1000, Speed: 10, Direction: 3},
	}
	e, err := NewWindEstimator(winds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	samples := e.Samples()
	for i, want := range []float64{0, 1000, 3000} {
		if samples[i].Altitude != want {
			t.Errorf("sample %d: altitude %.0f, want %.0f", i, samples[i].Altitude, want)
		}
	}

	// The caller's slice is left untouched
	if winds[0].Altitude != 3000 {
		t.Errorf("input slice was reordered")
	}
	samples[0].Speed = 99
	if e.At(0).Speed != 5 {
		t.Errorf("Samples returned the internal slice")
	}
}

func TestWindEstimatorAt(t *testing.T) {
	e, err := NewWindEstimator([]Wind{
		{Altitude: 0, Speed: 10, Direction: physics.DegToRad(90)},
		{Altitude: 1000, Speed: 10, Direction: physics.DegToRad(0)},
		{Altitude: 2000, Speed: 20, Direction: physics.DegToRad(0)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name          string
		altitude      float64
		wantSpeed     float64
		wantDirection float64 // degrees
	}{
		{"below lowest", -50, 10, 90},
		{"at lowest", 0, 10, 90},
		{"at sample", 1000, 10, 0},
		{"midway same direction", 1500, 15, 0},
		{"midway turning", 500, 10 * math.Sqrt2 / 2, 45},
		{"at highest", 2000, 20, 0},
		{"above highest", 9000, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.At(tt.altitude)
			if math.Abs(w.Speed-tt.wantSpeed) > 1e-9 {
				t.Errorf("speed = %f, want %f", w.Speed, tt.wantSpeed)
			}
			if d := math.Abs(physics.NormalizeAngleDiff(w.Direction - physics.DegToRad(tt.wantDirection))); d > 1e-9 {
				t.Errorf("direction = %f°, want %f°", physics.RadToDeg(w.Direction), tt.wantDirection)
			}
			if w.Altitude != tt.altitude {
				t.Errorf("altitude = %f, want %f", w.Altitude, tt.altitude)
			}
		})
	}
}

func TestWindEstimatorBlendsThroughNorth(t *testing.T) {
	e, _ := NewWindEstimator([]Wind{
		{Altitude: 0, Speed: 10, Direction: physics.DegToRad(350)},
		{Altitude: 100, Speed: 10, Direction: physics.DegToRad(10)},
	})

	w := e.At(50)
	if d := math.Abs(physics.NormalizeAngleDiff(w.Direction)); d > 1e-9 {
		t.Errorf("expected a north wind, got %f°", physics.RadToDeg(w.Direction))
	}
}

func TestWindEstimatorDuplicateAltitudes(t *testing.T) {
	e, _ := NewWindEstimator([]Wind{
		{Altitude: 0, Speed: 5, Direction: 0},
		{Altitude: 1000, Speed: 5, Direction: 0},
		{Altitude: 1000, Speed: 10, Direction: math.Pi / 2},
		{Altitude: 2000, Speed: 10, Direction: math.Pi / 2},
	})

	below := e.At(999)
	if math.Abs(below.Speed-5) > 1e-9 || math.Abs(below.Direction) > 1e-9 {
		t.Errorf("below step: got %+v", below)
	}
	at := e.At(1000)
	if at.Speed != 10 || at.Direction != math.Pi/2 {
		t.Errorf("at step: got %+v", at)
	}
	above := e.At(1500)
	if math.Abs(above.Speed-10) > 1e-9 || math.Abs(above.Direction-math.Pi/2) > 1e-9 {
		t.Errorf("above step: got %+v", above)
	}
}

func TestWindEstimatorSingleSample(t *testing.T) {
	e, _ := NewWindEstimator([]Wind{{Altitude: 500, Speed: 7, Direction: 1}})
	for _, alt := range []float64{0, 500, 4000} {
		w := e.At(alt)
		if w.Speed != 7 || w.Direction != 1 {
			t.Errorf("At(%.0f) = %+v, want the only sample", alt, w)
		}
	}
}
