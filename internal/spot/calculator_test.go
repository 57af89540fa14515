package spot

import (
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"

	"github.com/yegors/spotten/internal/physics"
)

func calmWinds() []Wind {
	return []Wind{
		{Altitude: 0},
		{Altitude: 609.6},
		{Altitude: 1524},
		{Altitude: 3048},
	}
}

// windyWinds is a typical westerly profile veering with altitude
func windyWinds() []Wind {
	return []Wind{
		{Altitude: 3048, Speed: physics.KtToMs(30), Direction: physics.DegToRad(300)},
		{Altitude: 1524, Speed: physics.KtToMs(25), Direction: physics.DegToRad(290)},
		{Altitude: 609.6, Speed: physics.KtToMs(15), Direction: physics.DegToRad(280)},
		{Altitude: 0, Speed: physics.KtToMs(8), Direction: physics.DegToRad(270)},
	}
}

func ptr(f float64) *float64 { return &f }

func calculate(t *testing.T, input Input) Output {
	t.Helper()
	c, err := NewCalculator(input)
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}
	return c.Calculate()
}

func assertClose(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %.6f, want %.6f", name, got, want)
	}
}

func assertAngle(t *testing.T, name string, got, wantDeg float64) {
	t.Helper()
	if d := math.Abs(physics.NormalizeAngleDiff(got - physics.DegToRad(wantDeg))); d > 1e-9 {
		t.Errorf("%s = %.4f°, want %.4f°", name, physics.RadToDeg(got), wantDeg)
	}
}

func TestNewCalculatorNoWinds(t *testing.T) {
	_, err := NewCalculator(Input{})
	if !errors.Is(err, ErrNoWinds) {
		t.Fatalf("expected ErrNoWinds, got %v", err)
	}
}

func TestCalculateCalm(t *testing.T) {
	out := calculate(t, Input{Winds: calmWinds()})

	// 25 s on final at 9 m/s, then 150 s holding
	assertClose(t, "depl x", out.DeplCircle.X, 0, 1e-9)
	assertClose(t, "depl y", out.DeplCircle.Y, -225, 1e-9)
	assertClose(t, "depl radius", out.DeplCircle.Radius, 1350, 1e-9)

	assertClose(t, "throw", out.ThrowDistance, 379.5235847, 1e-6)
	assertClose(t, "exit x", out.ExitCircle.X, 0, 1e-9)
	assertClose(t, "exit y", out.ExitCircle.Y, -604.5235847, 1e-6)
	assertClose(t, "exit radius", out.ExitCircle.Radius, 1350, 1e-9)

	assertAngle(t, "line of flight", out.LineOfFlight, 0)
	assertAngle(t, "landing direction", out.LandingDirection, 0)
	assertClose(t, "off track", out.OffTrack, 0, 1e-9)
	assertClose(t, "green light", out.GreenLight, -2407.6, 1e-6)
	assertAngle(t, "red light bearing", out.RedLight.Bearing, 180)
	assertClose(t, "red light distance", out.RedLight.Distance, 4815.2, 1e-6)

	assertClose(t, "ground speed", out.GroundSpeed, physics.KtToMs(93), 1e-9)
	assertClose(t, "jump run length", out.JumpRunLength, 2700, 1e-6)
	assertClose(t, "jump run duration", out.JumpRunDuration, 56.434195, 1e-5)
	assertClose(t, "time between groups", out.TimeBetweenGroups, 6, 0)
	if out.GroupSpacingUnbounded {
		t.Errorf("group spacing should be bounded")
	}
}

func TestCalculateCalmFasterAircraft(t *testing.T) {
	out := calculate(t, Input{
		Winds:  calmWinds(),
		Config: ConfigOverrides{JumpRunTAS: ptr(47.87)},
	})

	assertClose(t, "throw", out.ThrowDistance, 379.679116, 1e-5)
	assertClose(t, "jump run duration", out.JumpRunDuration, 56.402757, 1e-5)
	assertClose(t, "green light", out.GreenLight, -2407.6, 1e-6)
	assertClose(t, "red light distance", out.RedLight.Distance, 4815.2, 1e-6)
}

func TestCalculateWindy(t *testing.T) {
	tests := []struct {
		name  string
		input Input

		deplX, deplY      float64
		exitX, exitY      float64
		track, landing    float64 // degrees
		offTrack          float64
		greenLight        float64
		redBearing        float64 // degrees
		redDistance       float64
		timeBetweenGroups float64
		jumpRunLength     float64
		jumpRunDuration   float64
		groundSpeed       float64
	}{
		{
			name:              "free line of flight",
			input:             Input{Winds: windyWinds()},
			deplX:             -842.4978879,
			deplY:             132.3492239,
			exitX:             -1270.2164380,
			exitY:             303.1617251,
			track:             300,
			landing:           270,
			offTrack:          -370.4,
			greenLight:        -370.4,
			redBearing:        120,
			redDistance:       4444.8,
			timeBetweenGroups: 7,
			jumpRunLength:     2699.9965361,
			jumpRunDuration:   83.3075142,
			groundSpeed:       32.41,
		},
		{
			name: "fixed landing directions",
			input: Input{
				Winds:                  windyWinds(),
				FixedLandingDirections: []float64{physics.DegToRad(90), physics.DegToRad(250)},
			},
			deplX:             -845.7490972,
			deplY:             173.1069121,
			exitX:             -1273.4676473,
			exitY:             343.9194133,
			track:             300,
			landing:           250,
			offTrack:          -370.4,
			greenLight:        -370.4,
			redBearing:        120,
			redDistance:       4444.8,
			timeBetweenGroups: 7,
			jumpRunLength:     2699.2644739,
			jumpRunDuration:   83.2849267,
			groundSpeed:       32.41,
		},
		{
			name: "fixed line of flight and off track",
			input: Input{
				Winds:             windyWinds(),
				FixedLineOfFlight: ptr(physics.DegToRad(270)),
				FixedOffTrack:     ptr(-370.4),
			},
			deplX:             -842.4978879,
			deplY:             132.3492239,
			exitX:             -1219.3699190,
			exitY:             492.9235174,
			track:             270,
			landing:           270,
			offTrack:          -370.4,
			greenLight:        -185.2,
			redBearing:        90,
			redDistance:       4815.2,
			timeBetweenGroups: 6,
			jumpRunLength:     2075.7384269,
			jumpRunDuration:   61.3193809,
			groundSpeed:       33.8512620,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := calculate(t, tt.input)

			assertClose(t, "depl x", out.DeplCircle.X, tt.deplX, 1e-6)
			assertClose(t, "depl y", out.DeplCircle.Y, tt.deplY, 1e-6)
			assertClose(t, "depl radius", out.DeplCircle.Radius, 1350, 1e-9)
			assertClose(t, "exit x", out.ExitCircle.X, tt.exitX, 1e-6)
			assertClose(t, "exit y", out.ExitCircle.Y, tt.exitY, 1e-6)
			assertAngle(t, "line of flight", out.LineOfFlight, tt.track)
			assertAngle(t, "landing direction", out.LandingDirection, tt.landing)
			assertClose(t, "off track", out.OffTrack, tt.offTrack, 1e-6)
			assertClose(t, "green light", out.GreenLight, tt.greenLight, 1e-6)
			assertAngle(t, "red light bearing", out.RedLight.Bearing, tt.redBearing)
			assertClose(t, "red light distance", out.RedLight.Distance, tt.redDistance, 1e-6)
			assertClose(t, "time between groups", out.TimeBetweenGroups, tt.timeBetweenGroups, 0)
			assertClose(t, "jump run length", out.JumpRunLength, tt.jumpRunLength, 1e-5)
			assertClose(t, "jump run duration", out.JumpRunDuration, tt.jumpRunDuration, 1e-5)
			assertClose(t, "ground speed", out.GroundSpeed, tt.groundSpeed, 1e-6)
		})
	}
}

func TestCalculateOffTrackMissesCircle(t *testing.T) {
	out := calculate(t, Input{Winds: windyWinds(), FixedOffTrack: ptr(5000)})

	// The line of flight follows the exit wind
	assertAngle(t, "line of flight", out.LineOfFlight, 300)
	assertClose(t, "off track", out.OffTrack, 5000, 0)
	assertClose(t, "jump run length", out.JumpRunLength, 0, 0)
	assertClose(t, "jump run duration", out.JumpRunDuration, 0, 0)
	assertClose(t, "green light", out.GreenLight, 926, 1e-6)
	assertClose(t, "red light distance", out.RedLight.Distance, 5741.2, 1e-6)
}

func TestCalculateSingleSample(t *testing.T) {
	out := calculate(t, Input{
		Winds: []Wind{{Altitude: 0, Speed: physics.KtToMs(10), Direction: physics.DegToRad(45)}},
	})

	assertAngle(t, "line of flight", out.LineOfFlight, 45)
	assertAngle(t, "landing direction", out.LandingDirection, 45)
	assertClose(t, "depl x", out.DeplCircle.X, 477.4934959, 1e-6)
	assertClose(t, "depl y", out.DeplCircle.Y, 477.4934959, 1e-6)
	assertClose(t, "exit x", out.ExitCircle.X, 433.2103631, 1e-6)
	assertClose(t, "exit y", out.ExitCircle.Y, 433.2103631, 1e-6)
	assertClose(t, "green light", out.GreenLight, -1111.2, 1e-6)
	assertClose(t, "red light distance", out.RedLight.Distance, 5370.8, 1e-6)
	assertClose(t, "jump run length", out.JumpRunLength, 2700, 1e-6)
}

func TestLandingDirectionWrapsAround(t *testing.T) {
	out := calculate(t, Input{
		Winds:                  []Wind{{Altitude: 0, Speed: 5, Direction: physics.DegToRad(355)}},
		FixedLandingDirections: []float64{physics.DegToRad(200), physics.DegToRad(10)},
	})
	assertAngle(t, "landing direction", out.LandingDirection, 10)
}

func TestLandingDirectionTieKeepsFirst(t *testing.T) {
	out := calculate(t, Input{
		Winds:                  []Wind{{Altitude: 0, Speed: 5, Direction: 0}},
		FixedLandingDirections: []float64{math.Pi / 2, -math.Pi / 2},
	})
	assertAngle(t, "landing direction", out.LandingDirection, 90)
}

func TestPublishedDistancesAreRounded(t *testing.T) {
	inputs := []Input{
		{Winds: calmWinds()},
		{Winds: windyWinds()},
		{Winds: windyWinds(), FixedLineOfFlight: ptr(physics.DegToRad(123))},
		{Winds: windyWinds(), Config: ConfigOverrides{ExitAltitude: ptr(3000), JumpRunTAS: ptr(40)}},
	}

	onGrid := func(x float64) bool {
		n := x / RoundingStep
		return math.Abs(n-math.Round(n)) < 1e-9
	}
	for i, input := range inputs {
		out := calculate(t, input)
		if !onGrid(out.GreenLight) {
			t.Errorf("input %d: green light %f is not a multiple of %f", i, out.GreenLight, RoundingStep)
		}
		if !onGrid(out.RedLight.Distance) {
			t.Errorf("input %d: red light %f is not a multiple of %f", i, out.RedLight.Distance, RoundingStep)
		}
		if input.FixedOffTrack == nil && !onGrid(out.OffTrack) {
			t.Errorf("input %d: off track %f is not a multiple of %f", i, out.OffTrack, RoundingStep)
		}
		if out.TimeBetweenGroups != math.Ceil(out.TimeBetweenGroups) {
			t.Errorf("input %d: time between groups %f is not whole", i, out.TimeBetweenGroups)
		}
		if out.JumpRunLength < 0 || out.JumpRunDuration < 0 {
			t.Errorf("input %d: negative jump run %f / %f", i, out.JumpRunLength, out.JumpRunDuration)
		}
	}
}

func TestTimeBetweenGroupsUnbounded(t *testing.T) {
	// Strong north wind at opening altitude, calm at exit, flying south
	out := calculate(t, Input{
		Winds: []Wind{
			{Altitude: 700, Speed: 100, Direction: 0},
			{Altitude: 4000, Speed: 0, Direction: 0},
		},
		FixedLineOfFlight: ptr(math.Pi),
		FixedOffTrack:     ptr(0),
	})

	if !out.GroupSpacingUnbounded {
		t.Fatalf("expected unbounded group spacing")
	}
	if out.TimeBetweenGroups != MaxTimeBetweenGroups {
		t.Errorf("time between groups = %f, want %f", out.TimeBetweenGroups, MaxTimeBetweenGroups)
	}
}

func TestTimeBetweenGroupsMinimum(t *testing.T) {
	out := calculate(t, Input{
		Winds:  calmWinds(),
		Config: ConfigOverrides{MinTimeBetweenGroups: ptr(12)},
	})
	assertClose(t, "time between groups", out.TimeBetweenGroups, 12, 0)
}

func TestCalculateIsDeterministic(t *testing.T) {
	c, err := NewCalculator(Input{Winds: windyWinds()})
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}
	want := c.Calculate()

	var wg sync.WaitGroup
	results := make([]Output, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Calculate()
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if !reflect.DeepEqual(got, want) {
			t.Errorf("result %d differs: %+v", i, got)
		}
	}
}

func TestNewCalculatorCopiesInput(t *testing.T) {
	lof := physics.DegToRad(270)
	lds := []float64{physics.DegToRad(90)}
	input := Input{Winds: windyWinds(), FixedLineOfFlight: &lof, FixedLandingDirections: lds}

	c, err := NewCalculator(input)
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}
	want := c.Calculate()

	lof = 0
	lds[0] = 0
	input.Winds[0].Speed = 0

	if got := c.Calculate(); !reflect.DeepEqual(got, want) {
		t.Errorf("calculator changed after its input was modified")
	}
}

func TestTraceMatchesCalculate(t *testing.T) {
	c, err := NewCalculator(Input{Winds: calmWinds()})
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}

	tr := c.Trace()
	if !reflect.DeepEqual(tr.Output, c.Calculate()) {
		t.Errorf("trace output differs from Calculate")
	}

	// (700 - 0) / 4 m/s
	if len(tr.Canopy) != 175 {
		t.Errorf("canopy steps = %d, want 175", len(tr.Canopy))
	}
	finals := 0
	for _, s := range tr.Canopy {
		if s.Final {
			finals++
		}
	}
	if finals != 25 {
		t.Errorf("final approach steps = %d, want 25", finals)
	}

	if len(tr.FreeFall) != 308 {
		t.Errorf("free fall steps = %d, want 308", len(tr.FreeFall))
	}
	last := tr.FreeFall[len(tr.FreeFall)-1]
	if last.Altitude > c.Config().DeplAltitude {
		t.Errorf("free fall stopped at %f, above deployment", last.Altitude)
	}
	assertClose(t, "traced throw", last.ThrowDistance, tr.Output.ThrowDistance, 0)
	assertClose(t, "calm drift x", last.DriftX, 0, 0)
	assertClose(t, "calm drift y", last.DriftY, 0, 0)
}

func TestNonPositiveCanopySinkRateTerminates(t *testing.T) {
	out := calculate(t, Input{
		Winds:  calmWinds(),
		Config: ConfigOverrides{VerticalCanopySpeed: ptr(0)},
	})
	if math.IsNaN(out.GreenLight) {
		t.Errorf("green light is NaN")
	}
}
