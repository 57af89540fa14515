package spot

// CanopyStep is the state of the canopy simulation after one step
type CanopyStep struct {
	Altitude float64 `json:"altitude"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Radius   float64 `json:"radius"`
	Final    bool    `json:"final"` // the step was flown on final approach
}

// FreeFallStep is the state of the free-fall simulation after one step
type FreeFallStep struct {
	Time               float64 `json:"time"`
	Altitude           float64 `json:"altitude"`
	HorizontalVelocity float64 `json:"horizontal_velocity"`
	VerticalVelocity   float64 `json:"vertical_velocity"`
	DriftX             float64 `json:"drift_x"`
	DriftY             float64 `json:"drift_y"`
	ThrowDistance      float64 `json:"throw_distance"`
}

// Trace records every simulation step of a calculation
type Trace struct {
	Canopy   []CanopyStep   `json:"canopy"`
	FreeFall []FreeFallStep `json:"free_fall"`
	Output   Output         `json:"output"`
}

// Trace runs the calculation while recording each simulation step. The output is identical to
// Calculate's.
func (c *Calculator) Trace() Trace {
	var t Trace
	t.Output = c.calculate(&t)
	return t
}
