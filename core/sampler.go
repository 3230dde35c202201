package core

// ShouldEmit decides whether the state at time should be emitted as an
// output point, given how many points the walker has already emitted.
//
// A point is emitted when the elapsed fraction of the run overtakes the
// fraction of the point budget already used. This yields an approximately
// uniform-in-time subsample of about pointsToShow points (±1); the first and
// the final point of a run are emitted by the integrator regardless.
func ShouldEmit(time, simulationTime float64, emitted, pointsToShow int) bool {
	if simulationTime <= 0 || pointsToShow <= 0 {
		return false
	}
	return time/simulationTime > float64(emitted)/float64(pointsToShow)
}
