package timectrl

import "math"

// SimClock is a read-only view of a run's simulation time. Tick listeners
// receive it rather than the concrete controller.
type SimClock interface {
	// Now returns the current simulation time in seconds.
	Now() float64
	// Steps returns how many steps have completed.
	Steps() int
	// Elapsed returns the fraction of the run covered so far.
	Elapsed() float64
}

// TimeController drives fixed-step simulation time for a single run.
//
// Time starts at zero and advances by Tick on every Advance. The run loop
// keeps going while Running reports true, i.e. while Now <= Duration, so the
// last step lands past Duration by at most one Tick.
//
// A TimeController is owned by the goroutine running the integration and is
// not safe for concurrent use.
type TimeController struct {
	Tick     float64
	Duration float64

	currentTime float64
	steps       int

	listeners []func(SimClock)
}

// NewTimeController constructs a controller at time zero.
func NewTimeController(tick, duration float64) *TimeController {
	return &TimeController{
		Tick:     tick,
		Duration: duration,
	}
}

// Now returns the current simulation time.
func (tc *TimeController) Now() float64 {
	return tc.currentTime
}

// Steps returns how many times Advance has been called.
func (tc *TimeController) Steps() int {
	return tc.steps
}

// Running reports whether the loop should execute another step.
func (tc *TimeController) Running() bool {
	return tc.currentTime <= tc.Duration
}

// Elapsed reports the fraction of Duration covered so far. A zero Duration
// yields 0 until the first step and 1 afterwards.
func (tc *TimeController) Elapsed() float64 {
	if tc.Duration <= 0 {
		if tc.steps == 0 {
			return 0
		}
		return 1
	}
	return tc.currentTime / tc.Duration
}

// ExpectedSteps returns the number of steps a full run will take.
func (tc *TimeController) ExpectedSteps() int {
	if tc.Tick <= 0 {
		return 0
	}
	return int(math.Floor(tc.Duration/tc.Tick)) + 1
}

// AddListener registers a callback invoked with the controller after every
// Advance.
func (tc *TimeController) AddListener(fn func(SimClock)) {
	tc.listeners = append(tc.listeners, fn)
}

// Advance moves simulation time forward by one Tick and notifies listeners.
func (tc *TimeController) Advance() float64 {
	tc.currentTime += tc.Tick
	tc.steps++
	for _, fn := range tc.listeners {
		fn(tc)
	}
	return tc.currentTime
}
