package runner

import (
	"github.com/signalsfoundry/marco-simulator/internal/progress"
	"github.com/signalsfoundry/marco-simulator/model"
)

// Run is the consumer's handle on one simulation run. Poll, Tracker and
// Close belong to the consumer; the background goroutine only sends.
type Run struct {
	ID string

	cfg     model.SimulationConfig
	inbox   progress.Receiver
	outbox  progress.Sender
	tracker *progress.Tracker
	done    chan struct{}
}

func newRun(id string, cfg model.SimulationConfig) *Run {
	ch := progress.NewChannel()
	return &Run{
		ID:      id,
		cfg:     cfg,
		inbox:   ch,
		outbox:  ch,
		tracker: progress.NewTracker(),
		done:    make(chan struct{}),
	}
}

// Config returns the snapshot the run was started with.
func (r *Run) Config() model.SimulationConfig { return r.cfg }

// Poll drains every event queued since the last call without blocking and
// folds them into the run's tracker. Events are returned in emission order;
// the error reports a stage received out of order.
func (r *Run) Poll() ([]progress.Event, error) {
	events := r.inbox.Drain()
	return events, r.tracker.Apply(events...)
}

// Pending returns the number of events waiting for the next Poll.
func (r *Run) Pending() int { return r.inbox.Len() }

// Tracker exposes the accumulated stage and trajectories.
func (r *Run) Tracker() *progress.Tracker { return r.tracker }

// Done is closed once the background goroutine has sent its last event.
func (r *Run) Done() <-chan struct{} { return r.done }

// Wait blocks until the run has finished producing events.
func (r *Run) Wait() { <-r.done }

// Close hangs up the consumer side. The run keeps integrating to completion;
// its remaining events are dropped.
func (r *Run) Close() { r.inbox.Close() }
