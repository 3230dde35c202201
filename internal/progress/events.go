// Package progress carries the events of a simulation run from the goroutine
// producing them to the consumer that draws them.
package progress

import (
	"fmt"

	"github.com/signalsfoundry/marco-simulator/model"
)

// Kind discriminates progress events.
type Kind int

const (
	KindStageChanged Kind = iota + 1
	KindPointProduced
)

// Event is either a stage transition or a produced trajectory point.
type Event struct {
	Kind   Kind
	Stage  model.CalculationStage // KindStageChanged
	Walker int                    // KindPointProduced
	Point  model.TrajectoryPoint  // KindPointProduced
}

// StageChanged builds a stage transition event.
func StageChanged(stage model.CalculationStage) Event {
	return Event{Kind: KindStageChanged, Stage: stage}
}

// PointProduced builds a point event for the given walker index.
func PointProduced(walker int, p model.TrajectoryPoint) Event {
	return Event{Kind: KindPointProduced, Walker: walker, Point: p}
}

func (e Event) String() string {
	switch e.Kind {
	case KindStageChanged:
		return fmt.Sprintf("stage(%s)", e.Stage)
	case KindPointProduced:
		return fmt.Sprintf("point(walker=%d t=%.3f lat=%.6f lon=%.6f)", e.Walker, e.Point.Time, e.Point.Latitude, e.Point.Longitude)
	default:
		return "unknown"
	}
}
