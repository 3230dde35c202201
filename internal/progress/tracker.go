package progress

import (
	"errors"
	"fmt"
	"slices"

	"github.com/signalsfoundry/marco-simulator/model"
)

// ErrStageOrder reports a stage transition that breaks Start → Points →
// [Plots] → End.
var ErrStageOrder = errors.New("illegal stage transition")

// Tracker accumulates drained events on the consumer side: the current stage,
// the stages seen during the run, and the points of every walker. It is owned
// by the consumer and not safe for concurrent use.
type Tracker struct {
	stage   model.CalculationStage
	history []model.CalculationStage
	paths   map[int]*model.WalkerPath
	points  int
}

// NewTracker returns a tracker resting in the End stage.
func NewTracker() *Tracker {
	return &Tracker{
		stage: model.StageEnd,
		paths: make(map[int]*model.WalkerPath),
	}
}

// Begin starts tracking a new run: accumulated points are cleared and the
// stage moves to Start.
func (t *Tracker) Begin() error {
	if err := t.advance(model.StageStart); err != nil {
		return err
	}
	t.history = []model.CalculationStage{model.StageStart}
	t.paths = make(map[int]*model.WalkerPath)
	t.points = 0
	return nil
}

// Apply folds events into the tracker in order. Points are always recorded;
// the first out-of-order stage is reported and the stage is left unchanged.
func (t *Tracker) Apply(events ...Event) error {
	var firstErr error
	for _, ev := range events {
		switch ev.Kind {
		case KindStageChanged:
			if err := t.advance(ev.Stage); err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			t.history = append(t.history, ev.Stage)
		case KindPointProduced:
			path, ok := t.paths[ev.Walker]
			if !ok {
				path = &model.WalkerPath{Index: ev.Walker, Colour: ev.Point.Colour}
				t.paths[ev.Walker] = path
			}
			path.Points = append(path.Points, ev.Point)
			t.points++
		}
	}
	return firstErr
}

func (t *Tracker) advance(next model.CalculationStage) error {
	if !t.stage.CanAdvanceTo(next) {
		return fmt.Errorf("%w: %q -> %q", ErrStageOrder, t.stage, next)
	}
	t.stage = next
	return nil
}

// Stage returns the current stage.
func (t *Tracker) Stage() model.CalculationStage { return t.stage }

// Finished reports whether the tracked run has reached End.
func (t *Tracker) Finished() bool { return t.stage == model.StageEnd }

// History returns the stages seen since Begin, in order.
func (t *Tracker) History() []model.CalculationStage {
	return slices.Clone(t.history)
}

// PointCount returns the number of points received since Begin.
func (t *Tracker) PointCount() int { return t.points }

// Paths returns the accumulated trajectories ordered by walker index.
func (t *Tracker) Paths() []model.WalkerPath {
	out := make([]model.WalkerPath, 0, len(t.paths))
	for _, p := range t.paths {
		cp := *p
		cp.Points = slices.Clone(p.Points)
		out = append(out, cp)
	}
	slices.SortFunc(out, func(a, b model.WalkerPath) int { return a.Index - b.Index })
	return out
}
