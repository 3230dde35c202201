package core

import (
	"iter"

	"github.com/signalsfoundry/marco-simulator/model"
	"github.com/signalsfoundry/marco-simulator/timectrl"
)

// SimulationEngine integrates a sweep of walkers, one per velocity in the
// configured range, under a single shared star frame.
type SimulationEngine struct {
	cfg           model.SimulationConfig
	walkers       []model.WalkerPath
	tickListeners []func(timectrl.SimClock)
}

// EngineOption customises a SimulationEngine.
type EngineOption func(*SimulationEngine)

// WithTickListener registers a callback invoked with the simulation clock
// after every integration step.
func WithTickListener(fn func(timectrl.SimClock)) EngineOption {
	return func(se *SimulationEngine) {
		if fn != nil {
			se.tickListeners = append(se.tickListeners, fn)
		}
	}
}

// NewSimulationEngine prepares a sweep of cfg.VelocitiesCount walkers. The
// config is copied; later changes by the caller do not affect the engine.
func NewSimulationEngine(cfg model.SimulationConfig, opts ...EngineOption) *SimulationEngine {
	count := cfg.VelocitiesCount
	if count < 1 {
		count = 1
	}
	walkers := make([]model.WalkerPath, count)
	for i := range walkers {
		walkers[i] = model.WalkerPath{
			Index:    i,
			Velocity: cfg.Velocity(i),
			Colour:   WalkerColour(i, count),
		}
	}

	se := &SimulationEngine{cfg: cfg, walkers: walkers}
	for _, opt := range opts {
		opt(se)
	}
	return se
}

// Config returns the snapshot the engine runs with.
func (se *SimulationEngine) Config() model.SimulationConfig { return se.cfg }

// Walkers describes the sweep: index, velocity and colour of every walker.
// The returned paths carry no points.
func (se *SimulationEngine) Walkers() []model.WalkerPath {
	out := make([]model.WalkerPath, len(se.walkers))
	copy(out, se.walkers)
	return out
}

// PlannedSteps returns the number of integration steps a full run takes.
func (se *SimulationEngine) PlannedSteps() int {
	return timectrl.NewTimeController(se.cfg.Timestep, se.cfg.SimulationTime).ExpectedSteps()
}

// Points runs the sweep lazily, yielding (walker index, point) pairs. For
// every timestep, points of all walkers are yielded in index order before any
// point of the next timestep. Each range over the sequence starts a fresh run;
// breaking out of the loop stops integration.
func (se *SimulationEngine) Points() iter.Seq2[int, model.TrajectoryPoint] {
	return func(yield func(int, model.TrajectoryPoint) bool) {
		integrate(se.cfg, se.walkers, se.tickListeners, yield)
	}
}

func integrate(cfg model.SimulationConfig, paths []model.WalkerPath, listeners []func(timectrl.SimClock), yield func(int, model.TrajectoryPoint) bool) {
	frame := NewStarFrame(cfg)
	walkers := make([]*Walker, len(paths))
	for i, p := range paths {
		walkers[i] = NewWalker(cfg, p)
	}

	clock := timectrl.NewTimeController(cfg.Timestep, cfg.SimulationTime)
	for _, fn := range listeners {
		clock.AddListener(fn)
	}

	for _, w := range walkers {
		if !yield(w.Index, w.emit(clock.Now())) {
			return
		}
	}

	for clock.Running() {
		for _, w := range walkers {
			w.Step(frame.Direction(w.Position(), cfg.SunDistance))
		}
		frame.Advance()

		now := clock.Now()
		for _, w := range walkers {
			if !ShouldEmit(now, cfg.SimulationTime, w.Emitted(), cfg.PointsToShow) {
				continue
			}
			if !yield(w.Index, w.emit(now)) {
				return
			}
		}
		clock.Advance()
	}

	// The final state is always reported, at the overshoot time.
	for _, w := range walkers {
		if !yield(w.Index, w.emit(clock.Now())) {
			return
		}
	}
}
