package core

import (
	"iter"

	"github.com/signalsfoundry/marco-simulator/model"
)

// Integrator advances a single walker with a fixed velocity over a whole run.
type Integrator struct {
	cfg  model.SimulationConfig
	path model.WalkerPath
}

// NewIntegrator returns an integrator for one walker moving at velocity (m/s)
// and tagging its points with colour.
func NewIntegrator(cfg model.SimulationConfig, velocity float64, colour model.Colour) *Integrator {
	return &Integrator{
		cfg:  cfg,
		path: model.WalkerPath{Velocity: velocity, Colour: colour},
	}
}

// Points yields the walker's sampled trajectory lazily, in increasing time.
func (in *Integrator) Points() iter.Seq[model.TrajectoryPoint] {
	return func(yield func(model.TrajectoryPoint) bool) {
		integrate(in.cfg, []model.WalkerPath{in.path}, nil, func(_ int, p model.TrajectoryPoint) bool {
			return yield(p)
		})
	}
}
