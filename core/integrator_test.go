package core

import (
	"math"
	"testing"

	"github.com/signalsfoundry/marco-simulator/model"
)

func TestIntegrator_MatchesSingleWalkerEngine(t *testing.T) {
	cfg := smallSweepConfig(1)
	colour := WalkerColour(0, 1)

	var fromIntegrator []model.TrajectoryPoint
	for p := range NewIntegrator(cfg, cfg.MarcoMinVelocity, colour).Points() {
		fromIntegrator = append(fromIntegrator, p)
	}
	fromEngine := collect(NewSimulationEngine(cfg))[0]

	if len(fromIntegrator) != len(fromEngine) {
		t.Fatalf("integrator emitted %d points, engine %d", len(fromIntegrator), len(fromEngine))
	}
	for i := range fromEngine {
		if fromIntegrator[i] != fromEngine[i] {
			t.Fatalf("point %d differs: %+v vs %+v", i, fromIntegrator[i], fromEngine[i])
		}
	}
}

func TestIntegrator_IsRestartable(t *testing.T) {
	cfg := smallSweepConfig(1)
	in := NewIntegrator(cfg, 3, model.Colour{A: 255})

	first := func() model.TrajectoryPoint {
		var last model.TrajectoryPoint
		for p := range in.Points() {
			last = p
		}
		return last
	}
	a, b := first(), first()
	if a != b {
		t.Fatalf("two runs ended differently: %+v vs %+v", a, b)
	}
	if math.IsNaN(a.Latitude) || math.IsNaN(a.Longitude) {
		t.Fatalf("final point is NaN: %+v", a)
	}
}
