package core

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/marco-simulator/model"
)

// Walker is the integration-local state of one Marco.
type Walker struct {
	Index    int
	Velocity float64 // m/s
	Colour   model.Colour

	pos       r3.Vec
	radius    float64
	stepAngle float64
	emitted   int
}

// NewWalker places a walker at the configured start coordinates. Its angular
// step per timestep is velocity*timestep/radius, with velocity converted from
// m/s to the km/s of the radius.
func NewWalker(cfg model.SimulationConfig, path model.WalkerPath) *Walker {
	return &Walker{
		Index:     path.Index,
		Velocity:  path.Velocity,
		Colour:    path.Colour,
		pos:       FromLatLon(cfg.StartLat, cfg.StartLon, cfg.PlanetRadius),
		radius:    cfg.PlanetRadius,
		stepAngle: path.Velocity / 1000 * cfg.Timestep / cfg.PlanetRadius,
	}
}

// Position returns the walker's current position in the planet frame (km).
func (w *Walker) Position() r3.Vec { return w.pos }

// Emitted returns the number of points emitted so far.
func (w *Walker) Emitted() int { return w.emitted }

// Step advances the walker by one timestep given the unit direction towards
// the star. The walker only moves while the star is above its horizon, and
// then turns about the axis perpendicular to both its position and the star.
// It reports whether the walker moved.
func (w *Walker) Step(starDir r3.Vec) bool {
	if !IsSunlit(w.pos, starDir) {
		return false
	}
	axis := unitOrZero(r3.Cross(unitOrZero(w.pos), starDir))
	w.pos = Rotate(w.pos, axis, w.stepAngle)
	return true
}

// emit builds the trajectory point for the current position and counts it.
func (w *Walker) emit(time float64) model.TrajectoryPoint {
	w.emitted++
	lat, lon := ToLatLon(w.pos, w.radius)
	return model.TrajectoryPoint{
		Latitude:  lat,
		Longitude: lon,
		Time:      time,
		Colour:    w.Colour,
	}
}
