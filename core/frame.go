package core

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/marco-simulator/model"
)

const (
	secondsPerHour = 3600.0
	secondsPerYear = 365.25 * 86400.0
)

// planetSpinAxis is the planet's rotation axis in its own rotating frame.
var planetSpinAxis = r3.Vec{Z: 1}

// StarFrame tracks the star's direction expressed in the planet's rotating
// frame, together with the normal of the orbital plane used to precess it.
// It is advanced once per timestep and shared read-only by all walkers in
// between.
type StarFrame struct {
	Star      r3.Vec // unit vector towards the star
	OrbitAxis r3.Vec // unit normal of the orbital plane

	spin       r3.Rotation
	orbitAngle float64
}

// NewStarFrame returns the frame at time zero. A positive axial tilt leans
// the planet's north pole towards the star.
func NewStarFrame(cfg model.SimulationConfig) *StarFrame {
	sinTilt, cosTilt := math.Sincos(cfg.RotationalAxisTilt)

	// The star appears to move against the planet's spin.
	spinAngle := -2 * math.Pi / (cfg.RotationalPeriod * secondsPerHour) * cfg.Timestep

	var orbitAngle float64
	if cfg.OrbitalPeriod > 0 {
		orbitAngle = 2 * math.Pi / (cfg.OrbitalPeriod * secondsPerYear) * cfg.Timestep
	}

	return &StarFrame{
		Star:       r3.Vec{X: cosTilt, Z: sinTilt},
		OrbitAxis:  r3.Vec{X: -sinTilt, Z: cosTilt},
		spin:       r3.NewRotation(spinAngle, planetSpinAxis),
		orbitAngle: orbitAngle,
	}
}

// Direction returns the unit vector from pos towards the star placed at
// sunDistance along the frame's star direction.
func (f *StarFrame) Direction(pos r3.Vec, sunDistance float64) r3.Vec {
	return unitOrZero(r3.Sub(r3.Scale(sunDistance, f.Star), pos))
}

// Advance applies one timestep of planetary spin to the star and the orbital
// axis, then precesses the star about the spun orbital axis.
func (f *StarFrame) Advance() {
	f.Star = f.spin.Rotate(f.Star)
	f.OrbitAxis = f.spin.Rotate(f.OrbitAxis)
	if f.orbitAngle != 0 {
		f.Star = Rotate(f.Star, f.OrbitAxis, f.orbitAngle)
	}
}
