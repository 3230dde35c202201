package model

import "math"

// SimulationConfig is an immutable snapshot of every tunable parameter of one
// run. Distances are kilometres, velocities metres per second, angles radians.
//
// The core assumes the ranges documented on each field; clamping and
// validation of user input happen before a config reaches a run.
type SimulationConfig struct {
	PlanetRadius       float64 // km, > 0
	RotationalAxisTilt float64 // rad, [-π, π], measured from the ecliptic normal
	RotationalPeriod   float64 // hours, > 0 (sidereal)

	SunDistance   float64 // km, > 0
	OrbitalPeriod float64 // years, 0 disables the orbit

	StartLat float64 // rad, [-π/2, π/2]
	StartLon float64 // rad, [-π/2, π/2]

	MarcoMinVelocity float64 // m/s
	MarcoMaxVelocity float64 // m/s, >= MarcoMinVelocity
	VelocitiesCount  int     // >= 1

	Timestep       float64 // s, > 0
	SimulationTime float64 // s, >= 0
	PointsToShow   int     // per walker, approximate (±1)

	GenerateImage bool
}

// DefaultConfig returns the settings the simulator starts with: an
// Earth-sized planet, a walker just off the north pole and one simulated day.
func DefaultConfig() SimulationConfig {
	return SimulationConfig{
		PlanetRadius:       6000,
		RotationalAxisTilt: degToRad(23.5),
		RotationalPeriod:   24,

		SunDistance:   150e6,
		OrbitalPeriod: 1,

		StartLat: degToRad(89.7),
		StartLon: degToRad(-90),

		MarcoMinVelocity: 0.5 / 3.6,
		MarcoMaxVelocity: 15 / 3.6,
		VelocitiesCount:  1,

		Timestep:       1,
		SimulationTime: 86400,
		PointsToShow:   1000,

		GenerateImage: true,
	}
}

// Velocity returns the velocity (m/s) assigned to walker i of the sweep:
// min + (max-min)*i/count. The range is min-inclusive, max-exclusive.
func (c SimulationConfig) Velocity(i int) float64 {
	return c.MarcoMinVelocity + (c.MarcoMaxVelocity-c.MarcoMinVelocity)*SweepFraction(i, c.VelocitiesCount)
}

// SweepFraction returns i/count, or 0 when the sweep has a single walker.
func SweepFraction(i, count int) float64 {
	if count <= 1 {
		return 0
	}
	return float64(i) / float64(count)
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180 }
