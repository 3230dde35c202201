// Package config loads simulation settings from a file, MARCO_* environment
// variables and built-in defaults, and turns them into a validated
// model.SimulationConfig.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/viper"

	"github.com/signalsfoundry/marco-simulator/model"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid simulation config")

// minPositive is the floor applied to quantities that must stay positive.
const minPositive = 1e-6

// Settings is the user-facing form of a simulation config: angles in
// degrees, periods in hours and years, plus presentation options.
type Settings struct {
	Planet     PlanetSettings     `mapstructure:"planet"`
	Orbit      OrbitSettings      `mapstructure:"orbit"`
	Marco      MarcoSettings      `mapstructure:"marco"`
	Simulation SimulationSettings `mapstructure:"simulation"`
	Image      ImageSettings      `mapstructure:"image"`
}

type PlanetSettings struct {
	RadiusKm            float64 `mapstructure:"radius_km"`
	AxisTiltDeg         float64 `mapstructure:"axis_tilt_deg"`
	RotationPeriodHours float64 `mapstructure:"rotation_period_hours"`
}

type OrbitSettings struct {
	SunDistanceKm float64 `mapstructure:"sun_distance_km"`
	PeriodYears   float64 `mapstructure:"period_years"`
}

type MarcoSettings struct {
	MinVelocity     float64 `mapstructure:"min_velocity_mps"`
	MaxVelocity     float64 `mapstructure:"max_velocity_mps"`
	VelocitiesCount int     `mapstructure:"velocities_count"`
	StartLatDeg     float64 `mapstructure:"start_lat_deg"`
	StartLonDeg     float64 `mapstructure:"start_lon_deg"`
}

type SimulationSettings struct {
	TimestepSeconds float64 `mapstructure:"timestep_s"`
	DurationSeconds float64 `mapstructure:"duration_s"`
	PointsToShow    int     `mapstructure:"points_to_show"`
}

// ImageSettings controls the plots drawn once all points are produced.
type ImageSettings struct {
	Generate bool `mapstructure:"generate"`
	Width    int  `mapstructure:"width"`
	Height   int  `mapstructure:"height"`
}

// DefaultSettings mirrors model.DefaultConfig.
func DefaultSettings() Settings {
	cfg := model.DefaultConfig()
	return Settings{
		Planet: PlanetSettings{
			RadiusKm:            cfg.PlanetRadius,
			AxisTiltDeg:         radToDeg(cfg.RotationalAxisTilt),
			RotationPeriodHours: cfg.RotationalPeriod,
		},
		Orbit: OrbitSettings{
			SunDistanceKm: cfg.SunDistance,
			PeriodYears:   cfg.OrbitalPeriod,
		},
		Marco: MarcoSettings{
			MinVelocity:     cfg.MarcoMinVelocity,
			MaxVelocity:     cfg.MarcoMaxVelocity,
			VelocitiesCount: cfg.VelocitiesCount,
			StartLatDeg:     radToDeg(cfg.StartLat),
			StartLonDeg:     radToDeg(cfg.StartLon),
		},
		Simulation: SimulationSettings{
			TimestepSeconds: cfg.Timestep,
			DurationSeconds: cfg.SimulationTime,
			PointsToShow:    cfg.PointsToShow,
		},
		Image: ImageSettings{
			Generate: cfg.GenerateImage,
			Width:    100,
			Height:   20,
		},
	}
}

// Load reads settings from path (any format viper understands; empty means
// defaults only) with MARCO_* environment overrides such as
// MARCO_PLANET_RADIUS_KM. The result is clamped but not validated.
func Load(path string) (Settings, error) {
	v := viper.New()
	setDefaults(v, DefaultSettings())

	v.SetEnvPrefix("MARCO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode config: %w", err)
	}
	return s.Clamp(), nil
}

func setDefaults(v *viper.Viper, d Settings) {
	v.SetDefault("planet.radius_km", d.Planet.RadiusKm)
	v.SetDefault("planet.axis_tilt_deg", d.Planet.AxisTiltDeg)
	v.SetDefault("planet.rotation_period_hours", d.Planet.RotationPeriodHours)

	v.SetDefault("orbit.sun_distance_km", d.Orbit.SunDistanceKm)
	v.SetDefault("orbit.period_years", d.Orbit.PeriodYears)

	v.SetDefault("marco.min_velocity_mps", d.Marco.MinVelocity)
	v.SetDefault("marco.max_velocity_mps", d.Marco.MaxVelocity)
	v.SetDefault("marco.velocities_count", d.Marco.VelocitiesCount)
	v.SetDefault("marco.start_lat_deg", d.Marco.StartLatDeg)
	v.SetDefault("marco.start_lon_deg", d.Marco.StartLonDeg)

	v.SetDefault("simulation.timestep_s", d.Simulation.TimestepSeconds)
	v.SetDefault("simulation.duration_s", d.Simulation.DurationSeconds)
	v.SetDefault("simulation.points_to_show", d.Simulation.PointsToShow)

	v.SetDefault("image.generate", d.Image.Generate)
	v.SetDefault("image.width", d.Image.Width)
	v.SetDefault("image.height", d.Image.Height)
}

// Clamp pulls values back into the ranges the settings form allows.
func (s Settings) Clamp() Settings {
	s.Planet.RadiusKm = math.Max(s.Planet.RadiusKm, minPositive)
	s.Planet.AxisTiltDeg = clamp(s.Planet.AxisTiltDeg, -180, 180)
	s.Planet.RotationPeriodHours = math.Max(s.Planet.RotationPeriodHours, minPositive)

	s.Orbit.SunDistanceKm = math.Max(s.Orbit.SunDistanceKm, minPositive)

	s.Marco.VelocitiesCount = max(s.Marco.VelocitiesCount, 1)
	s.Marco.StartLatDeg = clamp(s.Marco.StartLatDeg, -90, 90)
	s.Marco.StartLonDeg = clamp(s.Marco.StartLonDeg, -90, 90)

	s.Simulation.PointsToShow = max(s.Simulation.PointsToShow, 1)

	s.Image.Width = max(s.Image.Width, 10)
	s.Image.Height = max(s.Image.Height, 5)
	return s
}

// Validate rejects settings that clamping cannot repair.
func (s Settings) Validate() error {
	var errs []error
	if !(s.Simulation.TimestepSeconds > 0) {
		errs = append(errs, fmt.Errorf("%w: timestep must be positive, got %v", ErrInvalidConfig, s.Simulation.TimestepSeconds))
	}
	if !(s.Simulation.DurationSeconds >= 0) {
		errs = append(errs, fmt.Errorf("%w: simulation time must not be negative, got %v", ErrInvalidConfig, s.Simulation.DurationSeconds))
	}
	if s.Marco.MinVelocity > s.Marco.MaxVelocity {
		errs = append(errs, fmt.Errorf("%w: minimum velocity %v exceeds maximum %v", ErrInvalidConfig, s.Marco.MinVelocity, s.Marco.MaxVelocity))
	}
	if s.Orbit.PeriodYears < 0 {
		errs = append(errs, fmt.Errorf("%w: orbital period must not be negative, got %v", ErrInvalidConfig, s.Orbit.PeriodYears))
	}
	return errors.Join(errs...)
}

// SimulationConfig converts the settings into the core's units.
func (s Settings) SimulationConfig() model.SimulationConfig {
	return model.SimulationConfig{
		PlanetRadius:       s.Planet.RadiusKm,
		RotationalAxisTilt: degToRad(s.Planet.AxisTiltDeg),
		RotationalPeriod:   s.Planet.RotationPeriodHours,

		SunDistance:   s.Orbit.SunDistanceKm,
		OrbitalPeriod: s.Orbit.PeriodYears,

		StartLat: degToRad(s.Marco.StartLatDeg),
		StartLon: degToRad(s.Marco.StartLonDeg),

		MarcoMinVelocity: s.Marco.MinVelocity,
		MarcoMaxVelocity: s.Marco.MaxVelocity,
		VelocitiesCount:  s.Marco.VelocitiesCount,

		Timestep:       s.Simulation.TimestepSeconds,
		SimulationTime: s.Simulation.DurationSeconds,
		PointsToShow:   s.Simulation.PointsToShow,

		GenerateImage: s.Image.Generate,
	}
}

func clamp(v, lo, hi float64) float64 { return math.Min(math.Max(v, lo), hi) }

func degToRad(deg float64) float64 { return deg * math.Pi / 180 }
func radToDeg(rad float64) float64 { return rad * 180 / math.Pi }
