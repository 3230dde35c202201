package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/signalsfoundry/marco-simulator/model"
)

func TestLoadDefaultsMatchModel(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	got := s.SimulationConfig()
	want := model.DefaultConfig()
	if math.Abs(got.StartLat-want.StartLat) > 1e-12 || math.Abs(got.RotationalAxisTilt-want.RotationalAxisTilt) > 1e-12 {
		t.Fatalf("angles = (%v, %v), want (%v, %v)", got.StartLat, got.RotationalAxisTilt, want.StartLat, want.RotationalAxisTilt)
	}
	got.StartLat, got.StartLon, got.RotationalAxisTilt = want.StartLat, want.StartLon, want.RotationalAxisTilt
	if got != want {
		t.Fatalf("config = %+v, want %+v", got, want)
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "marco.yaml")
	body := []byte(`
planet:
  radius_km: 3000
  axis_tilt_deg: 0
marco:
  velocities_count: 4
  start_lat_deg: 120
simulation:
  points_to_show: 250
image:
  generate: false
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("MARCO_SIMULATION_DURATION_S", "3600")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg := s.SimulationConfig()
	if cfg.PlanetRadius != 3000 || cfg.RotationalAxisTilt != 0 || cfg.VelocitiesCount != 4 || cfg.PointsToShow != 250 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.GenerateImage {
		t.Fatalf("image generation should be disabled")
	}
	if cfg.SimulationTime != 3600 {
		t.Fatalf("env override not applied: SimulationTime = %v", cfg.SimulationTime)
	}
	if math.Abs(cfg.StartLat-math.Pi/2) > 1e-12 {
		t.Fatalf("start latitude should be clamped to the pole, got %v", cfg.StartLat)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}

func TestClamp(t *testing.T) {
	s := DefaultSettings()
	s.Planet.RadiusKm = -5
	s.Planet.AxisTiltDeg = 400
	s.Planet.RotationPeriodHours = 0
	s.Orbit.SunDistanceKm = 0
	s.Marco.VelocitiesCount = 0
	s.Marco.StartLonDeg = -135
	s.Simulation.PointsToShow = -3
	s.Image.Width = 1

	c := s.Clamp()
	if c.Planet.RadiusKm != minPositive || c.Planet.RotationPeriodHours != minPositive || c.Orbit.SunDistanceKm != minPositive {
		t.Fatalf("positive floors not applied: %+v", c)
	}
	if c.Planet.AxisTiltDeg != 180 || c.Marco.StartLonDeg != -90 {
		t.Fatalf("angle clamps not applied: %+v", c)
	}
	if c.Marco.VelocitiesCount != 1 || c.Simulation.PointsToShow != 1 || c.Image.Width != 10 {
		t.Fatalf("count floors not applied: %+v", c)
	}
}

func TestValidate(t *testing.T) {
	s := DefaultSettings()
	s.Simulation.TimestepSeconds = 0
	s.Marco.MinVelocity = 10
	s.Marco.MaxVelocity = 1

	err := s.Validate()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Validate error = %v, want ErrInvalidConfig", err)
	}
	s = DefaultSettings()
	s.Simulation.TimestepSeconds = math.NaN()
	if err := s.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("NaN timestep should be rejected, got %v", err)
	}
}
