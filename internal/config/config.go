// Package config holds the session configuration loaded at startup. An
// invalid configuration fails fast; nothing here is re-read at runtime.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"stride/internal/logger"
)

// Strategy selects how locomotion events are turned into backend commands.
// Exactly one strategy is active for the lifetime of a session.
type Strategy string

const (
	// KinematicTranslation authors the controller position directly.
	KinematicTranslation Strategy = "kinematic-translation"
	// DynamicImpulse submits summed impulses as momentum deltas.
	DynamicImpulse Strategy = "dynamic-impulse"
	// DynamicForce submits summed forces for continuous integration.
	DynamicForce Strategy = "dynamic-force"
)

// ParseStrategy resolves a case-insensitive strategy name. Unrecognized
// values are a configuration error, never silently defaulted.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case KinematicTranslation:
		return KinematicTranslation, nil
	case DynamicImpulse:
		return DynamicImpulse, nil
	case DynamicForce:
		return DynamicForce, nil
	default:
		return "", fmt.Errorf("unknown controller strategy %q (want one of %q, %q, %q)",
			s, KinematicTranslation, DynamicImpulse, DynamicForce)
	}
}

// Dynamic reports whether the strategy drives a force-integrated body.
func (s Strategy) Dynamic() bool {
	return s == DynamicImpulse || s == DynamicForce
}

func (s *Strategy) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseStrategy(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Vec3 is a YAML-friendly three-component vector.
type Vec3 struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	Z float32 `yaml:"z"`
}

// Vec converts to the math type used everywhere else.
func (v Vec3) Vec() mgl32.Vec3 {
	return mgl32.Vec3{v.X, v.Y, v.Z}
}

// Character describes the character's body proportions and spawn state.
type Character struct {
	Scale      Vec3    `yaml:"scale"`
	HeadScale  float32 `yaml:"head_scale"`
	HeadYaw    float32 `yaml:"head_yaw"`
	Density    float32 `yaml:"density"`
	StepOffset float32 `yaml:"step_offset"`
}

// MinY is the floor-clamp height for the kinematic strategy: half the
// ground slab plus half the body height.
func (c Character) MinY() float32 {
	return 0.5 * (1 + c.Scale.Y)
}

// SpawnPosition places the body resting on the ground slab.
func (c Character) SpawnPosition() mgl32.Vec3 {
	return mgl32.Vec3{0, 0.5 * (1 + c.Scale.Y), 0}
}

// Telemetry configures the asynchronous tick-state recorder.
type Telemetry struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Workers int    `yaml:"workers"`
}

// Config is the full session configuration.
type Config struct {
	Strategy  Strategy      `yaml:"strategy"`
	TPS       float64       `yaml:"tps"`
	Gravity   Vec3          `yaml:"gravity"`
	Character Character     `yaml:"character"`
	Telemetry Telemetry     `yaml:"telemetry"`
	Logging   logger.Config `yaml:"logging"`
}

// Default returns the configuration used when no file is given. The
// strategy has no default on purpose: it must be chosen explicitly.
func Default() Config {
	return Config{
		TPS:     60,
		Gravity: Vec3{Y: -9.81},
		Character: Character{
			Scale:      Vec3{X: 0.5, Y: 1.9, Z: 0.3},
			HeadScale:  0.3,
			Density:    200,
			StepOffset: 0.5,
		},
		Telemetry: Telemetry{Workers: 2},
		Logging:   logger.DefaultConfig(),
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks everything that must hold before the session starts.
func (c *Config) Validate() error {
	if _, err := ParseStrategy(string(c.Strategy)); err != nil {
		return err
	}
	if c.TPS <= 0 {
		return fmt.Errorf("tps must be positive, got %v", c.TPS)
	}
	if c.Character.Scale.X <= 0 || c.Character.Scale.Y <= 0 || c.Character.Scale.Z <= 0 {
		return fmt.Errorf("character scale must be positive, got %+v", c.Character.Scale)
	}
	if c.Character.Density <= 0 {
		return fmt.Errorf("character density must be positive, got %v", c.Character.Density)
	}
	if c.Telemetry.Enabled {
		if c.Telemetry.Path == "" {
			return fmt.Errorf("telemetry is enabled but no path is set")
		}
		if c.Telemetry.Workers <= 0 {
			return fmt.Errorf("telemetry workers must be positive, got %d", c.Telemetry.Workers)
		}
	}
	return nil
}
