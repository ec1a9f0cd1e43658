package controller

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"stride/internal/config"
	"stride/internal/events"
	"stride/internal/logger"
	"stride/internal/physics"
)

func sessionConfig(strategy config.Strategy) *config.Config {
	cfg := config.Default()
	cfg.Strategy = strategy
	return &cfg
}

func TestSessionRejectsUnknownStrategy(t *testing.T) {
	cfg := sessionConfig("hovercraft")
	_, err := NewSession(cfg, physics.NewSandbox(mgl32.Vec3{}), events.NewHub(), logger.NewNop())
	if err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestKinematicSessionMovesCharacter(t *testing.T) {
	cfg := sessionConfig(config.KinematicTranslation)
	backend := physics.NewSandbox(cfg.Gravity.Vec())
	hub := events.NewHub()

	s, err := NewSession(cfg, backend, hub, logger.NewNop())
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	defer s.Finalize()

	start := cfg.Character.SpawnPosition()
	hub.Translations.Send(events.Translation{1, 0, 0})
	s.Tick()

	handle := s.Mapper().Kinematic.Get(s.Character().Body)
	pos, err := backend.ControllerPosition(handle.ID)
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	if pos != start.Add(mgl32.Vec3{1, 0, 0}) {
		t.Fatalf("expected %v, got %v", start.Add(mgl32.Vec3{1, 0, 0}), pos)
	}
	if s.Desyncs() != 0 {
		t.Fatalf("unexpected desyncs: %d", s.Desyncs())
	}
}

func TestDynamicSessionSetupAndFeedback(t *testing.T) {
	cfg := sessionConfig(config.DynamicImpulse)
	backend := physics.NewSandbox(mgl32.Vec3{})
	hub := events.NewHub()

	s, err := NewSession(cfg, backend, hub, logger.NewNop())
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	defer s.Finalize()

	body := s.Character().Body
	if s.Mapper().Masses.HasAll(body) {
		t.Fatal("mass must be absent before the first tick")
	}

	hub.Impulses.Send(events.Impulse{40, 0, 0})
	s.Tick()

	em := s.Mapper()
	if !em.Masses.HasAll(body) {
		t.Fatal("first tick must discover the mass")
	}
	if !em.Constrained.HasAll(body) {
		t.Fatal("first tick must constrain rotation")
	}

	ctrl := em.Controllers.Get(body)
	if ctrl.Velocity.X() <= 0 {
		t.Fatalf("feedback must carry the post-step velocity, got %v", ctrl.Velocity)
	}

	handle := em.Dynamic.Get(body)
	backendV, _ := backend.LinearVelocity(handle.ID)
	if ctrl.Velocity != backendV {
		t.Fatalf("controller velocity %v diverged from backend %v", ctrl.Velocity, backendV)
	}
}

func TestSessionTelemetryProducesOutput(t *testing.T) {
	cfg := sessionConfig(config.KinematicTranslation)
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.Path = filepath.Join(t.TempDir(), "ticks.jsonl")

	s, err := NewSession(cfg, physics.NewSandbox(cfg.Gravity.Vec()), events.NewHub(), logger.NewNop())
	if err != nil {
		t.Fatalf("session: %v", err)
	}

	s.Tick()
	s.Tick()
	s.Finalize()

	data, err := os.ReadFile(cfg.Telemetry.Path)
	if err != nil {
		t.Fatalf("read telemetry: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected telemetry output after finalize")
	}
}
