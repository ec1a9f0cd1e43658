// Package controller assembles the locomotion pipeline: one ECS app, one
// character, and the system schedule implied by the configured strategy.
package controller

import (
	"fmt"

	"github.com/mlange-42/ark-tools/app"
	"github.com/mlange-42/ark/ecs"

	"stride/internal/config"
	"stride/internal/controller/entities"
	"stride/internal/controller/systems"
	"stride/internal/events"
	"stride/internal/logger"
	"stride/internal/physics"
	"stride/internal/telemetry"
)

// Session is one run of the locomotion pipeline. The strategy chosen at
// construction fixes the system schedule for the session's lifetime; there
// is no runtime switching.
type Session struct {
	app     *app.App
	world   *ecs.World
	mapper  *entities.EntityManager
	backend physics.Backend
	hub     *events.Hub
	log     logger.Logger
	desync  *systems.Desync

	character entities.Character
	recorder  *telemetry.Recorder
}

// NewSession builds the world, spawns the character and registers the
// strategy's systems in their fixed order. Adapters and synchronizers run
// before the simulation step, feedback and telemetry after it.
func NewSession(cfg *config.Config, backend physics.Backend, hub *events.Hub, log logger.Logger) (*Session, error) {
	if _, err := config.ParseStrategy(string(cfg.Strategy)); err != nil {
		return nil, err
	}

	arkApp := app.New(1024)
	arkApp.TPS = cfg.TPS
	world := &arkApp.World

	s := &Session{
		app:     arkApp,
		world:   world,
		mapper:  entities.NewEntityManager(world),
		backend: backend,
		hub:     hub,
		log:     log,
		desync:  &systems.Desync{},
	}

	character, err := s.mapper.SpawnCharacter(cfg.Strategy, cfg.Character, backend)
	if err != nil {
		return nil, fmt.Errorf("spawn character: %w", err)
	}
	s.character = character

	switch cfg.Strategy {
	case config.KinematicTranslation:
		arkApp.AddSystem(systems.NewKinematicTranslation(world, backend, hub, log, s.desync, cfg.Character.MinY()))
		arkApp.AddSystem(systems.NewKinematicYaw(world, hub))
	case config.DynamicImpulse:
		arkApp.AddSystem(systems.NewMassDiscovery(world, backend, log, s.desync))
		arkApp.AddSystem(systems.NewRotationConstraint(world, backend, log, s.desync))
		arkApp.AddSystem(systems.NewDynamicImpulse(world, backend, hub, log, s.desync))
		arkApp.AddSystem(systems.NewDynamicYaw(world, backend, hub, log, s.desync))
	case config.DynamicForce:
		arkApp.AddSystem(systems.NewMassDiscovery(world, backend, log, s.desync))
		arkApp.AddSystem(systems.NewRotationConstraint(world, backend, log, s.desync))
		arkApp.AddSystem(systems.NewDynamicForce(world, backend, hub, log, s.desync))
		arkApp.AddSystem(systems.NewDynamicYaw(world, backend, hub, log, s.desync))
	}
	arkApp.AddSystem(systems.NewHeadSync(world, hub, cfg.Character.HeadYaw))
	arkApp.AddSystem(systems.NewStep(backend, cfg.TPS))

	if cfg.Strategy.Dynamic() {
		arkApp.AddSystem(systems.NewVelocityFeedback(world, backend, log, s.desync))
	}

	if cfg.Telemetry.Enabled {
		recorder, err := telemetry.NewRecorder(cfg.Telemetry, s.mapper, character.Body, backend, log)
		if err != nil {
			return nil, fmt.Errorf("telemetry recorder: %w", err)
		}
		s.recorder = recorder
		arkApp.AddSystem(recorder)
	}

	arkApp.Initialize()
	return s, nil
}

// Tick advances the pipeline by one fixed step.
func (s *Session) Tick() {
	s.app.Update()
}

// Finalize runs system teardown, flushing the telemetry recorder if one is
// attached.
func (s *Session) Finalize() {
	s.app.Finalize()
}

// World exposes the ECS world for inspection.
func (s *Session) World() *ecs.World {
	return s.world
}

// Mapper exposes the entity manager for inspection.
func (s *Session) Mapper() *entities.EntityManager {
	return s.mapper
}

// Character returns the entities spawned for the session's character.
func (s *Session) Character() entities.Character {
	return s.character
}

// Desyncs reports how many backend lookups have failed so far.
func (s *Session) Desyncs() uint64 {
	return s.desync.Count()
}
