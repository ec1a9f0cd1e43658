package systems

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"stride/internal/controller/components"
	"stride/internal/logger"
	"stride/internal/physics"
)

// MassDiscovery copies the backend-computed mass onto dynamic bodies that
// do not have one yet. Absence of the Mass component is the sole trigger;
// once written the value is never re-read from the backend. Component adds
// happen after the query closes.
type MassDiscovery struct {
	backend physics.Backend
	log     logger.Logger
	desync  *Desync

	filter *ecs.Filter1[components.DynamicHandle]
	masses ecs.Map1[components.Mass]
}

func NewMassDiscovery(world *ecs.World, backend physics.Backend, log logger.Logger, desync *Desync) *MassDiscovery {
	return &MassDiscovery{
		backend: backend,
		log:     log,
		desync:  desync,
		filter: ecs.NewFilter1[components.DynamicHandle](world).
			Without(ecs.C[components.Mass]()),
		masses: *ecs.NewMap1[components.Mass](world),
	}
}

func (s *MassDiscovery) Initialize(_ *ecs.World) {
	s.filter.Register()
}

func (s *MassDiscovery) Update(_ *ecs.World) {
	type discovered struct {
		entity ecs.Entity
		mass   float32
	}
	var pending []discovered

	query := s.filter.Query()
	for query.Next() {
		handle := query.Get()
		mass, err := s.backend.Mass(handle.ID)
		if err != nil {
			s.desync.note()
			s.log.Error("mass lookup failed",
				logger.Field{Key: "entity", Value: query.Entity()},
				logger.Field{Key: "handle", Value: handle.ID.String()},
				logger.Field{Key: "error", Value: err})
			continue
		}
		pending = append(pending, discovered{entity: query.Entity(), mass: mass})
	}

	for _, d := range pending {
		s.masses.Add(d.entity, &components.Mass{Value: d.mass})
	}
}

func (s *MassDiscovery) Finalize(_ *ecs.World) {}

// RotationConstraint zeroes the angular inertia of character bodies so the
// simulation cannot tip them over. The ConstrainedTag makes it a one-shot:
// tagged bodies trigger no further backend calls.
type RotationConstraint struct {
	backend physics.Backend
	log     logger.Logger
	desync  *Desync

	filter *ecs.Filter1[components.DynamicHandle]
	tags   ecs.Map1[components.ConstrainedTag]
}

func NewRotationConstraint(world *ecs.World, backend physics.Backend, log logger.Logger, desync *Desync) *RotationConstraint {
	return &RotationConstraint{
		backend: backend,
		log:     log,
		desync:  desync,
		filter: ecs.NewFilter1[components.DynamicHandle](world).
			With(ecs.C[components.BodyTag]()).
			Without(ecs.C[components.ConstrainedTag]()),
		tags: *ecs.NewMap1[components.ConstrainedTag](world),
	}
}

func (s *RotationConstraint) Initialize(_ *ecs.World) {
	s.filter.Register()
}

func (s *RotationConstraint) Update(_ *ecs.World) {
	var constrained []ecs.Entity

	query := s.filter.Query()
	for query.Next() {
		handle := query.Get()
		if err := s.backend.SetMassSpaceInertiaTensor(handle.ID, mgl32.Vec3{}); err != nil {
			s.desync.note()
			s.log.Error("inertia constraint failed",
				logger.Field{Key: "entity", Value: query.Entity()},
				logger.Field{Key: "handle", Value: handle.ID.String()},
				logger.Field{Key: "error", Value: err})
			continue
		}
		constrained = append(constrained, query.Entity())
	}

	for _, entity := range constrained {
		s.tags.Add(entity, &components.ConstrainedTag{})
	}
}

func (s *RotationConstraint) Finalize(_ *ecs.World) {}
