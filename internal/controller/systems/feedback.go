package systems

import (
	"github.com/mlange-42/ark/ecs"

	"stride/internal/controller/components"
	"stride/internal/logger"
	"stride/internal/physics"
)

// VelocityFeedback overwrites each character's abstract velocity with the
// backend's post-step linear velocity. Adapters never author velocity; this
// is the only writer.
type VelocityFeedback struct {
	backend physics.Backend
	log     logger.Logger
	desync  *Desync

	filter *ecs.Filter2[components.DynamicHandle, components.CharacterController]
}

func NewVelocityFeedback(world *ecs.World, backend physics.Backend, log logger.Logger, desync *Desync) *VelocityFeedback {
	return &VelocityFeedback{
		backend: backend,
		log:     log,
		desync:  desync,
		filter: ecs.NewFilter2[components.DynamicHandle, components.CharacterController](world).
			With(ecs.C[components.BodyTag]()),
	}
}

func (s *VelocityFeedback) Initialize(_ *ecs.World) {
	s.filter.Register()
}

func (s *VelocityFeedback) Update(_ *ecs.World) {
	query := s.filter.Query()
	for query.Next() {
		handle, ctrl := query.Get()

		velocity, err := s.backend.LinearVelocity(handle.ID)
		if err != nil {
			s.desync.note()
			s.log.Error("velocity lookup failed",
				logger.Field{Key: "entity", Value: query.Entity()},
				logger.Field{Key: "handle", Value: handle.ID.String()},
				logger.Field{Key: "error", Value: err})
			continue
		}
		ctrl.Velocity = velocity
	}
}

func (s *VelocityFeedback) Finalize(_ *ecs.World) {}
