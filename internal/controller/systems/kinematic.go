package systems

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"stride/internal/controller/components"
	"stride/internal/events"
	"stride/internal/logger"
	"stride/internal/physics"
)

// KinematicTranslation turns pending translation events into an authored
// controller position. All events drained in a tick collapse into one summed
// delta and one backend write per character.
type KinematicTranslation struct {
	backend physics.Backend
	hub     *events.Hub
	log     logger.Logger
	desync  *Desync
	minY    float32

	translations events.Reader[events.Translation]
	filter       *ecs.Filter3[components.CharacterController, components.ControllerHandle, components.Transform]
}

// NewKinematicTranslation creates the kinematic adapter. minY is the floor
// clamp height below which vertical motion is cut off.
func NewKinematicTranslation(world *ecs.World, backend physics.Backend, hub *events.Hub, log logger.Logger, desync *Desync, minY float32) *KinematicTranslation {
	return &KinematicTranslation{
		backend: backend,
		hub:     hub,
		log:     log,
		desync:  desync,
		minY:    minY,
		filter: ecs.NewFilter3[components.CharacterController, components.ControllerHandle, components.Transform](world).
			With(ecs.C[components.BodyTag]()),
	}
}

func (s *KinematicTranslation) Initialize(_ *ecs.World) {
	s.filter.Register()
}

// Update drains the translation channel once and moves every kinematic
// character by the summed delta. The clamp keeps the controller at or above
// minY and ends any jump that carried it below.
func (s *KinematicTranslation) Update(_ *ecs.World) {
	var delta mgl32.Vec3
	for _, ev := range s.translations.Drain(&s.hub.Translations) {
		delta = delta.Add(ev.Vec())
	}

	query := s.filter.Query()
	for query.Next() {
		ctrl, handle, transform := query.Get()

		pos, err := s.backend.ControllerPosition(handle.ID)
		if err != nil {
			s.desync.note()
			s.log.Error("kinematic controller lookup failed",
				logger.Field{Key: "entity", Value: query.Entity()},
				logger.Field{Key: "handle", Value: handle.ID.String()},
				logger.Field{Key: "error", Value: err})
			continue
		}

		move := delta
		if pos.Y()+move.Y() < s.minY {
			move[1] = s.minY - pos.Y()
			ctrl.Jumping = false
		}

		target := pos.Add(move)
		if err := s.backend.SetControllerPosition(handle.ID, target); err != nil {
			s.desync.note()
			s.log.Error("kinematic controller write failed",
				logger.Field{Key: "entity", Value: query.Entity()},
				logger.Field{Key: "handle", Value: handle.ID.String()},
				logger.Field{Key: "error", Value: err})
			continue
		}
		// Keep the abstract pose bit-consistent with the backend.
		transform.Translation = target
	}
}

func (s *KinematicTranslation) Finalize(_ *ecs.World) {}
