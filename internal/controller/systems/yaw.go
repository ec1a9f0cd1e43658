package systems

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"stride/internal/controller/components"
	"stride/internal/events"
	"stride/internal/logger"
	"stride/internal/physics"
)

var yawAxis = mgl32.Vec3{0, 1, 0}

// KinematicYaw applies the last pending yaw event to the character's yaw
// proxy node. A kinematic controller has no rotatable backend handle, so
// heading never touches the backend under this strategy.
type KinematicYaw struct {
	hub  *events.Hub
	yaws events.Reader[events.Yaw]

	filter *ecs.Filter1[components.Transform]
}

func NewKinematicYaw(world *ecs.World, hub *events.Hub) *KinematicYaw {
	return &KinematicYaw{
		hub: hub,
		filter: ecs.NewFilter1[components.Transform](world).
			With(ecs.C[components.KinematicYawTag]()),
	}
}

func (s *KinematicYaw) Initialize(_ *ecs.World) {
	s.filter.Register()
}

func (s *KinematicYaw) Update(_ *ecs.World) {
	yaw, ok := events.Last(&s.yaws, &s.hub.Yaws)
	if !ok {
		return
	}

	rotation := mgl32.QuatRotate(float32(yaw), yawAxis)
	query := s.filter.Query()
	for query.Next() {
		transform := query.Get()
		transform.Rotation = rotation
	}
}

func (s *KinematicYaw) Finalize(_ *ecs.World) {}

// DynamicYaw applies the last pending yaw event to the backend body's global
// pose. The translation half of the pose is written back untouched, so
// heading changes never move the body.
type DynamicYaw struct {
	backend physics.Backend
	hub     *events.Hub
	log     logger.Logger
	desync  *Desync
	yaws    events.Reader[events.Yaw]

	filter *ecs.Filter2[components.DynamicHandle, components.Transform]
}

func NewDynamicYaw(world *ecs.World, backend physics.Backend, hub *events.Hub, log logger.Logger, desync *Desync) *DynamicYaw {
	return &DynamicYaw{
		backend: backend,
		hub:     hub,
		log:     log,
		desync:  desync,
		filter: ecs.NewFilter2[components.DynamicHandle, components.Transform](world).
			With(ecs.C[components.BodyTag]()),
	}
}

func (s *DynamicYaw) Initialize(_ *ecs.World) {
	s.filter.Register()
}

func (s *DynamicYaw) Update(_ *ecs.World) {
	yaw, ok := events.Last(&s.yaws, &s.hub.Yaws)
	if !ok {
		return
	}

	rotation := mgl32.QuatRotate(float32(yaw), yawAxis)
	query := s.filter.Query()
	for query.Next() {
		handle, transform := query.Get()

		pose, err := s.backend.GlobalPose(handle.ID)
		if err != nil {
			s.desync.note()
			s.log.Error("dynamic pose lookup failed",
				logger.Field{Key: "entity", Value: query.Entity()},
				logger.Field{Key: "handle", Value: handle.ID.String()},
				logger.Field{Key: "error", Value: err})
			continue
		}

		pose.Rotation = rotation
		if err := s.backend.SetGlobalPose(handle.ID, pose); err != nil {
			s.desync.note()
			s.log.Error("dynamic pose write failed",
				logger.Field{Key: "entity", Value: query.Entity()},
				logger.Field{Key: "handle", Value: handle.ID.String()},
				logger.Field{Key: "error", Value: err})
			continue
		}
		transform.Rotation = rotation
	}
}

func (s *DynamicYaw) Finalize(_ *ecs.World) {}
