package systems

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"stride/internal/controller/components"
	"stride/internal/events"
	"stride/internal/logger"
	"stride/internal/physics"
)

// Near-zero sums are dropped instead of submitted, so an idle character
// costs no backend calls. Strictly greater submits; equal does not.
const minSubmitSqr = 1e-6

// dynamicAdapter is the shared half of the two dynamic strategies: a filter
// over character bodies with a dynamic handle, and a single summed submit.
type dynamicAdapter struct {
	backend physics.Backend
	log     logger.Logger
	desync  *Desync

	filter *ecs.Filter1[components.DynamicHandle]
}

func newDynamicAdapter(world *ecs.World, backend physics.Backend, log logger.Logger, desync *Desync) dynamicAdapter {
	return dynamicAdapter{
		backend: backend,
		log:     log,
		desync:  desync,
		filter: ecs.NewFilter1[components.DynamicHandle](world).
			With(ecs.C[components.BodyTag]()),
	}
}

// submit applies one summed vector to every character body, skipping sums
// too small to matter.
func (a *dynamicAdapter) submit(sum mgl32.Vec3, mode physics.ForceMode) {
	if sum.LenSqr() <= minSubmitSqr {
		return
	}

	query := a.filter.Query()
	for query.Next() {
		handle := query.Get()
		if err := a.backend.AddForce(handle.ID, sum, mode); err != nil {
			a.desync.note()
			a.log.Error("dynamic body submit failed",
				logger.Field{Key: "entity", Value: query.Entity()},
				logger.Field{Key: "handle", Value: handle.ID.String()},
				logger.Field{Key: "error", Value: err})
		}
	}
}

// DynamicImpulse sums pending impulse events and submits them as one
// momentum delta per tick.
type DynamicImpulse struct {
	dynamicAdapter
	hub      *events.Hub
	impulses events.Reader[events.Impulse]
}

func NewDynamicImpulse(world *ecs.World, backend physics.Backend, hub *events.Hub, log logger.Logger, desync *Desync) *DynamicImpulse {
	return &DynamicImpulse{
		dynamicAdapter: newDynamicAdapter(world, backend, log, desync),
		hub:            hub,
	}
}

func (s *DynamicImpulse) Initialize(_ *ecs.World) {
	s.filter.Register()
}

func (s *DynamicImpulse) Update(_ *ecs.World) {
	var sum mgl32.Vec3
	for _, ev := range s.impulses.Drain(&s.hub.Impulses) {
		sum = sum.Add(ev.Vec())
	}
	s.submit(sum, physics.ForceModeImpulse)
}

func (s *DynamicImpulse) Finalize(_ *ecs.World) {}

// DynamicForce sums pending force events and submits them for continuous
// integration over the coming step.
type DynamicForce struct {
	dynamicAdapter
	hub    *events.Hub
	forces events.Reader[events.Force]
}

func NewDynamicForce(world *ecs.World, backend physics.Backend, hub *events.Hub, log logger.Logger, desync *Desync) *DynamicForce {
	return &DynamicForce{
		dynamicAdapter: newDynamicAdapter(world, backend, log, desync),
		hub:            hub,
	}
}

func (s *DynamicForce) Initialize(_ *ecs.World) {
	s.filter.Register()
}

func (s *DynamicForce) Update(_ *ecs.World) {
	var sum mgl32.Vec3
	for _, ev := range s.forces.Drain(&s.hub.Forces) {
		sum = sum.Add(ev.Vec())
	}
	s.submit(sum, physics.ForceModeForce)
}

func (s *DynamicForce) Finalize(_ *ecs.World) {}
