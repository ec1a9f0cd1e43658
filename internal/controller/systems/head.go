package systems

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"stride/internal/controller/components"
	"stride/internal/events"
)

var pitchAxis = mgl32.Vec3{1, 0, 0}

// HeadSync keeps the head node's orientation and look direction current.
// Pitch is last-wins, composed with the configured head yaw. Look events
// replace the look direction outright; look deltas are summed onto it and
// the result renormalized.
type HeadSync struct {
	hub     *events.Hub
	headYaw float32

	pitches    events.Reader[events.Pitch]
	looks      events.Reader[events.Look]
	lookDeltas events.Reader[events.LookDelta]

	filter *ecs.Filter2[components.Transform, components.LookDirection]
}

func NewHeadSync(world *ecs.World, hub *events.Hub, headYaw float32) *HeadSync {
	return &HeadSync{
		hub:     hub,
		headYaw: headYaw,
		filter: ecs.NewFilter2[components.Transform, components.LookDirection](world).
			With(ecs.C[components.HeadTag]()),
	}
}

func (s *HeadSync) Initialize(_ *ecs.World) {
	s.filter.Register()
}

func (s *HeadSync) Update(_ *ecs.World) {
	pitch, pitchSet := events.Last(&s.pitches, &s.hub.Pitches)
	look, lookSet := events.Last(&s.looks, &s.hub.Looks)

	var delta mgl32.Vec3
	for _, ev := range s.lookDeltas.Drain(&s.hub.LookDeltas) {
		delta = delta.Add(ev.Vec())
	}
	deltaSet := delta.LenSqr() > 0

	if !pitchSet && !lookSet && !deltaSet {
		return
	}

	var rotation mgl32.Quat
	if pitchSet {
		rotation = mgl32.QuatRotate(s.headYaw, yawAxis).
			Mul(mgl32.QuatRotate(float32(pitch), pitchAxis))
	}

	query := s.filter.Query()
	for query.Next() {
		transform, dir := query.Get()

		if pitchSet {
			transform.Rotation = rotation
		}
		if lookSet {
			dir.Forward = look.Vec()
		}
		if deltaSet {
			forward := dir.Forward.Add(delta)
			if forward.LenSqr() > 0 {
				dir.Forward = forward.Normalize()
			}
		}
	}
}

func (s *HeadSync) Finalize(_ *ecs.World) {}
