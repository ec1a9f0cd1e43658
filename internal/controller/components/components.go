// Package components defines the ECS data model of the locomotion layer.
package components

import (
	"github.com/go-gl/mathgl/mgl32"

	"stride/internal/physics"
)

// CharacterController is the abstract controller state exposed to gameplay
// and animation. Velocity is backend-derived and overwritten every tick by
// the velocity feedback system; adapters never author it. Jumping is
// cleared by the kinematic floor clamp.
type CharacterController struct {
	Velocity mgl32.Vec3
	Jumping  bool
}

// Mass is the backend-computed mass of a dynamic body. It is absent at
// spawn and written exactly once by mass discovery; it never changes
// afterwards even if the backend's value does.
type Mass struct {
	Value float32
}

// Transform is the abstract pose used by non-physics consumers. For
// kinematic bodies the adapter keeps its translation bit-consistent with
// the backend controller position within the tick.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
}

// NewTransform returns an identity-rotation transform at the given
// translation.
func NewTransform(translation mgl32.Vec3) Transform {
	return Transform{
		Translation: translation,
		Rotation:    mgl32.QuatIdent(),
	}
}

// LookDirection is the current look direction of the head node, refreshed
// from Look events. Read-only for gameplay collaborators.
type LookDirection struct {
	Forward mgl32.Vec3
}

// BodyTag marks the physical body entity of a character.
type BodyTag struct{}

// KinematicYawTag marks the proxy node that carries yaw for a kinematic
// character. A kinematic controller has no rotatable backend handle, so
// yaw lives on this node instead.
type KinematicYawTag struct{}

// HeadTag marks the head node that carries pitch and look direction.
type HeadTag struct{}

// ConstrainedTag marks a dynamic body whose angular inertia has been
// zeroed. Its presence makes the rotation constraint a one-shot per entity.
type ConstrainedTag struct{}

// DynamicHandle references a force-integrated backend body. Assigned at
// spawn, never reassigned; exactly one per BodyTag entity under the
// dynamic strategies.
type DynamicHandle struct {
	ID physics.BodyID
}

// ControllerHandle references a kinematic character controller in the
// backend. Assigned at spawn, never reassigned; exactly one per BodyTag
// entity under the kinematic strategy.
type ControllerHandle struct {
	ID physics.BodyID
}
