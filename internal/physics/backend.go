// Package physics defines the capability surface the locomotion adapters
// consume from a physics simulation backend, keyed by opaque body handles.
// Any concrete engine can sit behind the Backend interface; the adapters
// never own physics state directly.
package physics

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// ErrUnknownBody is returned when a handle no longer resolves to a live
// body. The adapter layer treats this as a lifecycle invariant violation,
// not a recoverable condition.
var ErrUnknownBody = errors.New("physics: unknown body handle")

// BodyID is an opaque handle into the backend's body table. It is assigned
// at body creation and never reassigned.
type BodyID uuid.UUID

// NewBodyID returns a fresh handle.
func NewBodyID() BodyID {
	return BodyID(uuid.New())
}

func (id BodyID) String() string {
	return uuid.UUID(id).String()
}

// Pose is a rigid body's global transform, split so a writer can replace
// the rotation while preserving the translation bit-exactly.
type Pose struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
}

// ForceMode selects how the backend integrates a submitted vector.
type ForceMode int

const (
	// ForceModeForce is a continuous force, integrated as acceleration
	// over the step (rate of change of momentum).
	ForceModeForce ForceMode = iota
	// ForceModeImpulse is an instantaneous momentum delta.
	ForceModeImpulse
)

func (m ForceMode) String() string {
	switch m {
	case ForceModeForce:
		return "force"
	case ForceModeImpulse:
		return "impulse"
	default:
		return "unknown"
	}
}

// ShapeKind discriminates collision shapes.
type ShapeKind int

const (
	ShapeBox ShapeKind = iota
	ShapeCapsule
)

// Shape describes a body's collision volume. Only the fields of the active
// kind are meaningful.
type Shape struct {
	Kind        ShapeKind
	HalfExtents mgl32.Vec3 // box
	Radius      float32    // capsule
	Height      float32    // capsule, cylindrical section
}

// Box returns a box shape with the given half extents.
func Box(halfExtents mgl32.Vec3) Shape {
	return Shape{Kind: ShapeBox, HalfExtents: halfExtents}
}

// Capsule returns a capsule shape with the given radius and cylindrical
// section height.
func Capsule(radius, height float32) Shape {
	return Shape{Kind: ShapeCapsule, Radius: radius, Height: height}
}

// Volume returns the shape's volume, used to derive mass from density.
func (s Shape) Volume() float32 {
	switch s.Kind {
	case ShapeBox:
		return 8 * s.HalfExtents.X() * s.HalfExtents.Y() * s.HalfExtents.Z()
	case ShapeCapsule:
		const pi = 3.14159265
		return pi*s.Radius*s.Radius*s.Height + (4.0/3.0)*pi*s.Radius*s.Radius*s.Radius
	default:
		return 0
	}
}

// restHeight is the Y at which the shape rests on the ground plane.
func (s Shape) restHeight() float32 {
	switch s.Kind {
	case ShapeBox:
		return s.HalfExtents.Y()
	case ShapeCapsule:
		return 0.5*s.Height + s.Radius
	default:
		return 0
	}
}

// DynamicBodyDesc describes a force-integrated body at creation.
type DynamicBodyDesc struct {
	Position       mgl32.Vec3
	Shape          Shape
	Density        float32
	AngularDamping float32
}

// ControllerDesc describes a kinematic character controller at creation.
// A controller has an authored position and no rotatable handle.
type ControllerDesc struct {
	Position   mgl32.Vec3
	Height     float32
	Radius     float32
	StepOffset float32
}

// Backend is the per-body query/command surface of the simulation engine.
// All operations except Step are keyed by the handle returned at creation;
// operations on a dead handle return ErrUnknownBody.
type Backend interface {
	CreateDynamicBody(desc DynamicBodyDesc) (BodyID, error)
	CreateController(desc ControllerDesc) (BodyID, error)

	ControllerPosition(id BodyID) (mgl32.Vec3, error)
	SetControllerPosition(id BodyID, pos mgl32.Vec3) error

	GlobalPose(id BodyID) (Pose, error)
	SetGlobalPose(id BodyID, pose Pose) error

	LinearVelocity(id BodyID) (mgl32.Vec3, error)
	SetLinearVelocity(id BodyID, v mgl32.Vec3) error

	Mass(id BodyID) (float32, error)
	SetMassSpaceInertiaTensor(id BodyID, inertia mgl32.Vec3) error

	AddForce(id BodyID, v mgl32.Vec3, mode ForceMode) error

	Step(dt float32)
}
