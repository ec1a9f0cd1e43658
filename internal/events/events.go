package events

import "github.com/go-gl/mathgl/mgl32"

// Translation is a positional delta for the character body.
type Translation mgl32.Vec3

// Vec returns the delta as a math vector.
func (t Translation) Vec() mgl32.Vec3 { return mgl32.Vec3(t) }

// Yaw is an absolute target heading in radians about +Y. Consumers apply
// the last pending event, never a sum.
type Yaw float32

// Pitch is an absolute head pitch in radians about +X.
type Pitch float32

// Look is the current look direction, unit length.
type Look mgl32.Vec3

// Vec returns the direction as a math vector.
func (l Look) Vec() mgl32.Vec3 { return mgl32.Vec3(l) }

// LookDelta is the change in look direction since the previous sample.
type LookDelta mgl32.Vec3

// Vec returns the delta as a math vector.
func (l LookDelta) Vec() mgl32.Vec3 { return mgl32.Vec3(l) }

// Force is a continuous force to integrate over the step.
type Force mgl32.Vec3

// Vec returns the force as a math vector.
func (f Force) Vec() mgl32.Vec3 { return mgl32.Vec3(f) }

// Impulse is an instantaneous change in momentum.
type Impulse mgl32.Vec3

// Vec returns the impulse as a math vector.
func (i Impulse) Vec() mgl32.Vec3 { return mgl32.Vec3(i) }

// Hub bundles one channel per locomotion event type. The input layer
// produces into it; adapter systems hold readers over it.
type Hub struct {
	Translations Channel[Translation]
	Yaws         Channel[Yaw]
	Pitches      Channel[Pitch]
	Looks        Channel[Look]
	LookDeltas   Channel[LookDelta]
	Forces       Channel[Force]
	Impulses     Channel[Impulse]
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{}
}
