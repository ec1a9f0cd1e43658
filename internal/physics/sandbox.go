package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Sandbox is an in-process reference backend. It integrates dynamic bodies
// with semi-implicit Euler and a flat ground plane at y=0; kinematic
// controllers are position-authored only and never integrated. It exists so
// the adapter pipeline is runnable and testable without an external engine,
// not as a general-purpose simulator.
//
// The sandbox is not safe for concurrent use; the tick pipeline is
// single-threaded per stage.
type Sandbox struct {
	gravity     mgl32.Vec3
	bodies      map[BodyID]*sandboxBody
	controllers map[BodyID]*sandboxController
}

type sandboxBody struct {
	pose     Pose
	velocity mgl32.Vec3
	mass     float32
	inertia  mgl32.Vec3

	// per-step accumulators, cleared by Step
	force   mgl32.Vec3
	impulse mgl32.Vec3

	restHeight     float32
	angularDamping float32
}

type sandboxController struct {
	position mgl32.Vec3
}

// NewSandbox returns a sandbox with the given gravity vector.
func NewSandbox(gravity mgl32.Vec3) *Sandbox {
	return &Sandbox{
		gravity:     gravity,
		bodies:      make(map[BodyID]*sandboxBody),
		controllers: make(map[BodyID]*sandboxController),
	}
}

func (s *Sandbox) body(id BodyID) (*sandboxBody, error) {
	b, ok := s.bodies[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBody, id)
	}
	return b, nil
}

func (s *Sandbox) controller(id BodyID) (*sandboxController, error) {
	c, ok := s.controllers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBody, id)
	}
	return c, nil
}

// CreateDynamicBody registers a force-integrated body. Mass is computed by
// the backend from density and shape volume, as a real engine would.
func (s *Sandbox) CreateDynamicBody(desc DynamicBodyDesc) (BodyID, error) {
	if desc.Density <= 0 {
		return BodyID{}, fmt.Errorf("physics: density must be positive, got %v", desc.Density)
	}
	id := NewBodyID()
	s.bodies[id] = &sandboxBody{
		pose: Pose{
			Translation: desc.Position,
			Rotation:    mgl32.QuatIdent(),
		},
		mass:           desc.Density * desc.Shape.Volume(),
		inertia:        mgl32.Vec3{1, 1, 1},
		restHeight:     desc.Shape.restHeight(),
		angularDamping: desc.AngularDamping,
	}
	return id, nil
}

// CreateController registers a kinematic character controller.
func (s *Sandbox) CreateController(desc ControllerDesc) (BodyID, error) {
	if desc.Height <= 0 || desc.Radius <= 0 {
		return BodyID{}, fmt.Errorf("physics: controller needs positive height and radius, got h=%v r=%v", desc.Height, desc.Radius)
	}
	id := NewBodyID()
	s.controllers[id] = &sandboxController{position: desc.Position}
	return id, nil
}

func (s *Sandbox) ControllerPosition(id BodyID) (mgl32.Vec3, error) {
	c, err := s.controller(id)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return c.position, nil
}

func (s *Sandbox) SetControllerPosition(id BodyID, pos mgl32.Vec3) error {
	c, err := s.controller(id)
	if err != nil {
		return err
	}
	c.position = pos
	return nil
}

func (s *Sandbox) GlobalPose(id BodyID) (Pose, error) {
	b, err := s.body(id)
	if err != nil {
		return Pose{}, err
	}
	return b.pose, nil
}

func (s *Sandbox) SetGlobalPose(id BodyID, pose Pose) error {
	b, err := s.body(id)
	if err != nil {
		return err
	}
	b.pose = pose
	return nil
}

func (s *Sandbox) LinearVelocity(id BodyID) (mgl32.Vec3, error) {
	b, err := s.body(id)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return b.velocity, nil
}

func (s *Sandbox) SetLinearVelocity(id BodyID, v mgl32.Vec3) error {
	b, err := s.body(id)
	if err != nil {
		return err
	}
	b.velocity = v
	return nil
}

func (s *Sandbox) Mass(id BodyID) (float32, error) {
	b, err := s.body(id)
	if err != nil {
		return 0, err
	}
	return b.mass, nil
}

func (s *Sandbox) SetMassSpaceInertiaTensor(id BodyID, inertia mgl32.Vec3) error {
	b, err := s.body(id)
	if err != nil {
		return err
	}
	b.inertia = inertia
	return nil
}

// AddForce accumulates a vector for the next Step. Impulse mode is a
// momentum delta; force mode is integrated as acceleration over the step.
func (s *Sandbox) AddForce(id BodyID, v mgl32.Vec3, mode ForceMode) error {
	b, err := s.body(id)
	if err != nil {
		return err
	}
	switch mode {
	case ForceModeImpulse:
		b.impulse = b.impulse.Add(v)
	case ForceModeForce:
		b.force = b.force.Add(v)
	default:
		return fmt.Errorf("physics: unknown force mode %d", mode)
	}
	return nil
}

// Step advances every dynamic body by dt. Controllers are untouched: their
// position is authored, never integrated. Ground response is a plane at
// y=0 that stops downward motion at the body's rest height.
func (s *Sandbox) Step(dt float32) {
	for _, b := range s.bodies {
		b.velocity = b.velocity.Add(b.impulse.Mul(1 / b.mass))
		accel := b.force.Mul(1 / b.mass).Add(s.gravity)
		b.velocity = b.velocity.Add(accel.Mul(dt))
		b.pose.Translation = b.pose.Translation.Add(b.velocity.Mul(dt))

		if b.pose.Translation.Y() < b.restHeight {
			b.pose.Translation[1] = b.restHeight
			if b.velocity.Y() < 0 {
				b.velocity[1] = 0
			}
		}

		b.force = mgl32.Vec3{}
		b.impulse = mgl32.Vec3{}
	}
}
