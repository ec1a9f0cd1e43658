// Package entities creates and wires the ECS entities of a session.
package entities

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"stride/internal/config"
	"stride/internal/controller/components"
	"stride/internal/physics"
)

// EntityManager bundles the component mappers for a world.
type EntityManager struct {
	World *ecs.World

	Controllers ecs.Map1[components.CharacterController]
	Masses      ecs.Map1[components.Mass]
	Transforms  ecs.Map1[components.Transform]
	Looks       ecs.Map1[components.LookDirection]

	Bodies      ecs.Map1[components.BodyTag]
	YawNodes    ecs.Map1[components.KinematicYawTag]
	Heads       ecs.Map1[components.HeadTag]
	Constrained ecs.Map1[components.ConstrainedTag]

	Dynamic   ecs.Map1[components.DynamicHandle]
	Kinematic ecs.Map1[components.ControllerHandle]
}

// NewEntityManager creates the mappers for a given world.
func NewEntityManager(world *ecs.World) *EntityManager {
	return &EntityManager{
		World:       world,
		Controllers: *ecs.NewMap1[components.CharacterController](world),
		Masses:      *ecs.NewMap1[components.Mass](world),
		Transforms:  *ecs.NewMap1[components.Transform](world),
		Looks:       *ecs.NewMap1[components.LookDirection](world),
		Bodies:      *ecs.NewMap1[components.BodyTag](world),
		YawNodes:    *ecs.NewMap1[components.KinematicYawTag](world),
		Heads:       *ecs.NewMap1[components.HeadTag](world),
		Constrained: *ecs.NewMap1[components.ConstrainedTag](world),
		Dynamic:     *ecs.NewMap1[components.DynamicHandle](world),
		Kinematic:   *ecs.NewMap1[components.ControllerHandle](world),
	}
}

// Character references the entities spawned for one character.
type Character struct {
	Body ecs.Entity
	Yaw  ecs.Entity // zero for dynamic strategies
	Head ecs.Entity
}

// SpawnCharacter creates the character's body, yaw proxy (kinematic only)
// and head entities, and registers the backend body for the chosen
// strategy. The body receives exactly one backend handle, assigned here
// and never reassigned.
func (e *EntityManager) SpawnCharacter(strategy config.Strategy, shape config.Character, backend physics.Backend) (Character, error) {
	var char Character

	spawn := shape.SpawnPosition()

	char.Body = e.World.NewEntity()
	e.Transforms.Add(char.Body, &components.Transform{
		Translation: spawn,
		Rotation:    mgl32.QuatIdent(),
	})
	e.Controllers.Add(char.Body, &components.CharacterController{})
	e.Bodies.Add(char.Body, &components.BodyTag{})

	if strategy == config.KinematicTranslation {
		id, err := backend.CreateController(physics.ControllerDesc{
			Position:   spawn,
			Height:     shape.Scale.Y,
			Radius:     max32(shape.Scale.X, shape.Scale.Z),
			StepOffset: shape.StepOffset,
		})
		if err != nil {
			return Character{}, fmt.Errorf("create kinematic controller: %w", err)
		}
		e.Kinematic.Add(char.Body, &components.ControllerHandle{ID: id})
		// A kinematic controller has no backend-computed mass; the
		// conventional value is authored at spawn instead.
		e.Masses.Add(char.Body, &components.Mass{Value: 80})

		char.Yaw = e.World.NewEntity()
		e.Transforms.Add(char.Yaw, &components.Transform{Rotation: mgl32.QuatIdent()})
		e.YawNodes.Add(char.Yaw, &components.KinematicYawTag{})
	} else {
		id, err := backend.CreateDynamicBody(physics.DynamicBodyDesc{
			Position:       spawn,
			Shape:          physics.Capsule(0.5*max32(shape.Scale.X, shape.Scale.Z), shape.Scale.Y),
			Density:        shape.Density,
			AngularDamping: 0.5,
		})
		if err != nil {
			return Character{}, fmt.Errorf("create dynamic body: %w", err)
		}
		e.Dynamic.Add(char.Body, &components.DynamicHandle{ID: id})
		// Mass is left absent on purpose: mass discovery fills it from
		// the backend exactly once.
	}

	char.Head = e.World.NewEntity()
	headOffset := 0.5 * (shape.Scale.Y + shape.HeadScale)
	e.Transforms.Add(char.Head, &components.Transform{
		Translation: mgl32.Vec3{0, headOffset, 0},
		Rotation:    mgl32.QuatRotate(shape.HeadYaw, mgl32.Vec3{0, 1, 0}),
	})
	e.Heads.Add(char.Head, &components.HeadTag{})
	e.Looks.Add(char.Head, &components.LookDirection{Forward: mgl32.Vec3{0, 0, -1}})

	return char, nil
}

// SpawnProp creates a free dynamic box for scene reference. Props carry a
// backend handle but no BodyTag, so adapters ignore them while mass
// discovery still covers them.
func (e *EntityManager) SpawnProp(position, halfExtents mgl32.Vec3, density float32, backend physics.Backend) (ecs.Entity, error) {
	id, err := backend.CreateDynamicBody(physics.DynamicBodyDesc{
		Position:       position,
		Shape:          physics.Box(halfExtents),
		Density:        density,
		AngularDamping: 0.5,
	})
	if err != nil {
		return ecs.Entity{}, fmt.Errorf("create prop body: %w", err)
	}

	prop := e.World.NewEntity()
	e.Transforms.Add(prop, &components.Transform{
		Translation: position,
		Rotation:    mgl32.QuatIdent(),
	})
	e.Dynamic.Add(prop, &components.DynamicHandle{ID: id})
	return prop, nil
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
