package systems

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"stride/internal/config"
	"stride/internal/controller/entities"
	"stride/internal/events"
	"stride/internal/physics"
)

func headFixture(t *testing.T, headYaw float32) (*ecs.World, *entities.EntityManager, *events.Hub, entities.Character, *HeadSync) {
	t.Helper()
	world := ecs.NewWorld()
	em := entities.NewEntityManager(&world)
	backend := physics.NewSandbox(mgl32.Vec3{})
	hub := events.NewHub()

	shape := characterShape()
	shape.HeadYaw = headYaw
	char, err := em.SpawnCharacter(config.KinematicTranslation, shape, backend)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}

	sys := NewHeadSync(&world, hub, headYaw)
	sys.Initialize(&world)
	return &world, em, hub, char, sys
}

func TestHeadPitchLastWinsComposedWithHeadYaw(t *testing.T) {
	headYaw := float32(0.4)
	world, em, hub, char, sys := headFixture(t, headYaw)

	hub.Pitches.Send(events.Pitch(0.1))
	hub.Pitches.Send(events.Pitch(-0.6))
	sys.Update(world)

	want := mgl32.QuatRotate(headYaw, mgl32.Vec3{0, 1, 0}).
		Mul(mgl32.QuatRotate(-0.6, mgl32.Vec3{1, 0, 0}))
	if got := em.Transforms.Get(char.Head).Rotation; got != want {
		t.Fatalf("expected last pitch composed with head yaw, got %v", got)
	}
}

func TestHeadLookOverwritesDirection(t *testing.T) {
	world, em, hub, char, sys := headFixture(t, 0)

	hub.Looks.Send(events.Look{0, 0, 1})
	hub.Looks.Send(events.Look{1, 0, 0})
	sys.Update(world)

	if got := em.Looks.Get(char.Head).Forward; got != (mgl32.Vec3{1, 0, 0}) {
		t.Fatalf("expected last look to win, got %v", got)
	}
}

func TestHeadLookDeltaRenormalizes(t *testing.T) {
	world, em, hub, char, sys := headFixture(t, 0)

	hub.Looks.Send(events.Look{0, 0, -1})
	sys.Update(world)

	hub.LookDeltas.Send(events.LookDelta{1, 0, 0})
	hub.LookDeltas.Send(events.LookDelta{1, 0, 0})
	sys.Update(world)

	got := em.Looks.Get(char.Head).Forward
	if math.Abs(float64(got.Len()-1)) > 1e-5 {
		t.Fatalf("forward must stay unit length, got %v (len %v)", got, got.Len())
	}
	if got.X() <= 0 || got.Z() >= 0 {
		t.Fatalf("delta direction not applied: %v", got)
	}
}

func TestHeadNoEventsIsNoOp(t *testing.T) {
	world, em, _, char, sys := headFixture(t, 0.4)

	before := em.Transforms.Get(char.Head).Rotation
	sys.Update(world)
	if got := em.Transforms.Get(char.Head).Rotation; got != before {
		t.Fatalf("head rotated without events: %v", got)
	}
}
