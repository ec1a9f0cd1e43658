package systems

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"stride/internal/config"
	"stride/internal/controller/entities"
	"stride/internal/logger"
	"stride/internal/physics"
)

func TestVelocityFeedbackMirrorsBackend(t *testing.T) {
	world := ecs.NewWorld()
	em := entities.NewEntityManager(&world)
	backend := physics.NewSandbox(mgl32.Vec3{})

	char, err := em.SpawnCharacter(config.DynamicImpulse, characterShape(), backend)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	handle := em.Dynamic.Get(char.Body)
	if err := backend.SetLinearVelocity(handle.ID, mgl32.Vec3{1, 2, 3}); err != nil {
		t.Fatalf("set velocity: %v", err)
	}

	sys := NewVelocityFeedback(&world, backend, logger.NewNop(), &Desync{})
	sys.Initialize(&world)
	sys.Update(&world)

	ctrl := em.Controllers.Get(char.Body)
	if ctrl.Velocity != (mgl32.Vec3{1, 2, 3}) {
		t.Fatalf("expected backend velocity mirrored, got %v", ctrl.Velocity)
	}
}

func TestVelocityFeedbackOverwritesStaleValues(t *testing.T) {
	world := ecs.NewWorld()
	em := entities.NewEntityManager(&world)
	backend := physics.NewSandbox(mgl32.Vec3{})

	char, _ := em.SpawnCharacter(config.DynamicImpulse, characterShape(), backend)
	em.Controllers.Get(char.Body).Velocity = mgl32.Vec3{9, 9, 9}

	sys := NewVelocityFeedback(&world, backend, logger.NewNop(), &Desync{})
	sys.Initialize(&world)
	sys.Update(&world)

	if got := em.Controllers.Get(char.Body).Velocity; got != (mgl32.Vec3{}) {
		t.Fatalf("stale velocity must be overwritten, got %v", got)
	}
}

func TestStepAdvancesBackend(t *testing.T) {
	world := ecs.NewWorld()
	em := entities.NewEntityManager(&world)
	backend := physics.NewSandbox(mgl32.Vec3{0, -10, 0})

	char, _ := em.SpawnCharacter(config.DynamicImpulse, characterShape(), backend)
	handle := em.Dynamic.Get(char.Body)

	sys := NewStep(backend, 60)
	sys.Update(&world)

	v, _ := backend.LinearVelocity(handle.ID)
	if v.Y() >= 0 {
		t.Fatalf("expected gravity to act over the step, got %v", v)
	}
}
