package systems

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"stride/internal/config"
	"stride/internal/controller/components"
	"stride/internal/controller/entities"
	"stride/internal/events"
	"stride/internal/logger"
	"stride/internal/physics"
)

func characterShape() config.Character {
	return config.Character{
		Scale:      config.Vec3{X: 0.5, Y: 1.9, Z: 0.3},
		HeadScale:  0.3,
		Density:    200,
		StepOffset: 0.5,
	}
}

type kinematicFixture struct {
	world   ecs.World
	em      *entities.EntityManager
	backend *physics.Sandbox
	hub     *events.Hub
	desync  *Desync
	char    entities.Character
	sys     *KinematicTranslation
}

func newKinematicFixture(t *testing.T, minY float32) *kinematicFixture {
	t.Helper()
	f := &kinematicFixture{
		world:   ecs.NewWorld(),
		backend: physics.NewSandbox(mgl32.Vec3{0, -9.81, 0}),
		hub:     events.NewHub(),
		desync:  &Desync{},
	}
	f.em = entities.NewEntityManager(&f.world)

	char, err := f.em.SpawnCharacter(config.KinematicTranslation, characterShape(), f.backend)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	f.char = char

	f.sys = NewKinematicTranslation(&f.world, f.backend, f.hub, logger.NewNop(), f.desync, minY)
	f.sys.Initialize(&f.world)
	return f
}

func (f *kinematicFixture) place(t *testing.T, pos mgl32.Vec3) {
	t.Helper()
	handle := f.em.Kinematic.Get(f.char.Body)
	if err := f.backend.SetControllerPosition(handle.ID, pos); err != nil {
		t.Fatalf("place: %v", err)
	}
}

func (f *kinematicFixture) position(t *testing.T) mgl32.Vec3 {
	t.Helper()
	handle := f.em.Kinematic.Get(f.char.Body)
	pos, err := f.backend.ControllerPosition(handle.ID)
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	return pos
}

func TestKinematicSumsEventsWithoutClamp(t *testing.T) {
	f := newKinematicFixture(t, 1.45)
	f.place(t, mgl32.Vec3{0, 5, 0})

	ctrl := f.em.Controllers.Get(f.char.Body)
	ctrl.Jumping = true

	f.hub.Translations.Send(events.Translation{1, 0, 0})
	f.hub.Translations.Send(events.Translation{0, -2, 0})
	f.sys.Update(&f.world)

	if got := f.position(t); got != (mgl32.Vec3{1, 3, 0}) {
		t.Fatalf("expected (1,3,0), got %v", got)
	}
	if !ctrl.Jumping {
		t.Fatal("jumping must survive an unclamped move")
	}
}

func TestKinematicFloorClampClearsJumping(t *testing.T) {
	f := newKinematicFixture(t, 1.0)
	f.place(t, mgl32.Vec3{0, 0.5, 0})

	ctrl := f.em.Controllers.Get(f.char.Body)
	ctrl.Jumping = true

	f.hub.Translations.Send(events.Translation{0, -1, 0})
	f.sys.Update(&f.world)

	if got := f.position(t); got != (mgl32.Vec3{0, 1, 0}) {
		t.Fatalf("expected clamp to (0,1,0), got %v", got)
	}
	if ctrl.Jumping {
		t.Fatal("floor clamp must clear jumping")
	}
}

func TestKinematicTransformMatchesBackend(t *testing.T) {
	f := newKinematicFixture(t, 1.45)
	f.place(t, mgl32.Vec3{0, 5, 0})

	f.hub.Translations.Send(events.Translation{2, 0, 1})
	f.sys.Update(&f.world)

	tr := f.em.Transforms.Get(f.char.Body)
	if got := f.position(t); tr.Translation != got {
		t.Fatalf("transform %v diverged from backend %v", tr.Translation, got)
	}
}

func TestKinematicEventsConsumedAtMostOnce(t *testing.T) {
	f := newKinematicFixture(t, 1.45)
	f.place(t, mgl32.Vec3{0, 5, 0})

	f.hub.Translations.Send(events.Translation{1, 0, 0})
	f.sys.Update(&f.world)
	f.sys.Update(&f.world)

	if got := f.position(t); got != (mgl32.Vec3{1, 5, 0}) {
		t.Fatalf("second tick replayed events: %v", got)
	}
}

func TestKinematicDanglingHandleIsCountedAndSkipped(t *testing.T) {
	f := newKinematicFixture(t, 1.45)

	// An entity whose handle the backend never saw.
	ghost := f.world.NewEntity()
	f.em.Transforms.Add(ghost, &components.Transform{Rotation: mgl32.QuatIdent()})
	f.em.Controllers.Add(ghost, &components.CharacterController{})
	f.em.Bodies.Add(ghost, &components.BodyTag{})
	f.em.Kinematic.Add(ghost, &components.ControllerHandle{ID: physics.NewBodyID()})

	f.place(t, mgl32.Vec3{0, 5, 0})
	f.hub.Translations.Send(events.Translation{1, 0, 0})
	f.sys.Update(&f.world)

	if f.desync.Count() != 1 {
		t.Fatalf("expected 1 desync, got %d", f.desync.Count())
	}
	// The healthy character still moved.
	if got := f.position(t); got != (mgl32.Vec3{1, 5, 0}) {
		t.Fatalf("healthy entity must not be affected: %v", got)
	}
}
