package telemetry

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"stride/internal/config"
	"stride/internal/controller/entities"
	"stride/internal/logger"
	"stride/internal/physics"
)

func TestRecorderWritesOneSamplePerTick(t *testing.T) {
	world := ecs.NewWorld()
	em := entities.NewEntityManager(&world)
	backend := physics.NewSandbox(mgl32.Vec3{0, -9.81, 0})

	char, err := em.SpawnCharacter(config.KinematicTranslation, config.Character{
		Scale:     config.Vec3{X: 0.5, Y: 1.9, Z: 0.3},
		HeadScale: 0.3,
		Density:   200,
	}, backend)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}

	path := filepath.Join(t.TempDir(), "ticks.jsonl")
	rec, err := NewRecorder(config.Telemetry{Enabled: true, Path: path, Workers: 1}, em, char.Body, backend, logger.NewNop())
	if err != nil {
		t.Fatalf("recorder: %v", err)
	}
	rec.Initialize(&world)

	const ticks = 5
	for i := 0; i < ticks; i++ {
		rec.Update(&world)
	}
	rec.Finalize(&world)

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer file.Close()

	var samples []Sample
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var s Sample
		if err := json.Unmarshal(scanner.Bytes(), &s); err != nil {
			t.Fatalf("invalid sample line %q: %v", scanner.Text(), err)
		}
		samples = append(samples, s)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(samples) != ticks {
		t.Fatalf("expected %d samples, got %d", ticks, len(samples))
	}
	// Single worker keeps emission order.
	for i, s := range samples {
		if s.Tick != uint64(i+1) {
			t.Fatalf("expected tick %d at line %d, got %d", i+1, i, s.Tick)
		}
	}
	if samples[0].Position[1] == 0 {
		t.Fatal("sample must carry the spawn height")
	}
	if rec.Dropped() != 0 {
		t.Fatalf("unexpected drops: %d", rec.Dropped())
	}
}

func TestRecorderRequiresWritablePath(t *testing.T) {
	world := ecs.NewWorld()
	em := entities.NewEntityManager(&world)
	backend := physics.NewSandbox(mgl32.Vec3{})

	_, err := NewRecorder(config.Telemetry{Enabled: true, Path: "/nonexistent-dir/ticks.jsonl", Workers: 1}, em, ecs.Entity{}, backend, logger.NewNop())
	if err == nil {
		t.Fatal("expected error for unwritable path")
	}
}
