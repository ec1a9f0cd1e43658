package systems

import (
	"github.com/mlange-42/ark/ecs"

	"stride/internal/physics"
)

// Step advances the physics backend by one fixed tick. Its position in the
// schedule is the boundary between pre-step authoring and post-step
// feedback.
type Step struct {
	backend physics.Backend
	dt      float32
}

// NewStep creates the step system with a fixed timestep of 1/tps seconds.
func NewStep(backend physics.Backend, tps float64) *Step {
	return &Step{backend: backend, dt: float32(1.0 / tps)}
}

func (s *Step) Initialize(_ *ecs.World) {}

func (s *Step) Update(_ *ecs.World) {
	s.backend.Step(s.dt)
}

func (s *Step) Finalize(_ *ecs.World) {}
