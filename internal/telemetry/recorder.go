// Package telemetry records per-tick character state as JSON lines. The
// tick loop never blocks on I/O: encoding and writing run on an ants pool.
package telemetry

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mlange-42/ark/ecs"
	"github.com/panjf2000/ants/v2"

	"stride/internal/config"
	"stride/internal/controller/entities"
	"stride/internal/logger"
	"stride/internal/physics"
)

// Sample is one recorded tick.
type Sample struct {
	Tick     uint64     `json:"tick"`
	Position [3]float32 `json:"position"`
	Velocity [3]float32 `json:"velocity"`
	Jumping  bool       `json:"jumping"`
}

// Recorder snapshots the character after each step and hands the write to
// a worker pool. Samples that would block are dropped and counted rather
// than stalling the tick.
type Recorder struct {
	mapper  *entities.EntityManager
	body    ecs.Entity
	backend physics.Backend
	log     logger.Logger

	pool *ants.Pool

	mu      sync.Mutex
	out     *bufio.Writer
	file    *os.File
	tick    uint64
	dropped uint64
}

// NewRecorder opens the output file and spins up the worker pool.
func NewRecorder(cfg config.Telemetry, mapper *entities.EntityManager, body ecs.Entity, backend physics.Backend, log logger.Logger) (*Recorder, error) {
	file, err := os.Create(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open telemetry output: %w", err)
	}

	pool, err := ants.NewPool(
		cfg.Workers,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(p interface{}) {
			log.Error("telemetry worker panic", logger.Field{Key: "panic", Value: p})
		}),
	)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("telemetry pool: %w", err)
	}

	return &Recorder{
		mapper:  mapper,
		body:    body,
		backend: backend,
		log:     log,
		pool:    pool,
		out:     bufio.NewWriter(file),
		file:    file,
	}, nil
}

func (r *Recorder) Initialize(_ *ecs.World) {}

// Update snapshots the character and submits the encode+write. Runs after
// velocity feedback, so the sample carries this tick's post-step state.
func (r *Recorder) Update(_ *ecs.World) {
	r.tick++

	position, ok := r.position()
	if !ok {
		return
	}
	ctrl := r.mapper.Controllers.Get(r.body)

	sample := Sample{
		Tick:     r.tick,
		Position: position,
		Velocity: ctrl.Velocity,
		Jumping:  ctrl.Jumping,
	}

	err := r.pool.Submit(func() {
		line, err := json.Marshal(sample)
		if err != nil {
			r.log.Error("telemetry encode failed", logger.Field{Key: "error", Value: err})
			return
		}
		r.mu.Lock()
		defer r.mu.Unlock()
		r.out.Write(line)
		r.out.WriteByte('\n')
	})
	if err != nil {
		r.mu.Lock()
		r.dropped++
		r.mu.Unlock()
		if !errors.Is(err, ants.ErrPoolOverload) {
			r.log.Error("telemetry submit failed", logger.Field{Key: "error", Value: err})
		}
	}
}

// Finalize drains the pool and flushes the output file.
func (r *Recorder) Finalize(_ *ecs.World) {
	if err := r.pool.ReleaseTimeout(5 * time.Second); err != nil {
		r.log.Warn("telemetry pool did not drain", logger.Field{Key: "error", Value: err})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dropped > 0 {
		r.log.Warn("telemetry samples dropped", logger.Field{Key: "count", Value: r.dropped})
	}
	if err := r.out.Flush(); err != nil {
		r.log.Error("telemetry flush failed", logger.Field{Key: "error", Value: err})
	}
	if err := r.file.Close(); err != nil {
		r.log.Error("telemetry close failed", logger.Field{Key: "error", Value: err})
	}
}

// Dropped reports how many samples were discarded under backpressure.
func (r *Recorder) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

func (r *Recorder) position() ([3]float32, bool) {
	if r.mapper.Kinematic.HasAll(r.body) {
		handle := r.mapper.Kinematic.Get(r.body)
		pos, err := r.backend.ControllerPosition(handle.ID)
		if err != nil {
			return [3]float32{}, false
		}
		return pos, true
	}
	if r.mapper.Dynamic.HasAll(r.body) {
		handle := r.mapper.Dynamic.Get(r.body)
		pose, err := r.backend.GlobalPose(handle.ID)
		if err != nil {
			return [3]float32{}, false
		}
		return pose.Translation, true
	}
	return [3]float32{}, false
}
