package main

import (
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/go-gl/mathgl/mgl32"

	"stride/internal/config"
	"stride/internal/controller"
	"stride/internal/events"
	"stride/internal/logger"
	"stride/internal/physics"
)

var CLI struct {
	Strategy string        `arg:"" optional:"" help:"Controller strategy: kinematic-translation, dynamic-impulse or dynamic-force."`
	Config   string        `help:"Session configuration file." type:"existingfile" short:"c"`
	Duration time.Duration `help:"How long to run the demo. 0 runs until interrupted." default:"5s"`
	Debug    bool          `help:"Whether to enable debug logging."`
}

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

func main() {
	kong.Parse(&CLI,
		kong.Name("stride"),
		kong.Description("a character locomotion pipeline demo"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	cfg := config.Default()
	if CLI.Config != "" {
		loaded, err := config.Load(CLI.Config)
		if err != nil {
			writeError(err)
		}
		cfg = *loaded
	}
	if CLI.Strategy != "" {
		strategy, err := config.ParseStrategy(CLI.Strategy)
		if err != nil {
			writeError(err)
		}
		cfg.Strategy = strategy
	}
	if CLI.Debug {
		cfg.Logging = logger.DevelopmentConfig()
	}
	if err := cfg.Validate(); err != nil {
		writeError(err)
	}

	log, err := logger.NewZapLogger(cfg.Logging)
	if err != nil {
		writeError(err)
	}
	defer log.Sync()

	if err := run(&cfg, log); err != nil {
		log.Fatal("session failed", logger.Field{Key: "error", Value: err})
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	backend := physics.NewSandbox(cfg.Gravity.Vec())
	hub := events.NewHub()

	session, err := controller.NewSession(cfg, backend, hub, log)
	if err != nil {
		return err
	}

	// A loose crate in the scene, so dynamic setup has more than one body
	// to discover.
	if _, err := session.Mapper().SpawnProp(mgl32.Vec3{3, 2, 0}, mgl32.Vec3{0.25, 0.25, 0.25}, 100, backend); err != nil {
		return err
	}

	log.Info("session started",
		logger.Field{Key: "strategy", Value: string(cfg.Strategy)},
		logger.Field{Key: "tps", Value: cfg.TPS})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var deadline <-chan time.Time
	if CLI.Duration > 0 {
		deadline = time.After(CLI.Duration)
	}

	ticker := time.NewTicker(time.Duration(float64(time.Second) / cfg.TPS))
	defer ticker.Stop()

	tick := 0
loop:
	for {
		select {
		case <-sigChan:
			log.Info("shutdown signal received")
			break loop
		case <-deadline:
			break loop
		case <-ticker.C:
			script(hub, cfg, tick)
			session.Tick()
			tick++
		}
	}

	session.Finalize()

	body := session.Character().Body
	ctrl := session.Mapper().Controllers.Get(body)
	tr := session.Mapper().Transforms.Get(body)
	log.Info("session finished",
		logger.Field{Key: "ticks", Value: tick},
		logger.Field{Key: "position", Value: fmt.Sprintf("%v", tr.Translation)},
		logger.Field{Key: "velocity", Value: fmt.Sprintf("%v", ctrl.Velocity)},
		logger.Field{Key: "desyncs", Value: session.Desyncs()})
	return nil
}

// script feeds a canned walk into the hub: forward motion, a slow heading
// sweep and an occasional hop.
func script(hub *events.Hub, cfg *config.Config, tick int) {
	dt := float32(1.0 / cfg.TPS)

	switch cfg.Strategy {
	case config.KinematicTranslation:
		hub.Translations.Send(events.Translation{0, -2 * dt, 2 * dt})
		if tick > 0 && tick%120 == 0 {
			hub.Translations.Send(events.Translation{0, 1, 0})
		}
	case config.DynamicImpulse:
		if tick%30 == 0 {
			hub.Impulses.Send(events.Impulse{0, 0, 40})
		}
	case config.DynamicForce:
		hub.Forces.Send(events.Force{0, 0, 120})
	}

	yaw := float32(tick) * dt * 0.2
	hub.Yaws.Send(events.Yaw(yaw))
	hub.Pitches.Send(events.Pitch(0.2 * float32(math.Sin(float64(yaw)))))
	hub.Looks.Send(events.Look{
		float32(math.Sin(float64(yaw))), 0, float32(-math.Cos(float64(yaw))),
	})
}
