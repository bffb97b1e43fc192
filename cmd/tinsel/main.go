package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/tinsel/audio"
	"github.com/lixenwraith/tinsel/config"
	"github.com/lixenwraith/tinsel/engine"
	"github.com/lixenwraith/tinsel/raster"
	"github.com/lixenwraith/tinsel/scene"
	"github.com/lixenwraith/tinsel/screen"
	"github.com/lixenwraith/tinsel/terminal"
)

var (
	configFlag      = flag.String("config", "", "TOML config file")
	writeConfigFlag = flag.String("write-config", "", "write the effective config to this path and exit")
	fpsFlag         = flag.Int("fps", 30, "frames per second (1-120)")
	colorFlag       = flag.String("color", "auto", "color mode: auto, truecolor, 256")
	backendFlag     = flag.String("backend", config.BackendANSI, "output backend: ansi, tcell")
	soundFlag       = flag.Bool("sound", false, "ring a chime when the star peaks")
	debugFlag       = flag.Bool("debug", false, "write logs to logs/tinsel.log")
	noHUDFlag       = flag.Bool("no-hud", false, "start with the HUD hidden")
	seedFlag        = flag.Uint64("seed", 0, "scene seed, 0 picks one from the clock")
)

// display is what main needs beyond the engine's view of a terminal
type display interface {
	engine.Display
	Init() error
	Fini()
}

func main() {
	// Panic Recovery: ensure the terminal is usable even if rendering crashes
	defer func() {
		if r := recover(); r != nil {
			crash("TINSEL CRASHED", r)
		}
	}()

	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tinsel: %v\n", err)
		os.Exit(1)
	}
}

func crash(what string, r any) {
	terminal.EmergencyReset(os.Stdout)
	// \r\n keeps the trace readable if raw mode survived the reset
	fmt.Fprintf(os.Stderr, "\r\n\x1b[31m%s: %v\x1b[0m\r\n", what, r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
	os.Exit(1)
}

// guard runs fn with the crash handler, errgroup goroutines do not inherit main's recover
func guard(what string, fn func() error) func() error {
	return func() error {
		defer func() {
			if r := recover(); r != nil {
				crash(what, r)
			}
		}()
		return fn()
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(*configFlag)
	if err != nil {
		return cfg, err
	}

	// Only flags given explicitly override the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "fps":
			cfg.FPS = *fpsFlag
		case "color":
			cfg.Color = *colorFlag
		case "backend":
			cfg.Backend = *backendFlag
		case "sound":
			cfg.Sound = *soundFlag
		case "no-hud":
			cfg.HUD = !*noHUDFlag
		case "seed":
			cfg.Seed = *seedFlag
		}
	})
	return cfg, cfg.Validate()
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if *writeConfigFlag != "" {
		return config.Save(*writeConfigFlag, cfg)
	}

	logFile, logger := setupLogging(*debugFlag)
	if logFile != nil {
		defer logFile.Close()
	}

	mode, err := cfg.ColorMode()
	if err != nil {
		return err
	}

	disp, err := newDisplay(cfg.Backend, mode)
	if err != nil {
		return err
	}
	if err := disp.Init(); err != nil {
		return fmt.Errorf("init %s display: %w", cfg.Backend, err)
	}
	// Normal exit terminal cleanup
	defer disp.Fini()

	cols, rows := disp.Size()
	comp, err := buildScene(cfg, cols, rows)
	if err != nil {
		return err
	}

	var chime engine.Chime
	if cfg.Sound {
		c := audio.NewChimer(0.4)
		if err := c.Start(); err != nil {
			// Non-fatal, the scene runs without sound
			logger.Warn("audio unavailable", "err", err)
		} else {
			defer c.Close()
			chime = c
		}
	}

	loop := engine.New(disp, comp, engine.Options{
		FPS:    cfg.FPS,
		HUD:    cfg.HUD,
		Logger: logger,
		Chime:  chime,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(guard("RENDER LOOP CRASHED", func() error { return loop.Run(gctx) }))
	g.Go(guard("EVENT POLLER CRASHED", func() error { return loop.Pump(gctx) }))
	err = g.Wait()

	logger.Info("exit", "stats", loop.Stats().String())
	return err
}

func newDisplay(backend string, mode terminal.ColorMode) (display, error) {
	switch backend {
	case config.BackendTcell:
		s, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("tcell screen: %w", err)
		}
		return screen.New(s, mode), nil
	case config.BackendANSI:
		return terminal.New(mode), nil
	default:
		return nil, errors.New("unknown backend " + backend)
	}
}

// buildScene registers the four layers back to front
func buildScene(cfg config.Config, cols, rows int) (*raster.Compositor, error) {
	theme, err := cfg.SceneTheme()
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := func(stream uint64) *rand.Rand {
		return rand.New(rand.NewPCG(seed, seed^stream))
	}

	comp, err := raster.NewCompositor(cols, rows)
	if err != nil {
		return nil, fmt.Errorf("compositor %dx%d: %w", cols, rows, err)
	}

	tree := scene.NewTree(scene.TreeOptions{
		Scale:         cfg.TreeScale,
		RotationSpeed: cfg.RotationSpeed,
		AnimSpeed:     1,
		Theme:         theme,
	})

	layers := []struct {
		name     string
		layer    raster.Layer
		priority raster.Priority
		enabled  bool
	}{
		{"stars", scene.NewStarfield(scene.StarfieldOptions{
			Stars:  cfg.Stars,
			Layers: cfg.StarLayers,
			Speed:  cfg.ParallaxSpeed,
		}, rng(1)), raster.PriorityBackground, cfg.Layers.Stars},
		{"snow", scene.NewSnow(scene.SnowOptions{
			Flakes: cfg.Snowflakes,
			Speed:  cfg.SnowSpeed,
		}, rng(2)), raster.PriorityParticles, cfg.Layers.Snow},
		{"tree", tree, raster.PriorityScene, cfg.Layers.Tree},
		{"lights", scene.NewLights(scene.LightsOptions{
			Count:    cfg.TreeLights,
			Speed:    1,
			HueCycle: cfg.HueCycle,
		}, tree, rng(3)), raster.PriorityForeground, cfg.Layers.Lights},
	}

	for _, l := range layers {
		if err := comp.Register(l.name, l.layer, l.priority); err != nil {
			return nil, err
		}
		if err := comp.SetEnabled(l.name, l.enabled); err != nil {
			return nil, err
		}
	}
	return comp, nil
}
