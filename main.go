package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/iburimskiy/petalfield/internal/config"
	"github.com/iburimskiy/petalfield/internal/game"
	"github.com/iburimskiy/petalfield/internal/loop"
	"github.com/iburimskiy/petalfield/internal/petals"
	"github.com/iburimskiy/petalfield/internal/term"
	"github.com/iburimskiy/petalfield/internal/trace"
)

type options struct {
	configPath string
	mode       string
	seed       int64
	frames     uint64
	fast       bool
	tracePath  string
	traceEvery int
	audioPath  string
	logLevel   string
	logFile    string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to config.yaml (empty = use defaults)")
	flag.StringVar(&opts.mode, "mode", "window", "Renderer: window, term or headless")
	flag.Int64Var(&opts.seed, "seed", 0, "RNG seed (0 = time-based)")
	flag.Uint64Var(&opts.frames, "frames", 0, "Stop after N frames in term/headless mode (0 = unlimited)")
	flag.BoolVar(&opts.fast, "fast", false, "Headless: step as fast as possible instead of at window.tps")
	flag.StringVar(&opts.tracePath, "trace", "", "Write petal trajectories to this CSV file")
	flag.IntVar(&opts.traceEvery, "trace-every", 1, "Record every N-th frame")
	flag.StringVar(&opts.audioPath, "audio", "", "Ambient track (wav, mp3, flac) whose loudness stirs the wind")
	flag.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (empty = config)")
	flag.StringVar(&opts.logFile, "log-file", "", "Write logs to this file instead of stderr")
	flag.Parse()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, closeLog, err := newLogger(cfg, opts)
	if err != nil {
		slog.Error("failed to set up logging", "error", err)
		os.Exit(1)
	}
	defer closeLog()
	slog.SetDefault(logger)

	if err := run(cfg, opts, logger); err != nil {
		logger.Error("petalfield stopped", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config, opts options) (*slog.Logger, func(), error) {
	levelName := cfg.Log.Level
	if opts.logLevel != "" {
		levelName = opts.logLevel
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		return nil, nil, fmt.Errorf("log level %q: %w", levelName, err)
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case opts.logFile != "":
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	case opts.mode == "term":
		// the terminal belongs to the renderer
		w = io.Discard
	}

	if opts.mode == "headless" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), closeFn, nil
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts)), closeFn, nil
}

func fieldParams(cfg *config.Config) petals.Params {
	p := petals.DefaultParams()
	p.Breakpoint = cfg.Field.Breakpoint
	p.NarrowCount = cfg.Field.NarrowCount
	p.WideCount = cfg.Field.WideCount
	p.Buoyancy = cfg.Field.Buoyancy
	p.TopClamp = cfg.Field.TopClamp
	p.PaletteSize = len(cfg.Palette)
	p.MaxBoost = cfg.Audio.MaxBoost
	return p
}

func run(cfg *config.Config, opts options, logger *slog.Logger) error {
	seed := opts.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	field := petals.New(fieldParams(cfg), cfg.Window.Width, cfg.Window.Height, rng)

	rec, err := trace.Create(opts.tracePath, opts.traceEvery)
	if err != nil {
		return err
	}
	defer func() {
		if err := rec.Close(); err != nil {
			logger.Warn("closing trace", "error", err)
		}
	}()

	logger.Info("starting petal field",
		"mode", opts.mode,
		"seed", seed,
		"width", cfg.Window.Width,
		"height", cfg.Window.Height,
		"target", field.Target(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch opts.mode {
	case "window":
		return runWindow(ctx, cfg, opts, field, rec, logger)
	case "term":
		return runTerm(ctx, cfg, opts, field, rec, logger)
	case "headless":
		return runHeadless(ctx, cfg, opts, field, rec, logger)
	default:
		return fmt.Errorf("unknown mode %q", opts.mode)
	}
}

func runWindow(ctx context.Context, cfg *config.Config, opts options, field *petals.Field, rec *trace.Recorder, logger *slog.Logger) error {
	g := game.New(cfg, field, logger)
	g.OnStep(rec.Record)

	if opts.audioPath != "" {
		if err := g.LoadTrack(opts.audioPath); err != nil {
			// non-fatal, the petals drift without it
			logger.Warn("ambient track not loaded", "error", err)
		}
	}

	go func() {
		<-ctx.Done()
		g.Stop()
	}()
	return g.Run()
}

func runTerm(ctx context.Context, cfg *config.Config, opts options, field *petals.Field, rec *trace.Recorder, logger *slog.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer screen.Fini()

	r := term.New(screen, field, cfg, logger)
	r.OnStep(rec.Record)
	r.SetMaxFrames(opts.frames)

	return r.Run(ctx)
}

func runHeadless(ctx context.Context, cfg *config.Config, opts options, field *petals.Field, rec *trace.Recorder, logger *slog.Logger) error {
	l := loop.New(cfg.Window.TPS)
	if opts.fast {
		l.Interval = time.Microsecond
	}
	l.MaxFrames = opts.frames
	statsEvery := uint64(cfg.Window.TPS) * 10

	start := time.Now()
	err := l.Run(ctx, func(frame uint64) error {
		field.Advance()
		if err := rec.Record(field.Frame(), field.Particles()); err != nil {
			return err
		}
		if field.Frame()%statsEvery == 0 {
			logStats(logger, "field stats", field)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logStats(logger, "headless run finished", field,
		"elapsed", time.Since(start).Round(time.Millisecond),
		"trace_rows", rec.Rows(),
	)
	return nil
}

func logStats(logger *slog.Logger, msg string, field *petals.Field, extra ...any) {
	s := field.Stats()
	args := []any{
		"frame", field.Frame(),
		"petals", s.Count,
		"mean_speed", s.MeanSpeed,
		"mean_drift", s.MeanDrift,
		"mean_age", s.MeanAge,
	}
	logger.Info(msg, append(args, extra...)...)
}
