package game

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/iburimskiy/petalfield/internal/audio"
	"github.com/iburimskiy/petalfield/internal/config"
	"github.com/iburimskiy/petalfield/internal/petals"
	"github.com/iburimskiy/petalfield/internal/render"
)

// Game is the ebiten front end of a petal field. Update advances the field
// once per tick and Draw rasterizes it across the whole window.
type Game struct {
	cfg    *config.Config
	field  *petals.Field
	log    *slog.Logger
	onStep func(frame uint64, ps []petals.Particle) error

	palette    render.Palette
	background color.Color

	// viewport as last reported by Layout
	width, height int

	// fill buffers reused across frames
	vertices []ebiten.Vertex
	indices  []uint16

	track *ambientTrack
	meter audio.Meter

	paused    bool
	showStats bool
	stopped   atomic.Bool
	started   time.Time
	lastErr   error
}

// New wraps field. The field's current size is taken as the initial viewport.
func New(cfg *config.Config, field *petals.Field, logger *slog.Logger) *Game {
	w, h := field.Size()
	return &Game{
		cfg:        cfg,
		field:      field,
		log:        logger,
		palette:    render.NewPalette(cfg.Colors()),
		background: cfg.BackgroundColor(),
		width:      w,
		height:     h,
		meter:      audio.Meter{Smoothing: cfg.Audio.Smoothing},
		started:    time.Now(),
	}
}

// OnStep registers a hook called after every Advance, used for tracing.
// A hook error ends the game.
func (g *Game) OnStep(fn func(frame uint64, ps []petals.Particle) error) {
	g.onStep = fn
}

// Stop ends the run loop at the next Update. Safe from any goroutine.
func (g *Game) Stop() { g.stopped.Store(true) }

// Run opens the window and blocks until the game stops.
func (g *Game) Run() error {
	ebiten.SetWindowSize(g.cfg.Window.Width, g.cfg.Window.Height)
	ebiten.SetWindowTitle(g.cfg.Window.Title)
	ebiten.SetTPS(g.cfg.Window.TPS)
	if g.cfg.Window.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	defer g.stopTrack()

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("running game: %w", err)
	}
	return nil
}

func (g *Game) Update() error {
	if g.stopped.Load() {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.togglePause()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.showStats = !g.showStats
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		if err := g.openTrackDialog(); err != nil {
			g.lastErr = err
			g.log.Warn("ambient track not loaded", "error", err)
		}
	}

	if g.paused {
		return nil
	}

	g.field.SetWindBoost(g.ambientBoost())
	g.field.Advance()

	if g.onStep != nil {
		if err := g.onStep(g.field.Frame(), g.field.Particles()); err != nil {
			return err
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.background)
	g.drawPetals(screen)

	if g.showStats {
		g.drawStats(screen)
	}
}

// Layout reports the window's own size back so the field always covers the
// full viewport, resizing the field whenever the window changes.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.field.Resize(outsideWidth, outsideHeight)
		g.log.Debug("viewport resized",
			"width", outsideWidth,
			"height", outsideHeight,
			"target", g.field.Target(),
		)
	}
	return outsideWidth, outsideHeight
}

func (g *Game) togglePause() {
	g.paused = !g.paused
	g.pauseTrack(g.paused)
}

func (g *Game) drawStats(screen *ebiten.Image) {
	s := g.field.Stats()
	lines := fmt.Sprintf(
		"%s  petals %d/%d  frame %d\nspeed %.2f±%.2f  drift %.3f±%.3f  boost %.2f",
		formatDuration(time.Since(g.started)),
		s.Count, g.field.Target(), g.field.Frame(),
		s.MeanSpeed, s.StdSpeed, s.MeanDrift, s.StdDrift,
		g.field.WindBoost(),
	)
	p := g.field.Params()
	lines += fmt.Sprintf("\nbreakpoint %d  counts %d/%d  buoyancy %v  top clamp %v",
		p.Breakpoint, p.NarrowCount, p.WideCount, p.Buoyancy, p.TopClamp)
	if g.track != nil {
		lines += "\nambient: " + g.track.name
	}
	if g.paused {
		lines += "\npaused"
	}
	if g.lastErr != nil {
		lines += "\nerror: " + g.lastErr.Error()
	}
	ebitenutil.DebugPrintAt(screen, lines, 12, 12)
}
