// Package term previews a petal field in a terminal.
//
// The field keeps simulating in virtual pixels; each terminal cell covers
// CellWidth x CellHeight of them.
package term

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/iburimskiy/petalfield/internal/config"
	"github.com/iburimskiy/petalfield/internal/loop"
	"github.com/iburimskiy/petalfield/internal/petals"
	"github.com/iburimskiy/petalfield/internal/render"
)

// Renderer draws a field onto a tcell screen.
type Renderer struct {
	screen tcell.Screen
	field  *petals.Field
	log    *slog.Logger

	cellW, cellH int
	palette      render.Palette
	background   colorful.Color

	loop   *loop.Loop
	onStep func(frame uint64, ps []petals.Particle) error
}

// New builds a renderer on an initialized screen and sizes the field to it.
func New(screen tcell.Screen, field *petals.Field, cfg *config.Config, logger *slog.Logger) *Renderer {
	r := &Renderer{
		screen:     screen,
		field:      field,
		log:        logger,
		cellW:      cfg.Terminal.CellWidth,
		cellH:      cfg.Terminal.CellHeight,
		palette:    render.NewPalette(cfg.Colors()),
		background: cfg.BackgroundColor(),
		loop:       loop.New(cfg.Terminal.FPS),
	}
	r.resize()
	return r
}

// OnStep registers a hook called after every Advance.
func (r *Renderer) OnStep(fn func(frame uint64, ps []petals.Particle) error) {
	r.onStep = fn
}

// SetMaxFrames stops the run after n frames (0 = unlimited).
func (r *Renderer) SetMaxFrames(n uint64) { r.loop.MaxFrames = n }

// Stop ends Run after the current frame.
func (r *Renderer) Stop() { r.loop.Stop() }

// Run advances and draws the field every tick until ctx is done, Stop is
// called, or the user presses Esc, q or Ctrl-C.
func (r *Renderer) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go r.screen.ChannelEvents(events, quit)

	return r.loop.Run(ctx, func(frame uint64) error {
		// drain input without blocking the frame
	drain:
		for {
			select {
			case ev, ok := <-events:
				if !ok || !r.handle(ev) {
					r.loop.Stop()
					return nil
				}
			default:
				break drain
			}
		}

		r.field.Advance()
		if r.onStep != nil {
			if err := r.onStep(r.field.Frame(), r.field.Particles()); err != nil {
				return fmt.Errorf("step hook: %w", err)
			}
		}
		r.Draw()
		return nil
	})
}

func (r *Renderer) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
			return false
		}
	case *tcell.EventResize:
		r.screen.Sync()
		r.resize()
	}
	return true
}

func (r *Renderer) resize() {
	cols, rows := r.screen.Size()
	r.field.Resize(cols*r.cellW, rows*r.cellH)
	r.log.Debug("terminal resized", "cols", cols, "rows", rows, "target", r.field.Target())
}

// Cell maps a field position to a terminal cell. ok is false when the
// position is off screen.
func (r *Renderer) Cell(x, y float64) (col, row int, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	col = int(x) / r.cellW
	row = int(y) / r.cellH
	cols, rows := r.screen.Size()
	return col, row, col < cols && row < rows
}

// Draw clears the screen and plots every petal as one glyph.
func (r *Renderer) Draw() {
	bg := tcell.NewRGBColor(rgb(r.background))
	r.screen.SetStyle(tcell.StyleDefault.Background(bg))
	r.screen.Clear()

	ps := r.field.Particles()
	for i := range ps {
		p := &ps[i]
		col, row, ok := r.Cell(p.X, p.Y)
		if !ok {
			continue
		}
		c := render.Over(r.palette.At(p.Color), r.background, p.Alpha)
		style := tcell.StyleDefault.Background(bg).Foreground(tcell.NewRGBColor(rgb(c)))
		r.screen.SetContent(col, row, Glyph(p.Rot), nil, style)
	}
	r.screen.Show()
}

// Glyph picks the character closest to a petal's long axis.
func Glyph(rot float64) rune {
	a := math.Mod(rot, math.Pi)
	if a < 0 {
		a += math.Pi
	}
	// screen y grows downward, so a small positive angle leans like '\'
	switch idx := int(math.Floor(a/(math.Pi/4) + 0.5)); idx % 4 {
	case 0:
		return '-'
	case 1:
		return '\\'
	case 2:
		return '|'
	default:
		return '/'
	}
}

func rgb(c colorful.Color) (int32, int32, int32) {
	r, g, b := c.Clamped().RGB255()
	return int32(r), int32(g), int32(b)
}
