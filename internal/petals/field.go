// Package petals simulates a pool of drifting leaf-shaped petals.
//
// The field is a pure simulation: it knows the viewport size and a random
// source, and advances every petal one frame per Advance call. Drawing and
// frame scheduling belong to the renderers.
package petals

import "math"

const (
	// Viewport breakpoint and the two pool tiers around it.
	DefaultBreakpoint  = 768
	DefaultNarrowCount = 20
	DefaultWideCount   = 38

	// Smoothing factors applied each frame toward the target velocity.
	smoothX = 0.025
	smoothY = 0.035

	minWind       = 0.15
	gravityScale  = 0.2
	flutterScale  = 0.07
	rotFromWind   = 0.008
	buoyancyStart = 0.62
	buoyancyMax   = 0.45

	// Recycle margins around the viewport.
	marginLeft   = 60
	marginTop    = 60
	marginBottom = 40
	marginRight  = 140
)

// Source is the random source the field draws from. *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Params are the tunables of a field.
type Params struct {
	Breakpoint  int
	NarrowCount int
	WideCount   int
	PaletteSize int

	// Buoyancy pushes petals up as they approach the bottom of the viewport.
	Buoyancy bool
	// TopClamp pins petals that drift above the top margin back to y=0.
	TopClamp bool

	// MaxBoost caps SetWindBoost.
	MaxBoost float64
}

// DefaultParams returns the stock field parameters.
func DefaultParams() Params {
	return Params{
		Breakpoint:  DefaultBreakpoint,
		NarrowCount: DefaultNarrowCount,
		WideCount:   DefaultWideCount,
		PaletteSize: 8,
		Buoyancy:    true,
		TopClamp:    true,
		MaxBoost:    1.5,
	}
}

// Field owns the petal pool and the viewport it lives in.
type Field struct {
	params Params
	rng    Source

	width, height int
	target        int

	particles []Particle
	boost     float64
	frame     uint64
}

// New creates a field sized to the viewport and fills it with the target
// number of petals scattered across the screen.
func New(params Params, width, height int, rng Source) *Field {
	if params.PaletteSize < 1 {
		params.PaletteSize = 1
	}
	if params.MaxBoost < 0 {
		params.MaxBoost = 0
	}
	f := &Field{params: params, rng: rng}
	f.Resize(width, height)

	f.particles = make([]Particle, 0, f.target)
	for i := 0; i < f.target; i++ {
		f.particles = append(f.particles, f.spawn(false))
	}
	return f
}

// TargetCount returns the pool size for a viewport width.
func (p Params) TargetCount(width int) int {
	n := p.WideCount
	if width < p.Breakpoint {
		n = p.NarrowCount
	}
	if n < 0 {
		return 0
	}
	return n
}

// Gravity is the downward drift for a given wind strength. It is inversely
// proportional to the wind, clamped below at minWind.
func Gravity(wind float64) float64 {
	return gravityScale / math.Max(minWind, wind)
}

// Resize records the new viewport and recomputes the target count. The pool
// itself is adjusted on the next Advance.
func (f *Field) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	f.width, f.height = width, height
	f.target = f.params.TargetCount(width)
}

// SetWindBoost scales every petal's gust amplitude by (1+b). b is clamped
// into [0, MaxBoost].
func (f *Field) SetWindBoost(b float64) {
	f.boost = math.Min(math.Max(b, 0), f.params.MaxBoost)
}

// WindBoost returns the current gust boost.
func (f *Field) WindBoost() float64 { return f.boost }

// Advance runs one frame: it brings the pool to the target size, then moves
// and recycles every petal.
func (f *Field) Advance() {
	for len(f.particles) < f.target {
		f.particles = append(f.particles, f.spawn(true))
	}
	if len(f.particles) > f.target {
		f.particles = f.particles[:f.target]
	}

	for i := range f.particles {
		f.update(&f.particles[i])
		f.recycle(&f.particles[i])
	}
	f.frame++
}

func (f *Field) update(p *Particle) {
	p.Age++

	gust := p.Gust() * (1 + f.boost)
	wind := math.Max(minWind, p.BaseWind+gust)
	gravity := Gravity(wind)
	flutter := p.Flutter()

	var buoyancy float64
	if f.params.Buoyancy {
		h := float64(f.height)
		threshold := h * buoyancyStart
		if p.Y > threshold && h > threshold {
			buoyancy = -((p.Y - threshold) / (h - threshold)) * buoyancyMax
		}
	}

	tvx := -wind
	tvy := gravity + flutter*flutterScale + buoyancy

	p.VX += (tvx - p.VX) * smoothX
	p.VY += (tvy - p.VY) * smoothY

	p.X += p.VX
	p.Y += p.VY

	p.Rot += p.RotSpeed + p.VX*rotFromWind
}

func (f *Field) recycle(p *Particle) {
	w, h := float64(f.width), float64(f.height)

	if p.X < -marginLeft || p.X > w+marginRight {
		p.X = w + 20 + f.rng.Float64()*80
		p.Y = f.rng.Float64() * h * 0.55
		p.Age = 0
	}
	if p.Y > h+marginBottom {
		p.X = w + 20 + f.rng.Float64()*80
		p.Y = f.rng.Float64() * h * 0.3
		p.Age = 0
	}
	if p.Y < -marginTop {
		if f.params.TopClamp {
			p.Y = 0
		} else {
			p.X = w + 20 + f.rng.Float64()*80
			p.Y = f.rng.Float64() * h * 0.55
			p.Age = 0
		}
	}
}

// Particles returns the live pool. The slice is owned by the field and is
// only valid until the next Advance.
func (f *Field) Particles() []Particle { return f.particles }

// Len returns the current pool size.
func (f *Field) Len() int { return len(f.particles) }

// Target returns the pool size the next Advance will settle on.
func (f *Field) Target() int { return f.target }

// Size returns the viewport dimensions.
func (f *Field) Size() (width, height int) { return f.width, f.height }

// Frame returns how many times Advance has run.
func (f *Field) Frame() uint64 { return f.frame }

// Params returns the field parameters.
func (f *Field) Params() Params { return f.params }
