package petals

import "math"

// Particle is one petal. It has no identity beyond its slot in the pool.
type Particle struct {
	X, Y float64

	// Size is the long-axis width in pixels, Aspect the thin/long ratio.
	Size   float64
	Aspect float64

	VX, VY float64

	BaseWind  float64
	GustPhase float64
	GustFreq  float64
	GustAmp   float64

	Rot      float64
	RotSpeed float64

	WobPhase float64
	WobFreq  float64
	WobAmp   float64

	Color int // palette index
	Alpha float64

	Age float64
}

// HalfExtents returns the half-width along the long axis and the half-height
// across it, the two numbers the teardrop outline is built from.
func (p *Particle) HalfExtents() (hw, hh float64) {
	hw = p.Size / 2
	return hw, hw * p.Aspect
}

// Gust returns the current sinusoidal perturbation of the base wind.
func (p *Particle) Gust() float64 {
	return math.Sin(p.Age*p.GustFreq+p.GustPhase) * p.GustAmp
}

// Flutter returns the current vertical wobble term.
func (p *Particle) Flutter() float64 {
	return math.Sin(p.Age*p.WobFreq+p.WobPhase) * p.WobAmp
}

// spawn builds a petal with randomized parameters. fromRight places it just
// off the right edge; otherwise it lands anywhere for the initial fill.
func (f *Field) spawn(fromRight bool) Particle {
	r := f.rng
	size := 7 + r.Float64()*11
	baseWind := 0.3 + r.Float64()*2.7

	var x float64
	if fromRight {
		x = float64(f.width) + 20 + r.Float64()*120
	} else {
		x = r.Float64() * float64(f.width)
	}
	y := r.Float64() * float64(f.height) * 0.7

	p := Particle{
		X:      x,
		Y:      y,
		Size:   size,
		Aspect: 0.2 + r.Float64()*0.15,

		BaseWind:  baseWind,
		GustPhase: r.Float64() * math.Pi * 2,
		GustFreq:  0.004 + r.Float64()*0.008,
		GustAmp:   0.3 + r.Float64()*0.9,
	}
	if fromRight {
		p.VX = -baseWind * 0.5
	} else {
		p.VX = -baseWind * r.Float64()
	}

	p.Rot = r.Float64() * math.Pi * 2
	p.RotSpeed = (r.Float64() - 0.5) * 0.06

	p.WobPhase = r.Float64() * math.Pi * 2
	p.WobFreq = 0.018 + r.Float64()*0.028
	p.WobAmp = 0.4 + r.Float64()*1.4

	p.Color = int(r.Float64() * float64(f.params.PaletteSize))
	if p.Color >= f.params.PaletteSize {
		p.Color = f.params.PaletteSize - 1
	}
	p.Alpha = 0.45 + r.Float64()*0.45

	// offset so petals spawned together don't oscillate in sync
	p.Age = r.Float64() * 1000
	return p
}
