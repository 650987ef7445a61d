package render

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette is a fixed list of petal colours indexed by Particle.Color.
type Palette struct {
	colors []colorful.Color
}

// NewPalette copies cs. An empty list falls back to a single white entry.
func NewPalette(cs []colorful.Color) Palette {
	if len(cs) == 0 {
		return Palette{colors: []colorful.Color{{R: 1, G: 1, B: 1}}}
	}
	out := make([]colorful.Color, len(cs))
	copy(out, cs)
	return Palette{colors: out}
}

// At returns colour i, wrapping out-of-range indices.
func (p Palette) At(i int) colorful.Color {
	n := len(p.colors)
	if n == 0 {
		return colorful.Color{R: 1, G: 1, B: 1}
	}
	i %= n
	if i < 0 {
		i += n
	}
	return p.colors[i]
}

// RGBA returns colour i at the given opacity as a non-premultiplied colour.
func (p Palette) RGBA(i int, alpha float64) color.NRGBA {
	r, g, b := p.At(i).RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(clamp01(alpha)*255 + 0.5)}
}

// Over composites fg at alpha over an opaque bg, for backends without
// alpha blending.
func Over(fg, bg colorful.Color, alpha float64) colorful.Color {
	return bg.BlendRgb(fg, clamp01(alpha)).Clamped()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
