// Package render holds the backend-independent parts of drawing petals:
// outline geometry and palette colours.
package render

import (
	"math"

	"github.com/iburimskiy/petalfield/internal/petals"
)

// Point is a screen-space coordinate.
type Point struct {
	X, Y float32
}

// Leaf is a petal outline: a start tip followed by two cubic Bézier
// segments, each given as control1, control2, end.
type Leaf [7]Point

// Start returns the right tip where the outline begins.
func (l *Leaf) Start() Point { return l[0] }

// Segment returns the i-th cubic (0 = top edge, 1 = bottom edge).
func (l *Leaf) Segment(i int) (c1, c2, end Point) {
	base := 1 + i*3
	return l[base], l[base+1], l[base+2]
}

// Outline returns the rotated and translated teardrop for p. The shape has
// pointed ends and a slight belly, fuller toward the right tip.
func Outline(p *petals.Particle) Leaf {
	hw, hh := p.HalfExtents()
	local := [7][2]float64{
		{hw, 0},
		{hw * 0.45, -hh * 1.3}, {-hw * 0.45, -hh}, {-hw, 0},
		{-hw * 0.45, hh}, {hw * 0.45, hh * 1.3}, {hw, 0},
	}

	sin, cos := math.Sincos(p.Rot)
	var out Leaf
	for i, v := range local {
		out[i] = Point{
			X: float32(p.X + v[0]*cos - v[1]*sin),
			Y: float32(p.Y + v[0]*sin + v[1]*cos),
		}
	}
	return out
}
