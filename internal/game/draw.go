package game

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/petalfield/internal/petals"
	"github.com/iburimskiy/petalfield/internal/render"
)

var whiteImage *ebiten.Image

// whiteSubImage is the 1x1 source texture the petal triangles sample from.
// Taking the inner pixel of a 3x3 image avoids bleeding at the edges.
func whiteSubImage() *ebiten.Image {
	if whiteImage == nil {
		whiteImage = ebiten.NewImage(3, 3)
		whiteImage.Fill(color.White)
	}
	return whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}

// drawPetals fills every petal's teardrop in a single DrawTriangles call.
func (g *Game) drawPetals(screen *ebiten.Image) {
	ps := g.field.Particles()
	if len(ps) == 0 {
		return
	}

	vs, is := g.vertices[:0], g.indices[:0]
	for i := range ps {
		start := len(vs)
		vs, is = appendPetal(vs, is, &ps[i])

		c := g.palette.RGBA(ps[i].Color, ps[i].Alpha)
		for j := start; j < len(vs); j++ {
			vs[j].SrcX, vs[j].SrcY = 1, 1
			vs[j].ColorR = float32(c.R) / 0xff
			vs[j].ColorG = float32(c.G) / 0xff
			vs[j].ColorB = float32(c.B) / 0xff
			vs[j].ColorA = float32(c.A) / 0xff
		}
	}
	g.vertices, g.indices = vs, is

	op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
	screen.DrawTriangles(vs, is, whiteSubImage(), op)
}

func appendPetal(vs []ebiten.Vertex, is []uint16, p *petals.Particle) ([]ebiten.Vertex, []uint16) {
	leaf := render.Outline(p)

	var path vector.Path
	start := leaf.Start()
	path.MoveTo(start.X, start.Y)
	for seg := 0; seg < 2; seg++ {
		c1, c2, end := leaf.Segment(seg)
		path.CubicTo(c1.X, c1.Y, c2.X, c2.Y, end.X, end.Y)
	}
	path.Close()
	return path.AppendVerticesAndIndicesForFilling(vs, is)
}
