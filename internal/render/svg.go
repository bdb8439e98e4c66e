// Package render draws stitch descriptions as SVG documents or PNG images.
//
// Corner glyphs are drawn the same way in both formats: the cross as two
// diagonals, the square as an outline, the circle and triangle filled.
package render

import (
	"bytes"
	"fmt"
	"html"
	"strconv"

	"github.com/rcliao/memory-stitch/internal/stitch"
)

// StrokeRatio is the stroke width as a fraction of the cell size.
const StrokeRatio = 0.2

// glyphInset keeps glyph strokes inside their cell.
const glyphInset = 0.15

// SVG renders d as a standalone SVG document.
func SVG(d stitch.Description) []byte {
	var b bytes.Buffer
	stroke := d.CellSize * StrokeRatio

	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		num(d.Width), num(d.Height), num(d.Width), num(d.Height))
	if d.Label != "" {
		fmt.Fprintf(&b, "  <title>%s</title>\n", html.EscapeString(d.Label))
	}
	fmt.Fprintf(&b, `  <rect width="%s" height="%s" fill="white"/>`+"\n", num(d.Width), num(d.Height))
	fmt.Fprintf(&b, `  <g stroke="black" stroke-width="%s" stroke-linecap="round" fill="none">`+"\n", num(stroke))

	for _, p := range d.Primitives {
		switch p.Kind {
		case stitch.KindLine:
			fmt.Fprintf(&b, `    <line class="%s" x1="%s" y1="%s" x2="%s" y2="%s"/>`+"\n",
				p.Layer, num(p.From.X), num(p.From.Y), num(p.To.X), num(p.To.Y))
		case stitch.KindGlyph:
			writeGlyph(&b, p, d.CellSize)
		}
	}

	b.WriteString("  </g>\n</svg>\n")
	return b.Bytes()
}

func writeGlyph(b *bytes.Buffer, p stitch.Primitive, cell float64) {
	in := cell * glyphInset
	x0, y0 := p.From.X+in, p.From.Y+in
	x1, y1 := p.To.X-in, p.To.Y-in

	switch p.Shape {
	case stitch.ShapeCross:
		fmt.Fprintf(b, `    <path class="%s" d="M%s %sL%s %sM%s %sL%s %s"/>`+"\n", p.Layer,
			num(x0), num(y0), num(x1), num(y1), num(x1), num(y0), num(x0), num(y1))
	case stitch.ShapeSquare:
		fmt.Fprintf(b, `    <rect class="%s" x="%s" y="%s" width="%s" height="%s"/>`+"\n", p.Layer,
			num(x0), num(y0), num(x1-x0), num(y1-y0))
	case stitch.ShapeCircle:
		fmt.Fprintf(b, `    <circle class="%s" cx="%s" cy="%s" r="%s" fill="black"/>`+"\n", p.Layer,
			num((x0+x1)/2), num((y0+y1)/2), num((x1-x0)/2))
	case stitch.ShapeTriangle:
		fmt.Fprintf(b, `    <polygon class="%s" points="%s,%s %s,%s %s,%s" fill="black"/>`+"\n", p.Layer,
			num((x0+x1)/2), num(y0), num(x1), num(y1), num(x0), num(y1))
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
