package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/rcliao/memory-stitch/internal/stitch"
)

// DefaultScale is the PNG pixels per description unit.
const DefaultScale = 4

// labelStrip is the height in pixels reserved below the pattern for the
// identifier caption.
const labelStrip = 20

// circleSegments approximates circle glyphs.
const circleSegments = 32

// PNGOptions controls raster output.
type PNGOptions struct {
	Scale float64 // pixels per unit; <= 0 means DefaultScale
	Label bool    // caption the image with the identifier
}

// Raster draws d onto a new image, black on white.
func Raster(d stitch.Description, opts PNGOptions) *image.RGBA {
	scale := opts.Scale
	if scale <= 0 {
		scale = DefaultScale
	}
	w := int(math.Ceil(d.Width * scale))
	h := int(math.Ceil(d.Height * scale))
	total := h
	caption := opts.Label && d.Label != ""
	if caption {
		total += labelStrip
	}

	img := image.NewRGBA(image.Rect(0, 0, w, total))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	r := &raster{
		z:     vector.NewRasterizer(w, h),
		dst:   img,
		scale: scale,
		half:  d.CellSize * StrokeRatio * scale / 2,
	}
	for _, p := range d.Primitives {
		switch p.Kind {
		case stitch.KindLine:
			r.stroke(p.From, p.To)
		case stitch.KindGlyph:
			r.glyph(p, d.CellSize)
		}
	}

	if caption {
		drawLabel(img, d.Label, h)
	}
	return img
}

// PNG encodes the raster of d to w.
func PNG(w io.Writer, d stitch.Description, opts PNGOptions) error {
	if err := png.Encode(w, Raster(d, opts)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

type raster struct {
	z     *vector.Rasterizer
	dst   draw.Image
	scale float64
	half  float64 // half stroke width in pixels
}

// fill draws one closed polygon. Each shape is rasterized on its own so
// overlapping shapes of opposite winding do not cancel out.
func (r *raster) fill(pts ...[2]float64) {
	b := r.dst.Bounds()
	r.z.Reset(r.z.Size().X, r.z.Size().Y)
	r.z.MoveTo(float32(pts[0][0]), float32(pts[0][1]))
	for _, p := range pts[1:] {
		r.z.LineTo(float32(p[0]), float32(p[1]))
	}
	r.z.ClosePath()
	r.z.Draw(r.dst, image.Rect(0, 0, r.z.Size().X, r.z.Size().Y).Intersect(b), image.Black, image.Point{})
}

func (r *raster) px(p stitch.Point) [2]float64 {
	return [2]float64{p.X * r.scale, p.Y * r.scale}
}

// stroke draws a line segment as a quad of the stroke width.
func (r *raster) stroke(from, to stitch.Point) {
	a, b := r.px(from), r.px(to)
	dx, dy := b[0]-a[0], b[1]-a[1]
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	// unit normal scaled to half the width, and a cap extension along the line
	nx, ny := -dy/l*r.half, dx/l*r.half
	ex, ey := dx/l*r.half, dy/l*r.half
	r.fill(
		[2]float64{a[0] - ex + nx, a[1] - ey + ny},
		[2]float64{b[0] + ex + nx, b[1] + ey + ny},
		[2]float64{b[0] + ex - nx, b[1] + ey - ny},
		[2]float64{a[0] - ex - nx, a[1] - ey - ny},
	)
}

func (r *raster) glyph(p stitch.Primitive, cell float64) {
	in := cell * glyphInset
	x0, y0 := p.From.X+in, p.From.Y+in
	x1, y1 := p.To.X-in, p.To.Y-in

	switch p.Shape {
	case stitch.ShapeCross:
		r.stroke(stitch.Point{X: x0, Y: y0}, stitch.Point{X: x1, Y: y1})
		r.stroke(stitch.Point{X: x1, Y: y0}, stitch.Point{X: x0, Y: y1})
	case stitch.ShapeSquare:
		tl, tr := stitch.Point{X: x0, Y: y0}, stitch.Point{X: x1, Y: y0}
		br, bl := stitch.Point{X: x1, Y: y1}, stitch.Point{X: x0, Y: y1}
		r.stroke(tl, tr)
		r.stroke(tr, br)
		r.stroke(br, bl)
		r.stroke(bl, tl)
	case stitch.ShapeCircle:
		cx, cy := (x0+x1)/2*r.scale, (y0+y1)/2*r.scale
		rad := (x1 - x0) / 2 * r.scale
		pts := make([][2]float64, circleSegments)
		for i := range pts {
			a := 2 * math.Pi * float64(i) / circleSegments
			pts[i] = [2]float64{cx + rad*math.Cos(a), cy + rad*math.Sin(a)}
		}
		r.fill(pts...)
	case stitch.ShapeTriangle:
		r.fill(
			r.px(stitch.Point{X: (x0 + x1) / 2, Y: y0}),
			r.px(stitch.Point{X: x1, Y: y1}),
			r.px(stitch.Point{X: x0, Y: y1}),
		)
	}
}

// drawLabel centres label in the strip starting at row top.
func drawLabel(img *image.RGBA, label string, top int) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
	}
	width := d.MeasureString(label)
	x := (fixed.I(img.Bounds().Dx()) - width) / 2
	if x < 0 {
		x = 0
	}
	m := basicfont.Face7x13.Metrics()
	y := fixed.I(top) + (fixed.I(labelStrip)+m.Ascent-m.Descent)/2
	d.Dot = fixed.Point26_6{X: x, Y: y}
	d.DrawString(label)
}
