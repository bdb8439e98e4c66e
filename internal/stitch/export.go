package stitch

import (
	"errors"
	"fmt"

	"github.com/rcliao/memory-stitch/internal/model"
)

// ErrSchemeMismatch is returned when a record's grid does not match its
// declared grid size.
var ErrSchemeMismatch = errors.New("grid does not match scheme")

// Kind distinguishes primitive types.
type Kind string

const (
	KindGlyph Kind = "glyph"
	KindLine  Kind = "line"
)

// Glyph shapes, one per corner.
const (
	ShapeCross    = "cross"
	ShapeSquare   = "square"
	ShapeCircle   = "circle"
	ShapeTriangle = "triangle"
)

// Layers group primitives for renderers.
const (
	LayerCorner = "corner"
	LayerBorder = "border"
)

// Point is a position in render units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Primitive is a drawable element. Lines run From→To. Glyphs fill the box
// with corners From (top-left) and To (bottom-right).
type Primitive struct {
	Kind  Kind   `json:"kind"`
	Layer string `json:"layer"`
	Shape string `json:"shape,omitempty"`
	From  Point  `json:"from"`
	To    Point  `json:"to"`
}

// Description is the flat vector form of a pattern.
type Description struct {
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	CellSize   float64     `json:"cell_size"`
	Primitives []Primitive `json:"primitives"`
	Label      string      `json:"label"`
}

// Count returns how many primitives of kind k the description holds.
func (d Description) Count(k Kind) int {
	n := 0
	for _, p := range d.Primitives {
		if p.Kind == k {
			n++
		}
	}
	return n
}

// cornerShapes follows model.Corners order: TL, TR, BR, BL.
var cornerShapes = []string{ShapeCross, ShapeSquare, ShapeCircle, ShapeTriangle}

// Export builds the vector description of rec: four corner glyphs, four
// border connectors in the one-cell margin, then one line per diagonal run.
// Grid cell (r, c) occupies [(c+1)s, (c+2)s) × [(r+1)s, (r+2)s) for cell
// size s. The output depends only on rec.
func Export(rec model.PatternRecord) (Description, error) {
	n := rec.Scheme.GridSize
	if len(rec.Grid) != n || !rec.Grid.IsSquare() {
		return Description{}, fmt.Errorf("%w: %d rows, declared %d", ErrSchemeMismatch, len(rec.Grid), n)
	}
	if rec.Scheme.CellSize <= 0 {
		return Description{}, fmt.Errorf("%w: cell size %d", ErrSchemeMismatch, rec.Scheme.CellSize)
	}

	corners := model.Corners(n)
	runs, err := ExtractRuns(rec.Grid, cornerSet(corners))
	if err != nil {
		return Description{}, err
	}

	s := float64(rec.Scheme.CellSize)
	side := float64(n+2) * s
	d := Description{
		Width:      side,
		Height:     side,
		CellSize:   s,
		Primitives: make([]Primitive, 0, 8+len(runs)),
		Label:      rec.Identifier,
	}

	for i, c := range corners {
		d.Primitives = append(d.Primitives, Primitive{
			Kind:  KindGlyph,
			Layer: LayerCorner,
			Shape: cornerShapes[i],
			From:  cellOrigin(c.Row, c.Col, s),
			To:    cellOrigin(c.Row+1, c.Col+1, s),
		})
	}

	d.Primitives = append(d.Primitives, borders(n, s)...)

	for _, r := range runs {
		d.Primitives = append(d.Primitives, runLine(r, s))
	}
	return d, nil
}

func cornerSet(cells []model.Cell) model.CellSet {
	set := make(model.CellSet, len(cells))
	for _, c := range cells {
		set[c] = true
	}
	return set
}

// cellOrigin is the top-left point of grid cell (row, col) after the
// one-cell margin.
func cellOrigin(row, col int, s float64) Point {
	return Point{X: float64(col+1) * s, Y: float64(row+1) * s}
}

// borders connects adjacent corner glyphs along the margin centre line,
// leaving a quarter-cell gap next to each glyph.
func borders(n int, s float64) []Primitive {
	gap := s / 4
	near := s / 2               // margin centre line, top/left
	far := float64(n+1)*s + s/2 // margin centre line, bottom/right
	lo := 2*s + gap             // just past the leading glyph
	hi := float64(n)*s - gap    // just before the trailing glyph

	line := func(from, to Point) Primitive {
		return Primitive{Kind: KindLine, Layer: LayerBorder, From: from, To: to}
	}
	return []Primitive{
		line(Point{lo, near}, Point{hi, near}), // top
		line(Point{far, lo}, Point{far, hi}),   // right
		line(Point{hi, far}, Point{lo, far}),   // bottom
		line(Point{near, hi}, Point{near, lo}), // left
	}
}

// runLine draws a run corner to corner: top-left to bottom-right for
// descending runs, top-right to bottom-left for ascending ones.
func runLine(r model.DiagonalRun, s float64) Primitive {
	p := Primitive{Kind: KindLine, Layer: string(r.Direction)}
	if r.Direction == model.Descending {
		p.From = cellOrigin(r.Start.Row, r.Start.Col, s)
		p.To = cellOrigin(r.End.Row+1, r.End.Col+1, s)
	} else {
		p.From = cellOrigin(r.Start.Row, r.Start.Col+1, s)
		p.To = cellOrigin(r.End.Row+1, r.End.Col, s)
	}
	return p
}
