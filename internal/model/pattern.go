package model

// Grid is an N×N boolean matrix, row-major.
type Grid [][]bool

// NewGrid returns an all-false n×n grid.
func NewGrid(n int) Grid {
	g := make(Grid, n)
	for i := range g {
		g[i] = make([]bool, n)
	}
	return g
}

// Size returns the row count.
func (g Grid) Size() int { return len(g) }

// IsSquare reports whether every row has exactly len(g) cells.
func (g Grid) IsSquare() bool {
	for _, row := range g {
		if len(row) != len(g) {
			return false
		}
	}
	return true
}

// IsCorner reports whether (row, col) is one of the four reserved corners
// of an n×n grid.
func IsCorner(row, col, n int) bool {
	last := n - 1
	return (row == 0 || row == last) && (col == 0 || col == last)
}

// Clone returns a deep copy.
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for i, row := range g {
		out[i] = append([]bool(nil), row...)
	}
	return out
}

// Count returns the number of true cells.
func (g Grid) Count() int {
	n := 0
	for _, row := range g {
		for _, v := range row {
			if v {
				n++
			}
		}
	}
	return n
}

// Cell addresses a grid position.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// CellSet is a set of cells.
type CellSet map[Cell]bool

// Corners returns the four reserved corner cells of an n×n grid in the
// order top-left, top-right, bottom-right, bottom-left.
func Corners(n int) []Cell {
	last := n - 1
	return []Cell{{0, 0}, {0, last}, {last, last}, {last, 0}}
}

// Direction names a diagonal family.
type Direction string

const (
	// Descending runs step (row+1, col+1).
	Descending Direction = "descending"
	// Ascending runs step (row+1, col-1).
	Ascending Direction = "ascending"
)

// DiagonalRun is a maximal straight diagonal segment of true cells.
type DiagonalRun struct {
	Start     Cell      `json:"start"`
	End       Cell      `json:"end"`
	Direction Direction `json:"direction"`
}

// Len returns the number of cells covered by the run.
func (r DiagonalRun) Len() int { return r.End.Row - r.Start.Row + 1 }

// Cells lists the cells covered by the run from start to end.
func (r DiagonalRun) Cells() []Cell {
	step := 1
	if r.Direction == Ascending {
		step = -1
	}
	cells := make([]Cell, 0, r.Len())
	for i := 0; i < r.Len(); i++ {
		cells = append(cells, Cell{Row: r.Start.Row + i, Col: r.Start.Col + i*step})
	}
	return cells
}

// SchemeConfig is the encoding metadata stored with a pattern.
type SchemeConfig struct {
	GridSize int `json:"grid_size"`
	CellSize int `json:"cell_size"`
}

// PatternRecord is an encoded identifier with its scheme metadata.
// Records are never edited in place; stale ones are regenerated.
type PatternRecord struct {
	Grid       Grid         `json:"grid"`
	Identifier string       `json:"identifier,omitempty"`
	Scheme     SchemeConfig `json:"scheme"`
}
