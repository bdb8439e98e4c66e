// Package optical supplies grids read from photographs or typed by hand.
//
// Grid sources report either a Found grid with a confidence in [0, 1] or a
// Missing result with a reason. Transport failures are ordinary errors.
// Deciding what confidence is good enough belongs to the caller.
package optical

import (
	"fmt"
	"strings"

	"github.com/rcliao/memory-stitch/internal/model"
)

// Result is either Found or Missing.
type Result interface {
	isResult()
}

// Found carries a grid recovered by the source.
type Found struct {
	Grid       model.Grid `json:"grid"`
	Confidence float64    `json:"confidence"`
}

// Missing reports that the source ran but produced no grid.
type Missing struct {
	Reason string `json:"reason"`
}

func (Found) isResult()   {}
func (Missing) isResult() {}

// ParseRows reads a hand-entered grid. Each row holds one character per
// cell: '1', '#', 'x' or 'X' mark a stitch; '0', '.', '-' and '_' leave
// it blank. Surrounding whitespace and blank lines are ignored. The result
// must be n×n.
func ParseRows(rows []string, n int) (model.Grid, error) {
	var g model.Grid
	for _, row := range rows {
		row = strings.TrimSpace(row)
		if row == "" {
			continue
		}
		if len(row) != n {
			return nil, fmt.Errorf("row %d has %d cells, want %d", len(g)+1, len(row), n)
		}
		cells := make([]bool, n)
		for i := 0; i < len(row); i++ {
			switch row[i] {
			case '1', '#', 'x', 'X':
				cells[i] = true
			case '0', '.', '-', '_':
			default:
				return nil, fmt.Errorf("row %d: unexpected %q at column %d", len(g)+1, row[i], i+1)
			}
		}
		g = append(g, cells)
	}
	if len(g) != n {
		return nil, fmt.Errorf("got %d rows, want %d", len(g), n)
	}
	return g, nil
}

// Manual wraps a hand-entered grid as a full-confidence result.
func Manual(rows []string, n int) (Result, error) {
	g, err := ParseRows(rows, n)
	if err != nil {
		return nil, err
	}
	return Found{Grid: g, Confidence: 1}, nil
}
