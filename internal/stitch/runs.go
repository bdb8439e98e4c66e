// Package stitch converts pattern grids into continuous diagonal strokes
// and exportable vector descriptions.
package stitch

import (
	"errors"
	"fmt"

	"github.com/rcliao/memory-stitch/internal/model"
)

// ErrNotSquare is returned for grids that are ragged or not N×N.
var ErrNotSquare = errors.New("grid is not square")

// family is one diagonal orientation and its column step.
type family struct {
	dir     model.Direction
	colStep int
}

var families = []family{
	{model.Descending, 1},
	{model.Ascending, -1},
}

// ExtractRuns covers every true, non-excluded cell of g with maximal
// diagonal runs, once per family: all descending runs first, then all
// ascending runs. Each cell lies in exactly one run of each family.
//
// Cells are scanned row-major and runs only extend forward (row+1), so the
// first unvisited cell met on a diagonal is always the run's true start.
func ExtractRuns(g model.Grid, excluded model.CellSet) ([]model.DiagonalRun, error) {
	if !g.IsSquare() {
		return nil, fmt.Errorf("%w: %d rows", ErrNotSquare, len(g))
	}

	var runs []model.DiagonalRun
	for _, f := range families {
		runs = append(runs, extractFamily(g, excluded, f)...)
	}
	return runs, nil
}

func extractFamily(g model.Grid, excluded model.CellSet, f family) []model.DiagonalRun {
	n := len(g)
	usable := func(r, c int) bool {
		return r >= 0 && r < n && c >= 0 && c < n && g[r][c] && !excluded[model.Cell{Row: r, Col: c}]
	}

	visited := make(model.CellSet)
	var runs []model.DiagonalRun
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			start := model.Cell{Row: r, Col: c}
			if !usable(r, c) || visited[start] {
				continue
			}
			visited[start] = true
			end := start
			for usable(end.Row+1, end.Col+f.colStep) {
				end = model.Cell{Row: end.Row + 1, Col: end.Col + f.colStep}
				visited[end] = true
			}
			runs = append(runs, model.DiagonalRun{Start: start, End: end, Direction: f.dir})
		}
	}
	return runs
}

// Stats summarises how much a run list saves over one stroke per cell.
type Stats struct {
	Cells     int `json:"cells"`
	Runs      int `json:"runs"`
	NaiveRuns int `json:"naive_runs"`
}

// Summarize counts marked cells and runs. NaiveRuns is two strokes per
// cell, one for each arm of its cross.
func Summarize(g model.Grid, runs []model.DiagonalRun) Stats {
	cells := g.Count()
	return Stats{Cells: cells, Runs: len(runs), NaiveRuns: 2 * cells}
}
