package stitch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/rcliao/memory-stitch/internal/model"
)

func gridFrom(rows ...string) model.Grid {
	g := make(model.Grid, len(rows))
	for r, row := range rows {
		g[r] = make([]bool, len(row))
		for c, ch := range row {
			g[r][c] = ch == '#'
		}
	}
	return g
}

func byDirection(runs []model.DiagonalRun, d model.Direction) []model.DiagonalRun {
	var out []model.DiagonalRun
	for _, r := range runs {
		if r.Direction == d {
			out = append(out, r)
		}
	}
	return out
}

func TestExtractRuns_Empty(t *testing.T) {
	runs, err := ExtractRuns(model.NewGrid(7), nil)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestExtractRuns_SingleCell(t *testing.T) {
	g := gridFrom(
		"...",
		".#.",
		"...",
	)
	runs, err := ExtractRuns(g, nil)
	require.NoError(t, err)

	cell := model.Cell{Row: 1, Col: 1}
	assert.Equal(t, []model.DiagonalRun{
		{Start: cell, End: cell, Direction: model.Descending},
		{Start: cell, End: cell, Direction: model.Ascending},
	}, runs)
}

func TestExtractRuns_DescendingDiagonal(t *testing.T) {
	g := gridFrom(
		"#...",
		".#..",
		"..#.",
		"....",
	)
	runs, err := ExtractRuns(g, nil)
	require.NoError(t, err)

	desc := byDirection(runs, model.Descending)
	require.Len(t, desc, 1)
	assert.Equal(t, model.Cell{Row: 0, Col: 0}, desc[0].Start)
	assert.Equal(t, model.Cell{Row: 2, Col: 2}, desc[0].End)
	assert.Equal(t, 3, desc[0].Len())

	asc := byDirection(runs, model.Ascending)
	require.Len(t, asc, 3)
	for _, r := range asc {
		assert.Equal(t, r.Start, r.End)
	}
}

func TestExtractRuns_AscendingDiagonal(t *testing.T) {
	g := gridFrom(
		"..#",
		".#.",
		"#..",
	)
	runs, err := ExtractRuns(g, nil)
	require.NoError(t, err)

	asc := byDirection(runs, model.Ascending)
	require.Len(t, asc, 1)
	assert.Equal(t, model.DiagonalRun{
		Start:     model.Cell{Row: 0, Col: 2},
		End:       model.Cell{Row: 2, Col: 0},
		Direction: model.Ascending,
	}, asc[0])
	assert.Len(t, byDirection(runs, model.Descending), 3)
}

func TestExtractRuns_BrokenDiagonal(t *testing.T) {
	g := gridFrom(
		"#....",
		".#...",
		".....",
		"...#.",
		"....#",
	)
	runs, err := ExtractRuns(g, nil)
	require.NoError(t, err)

	desc := byDirection(runs, model.Descending)
	require.Len(t, desc, 2)
	assert.Equal(t, 2, desc[0].Len())
	assert.Equal(t, 2, desc[1].Len())
}

func TestExtractRuns_Excluded(t *testing.T) {
	g := gridFrom(
		"#..",
		".#.",
		"..#",
	)
	runs, err := ExtractRuns(g, model.CellSet{{Row: 1, Col: 1}: true})
	require.NoError(t, err)

	desc := byDirection(runs, model.Descending)
	require.Len(t, desc, 2, "an excluded cell splits the run")
	for _, r := range runs {
		for _, c := range r.Cells() {
			assert.NotEqual(t, model.Cell{Row: 1, Col: 1}, c)
		}
	}
}

func TestExtractRuns_NotSquare(t *testing.T) {
	_, err := ExtractRuns(gridFrom("##", "#"), nil)
	assert.ErrorIs(t, err, ErrNotSquare)

	_, err = ExtractRuns(gridFrom("###", "###"), nil)
	assert.ErrorIs(t, err, ErrNotSquare)
}

func TestSummarize(t *testing.T) {
	g := gridFrom(
		"#..",
		".#.",
		"..#",
	)
	runs, err := ExtractRuns(g, nil)
	require.NoError(t, err)
	assert.Equal(t, Stats{Cells: 3, Runs: 4, NaiveRuns: 6}, Summarize(g, runs))
}

// Every true cell is covered exactly once per family, and every covered
// cell is true.
func TestExtractRuns_CoverageProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 10).Draw(rt, "n")
		g := model.NewGrid(n)
		for r := 0; r < n; r++ {
			for c := 0; c < n; c++ {
				g[r][c] = rapid.Bool().Draw(rt, "cell")
			}
		}

		runs, err := ExtractRuns(g, nil)
		require.NoError(rt, err)

		for _, dir := range []model.Direction{model.Descending, model.Ascending} {
			seen := map[model.Cell]int{}
			for _, run := range byDirection(runs, dir) {
				for _, c := range run.Cells() {
					require.True(rt, g[c.Row][c.Col], "%s run covers false cell %v", dir, c)
					seen[c]++
				}
				// Maximal: the cell before the start is not usable.
				step := 1
				if dir == model.Ascending {
					step = -1
				}
				pr, pc := run.Start.Row-1, run.Start.Col-step
				if pr >= 0 && pc >= 0 && pc < n {
					assert.False(rt, g[pr][pc], "%s run starting at %v is not maximal", dir, run.Start)
				}
			}
			for r := 0; r < n; r++ {
				for c := 0; c < n; c++ {
					want := 0
					if g[r][c] {
						want = 1
					}
					assert.Equal(rt, want, seen[model.Cell{Row: r, Col: c}], "%s coverage of (%d,%d)", dir, r, c)
				}
			}
		}
	})
}
