package optical

import (
	"fmt"
	"sort"

	"github.com/rcliao/memory-stitch/internal/model"
)

// Threshold bounds for classifying cell darkness ratios.
const (
	DefaultThreshold = 0.15
	MinThreshold     = 0.10
	MaxThreshold     = 0.50
)

// Threshold picks the cut between stitched and blank cells: the midpoint of
// the widest gap between sorted scores, clamped to [MinThreshold,
// MaxThreshold]. With fewer than two scores it returns DefaultThreshold.
func Threshold(scores [][]float64) float64 {
	var all []float64
	for _, row := range scores {
		all = append(all, row...)
	}
	sort.Float64s(all)

	threshold := DefaultThreshold
	best := 0.0
	for i := 0; i+1 < len(all); i++ {
		if gap := all[i+1] - all[i]; gap > best {
			best = gap
			threshold = (all[i] + all[i+1]) / 2
		}
	}
	return min(max(threshold, MinThreshold), MaxThreshold)
}

// Classify turns an n×n matrix of dark-pixel ratios into a grid using
// Threshold. A cell is stitched when its score is strictly above the cut.
// Confidence is the share of cells whose score sits at least a tenth away
// from the cut.
func Classify(scores [][]float64) (Found, error) {
	n := len(scores)
	for i, row := range scores {
		if len(row) != n {
			return Found{}, fmt.Errorf("score row %d has %d cells, want %d", i, len(row), n)
		}
	}

	cut := Threshold(scores)
	g := model.NewGrid(n)
	decisive := 0
	for r, row := range scores {
		for c, s := range row {
			g[r][c] = s > cut
			if s-cut >= 0.1 || cut-s >= 0.1 {
				decisive++
			}
		}
	}

	conf := 0.0
	if n > 0 {
		conf = float64(decisive) / float64(n*n)
	}
	return Found{Grid: g, Confidence: conf}, nil
}
