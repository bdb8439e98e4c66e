package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath         string        `json:"db_path"`
	DBSizeBytes    int64         `json:"db_size_bytes"`
	Memories       int           `json:"memories"`
	Images         int           `json:"images"`
	TotalPatterns  int           `json:"total_patterns"`
	ActivePatterns int           `json:"active_patterns"`
	Schemes        []SchemeStats `json:"schemes"`
}

// SchemeStats holds per-grid-size counts of active patterns.
type SchemeStats struct {
	GridSize int `json:"grid_size"`
	Count    int `json:"count"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories`).Scan(&st.Memories)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memory_images`).Scan(&st.Images)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM patterns`).Scan(&st.TotalPatterns)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*)`+latestFrom).Scan(&st.ActivePatterns)

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.grid_size, COUNT(*) AS cnt`+latestFrom+`
		GROUP BY p.grid_size ORDER BY cnt DESC`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var sc SchemeStats
		rows.Scan(&sc.GridSize, &sc.Count)
		st.Schemes = append(st.Schemes, sc)
	}

	return st, nil
}
