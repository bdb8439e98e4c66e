package store

import (
	"context"

	"github.com/rcliao/memory-stitch/internal/model"
)

// SearchParams holds parameters for searching saved memories.
type SearchParams struct {
	Query string
	Limit int
}

// Search finds patterns whose memory title or body contains the query
// substring. Only the latest active version of each pattern is returned.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]model.SavedPattern, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	like := "%" + p.Query + "%"
	return s.query(ctx,
		`SELECT `+patternColumns+latestFrom+`
		   AND (m.title LIKE ? OR m.body LIKE ? OR p.identifier LIKE ?)
		 ORDER BY p.id DESC
		 LIMIT ?`,
		like, like, like, limit)
}
