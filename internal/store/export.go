package store

import (
	"context"

	"github.com/rcliao/memory-stitch/internal/model"
)

// ExportAll returns the latest active pattern of every memory, with the
// memory content needed to regenerate it.
func (s *SQLiteStore) ExportAll(ctx context.Context) ([]model.SavedPattern, error) {
	return s.All(ctx)
}

// Import stores patterns from an export as new memories. Records are kept
// as exported, stale ones included; run a migration afterwards to refresh
// them.
func (s *SQLiteStore) Import(ctx context.Context, patterns []model.SavedPattern) (int, error) {
	imported := 0
	for _, p := range patterns {
		_, err := s.Save(ctx, SaveParams{
			Memory: p.Memory,
			Record: p.Record,
		})
		if err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
