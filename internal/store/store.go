// Package store provides the pattern storage interface and SQLite implementation.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/memory-stitch/internal/model"
)

// ErrNotFound is returned when no active pattern matches.
var ErrNotFound = errors.New("pattern not found")

// SaveParams holds parameters for storing a new memory and its pattern.
type SaveParams struct {
	Memory model.MemoryContent
	Record model.PatternRecord
}

// SupersedeParams holds parameters for replacing a pattern with a
// regenerated one.
type SupersedeParams struct {
	PatternID string
	Record    model.PatternRecord
}

// ListParams holds parameters for listing patterns.
type ListParams struct {
	GridSize int // 0 means any
	Limit    int
}

// RmParams holds parameters for deleting a pattern.
type RmParams struct {
	Identifier string
	Hard       bool
}

// Store defines the pattern storage interface.
type Store interface {
	// Save stores a memory and its first pattern version.
	Save(ctx context.Context, p SaveParams) (*model.SavedPattern, error)

	// Supersede stores a new pattern version for the same memory.
	Supersede(ctx context.Context, p SupersedeParams) (*model.SavedPattern, error)

	// Lookup finds the latest active pattern with the given identifier.
	Lookup(ctx context.Context, identifier string) (*model.SavedPattern, error)

	// List lists latest pattern versions, newest first.
	List(ctx context.Context, p ListParams) ([]model.SavedPattern, error)

	// All returns every latest active pattern version.
	All(ctx context.Context) ([]model.SavedPattern, error)

	// Rm soft-deletes (or hard-deletes) a pattern and its history.
	Rm(ctx context.Context, p RmParams) error

	// Close closes the store.
	Close() error
}
