// Package migrate regenerates pattern records that were encoded under an
// obsolete scheme.
//
// Old grid bits are never reinterpreted. A stale record is rebuilt from
// the memory it was generated from, and the new record is stored as a new
// version superseding the old one.
package migrate

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rcliao/memory-stitch/internal/codec"
	"github.com/rcliao/memory-stitch/internal/model"
	"github.com/rcliao/memory-stitch/internal/store"
)

// DefaultLegacySizes lists grid sizes produced by retired schemes.
var DefaultLegacySizes = []int{16}

// DefaultConcurrency bounds how many records Run rebuilds at once.
const DefaultConcurrency = 4

// Store is the subset of the pattern store a migration needs.
type Store interface {
	All(ctx context.Context) ([]model.SavedPattern, error)
	Supersede(ctx context.Context, p store.SupersedeParams) (*model.SavedPattern, error)
}

// Report summarizes a batch run.
type Report struct {
	Scanned  int      `json:"scanned"`
	Migrated int      `json:"migrated"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// Migrator detects and rebuilds stale pattern records.
type Migrator struct {
	builder     *codec.Builder
	legacy      map[int]bool
	concurrency int
	logger      *zap.Logger
}

// New returns a migrator that rebuilds records with builder. A nil legacy
// list means DefaultLegacySizes.
func New(builder *codec.Builder, legacy []int, concurrency int, logger *zap.Logger) *Migrator {
	if legacy == nil {
		legacy = DefaultLegacySizes
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Migrator{
		builder:     builder,
		legacy:      make(map[int]bool, len(legacy)),
		concurrency: concurrency,
		logger:      logger,
	}
	for _, n := range legacy {
		m.legacy[n] = true
	}
	return m
}

// NeedsMigration reports whether rec must be regenerated: it has no
// identifier, its grid does not match its declared size, its declared
// size belongs to a retired scheme, or it was built for a grid size other
// than the current one.
func (m *Migrator) NeedsMigration(rec model.PatternRecord) bool {
	declared := rec.Scheme.GridSize
	switch {
	case rec.Identifier == "":
		return true
	case len(rec.Grid) != declared:
		return true
	case m.legacy[declared]:
		return true
	case declared != m.builder.Codec().Size():
		return true
	}
	return false
}

// Migrate rebuilds rec from the memory it was generated from.
func (m *Migrator) Migrate(rec model.PatternRecord, memory model.MemoryContent) (model.PatternRecord, error) {
	next, err := m.builder.Build(memory)
	if err != nil {
		return model.PatternRecord{}, fmt.Errorf("rebuild %q: %w", rec.Identifier, err)
	}
	return next, nil
}

// Run rebuilds every stale pattern in s and stores each result as a new
// version. Failures on single records are counted in the report and do
// not stop the batch; only a failure to list the store or a cancelled
// context is returned as an error.
func (m *Migrator) Run(ctx context.Context, s Store) (*Report, error) {
	patterns, err := s.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patterns: %w", err)
	}

	report := &Report{Scanned: len(patterns)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)

	for _, p := range patterns {
		if !m.NeedsMigration(p.Record) {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := m.migrateOne(gctx, s, p)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				report.Errors = append(report.Errors, err.Error())
				m.logger.Warn("migration failed", zap.String("pattern_id", p.ID), zap.Error(err))
				return nil
			}
			report.Migrated++
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}
	m.logger.Info("migration finished",
		zap.Int("scanned", report.Scanned),
		zap.Int("migrated", report.Migrated),
		zap.Int("failed", report.Failed))
	return report, nil
}

// Plan lists the stored patterns that Run would rebuild.
func (m *Migrator) Plan(ctx context.Context, s Store) ([]model.SavedPattern, error) {
	patterns, err := s.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patterns: %w", err)
	}
	var stale []model.SavedPattern
	for _, p := range patterns {
		if m.NeedsMigration(p.Record) {
			stale = append(stale, p)
		}
	}
	return stale, nil
}

func (m *Migrator) migrateOne(ctx context.Context, s Store, p model.SavedPattern) error {
	rec, err := m.Migrate(p.Record, p.Memory)
	if err != nil {
		return fmt.Errorf("%s: %w", p.ID, err)
	}
	saved, err := s.Supersede(ctx, store.SupersedeParams{PatternID: p.ID, Record: rec})
	if err != nil {
		return fmt.Errorf("%s: %w", p.ID, err)
	}
	m.logger.Debug("pattern migrated",
		zap.String("pattern_id", p.ID),
		zap.String("new_id", saved.ID),
		zap.Int("from_grid_size", p.Record.Scheme.GridSize),
		zap.String("identifier", rec.Identifier))
	return nil
}
