package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rcliao/memory-stitch/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(id string, n int) model.PatternRecord {
	g := model.NewGrid(n)
	g[1][1] = true
	return model.PatternRecord{
		Grid:       g,
		Identifier: id,
		Scheme:     model.SchemeConfig{GridSize: n, CellSize: 10},
	}
}

func TestSaveAndLookup(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mem := model.MemoryContent{
		Title:  "Beach day",
		Body:   "We built a sandcastle",
		Images: [][]byte{{0x89, 'P', 'N', 'G'}, {0xFF, 0xD8}},
	}
	saved, err := s.Save(ctx, SaveParams{Memory: mem, Record: testRecord("EBF0XC", 7)})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.Version != 1 {
		t.Errorf("expected version 1, got %d", saved.Version)
	}
	if saved.ID == "" || saved.MemoryID == "" {
		t.Error("expected non-empty IDs")
	}

	got, err := s.Lookup(ctx, "ebf0xc")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.ID != saved.ID {
		t.Errorf("expected %s, got %s", saved.ID, got.ID)
	}
	if !reflect.DeepEqual(got.Memory, mem) {
		t.Errorf("memory not persisted correctly: %+v", got.Memory)
	}
	if !reflect.DeepEqual(got.Record, saved.Record) {
		t.Errorf("record not persisted correctly: %+v", got.Record)
	}
}

func TestLookupNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Lookup(context.Background(), "ZZZZZZ")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMissingIdentifierPersists(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	rec := testRecord("", 16)
	if _, err := s.Save(ctx, SaveParams{Memory: model.MemoryContent{Title: "old"}, Record: rec}); err != nil {
		t.Fatalf("save: %v", err)
	}

	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1, got %d", len(all))
	}
	if all[0].Record.Identifier != "" {
		t.Errorf("expected empty identifier, got %q", all[0].Record.Identifier)
	}
	if all[0].Record.Scheme.GridSize != 16 {
		t.Errorf("expected grid size 16, got %d", all[0].Record.Scheme.GridSize)
	}
}

func TestSupersede(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	old, _ := s.Save(ctx, SaveParams{Memory: model.MemoryContent{Title: "t"}, Record: testRecord("OLD000", 16)})
	next, err := s.Supersede(ctx, SupersedeParams{PatternID: old.ID, Record: testRecord("NEW000", 7)})
	if err != nil {
		t.Fatalf("supersede: %v", err)
	}
	if next.Version != 2 {
		t.Errorf("expected version 2, got %d", next.Version)
	}
	if next.Supersedes != old.ID {
		t.Errorf("expected supersedes %s, got %q", old.ID, next.Supersedes)
	}
	if next.MemoryID != old.MemoryID {
		t.Error("expected same memory")
	}
	if next.Memory.Title != "t" {
		t.Errorf("expected memory carried over, got %+v", next.Memory)
	}

	// Only the latest version is visible
	if _, err := s.Lookup(ctx, "OLD000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected superseded identifier to be gone, got %v", err)
	}
	if _, err := s.Lookup(ctx, "NEW000"); err != nil {
		t.Errorf("lookup new: %v", err)
	}

	all, _ := s.All(ctx)
	if len(all) != 1 {
		t.Fatalf("expected 1 latest pattern, got %d", len(all))
	}

	hist, err := s.History(ctx, old.MemoryID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 2 || hist[0].Version != 2 || hist[1].Version != 1 {
		t.Errorf("unexpected history: %+v", hist)
	}

	if _, err := s.Supersede(ctx, SupersedeParams{PatternID: "nope", Record: testRecord("X00000", 7)}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Save(ctx, SaveParams{Memory: model.MemoryContent{Title: "a"}, Record: testRecord("AAAAAA", 7)})
	s.Save(ctx, SaveParams{Memory: model.MemoryContent{Title: "b"}, Record: testRecord("BBBBBB", 7)})
	s.Save(ctx, SaveParams{Memory: model.MemoryContent{Title: "c"}, Record: testRecord("CCCCCC", 16)})

	all, _ := s.List(ctx, ListParams{})
	if len(all) != 3 {
		t.Errorf("expected 3, got %d", len(all))
	}
	if all[0].Record.Identifier != "CCCCCC" {
		t.Errorf("expected newest first, got %q", all[0].Record.Identifier)
	}

	legacy, _ := s.List(ctx, ListParams{GridSize: 16})
	if len(legacy) != 1 {
		t.Errorf("expected 1, got %d", len(legacy))
	}

	limited, _ := s.List(ctx, ListParams{Limit: 2})
	if len(limited) != 2 {
		t.Errorf("expected 2, got %d", len(limited))
	}
}

func TestSoftDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	saved, _ := s.Save(ctx, SaveParams{Memory: model.MemoryContent{Title: "x"}, Record: testRecord("DELETE", 7)})
	if err := s.Rm(ctx, RmParams{Identifier: "DELETE"}); err != nil {
		t.Fatalf("rm: %v", err)
	}

	if _, err := s.Lookup(ctx, "DELETE"); err == nil {
		t.Error("expected error after soft delete")
	}

	// History still has the row
	hist, err := s.History(ctx, saved.MemoryID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if hist[0].DeletedAt == nil {
		t.Error("expected deleted_at to be set")
	}
}

func TestHardDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	saved, _ := s.Save(ctx, SaveParams{
		Memory: model.MemoryContent{Title: "x", Images: [][]byte{{1}}},
		Record: testRecord("HARD00", 7),
	})
	if err := s.Rm(ctx, RmParams{Identifier: "HARD00", Hard: true}); err != nil {
		t.Fatalf("rm hard: %v", err)
	}

	if _, err := s.History(ctx, saved.MemoryID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected history gone after hard delete, got %v", err)
	}

	if err := s.Rm(ctx, RmParams{Identifier: "HARD00"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDBPathCreation(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("expected db file to be created")
	}
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t)

	src.Save(ctx, SaveParams{Memory: model.MemoryContent{Title: "one", Images: [][]byte{{9, 9}}}, Record: testRecord("ONE000", 7)})
	src.Save(ctx, SaveParams{Memory: model.MemoryContent{Body: "two"}, Record: testRecord("TWO000", 7)})

	exported, err := src.ExportAll(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	dst := newTestStore(t)
	n, err := dst.Import(ctx, exported)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 imported, got %d", n)
	}

	got, err := dst.Lookup(ctx, "ONE000")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !reflect.DeepEqual(got.Memory.Images, [][]byte{{9, 9}}) {
		t.Errorf("images not imported: %v", got.Memory.Images)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "stats.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.Save(ctx, SaveParams{Memory: model.MemoryContent{Title: "a", Images: [][]byte{{1}}}, Record: testRecord("AAAAAA", 7)})
	old, _ := s.Save(ctx, SaveParams{Memory: model.MemoryContent{Title: "b"}, Record: testRecord("BBBBBB", 16)})
	s.Supersede(ctx, SupersedeParams{PatternID: old.ID, Record: testRecord("CCCCCC", 7)})

	st, err := s.Stats(ctx, dbPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Memories != 2 || st.Images != 1 {
		t.Errorf("unexpected memory counts: %+v", st)
	}
	if st.TotalPatterns != 3 || st.ActivePatterns != 2 {
		t.Errorf("unexpected pattern counts: %+v", st)
	}
	if len(st.Schemes) != 1 || st.Schemes[0] != (SchemeStats{GridSize: 7, Count: 2}) {
		t.Errorf("unexpected schemes: %+v", st.Schemes)
	}
	if st.DBSizeBytes == 0 {
		t.Error("expected non-zero db size")
	}
}
