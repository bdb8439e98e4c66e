package store

import (
	"context"
	"testing"

	"github.com/rcliao/memory-stitch/internal/model"
)

func TestSearch_Basic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Save(ctx, SaveParams{Memory: model.MemoryContent{Title: "Beach day", Body: "sandcastle by the sea"}, Record: testRecord("BEACH0", 7)})
	s.Save(ctx, SaveParams{Memory: model.MemoryContent{Title: "Grandma's kitchen", Body: "apple pie by the window"}, Record: testRecord("KITCH0", 7)})
	s.Save(ctx, SaveParams{Memory: model.MemoryContent{Title: "First snow"}, Record: testRecord("SNOW00", 7)})

	// Search by body
	results, err := s.Search(ctx, SearchParams{Query: "by the"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	// Search by title
	results, err = s.Search(ctx, SearchParams{Query: "snow"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Record.Identifier != "SNOW00" {
		t.Fatalf("expected SNOW00, got %+v", results)
	}

	// Search by identifier
	results, err = s.Search(ctx, SearchParams{Query: "KITCH"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	// No results
	results, err = s.Search(ctx, SearchParams{Query: "volcano"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Fatalf("expected 0 results, got %d", len(results))
	}
}

func TestSearch_SkipsDeleted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Save(ctx, SaveParams{Memory: model.MemoryContent{Title: "lake trip"}, Record: testRecord("LAKE00", 7)})
	s.Rm(ctx, RmParams{Identifier: "LAKE00"})

	results, _ := s.Search(ctx, SearchParams{Query: "lake"})
	if len(results) != 0 {
		t.Errorf("expected deleted memory to be hidden, got %d", len(results))
	}
}
