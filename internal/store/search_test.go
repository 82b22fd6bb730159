package store

import (
	"context"
	"testing"
)

func TestSearch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	run, _ := saveSample(t, s, "a.json")

	hits, err := s.Search(ctx, SearchParams{Query: "budget"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) < 2 {
		t.Fatalf("expected both budget topics, got %+v", hits)
	}
	proposers := map[string]bool{}
	for _, h := range hits {
		if h.RunID != run.ID || h.Source != "a.json" {
			t.Errorf("hit = %+v", h)
		}
		proposers[h.Proposer] = true
	}
	if !proposers["A"] || !proposers["C"] {
		t.Errorf("expected proposers A and C, got %v", proposers)
	}

	limited, err := s.Search(ctx, SearchParams{Query: "budget", Limit: 1})
	if err != nil {
		t.Fatalf("search limited: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected 1 hit, got %d", len(limited))
	}
}

func TestSearch_RunFilter(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	first, _ := saveSample(t, s, "a.json")
	saveSample(t, s, "b.json")

	all, err := s.Search(ctx, SearchParams{Query: "budget"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	only, err := s.Search(ctx, SearchParams{Query: "budget", RunID: first.ID})
	if err != nil {
		t.Fatalf("search run: %v", err)
	}
	if len(only) == 0 || len(only)*2 != len(all) {
		t.Errorf("run filter: %d of %d", len(only), len(all))
	}
	for _, h := range only {
		if h.RunID != first.ID {
			t.Errorf("hit from other run: %+v", h)
		}
	}
}

func TestSearch_FallbackToLike(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	saveSample(t, s, "a.json")

	// '%' is not FTS5 syntax, so this runs as a LIKE pattern.
	hits, err := s.Search(ctx, SearchParams{Query: "budget%unfair"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) < 2 {
		t.Errorf("expected substring hits for both budget topics, got %+v", hits)
	}

	hits, err = s.Search(ctx, SearchParams{Query: `"allocation is`})
	if err != nil {
		t.Fatalf("unbalanced quote: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits, got %+v", hits)
	}
}

func TestSearch_Empty(t *testing.T) {
	hits, err := newTestStore(t).Search(context.Background(), SearchParams{Query: "  "})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if hits == nil || len(hits) != 0 {
		t.Errorf("expected empty non-nil result, got %#v", hits)
	}
}
