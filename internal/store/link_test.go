package store

import (
	"context"
	"errors"
	"testing"
)

func TestLinks_Recycled(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	run, res := saveSample(t, s, "a.json")
	original := findTopic(t, res, "budget allocation is unfair")
	recycled := findTopic(t, res, "the allocation of the budget seems unfair")

	links, err := s.Links(ctx, run.ID, "")
	if err != nil {
		t.Fatalf("links: %v", err)
	}
	if len(links) != len(res.Relational.Recycled) {
		t.Fatalf("expected %d links, got %+v", len(res.Relational.Recycled), links)
	}

	var found bool
	for _, l := range links {
		if l.FromTopic == original.ID && l.ToTopic == recycled.ID {
			found = true
			if l.Rel != RelRecycled || l.Similarity <= 0 || l.CreatedAt == "" {
				t.Errorf("link = %+v", l)
			}
		}
	}
	if !found {
		t.Errorf("no %s -> %s link in %+v", original.ID, recycled.ID, links)
	}

	filtered, err := s.Links(ctx, run.ID, recycled.ID)
	if err != nil {
		t.Fatalf("links filtered: %v", err)
	}
	for _, l := range filtered {
		if l.FromTopic != recycled.ID && l.ToTopic != recycled.ID {
			t.Errorf("filtered link does not touch %s: %+v", recycled.ID, l)
		}
	}
	if len(filtered) == 0 {
		t.Error("expected the recycled link when filtering by topic")
	}
}

func TestLinks_UnknownRun(t *testing.T) {
	_, err := newTestStore(t).Links(context.Background(), "missing", "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
