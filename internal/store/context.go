package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
)

// DefaultContextBudget is the character budget used when none is given.
const DefaultContextBudget = 4000

// ContextParams holds parameters for topic context assembly.
type ContextParams struct {
	RunID   string
	TopicID string
	Budget  int // max chars of turn text in output
}

// ContextTurn is a scored turn in a topic's context.
type ContextTurn struct {
	Index   int     `json:"turn_index"`
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start_time"`
	End     float64 `json:"end_time"`
	Text    string  `json:"text"`
	Score   float64 `json:"score"`
	Excerpt bool    `json:"excerpt,omitempty"`
}

// ContextResult is the assembled context for one topic.
type ContextResult struct {
	RunID   string        `json:"run_id"`
	TopicID string        `json:"topic_id"`
	Budget  int           `json:"budget"`
	Used    int           `json:"used"`
	Turns   []ContextTurn `json:"turns"`
}

// TopicContext packs the turns closest to a topic's proposal into a
// character budget. Turns are scored by distance from the proposal turn,
// packed greedily, and returned in turn order.
func (s *SQLiteStore) TopicContext(ctx context.Context, p ContextParams) (*ContextResult, error) {
	budget := p.Budget
	if budget <= 0 {
		budget = DefaultContextBudget
	}

	var anchor int
	err := s.db.QueryRowContext(ctx,
		`SELECT turn_index FROM topics WHERE run_id = ? AND topic_id = ?`, p.RunID, p.TopicID).Scan(&anchor)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("topic %s/%s: %w", p.RunID, p.TopicID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	turns, err := s.Turns(ctx, p.RunID)
	if err != nil {
		return nil, err
	}

	candidates := make([]ContextTurn, 0, len(turns))
	for _, t := range turns {
		if t.Text == "" {
			continue
		}
		dist := math.Abs(float64(t.Index - anchor))
		candidates = append(candidates, ContextTurn{
			Index:   t.Index,
			Speaker: t.Speaker,
			Start:   t.Start,
			End:     t.End,
			Text:    t.Text,
			Score:   math.Round(100/(1+dist)) / 100,
		})
	}
	// Equal distance prefers the later turn, where responses live.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Index > candidates[j].Index
	})

	result := &ContextResult{RunID: p.RunID, TopicID: p.TopicID, Budget: budget, Turns: []ContextTurn{}}
	used := 0
	for _, c := range candidates {
		if used+len(c.Text) <= budget {
			result.Turns = append(result.Turns, c)
			used += len(c.Text)
		} else if remaining := budget - used; remaining >= 100 {
			// Partial fit, excerpt
			c.Text = c.Text[:remaining] + "..."
			c.Excerpt = true
			result.Turns = append(result.Turns, c)
			used += remaining
			break
		} else {
			break
		}
	}
	sort.Slice(result.Turns, func(i, j int) bool { return result.Turns[i].Index < result.Turns[j].Index })
	result.Used = used
	return result, nil
}
