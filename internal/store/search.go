package store

import (
	"context"
	"fmt"
	"strings"
)

// SearchParams holds parameters for searching topics.
type SearchParams struct {
	RunID string
	Query string
	Limit int
}

// SearchResult is a topic matching a search.
type SearchResult struct {
	RunID     string  `json:"run_id"`
	Source    string  `json:"source"`
	TopicID   string  `json:"topic_id"`
	Proposer  string  `json:"proposer"`
	Status    string  `json:"status"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Text      string  `json:"text"`
}

const searchColumns = `t.run_id, r.source, t.topic_id, t.proposer, t.status, t.start_time, t.end_time, t.text`

// Search finds topics whose text matches the query, ranked by FTS5 bm25.
// Queries that are not valid FTS5 syntax fall back to a substring match.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]SearchResult, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}
	q := strings.TrimSpace(p.Query)
	if q == "" {
		return []SearchResult{}, nil
	}

	where := []string{"topics_fts MATCH ?"}
	args := []interface{}{q}
	if p.RunID != "" {
		where = append(where, "t.run_id = ?")
		args = append(args, p.RunID)
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT %s
		FROM topics_fts f
		JOIN topics t ON t.rowid = f.rowid
		JOIN runs r ON r.id = t.run_id
		WHERE %s
		ORDER BY bm25(topics_fts), t.run_id, t.start_time
		LIMIT ?`, searchColumns, strings.Join(where, " AND "))

	results, err := s.querySearch(ctx, query, args...)
	if err == nil {
		return results, nil
	}
	return s.searchLike(ctx, p.RunID, q, limit)
}

func (s *SQLiteStore) searchLike(ctx context.Context, runID, q string, limit int) ([]SearchResult, error) {
	where := []string{"t.text LIKE ?"}
	args := []interface{}{"%" + q + "%"}
	if runID != "" {
		where = append(where, "t.run_id = ?")
		args = append(args, runID)
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT %s
		FROM topics t
		JOIN runs r ON r.id = t.run_id
		WHERE %s
		ORDER BY r.created_at DESC, t.run_id, t.start_time
		LIMIT ?`, searchColumns, strings.Join(where, " AND "))
	return s.querySearch(ctx, query, args...)
}

func (s *SQLiteStore) querySearch(ctx context.Context, query string, args ...interface{}) ([]SearchResult, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.RunID, &r.Source, &r.TopicID, &r.Proposer, &r.Status, &r.StartTime, &r.EndTime, &r.Text); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
