package store

import (
	"context"

	"github.com/rcliao/talkgraph/internal/model"
)

// Links returns a run's topic links. When topicID is set only links touching
// that topic are returned.
func (s *SQLiteStore) Links(ctx context.Context, runID, topicID string) ([]model.Link, error) {
	if err := s.requireRun(ctx, runID); err != nil {
		return nil, err
	}
	query := `SELECT run_id, from_topic, to_topic, rel, similarity, created_at FROM topic_links WHERE run_id = ?`
	args := []interface{}{runID}
	if topicID != "" {
		query += ` AND (from_topic = ? OR to_topic = ?)`
		args = append(args, topicID, topicID)
	}
	query += ` ORDER BY from_topic, to_topic, rel`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := []model.Link{}
	for rows.Next() {
		var l model.Link
		if err := rows.Scan(&l.RunID, &l.FromTopic, &l.ToTopic, &l.Rel, &l.Similarity, &l.CreatedAt); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}
