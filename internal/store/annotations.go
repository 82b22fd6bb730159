package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rcliao/talkgraph/internal/annotation"
	"github.com/rcliao/talkgraph/internal/model"
)

// PutAnnotations validates and appends annotations to a run. Each stored
// annotation gets a fresh id and creation time.
func (s *SQLiteStore) PutAnnotations(ctx context.Context, runID string, anns []model.Annotation) (int, error) {
	if err := annotation.Validate(anns); err != nil {
		return 0, err
	}
	if err := s.requireRun(ctx, runID); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Truncate(time.Second)
	for _, a := range anns {
		a.ID = s.newID()
		a.CreatedAt = &now
		body, err := json.Marshal(a)
		if err != nil {
			return 0, fmt.Errorf("encode annotation: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO annotations (id, run_id, topic_id, status, confidence, body, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID, runID, a.TopicID, a.Status, a.Confidence, string(body), now.Format(time.RFC3339))
		if err != nil {
			return 0, fmt.Errorf("insert annotation: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(anns), nil
}

// Annotations returns a run's annotations in insertion order.
func (s *SQLiteStore) Annotations(ctx context.Context, runID string) ([]model.Annotation, error) {
	if err := s.requireRun(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM annotations WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	anns := []model.Annotation{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var a model.Annotation
		if err := json.Unmarshal([]byte(body), &a); err != nil {
			return nil, fmt.Errorf("decode annotation: %w", err)
		}
		anns = append(anns, a)
	}
	return anns, rows.Err()
}
