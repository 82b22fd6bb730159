package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rcliao/talkgraph/internal/analysis"
	"github.com/rcliao/talkgraph/internal/model"
)

// Export is one run with everything needed to restore it.
type Export struct {
	Run         model.Run          `json:"run"`
	Result      json.RawMessage    `json:"result"`
	Turns       []model.StoredTurn `json:"turns"`
	Annotations []model.Annotation `json:"annotations"`
}

// ExportAll returns every run, optionally limited to one source, oldest
// first.
func (s *SQLiteStore) ExportAll(ctx context.Context, source string) ([]Export, error) {
	query := `SELECT ` + runColumns + `, result FROM runs`
	args := []interface{}{}
	if source != "" {
		query += ` WHERE source = ?`
		args = append(args, source)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var exports []Export
	for rows.Next() {
		var body string
		r, err := scanRun(rows, &body)
		if err != nil {
			rows.Close()
			return nil, err
		}
		exports = append(exports, Export{Run: r, Result: json.RawMessage(body)})
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	for i := range exports {
		id := exports[i].Run.ID
		if exports[i].Turns, err = s.Turns(ctx, id); err != nil {
			return nil, err
		}
		if exports[i].Annotations, err = s.Annotations(ctx, id); err != nil {
			return nil, err
		}
	}
	if exports == nil {
		exports = []Export{}
	}
	return exports, nil
}

// Import restores exported runs, keeping their ids. Runs whose id already
// exists are skipped. It returns how many runs were imported.
func (s *SQLiteStore) Import(ctx context.Context, exports []Export) (int, error) {
	imported := 0
	for _, e := range exports {
		switch err := s.requireRun(ctx, e.Run.ID); {
		case err == nil:
			continue
		case !errors.Is(err, ErrNotFound):
			return imported, err
		}
		var res analysis.Result
		if err := json.Unmarshal(e.Result, &res); err != nil {
			return imported, fmt.Errorf("decode result of run %s: %w", e.Run.ID, err)
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return imported, err
		}
		run := e.Run
		if err := insertRun(ctx, tx, &run, e.Result, e.Turns, &res); err != nil {
			tx.Rollback()
			return imported, fmt.Errorf("import run %s: %w", run.ID, err)
		}
		if err := tx.Commit(); err != nil {
			return imported, err
		}
		if len(e.Annotations) > 0 {
			if _, err := s.PutAnnotations(ctx, run.ID, e.Annotations); err != nil {
				return imported, fmt.Errorf("import annotations of run %s: %w", run.ID, err)
			}
		}
		imported++
	}
	return imported, nil
}
