package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/talkgraph/internal/analysis"
	"github.com/rcliao/talkgraph/internal/model"
)

// RelRecycled links an unsuccessful topic to its successful reintroduction.
const RelRecycled = "recycled_as"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id            TEXT PRIMARY KEY,
		source        TEXT NOT NULL,
		created_at    TEXT NOT NULL,
		segment_count INTEGER NOT NULL DEFAULT 0,
		turn_count    INTEGER NOT NULL DEFAULT 0,
		topic_count   INTEGER NOT NULL DEFAULT 0,
		duration      REAL NOT NULL DEFAULT 0,
		config        TEXT,
		result        TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source);

	CREATE TABLE IF NOT EXISTS turns (
		run_id     TEXT NOT NULL REFERENCES runs(id),
		idx        INTEGER NOT NULL,
		speaker    TEXT NOT NULL,
		start_time REAL NOT NULL,
		end_time   REAL NOT NULL,
		text       TEXT NOT NULL,
		PRIMARY KEY (run_id, idx)
	);

	CREATE TABLE IF NOT EXISTS topics (
		run_id     TEXT NOT NULL REFERENCES runs(id),
		topic_id   TEXT NOT NULL,
		proposer   TEXT NOT NULL,
		start_time REAL NOT NULL,
		end_time   REAL NOT NULL,
		status     TEXT NOT NULL,
		turn_index INTEGER NOT NULL,
		text       TEXT NOT NULL,
		PRIMARY KEY (run_id, topic_id)
	);
	CREATE INDEX IF NOT EXISTS idx_topics_status ON topics(status);

	CREATE TABLE IF NOT EXISTS topic_links (
		run_id     TEXT NOT NULL REFERENCES runs(id),
		from_topic TEXT NOT NULL,
		to_topic   TEXT NOT NULL,
		rel        TEXT NOT NULL,
		similarity REAL NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		PRIMARY KEY (run_id, from_topic, to_topic, rel)
	);
	CREATE INDEX IF NOT EXISTS idx_links_to ON topic_links(run_id, to_topic);

	CREATE TABLE IF NOT EXISTS annotations (
		id         TEXT PRIMARY KEY,
		run_id     TEXT NOT NULL REFERENCES runs(id),
		topic_id   TEXT NOT NULL,
		status     TEXT,
		confidence TEXT,
		body       TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_annotations_run ON annotations(run_id, topic_id);

	CREATE VIRTUAL TABLE IF NOT EXISTS topics_fts USING fts5(
		text,
		content=topics,
		content_rowid=rowid
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// FTS5 triggers for automatic sync
	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS topics_ai AFTER INSERT ON topics BEGIN
			INSERT INTO topics_fts(rowid, text) VALUES (new.rowid, new.text);
		END`,
		`CREATE TRIGGER IF NOT EXISTS topics_ad AFTER DELETE ON topics BEGIN
			INSERT INTO topics_fts(topics_fts, rowid, text) VALUES('delete', old.rowid, old.text);
		END`,
		`CREATE TRIGGER IF NOT EXISTS topics_au AFTER UPDATE ON topics BEGIN
			INSERT INTO topics_fts(topics_fts, rowid, text) VALUES('delete', old.rowid, old.text);
			INSERT INTO topics_fts(rowid, text) VALUES (new.rowid, new.text);
		END`,
	}
	for _, t := range triggers {
		if _, err := s.db.Exec(t); err != nil {
			return fmt.Errorf("create trigger: %w", err)
		}
	}
	return nil
}

// SaveRun stores the run in one transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, p SaveParams) (*model.Run, error) {
	if p.Result == nil {
		return nil, errors.New("save run: nil result")
	}
	body, err := json.Marshal(p.Result)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	run := &model.Run{
		ID:           s.newID(),
		Source:       p.Source,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
		SegmentCount: p.Result.SegmentCount,
		TurnCount:    len(p.Result.Turns),
		TopicCount:   len(p.Result.Topics),
		Duration:     p.Result.MeetingDuration,
		Config:       p.Config,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := insertRun(ctx, tx, run, body, p.Result.StoredTurns(), p.Result); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return run, nil
}

// insertRun writes a run row and its turns, topics and links.
func insertRun(ctx context.Context, tx *sql.Tx, run *model.Run, body []byte, turns []model.StoredTurn, res *analysis.Result) error {
	var cfg *string
	if run.Config != "" {
		cfg = &run.Config
	}
	created := run.CreatedAt.Format(time.RFC3339)
	_, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, source, created_at, segment_count, turn_count, topic_count, duration, config, result)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, created, run.SegmentCount, run.TurnCount, run.TopicCount, run.Duration, cfg, string(body))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, t := range turns {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO turns (run_id, idx, speaker, start_time, end_time, text) VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, t.Index, t.Speaker, t.Start, t.End, t.Text)
		if err != nil {
			return fmt.Errorf("insert turn: %w", err)
		}
	}

	for _, t := range res.Topics {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO topics (run_id, topic_id, proposer, start_time, end_time, status, turn_index, text)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, t.ID, t.Proposer, t.StartTime, t.EndTime, t.Status, t.TurnIndex, t.Text)
		if err != nil {
			return fmt.Errorf("insert topic: %w", err)
		}
	}

	for _, r := range res.Relational.Recycled {
		_, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO topic_links (run_id, from_topic, to_topic, rel, similarity, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, r.OriginalTopic, r.RecycledTopic, RelRecycled, r.Similarity, created)
		if err != nil {
			return fmt.Errorf("insert link: %w", err)
		}
	}
	return nil
}

const runColumns = `id, source, created_at, segment_count, turn_count, topic_count, duration, config`

// GetRun returns a run and its decoded result. The result's Index is nil.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, *analysis.Result, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+`, result FROM runs WHERE id = ?`, id)
	var body string
	run, err := scanRun(row, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, nil, err
	}
	var res analysis.Result
	if err := json.Unmarshal([]byte(body), &res); err != nil {
		return nil, nil, fmt.Errorf("decode result of run %s: %w", id, err)
	}
	return &run, &res, nil
}

// ListRuns lists runs newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, p ListParams) ([]model.Run, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}
	where := []string{"1 = 1"}
	args := []interface{}{}
	if p.Source != "" {
		where = append(where, "source = ?")
		args = append(args, p.Source)
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE `+strings.Join(where, " AND ")+
			` ORDER BY created_at DESC, id DESC LIMIT ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []model.Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Turns returns a run's turns in order.
func (s *SQLiteStore) Turns(ctx context.Context, runID string) ([]model.StoredTurn, error) {
	if err := s.requireRun(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, speaker, start_time, end_time, text FROM turns WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	turns := []model.StoredTurn{}
	for rows.Next() {
		var t model.StoredTurn
		if err := rows.Scan(&t.Index, &t.Speaker, &t.Start, &t.End, &t.Text); err != nil {
			return nil, err
		}
		t.Duration = t.End - t.Start
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// Rm deletes a run and its dependents.
func (s *SQLiteStore) Rm(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"annotations", "topic_links", "topics", "turns"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE run_id = ?`, id); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) requireRun(ctx context.Context, id string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRun scans runColumns followed by any extra destinations.
func scanRun(row scanner, extra ...interface{}) (model.Run, error) {
	var r model.Run
	var createdAt string
	var cfg sql.NullString
	dest := append([]interface{}{
		&r.ID, &r.Source, &createdAt, &r.SegmentCount, &r.TurnCount, &r.TopicCount, &r.Duration, &cfg,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return r, err
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if cfg.Valid {
		r.Config = cfg.String
	}
	return r, nil
}
