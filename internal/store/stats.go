package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath      string        `json:"db_path"`
	DBSizeBytes int64         `json:"db_size_bytes"`
	Runs        int           `json:"runs"`
	Turns       int           `json:"turns"`
	Topics      int           `json:"topics"`
	Links       int           `json:"links"`
	Annotations int           `json:"annotations"`
	Statuses    []StatusCount `json:"statuses"`
}

// StatusCount counts stored topics with one status.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath, Statuses: []StatusCount{}}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	counts := []struct {
		table string
		dest  *int
	}{
		{"runs", &st.Runs},
		{"turns", &st.Turns},
		{"topics", &st.Topics},
		{"topic_links", &st.Links},
		{"annotations", &st.Annotations},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+c.table).Scan(c.dest); err != nil {
			return st, err
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*) AS cnt
		FROM topics GROUP BY status ORDER BY cnt DESC, status`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return st, err
		}
		st.Statuses = append(st.Statuses, sc)
	}
	return st, rows.Err()
}
