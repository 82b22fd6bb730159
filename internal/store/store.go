// Package store persists analysis runs, their turns and topics, topic links
// and annotations, with a SQLite implementation.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/talkgraph/internal/analysis"
	"github.com/rcliao/talkgraph/internal/model"
)

// ErrNotFound is returned when a run or topic does not exist.
var ErrNotFound = errors.New("not found")

// SaveParams holds parameters for persisting a run.
type SaveParams struct {
	Source string
	Config string // YAML of the effective configuration
	Result *analysis.Result
}

// ListParams holds parameters for listing runs.
type ListParams struct {
	Source string
	Limit  int
}

// Store defines the run storage interface.
type Store interface {
	// SaveRun stores a run with its turns, topics and recycled-topic links.
	SaveRun(ctx context.Context, p SaveParams) (*model.Run, error)

	// GetRun returns a run and its decoded result.
	GetRun(ctx context.Context, id string) (*model.Run, *analysis.Result, error)

	// ListRuns lists runs, newest first.
	ListRuns(ctx context.Context, p ListParams) ([]model.Run, error)

	// Turns returns the stored turns of a run in order.
	Turns(ctx context.Context, runID string) ([]model.StoredTurn, error)

	// Rm deletes a run and everything attached to it.
	Rm(ctx context.Context, id string) error

	// Close closes the store.
	Close() error
}
