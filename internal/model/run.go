package model

import "time"

// Run is a persisted analysis pass over one transcript.
type Run struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	CreatedAt    time.Time `json:"created_at"`
	SegmentCount int       `json:"segment_count"`
	TurnCount    int       `json:"turn_count"`
	TopicCount   int       `json:"topic_count"`
	Duration     float64   `json:"meeting_duration"`
	Config       string    `json:"config,omitempty"`
}

// StoredTurn is a turn as persisted with its index and text.
type StoredTurn struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Turn
}

// Link is a stored relation between two topics of a run.
type Link struct {
	RunID      string  `json:"run_id"`
	FromTopic  string  `json:"from_topic"`
	ToTopic    string  `json:"to_topic"`
	Rel        string  `json:"rel"`
	Similarity float64 `json:"similarity"`
	CreatedAt  string  `json:"created_at"`
}
