package model

import "time"

// ValidRelations is the fixed speaker–topic relation vocabulary used by
// downstream annotators.
var ValidRelations = map[string]bool{
	"introduced": true,
	"taken_up":   true,
	"reframed":   true,
	"resisted":   true,
	"ignored":    true,
	"recycled":   true,
	"closed":     true,
}

// ValidConfidences are the allowed annotation confidence levels.
var ValidConfidences = map[string]bool{
	"high":      true,
	"medium":    true,
	"low":       true,
	"uncertain": true,
}

// AnnotatedOrientation is one speaker's relation to an annotated topic.
type AnnotatedOrientation struct {
	Speaker       string `json:"speaker"`
	Relation      string `json:"relation"`
	TurnIndex     int    `json:"turn_index"`
	Justification string `json:"justification"`
}

// Annotation is an opaque enrichment record produced outside the core and
// keyed by topic id. Its Status is the annotator's own label and never
// replaces a Topic's status.
type Annotation struct {
	ID                  string                 `json:"id,omitempty"`
	TopicID             string                 `json:"topic_id"`
	StartTurnIndex      int                    `json:"start_turn_index"`
	EndTurnIndex        int                    `json:"end_turn_index"`
	StartTime           float64                `json:"start_time"`
	EndTime             float64                `json:"end_time"`
	Introducer          string                 `json:"introducer"`
	Status              string                 `json:"status"`
	Confidence          string                 `json:"confidence"`
	Justification       string                 `json:"justification"`
	SpeakerOrientations []AnnotatedOrientation `json:"speaker_orientations"`
	CreatedAt           *time.Time             `json:"created_at,omitempty"`
}

// TurnContext is the view of a turn handed to an annotator.
type TurnContext struct {
	TurnIndex      int     `json:"turn_index"`
	Speaker        string  `json:"speaker"`
	StartTime      float64 `json:"start_time"`
	EndTime        float64 `json:"end_time"`
	Text           string  `json:"text"`
	IsInterruption bool    `json:"is_interruption"`
	HasOverlap     bool    `json:"has_overlap"`
	FollowsSilence bool    `json:"follows_silence"`
}

// Candidate is a topic candidate plus the turns surrounding it.
type Candidate struct {
	TopicID      string        `json:"topic_id"`
	Proposer     string        `json:"proposer"`
	StartTime    float64       `json:"start_time"`
	EndTime      float64       `json:"end_time"`
	Text         string        `json:"text"`
	TurnIndex    int           `json:"turn_index"`
	EndTurnIndex int           `json:"end_turn_index"`
	Context      []TurnContext `json:"context"`
}
