// Package model defines the core conversation-structure data types.
package model

// UnknownSpeaker is the speaker identity assigned when a segment carries no
// usable speaker label.
const UnknownSpeaker = "UNKNOWN"

// Segment is one diarized transcript segment with its speaker resolved.
type Segment struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Filler  bool    `json:"filler,omitempty"`
}

// Duration returns End - Start.
func (s Segment) Duration() float64 { return s.End - s.Start }

// Turn is a maximal run of consecutive segments sharing one speaker.
type Turn struct {
	Speaker  string  `json:"speaker"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
}

// TurnStats aggregates the turns of one speaker.
type TurnStats struct {
	Speaker       string    `json:"speaker"`
	Count         int       `json:"count"`
	TotalDuration float64   `json:"total_duration"`
	AvgDuration   float64   `json:"avg_duration"`
	Durations     []float64 `json:"durations"`
}

// SpeakingTime is the non-filler speaking duration of one speaker.
type SpeakingTime struct {
	Speaker    string  `json:"speaker"`
	Seconds    float64 `json:"total_seconds"`
	Percentage float64 `json:"percentage"`
}
