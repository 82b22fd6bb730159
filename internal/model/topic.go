package model

// Topic statuses. A topic's status is assigned once and never changes.
const (
	StatusStabilized     = "stabilized"
	StatusFailedSilence  = "failed_silence"
	StatusFailedNoUptake = "failed_no_uptake"
)

// Stabilization reasons.
const (
	ReasonUptake            = "uptake"
	ReasonNoResponse        = "no_response"
	ReasonNoSemanticOverlap = "no_semantic_overlap"
)

// ValidStatuses are the terminal topic statuses.
var ValidStatuses = map[string]bool{
	StatusStabilized:     true,
	StatusFailedSilence:  true,
	StatusFailedNoUptake: true,
}

// Response is a turn by another speaker inside a topic's response window.
type Response struct {
	Speaker          string  `json:"speaker"`
	Time             float64 `json:"time"`
	Similarity       float64 `json:"similarity"`
	ResponseDelay    float64 `json:"response_delay"`
	ResponseText     string  `json:"response_text"`
	ResponseDuration float64 `json:"response_duration"`
	Uptake           bool    `json:"uptake"`
}

// Stabilization records whether a topic received uptake.
type Stabilization struct {
	Stabilized         bool       `json:"stabilized"`
	Reason             string     `json:"reason"`
	Responders         []Response `json:"responders"`
	AllResponses       []Response `json:"all_responses"`
	FirstResponseTime  *float64   `json:"first_response_time,omitempty"`
	FirstResponseDelay *float64   `json:"first_response_delay,omitempty"`
}

// Topic is a detected topic proposal and its lifecycle outcome.
type Topic struct {
	ID                    string        `json:"topic_id"`
	Proposer              string        `json:"proposer"`
	StartTime             float64       `json:"start_time"`
	EndTime               float64       `json:"end_time"`
	Status                string        `json:"status"`
	Text                  string        `json:"text"`
	SimilarityToPreceding float64       `json:"similarity_to_preceding"`
	TurnIndex             int           `json:"turn_index"`
	Stabilization         Stabilization `json:"stabilization"`
}

// Stabilized reports whether the topic achieved uptake.
func (t Topic) Stabilized() bool { return t.Status == StatusStabilized }
