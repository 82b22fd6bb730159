package model

// Follower is a turn after a topic shift that stays away from the closed topic.
type Follower struct {
	Speaker              string  `json:"speaker"`
	Time                 float64 `json:"time"`
	SimilarityToOldTopic float64 `json:"similarity_to_old_topic"`
}

// ClosureEvent records a topic being shifted away from after it ended.
type ClosureEvent struct {
	ClosedTopic             string     `json:"closed_topic"`
	ClosedBy                string     `json:"closed_by"`
	ShiftedBy               string     `json:"shifted_by"`
	ShiftTime               float64    `json:"shift_time"`
	ClosureDelay            float64    `json:"closure_delay"`
	SimilarityToClosedTopic float64    `json:"similarity_to_closed_topic"`
	Followers               []Follower `json:"followers"`
	FollowersCount          int        `json:"followers_count"`
	Uncontested             bool       `json:"uncontested"`
}

// ClosureAuthority counts the shifts a speaker initiated.
type ClosureAuthority struct {
	Speaker     string `json:"speaker"`
	Shifts      int    `json:"shifts"`
	Uncontested int    `json:"uncontested"`
}

// AccountabilityRecord tallies elaboration demands aimed at one proposer.
type AccountabilityRecord struct {
	Speaker               string   `json:"speaker"`
	TopicsProposed        []string `json:"topics_proposed"`
	ClarificationRequests int      `json:"clarification_requests"`
	JustificationRequests int      `json:"justification_requests"`
	EvidenceRequests      int      `json:"evidence_requests"`
	TotalDemands          int      `json:"total_accountability_demands"`
	AccountabilityRate    float64  `json:"accountability_rate"`
}

// RecycledTopicPair links an unsuccessful topic to a later, more
// successful reintroduction by someone else.
type RecycledTopicPair struct {
	OriginalTopic    string  `json:"original_topic"`
	OriginalProposer string  `json:"original_proposer"`
	OriginalStatus   string  `json:"original_status"`
	RecycledTopic    string  `json:"recycled_topic"`
	RecycledProposer string  `json:"recycled_proposer"`
	RecycledStatus   string  `json:"recycled_status"`
	Similarity       float64 `json:"similarity"`
	TimeGap          float64 `json:"time_gap"`
	PowerShift       bool    `json:"power_shift"`
	ResponseIncrease int     `json:"response_increase,omitempty"`
}

// Hijack event types.
const (
	HijackShift     = "shift"
	HijackHijacking = "hijacking"
	HijackReframing = "reframing"
	HijackAlignment = "alignment"
)

// HijackEvent classifies one response to a topic by similarity band.
type HijackEvent struct {
	TopicID             string  `json:"topic_id"`
	TopicProposer       string  `json:"topic_proposer"`
	Responder           string  `json:"hijacked_by"`
	OriginalText        string  `json:"original_text"`
	ResponseText        string  `json:"response_text"`
	Similarity          float64 `json:"similarity"`
	Type                string  `json:"type"`
	PreservesLegitimacy bool    `json:"preserves_legitimacy"`
}

// SpeakerOrientation summarises how one speaker relates to topics.
type SpeakerOrientation struct {
	Speaker           string    `json:"speaker"`
	TopicsProposed    []string  `json:"topics_proposed"`
	TopicsRespondedTo []string  `json:"topics_responded_to"`
	UptakeDelays      []float64 `json:"uptake_delays"`
	Redirections      []string  `json:"redirections"`
	Monopolizations   []string  `json:"monopolizations"`
}

// TopicEngagement scores how much attention a topic attracted.
type TopicEngagement struct {
	TopicID               string   `json:"topic_id"`
	Proposer              string   `json:"proposer"`
	Status                string   `json:"status"`
	Score                 float64  `json:"engagement_score"`
	ResponseCount         int      `json:"response_count"`
	UptakeCount           int      `json:"uptake_count"`
	Responders            []string `json:"responders"`
	UniqueResponders      int      `json:"unique_responders"`
	TotalResponseDuration float64  `json:"total_response_duration"`
	AvgSimilarity         float64  `json:"avg_similarity"`
}

// RelationalReport bundles every relational analyzer's output.
type RelationalReport struct {
	Closures         []ClosureEvent         `json:"closures"`
	ClosureAuthority []ClosureAuthority     `json:"closure_authority"`
	Accountability   []AccountabilityRecord `json:"accountability"`
	Recycled         []RecycledTopicPair    `json:"recycled_topics"`
	Hijackings       []HijackEvent          `json:"hijackings"`
	Orientations     []SpeakerOrientation   `json:"speaker_orientations"`
	Engagement       []TopicEngagement      `json:"topic_engagement"`
}
