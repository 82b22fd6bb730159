package model

// Transition aggregates adjacent segment pairs whose speakers differ.
type Transition struct {
	From   string    `json:"from"`
	To     string    `json:"to"`
	Count  int       `json:"count"`
	Gaps   []float64 `json:"gaps"`
	AvgGap float64   `json:"avg_gap"`
}

// ResponseEdge weights a transition by how long the responding speaker
// kept talking afterwards.
type ResponseEdge struct {
	From          string  `json:"from"`
	To            string  `json:"to"`
	Frequency     int     `json:"frequency"`
	TotalDuration float64 `json:"total_duration"`
	AvgDuration   float64 `json:"avg_duration"`
	MaxDuration   float64 `json:"max_duration"`
}

// Attractor summarises the response chains a speaker elicits from others.
type Attractor struct {
	Speaker               string  `json:"speaker"`
	IncomingResponses     int     `json:"incoming_responses"`
	TotalResponseDuration float64 `json:"total_response_duration"`
	AvgResponseDuration   float64 `json:"avg_response_duration"`
	MaxResponseDuration   float64 `json:"max_response_duration"`
}

// GapStats describes silences between adjacent segments. Overlaps
// (negative gaps) are excluded.
type GapStats struct {
	MedianGap           float64 `json:"median_gap"`
	MeanGap             float64 `json:"mean_gap"`
	SameSpeakerMedian   float64 `json:"same_speaker_median"`
	SpeakerChangeMedian float64 `json:"speaker_change_median"`
}

// AgendaIntroduction marks a turn that opens after silence.
type AgendaIntroduction struct {
	Speaker          string  `json:"speaker"`
	Time             float64 `json:"time"`
	PrecedingSilence float64 `json:"preceding_silence"`
}

// Inequality holds distribution metrics over speaking time.
type Inequality struct {
	Gini              float64 `json:"gini_coefficient"`
	Top10PercentShare float64 `json:"top_10_percent_share"`
	Top3Share         float64 `json:"top_3_share"`
	Entropy           float64 `json:"shannon_entropy"`
	NormalizedEntropy float64 `json:"normalized_entropy"`
	MaxEntropy        float64 `json:"max_possible_entropy"`
}

// ParticipationSlice is the per-speaker speaking time inside one equal
// slice of the meeting.
type ParticipationSlice struct {
	Start    float64            `json:"start"`
	End      float64            `json:"end"`
	Speakers map[string]float64 `json:"speakers"`
}

// InterruptionEvent is a tight or overlapping change of speaker.
type InterruptionEvent struct {
	Interrupted string  `json:"interrupted"`
	Interrupter string  `json:"interrupter"`
	Gap         float64 `json:"gap"`
	Time        float64 `json:"time"`
}

// OverlapEvent is an adjacent pair whose timestamps overlap.
type OverlapEvent struct {
	Speaker1        string  `json:"speaker1"`
	Speaker2        string  `json:"speaker2"`
	OverlapDuration float64 `json:"overlap_duration"`
	Time            float64 `json:"time"`
}

// FloorOutcome classifies an interruption attempt by whether the
// interrupted speaker kept the floor.
type FloorOutcome struct {
	Interrupted      string   `json:"interrupted"`
	Interrupter      string   `json:"interrupter"`
	Time             float64  `json:"time"`
	MaintainedFloor  bool     `json:"maintained_floor"`
	ContinuationTime *float64 `json:"continuation_time,omitempty"`
	Gap              *float64 `json:"gap,omitempty"`
}

// ToleranceRate is the share of interruption attempts a speaker survived.
type ToleranceRate struct {
	Speaker       string  `json:"speaker"`
	Attempts      int     `json:"attempts"`
	Maintained    int     `json:"maintained"`
	ToleranceRate float64 `json:"tolerance_rate"`
}

// InterruptionReport bundles the interruption analyzer output.
type InterruptionReport struct {
	Interruptions []InterruptionEvent `json:"interruptions"`
	Overlaps      []OverlapEvent      `json:"overlaps"`
	Outcomes      []FloorOutcome      `json:"floor_outcomes"`
	Tolerance     []ToleranceRate     `json:"tolerance_rates"`
}
