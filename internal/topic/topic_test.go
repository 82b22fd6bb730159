package topic

import (
	"testing"

	"github.com/rcliao/talkgraph/internal/config"
	"github.com/rcliao/talkgraph/internal/model"
	"github.com/rcliao/talkgraph/internal/similarity"
	"github.com/rcliao/talkgraph/internal/turn"
)

// stubStrategy scores text pairs from a fixed table; unlisted pairs score 0.
type stubStrategy map[[2]string]float64

func (s stubStrategy) Name() string             { return "stub" }
func (s stubStrategy) Applicable([]string) bool { return true }

func (s stubStrategy) Matrix(texts []string) similarity.Matrix {
	m := similarity.NewMatrix(len(texts))
	for i := range texts {
		m[i][i] = 1
		for j := range texts {
			if i == j {
				continue
			}
			if v, ok := s[[2]string{texts[i], texts[j]}]; ok {
				m[i][j] = v
			} else if v, ok := s[[2]string{texts[j], texts[i]}]; ok {
				m[i][j] = v
			}
		}
	}
	return m
}

func newTracker(scores stubStrategy) *Tracker {
	engine := &similarity.Engine{Primary: scores, Fallback: similarity.Jaccard{}}
	return New(engine, config.Default().Topics)
}

func seg(speaker string, start, end float64, text string) model.Segment {
	return model.Segment{Speaker: speaker, Start: start, End: end, Text: text}
}

const (
	opening  = "hello everyone and welcome along"
	proposal = "let us discuss the quarterly budget"
	reply    = "yes the budget needs a review"
	offTopic = "did anyone see the game last night"
)

func TestTrack_Stabilized(t *testing.T) {
	tr := newTracker(stubStrategy{{proposal, reply}: 0.5})
	topics := tr.Track(turn.NewIndex([]model.Segment{
		seg("B", 0, 5, opening),
		seg("A", 10, 12, proposal),
		seg("B", 15, 17, reply),
	}))

	if len(topics) != 1 {
		t.Fatalf("expected 1 topic, got %+v", topics)
	}
	got := topics[0]
	if got.ID != "TOPIC_0" || got.Proposer != "A" || got.TurnIndex != 1 {
		t.Errorf("topic = %+v", got)
	}
	if got.Status != model.StatusStabilized || got.Stabilization.Reason != model.ReasonUptake {
		t.Errorf("status = %s (%s)", got.Status, got.Stabilization.Reason)
	}
	if len(got.Stabilization.Responders) != 1 {
		t.Fatalf("expected 1 responder, got %+v", got.Stabilization.Responders)
	}
	if d := got.Stabilization.Responders[0].ResponseDelay; d != 5.0 {
		t.Errorf("response delay = %v, want 5", d)
	}
	if got.Stabilization.FirstResponseDelay == nil || *got.Stabilization.FirstResponseDelay != 5.0 {
		t.Errorf("first response delay = %v", got.Stabilization.FirstResponseDelay)
	}
}

func TestTrack_Failures(t *testing.T) {
	tests := []struct {
		name       string
		replyStart float64
		want       string
	}{
		{"long silence", 27, model.StatusFailedSilence},
		{"quick but unrelated", 22, model.StatusFailedNoUptake},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTracker(stubStrategy{{proposal, offTopic}: 0.1})
			topics := tr.Track(turn.NewIndex([]model.Segment{
				seg("B", 0, 5, opening),
				seg("A", 10, 20, proposal),
				seg("B", tt.replyStart, tt.replyStart+3, offTopic),
			}))
			if len(topics) == 0 || topics[0].Proposer != "A" {
				t.Fatalf("expected A's proposal first, got %+v", topics)
			}
			got := topics[0]
			if got.Status != tt.want {
				t.Errorf("status = %s, want %s", got.Status, tt.want)
			}
			if got.Stabilization.Reason != model.ReasonNoSemanticOverlap || len(got.Stabilization.AllResponses) != 1 {
				t.Errorf("stabilization = %+v", got.Stabilization)
			}
		})
	}
}

func TestTrack_NoResponse(t *testing.T) {
	topics := newTracker(stubStrategy{}).Track(turn.NewIndex([]model.Segment{
		seg("B", 0, 5, opening),
		seg("A", 10, 20, proposal),
	}))
	if len(topics) != 1 {
		t.Fatalf("expected 1 topic, got %+v", topics)
	}
	stab := topics[0].Stabilization
	if topics[0].Status != model.StatusFailedSilence || stab.Reason != model.ReasonNoResponse {
		t.Errorf("topic = %+v", topics[0])
	}
	if stab.AllResponses == nil || len(stab.AllResponses) != 0 {
		t.Errorf("expected empty non-nil responses, got %v", stab.AllResponses)
	}
}

func TestTrack_WordCountGate(t *testing.T) {
	topics := newTracker(stubStrategy{}).Track(turn.NewIndex([]model.Segment{
		seg("B", 0, 5, opening),
		seg("A", 6, 7, "totally new idea"),
		seg("B", 8, 9, "ok"),
	}))
	if len(topics) != 0 {
		t.Errorf("short turns must not propose topics, got %+v", topics)
	}
}

func TestTrack_NotNovel(t *testing.T) {
	topics := newTracker(stubStrategy{{opening, proposal}: 0.25}).Track(turn.NewIndex([]model.Segment{
		seg("B", 0, 5, opening),
		seg("A", 10, 12, proposal),
	}))
	if len(topics) != 0 {
		t.Errorf("similarity at the novelty threshold must not propose, got %+v", topics)
	}
}

func TestTrack_Empty(t *testing.T) {
	topics := newTracker(stubStrategy{}).Track(turn.NewIndex(nil))
	if topics == nil || len(topics) != 0 {
		t.Errorf("expected empty non-nil topics, got %v", topics)
	}
}

func TestTrack_VectorSpace(t *testing.T) {
	tr := New(similarity.NewEngine(0), config.Default().Topics)
	topics := tr.Track(turn.NewIndex([]model.Segment{
		seg("A", 0, 4, "good morning team thanks for joining"),
		seg("B", 5, 9, "the budget allocation for marketing looks unfair"),
		seg("C", 11, 14, "agreed the budget allocation for marketing looks unfair"),
	}))
	if len(topics) == 0 || topics[0].Proposer != "B" {
		t.Fatalf("expected B's proposal, got %+v", topics)
	}
	if topics[0].Status != model.StatusStabilized {
		t.Errorf("status = %s, stabilization %+v", topics[0].Status, topics[0].Stabilization)
	}
}
