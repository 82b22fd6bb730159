package annotation

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rcliao/talkgraph/internal/model"
	"github.com/rcliao/talkgraph/internal/turn"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"wrapped", `{"annotations": [{"topic_id": "TOPIC_0", "status": "emerged"}], "model_used": "x"}`, 1, false},
		{"bare array", `[{"topic_id": "TOPIC_0"}, {"topic_id": "TOPIC_1"}]`, 2, false},
		{"empty object", `{}`, 0, false},
		{"bad relation", `[{"topic_id": "TOPIC_0", "speaker_orientations": [{"speaker": "A", "relation": "dominated"}]}]`, 0, true},
		{"bad confidence", `[{"topic_id": "TOPIC_0", "confidence": "sure"}]`, 0, true},
		{"missing id", `[{"status": "emerged"}]`, 0, true},
		{"not json", `nope`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && len(got) != tt.want {
				t.Errorf("got %d annotations, want %d", len(got), tt.want)
			}
		})
	}
}

func TestLoad_InvalidError(t *testing.T) {
	_, err := Load(strings.NewReader(`[{"topic_id": "T"}, {"topic_id": "U", "confidence": "???"}]`))
	var inv *InvalidError
	if !errors.As(err, &inv) || inv.Index != 1 {
		t.Errorf("expected InvalidError at index 1, got %v", err)
	}
}

func TestAttach(t *testing.T) {
	topics := []model.Topic{{ID: "TOPIC_0", Status: model.StatusFailedSilence}}
	anns := []model.Annotation{
		{TopicID: "TOPIC_0", Status: "emerged", Justification: "first"},
		{TopicID: "LLM_7", Status: "emerged"},
		{TopicID: "TOPIC_0", Status: "stabilized", Justification: "second"},
	}
	byTopic, unknown := Attach(topics, anns)
	if len(byTopic) != 2 || byTopic["TOPIC_0"].Justification != "second" {
		t.Errorf("byTopic = %+v", byTopic)
	}
	if len(unknown) != 1 || unknown[0] != "LLM_7" {
		t.Errorf("unknown = %v", unknown)
	}
	if topics[0].Status != model.StatusFailedSilence {
		t.Errorf("topic status changed to %s", topics[0].Status)
	}
}

func TestCompare(t *testing.T) {
	topics := []model.Topic{
		{ID: "TOPIC_0", StartTime: 10.02, EndTime: 14.98, Status: model.StatusStabilized},
		{ID: "TOPIC_1", StartTime: 30, EndTime: 35, Status: model.StatusFailedSilence},
	}
	anns := []model.Annotation{
		{TopicID: "TOPIC_0", StartTime: 10, EndTime: 15, Status: model.StatusStabilized, Confidence: "high",
			SpeakerOrientations: []model.AnnotatedOrientation{{Speaker: "A", Relation: "introduced"}, {Speaker: "B", Relation: "taken_up"}}},
		{TopicID: "LLM_1", StartTime: 50, EndTime: 60, Status: "emerged", Confidence: "low"},
	}
	c := Compare(topics, anns)
	if len(c.Aligned) != 1 || !c.Aligned[0].StatusMatch || c.StatusMatches != 1 {
		t.Errorf("aligned = %+v", c.Aligned)
	}
	if len(c.StructuralOnly) != 1 || c.StructuralOnly[0] != "TOPIC_1" {
		t.Errorf("structural only = %v", c.StructuralOnly)
	}
	if len(c.AnnotatedOnly) != 1 || c.AnnotatedOnly[0] != "LLM_1" {
		t.Errorf("annotated only = %v", c.AnnotatedOnly)
	}
	if c.RelationDistribution["taken_up"] != 1 || c.ConfidenceDistribution["high"] != 1 || c.StatusDistribution["emerged"] != 1 {
		t.Errorf("distributions = %+v %+v %+v", c.StatusDistribution, c.RelationDistribution, c.ConfidenceDistribution)
	}
}

func TestContextsAndCandidates(t *testing.T) {
	idx := turn.NewIndex([]model.Segment{
		{Speaker: "A", Start: 0, End: 2, Text: "one"},
		{Speaker: "B", Start: 1.8, End: 4, Text: "two"},
		{Speaker: "A", Start: 7, End: 9, Text: "three"},
		{Speaker: "A", Start: 8.5, End: 10, Text: "four"},
		{Speaker: "C", Start: 11, End: 12, Text: "five"},
	})
	ctxs := Contexts(idx, 0.5, 2.0)
	if len(ctxs) != 4 {
		t.Fatalf("expected 4 contexts, got %d", len(ctxs))
	}
	if ctxs[0].HasOverlap || ctxs[0].IsInterruption {
		t.Errorf("turn 0 = %+v, overlap belongs to the next turn", ctxs[0])
	}
	if !ctxs[1].IsInterruption || !ctxs[1].HasOverlap || ctxs[1].FollowsSilence {
		t.Errorf("turn 1 = %+v", ctxs[1])
	}
	if !ctxs[2].FollowsSilence || !ctxs[2].HasOverlap || ctxs[2].Text != "three four" {
		t.Errorf("turn 2 = %+v", ctxs[2])
	}
	if ctxs[3].IsInterruption || ctxs[3].FollowsSilence || ctxs[3].HasOverlap {
		t.Errorf("turn 3 = %+v", ctxs[3])
	}

	topics := []model.Topic{{ID: "TOPIC_0", Proposer: "A", StartTime: 7, EndTime: 10, TurnIndex: 2}}
	cands := Candidates(ctxs, topics, 1)
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(cands))
	}
	c := cands[0]
	if c.EndTurnIndex != 2 || len(c.Context) != 3 || c.Context[0].TurnIndex != 1 || c.Context[2].TurnIndex != 3 {
		t.Errorf("candidate = %+v", c)
	}
}

func TestContexts_SingleSegment(t *testing.T) {
	idx := turn.NewIndex([]model.Segment{{Speaker: "A", Start: 0, End: 3, Text: "only one"}})
	ctxs := Contexts(idx, 0.5, 2.0)
	if len(ctxs) != 1 {
		t.Fatalf("expected 1 context, got %d", len(ctxs))
	}
	c := ctxs[0]
	if c.HasOverlap || c.IsInterruption || c.FollowsSilence || c.Text != "only one" {
		t.Errorf("context = %+v", c)
	}
}

func TestContexts_Empty(t *testing.T) {
	if ctxs := Contexts(turn.NewIndex(nil), 0.5, 2.0); len(ctxs) != 0 {
		t.Errorf("expected no contexts, got %+v", ctxs)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	_, err := LoadFile(path)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "annotation: open ") {
		t.Errorf("error = %q", err)
	}
}

func TestLoad_DecodeErrorPrefix(t *testing.T) {
	_, err := Load(strings.NewReader("{not json"))
	if err == nil || !strings.HasPrefix(err.Error(), "annotation: decode: ") {
		t.Errorf("error = %v", err)
	}
}
