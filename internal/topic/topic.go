// Package topic detects topic proposals by novelty against the preceding
// turns and classifies each one as stabilized or failed.
package topic

import (
	"fmt"
	"strings"

	"github.com/rcliao/talkgraph/internal/config"
	"github.com/rcliao/talkgraph/internal/model"
	"github.com/rcliao/talkgraph/internal/similarity"
	"github.com/rcliao/talkgraph/internal/turn"
)

// Tracker runs the topic lifecycle over a turn index.
type Tracker struct {
	Engine *similarity.Engine
	Config config.Topics
}

// New returns a tracker with the given engine and thresholds.
func New(engine *similarity.Engine, cfg config.Topics) *Tracker {
	return &Tracker{Engine: engine, Config: cfg}
}

// Track returns every topic proposal in turn order with its terminal status.
func (t *Tracker) Track(idx *turn.Index) []model.Topic {
	topics := []model.Topic{}
	for i := 0; i < idx.Len(); i++ {
		novelty, ok := t.proposal(idx, i)
		if !ok {
			continue
		}
		tr := idx.Turn(i)
		text := idx.Text(i)
		stab := t.stabilization(idx, tr, text)
		topics = append(topics, model.Topic{
			ID:                    fmt.Sprintf("TOPIC_%d", len(topics)),
			Proposer:              tr.Speaker,
			StartTime:             tr.Start,
			EndTime:               tr.End,
			Status:                t.status(idx, tr, stab),
			Text:                  text,
			SimilarityToPreceding: novelty,
			TurnIndex:             i,
			Stabilization:         stab,
		})
	}
	return topics
}

// proposal reports whether turn i is novel against its preceding window and
// returns the maximum similarity to that window.
func (t *Tracker) proposal(idx *turn.Index, i int) (float64, bool) {
	text := idx.Text(i)
	if i == 0 || text == "" || len(strings.Fields(text)) <= t.Config.MinWords {
		return 0, false
	}

	from := max(0, i-t.Config.WindowSize)
	texts := append(append([]string(nil), idx.Texts()[from:i]...), text)
	m := t.Engine.Matrix(texts)
	last := len(texts) - 1
	var best float64
	for j := 0; j < last; j++ {
		best = max(best, m.At(last, j))
	}
	return best, best < t.Config.NoveltyThreshold
}

func (t *Tracker) stabilization(idx *turn.Index, proposal model.Turn, text string) model.Stabilization {
	stab := model.Stabilization{
		Responders:   []model.Response{},
		AllResponses: []model.Response{},
	}
	for _, j := range idx.After(proposal.Start, t.Config.ResponseWindow) {
		tr := idx.Turn(j)
		rtext := idx.Text(j)
		if tr.Speaker == proposal.Speaker || rtext == "" {
			continue
		}
		sim := t.Engine.Pair(text, rtext)
		r := model.Response{
			Speaker:          tr.Speaker,
			Time:             tr.Start,
			Similarity:       sim,
			ResponseDelay:    tr.Start - proposal.Start,
			ResponseText:     rtext,
			ResponseDuration: tr.End - tr.Start,
			Uptake:           sim >= t.Config.UptakeThreshold,
		}
		stab.AllResponses = append(stab.AllResponses, r)
		if r.Uptake {
			stab.Responders = append(stab.Responders, r)
		}
	}

	switch {
	case len(stab.Responders) > 0:
		stab.Stabilized = true
		stab.Reason = model.ReasonUptake
		first := stab.Responders[0]
		for _, r := range stab.Responders[1:] {
			if r.Time < first.Time {
				first = r
			}
		}
		at, delay := first.Time, first.ResponseDelay
		stab.FirstResponseTime = &at
		stab.FirstResponseDelay = &delay
	case len(stab.AllResponses) == 0:
		stab.Reason = model.ReasonNoResponse
	default:
		stab.Reason = model.ReasonNoSemanticOverlap
	}
	return stab
}

// status is decided once. Without uptake, a long silence after the proposal
// ends counts as failed_silence.
func (t *Tracker) status(idx *turn.Index, proposal model.Turn, stab model.Stabilization) string {
	if stab.Stabilized {
		return model.StatusStabilized
	}
	next := idx.After(proposal.End, -1)
	if len(next) == 0 || idx.Turn(next[0]).Start-proposal.End > t.Config.SilenceGap {
		return model.StatusFailedSilence
	}
	return model.StatusFailedNoUptake
}
