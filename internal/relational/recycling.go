package relational

import "github.com/rcliao/talkgraph/internal/model"

// Recycling links each unsuccessful topic to later, similar topics by a
// different proposer that either stabilized or drew strictly more responses.
func (a *Analyzer) Recycling(topics []model.Topic) []model.RecycledTopicPair {
	out := []model.RecycledTopicPair{}
	for i, first := range topics {
		if first.Stabilized() {
			continue
		}
		for _, later := range topics[i+1:] {
			if later.Proposer == first.Proposer {
				continue
			}
			sim := a.Engine.Pair(first.Text, later.Text)
			if sim < a.Config.RecyclingThreshold {
				continue
			}
			pair := model.RecycledTopicPair{
				OriginalTopic:    first.ID,
				OriginalProposer: first.Proposer,
				OriginalStatus:   first.Status,
				RecycledTopic:    later.ID,
				RecycledProposer: later.Proposer,
				RecycledStatus:   later.Status,
				Similarity:       sim,
				TimeGap:          later.StartTime - first.EndTime,
				PowerShift:       true,
			}
			if !later.Stabilized() {
				gain := len(later.Stabilization.AllResponses) - len(first.Stabilization.AllResponses)
				if gain <= 0 {
					continue
				}
				pair.ResponseIncrease = gain
			}
			out = append(out, pair)
		}
	}
	return out
}

// Hijacking classifies every non-empty response to every topic by its
// similarity band: shift, hijacking, reframing or alignment.
func (a *Analyzer) Hijacking(topics []model.Topic) []model.HijackEvent {
	out := []model.HijackEvent{}
	for _, t := range topics {
		for _, r := range t.Stabilization.AllResponses {
			if r.ResponseText == "" {
				continue
			}
			kind, legit := a.band(r.Similarity)
			out = append(out, model.HijackEvent{
				TopicID:             t.ID,
				TopicProposer:       t.Proposer,
				Responder:           r.Speaker,
				OriginalText:        excerpt(t.Text),
				ResponseText:        excerpt(r.ResponseText),
				Similarity:          r.Similarity,
				Type:                kind,
				PreservesLegitimacy: legit,
			})
		}
	}
	return out
}

func (a *Analyzer) band(sim float64) (string, bool) {
	switch {
	case sim < a.Config.ShiftBelow:
		return model.HijackShift, false
	case sim >= a.Config.AlignAt:
		return model.HijackAlignment, true
	case sim < a.Config.ReframeAt:
		return model.HijackHijacking, true
	default:
		return model.HijackReframing, true
	}
}
