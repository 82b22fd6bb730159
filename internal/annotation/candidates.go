package annotation

import (
	"github.com/rcliao/talkgraph/internal/model"
	"github.com/rcliao/talkgraph/internal/turn"
)

// Contexts describes every turn for an annotator. A turn is an interruption
// when it starts less than interruptGap after the previous turn ends, has an
// overlap when any of its segments starts before the preceding segment
// ends, and follows silence when the previous turn ended more than silence
// seconds earlier.
func Contexts(idx *turn.Index, interruptGap, silence float64) []model.TurnContext {
	segs := idx.Segments()
	out := make([]model.TurnContext, idx.Len())
	for i := range out {
		t := idx.Turn(i)
		c := model.TurnContext{
			TurnIndex: i,
			Speaker:   t.Speaker,
			StartTime: t.Start,
			EndTime:   t.End,
			Text:      idx.Text(i),
		}
		if i > 0 {
			gap := t.Start - idx.Turn(i-1).End
			c.IsInterruption = gap < interruptGap
			c.FollowsSilence = gap > silence
		}
		first, last := idx.Range(i)
		for k := max(first, 1); k < last; k++ {
			if segs[k-1].End > segs[k].Start {
				c.HasOverlap = true
				break
			}
		}
		out[i] = c
	}
	return out
}

// Candidates pairs each topic with up to window turns of context on either
// side of the turns it spans.
func Candidates(contexts []model.TurnContext, topics []model.Topic, window int) []model.Candidate {
	out := make([]model.Candidate, 0, len(topics))
	for _, t := range topics {
		end := t.TurnIndex
		for i := t.TurnIndex; i < len(contexts); i++ {
			if contexts[i].StartTime <= t.EndTime && t.EndTime <= contexts[i].EndTime {
				end = i
				break
			}
		}
		from := max(0, t.TurnIndex-window)
		to := min(len(contexts), end+window+1)
		around := []model.TurnContext{}
		if from < to {
			around = append(around, contexts[from:to]...)
		}
		out = append(out, model.Candidate{
			TopicID:      t.ID,
			Proposer:     t.Proposer,
			StartTime:    t.StartTime,
			EndTime:      t.EndTime,
			Text:         t.Text,
			TurnIndex:    t.TurnIndex,
			EndTurnIndex: end,
			Context:      around,
		})
	}
	return out
}
