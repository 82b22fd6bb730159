package relational

import (
	"sort"

	"github.com/rcliao/talkgraph/internal/model"
)

// Orientations summarises, per speaker, which topics they proposed and took
// up, and flags redirections and monopolizations on stabilized topics.
// Records are sorted by speaker.
func (a *Analyzer) Orientations(topics []model.Topic, turns []model.Turn) []model.SpeakerOrientation {
	acc := make(map[string]*model.SpeakerOrientation)
	get := func(speaker string) *model.SpeakerOrientation {
		o, ok := acc[speaker]
		if !ok {
			o = &model.SpeakerOrientation{
				Speaker:           speaker,
				TopicsProposed:    []string{},
				TopicsRespondedTo: []string{},
				UptakeDelays:      []float64{},
				Redirections:      []string{},
				Monopolizations:   []string{},
			}
			acc[speaker] = o
		}
		return o
	}

	for _, t := range topics {
		p := get(t.Proposer)
		p.TopicsProposed = append(p.TopicsProposed, t.ID)
		if !t.Stabilized() {
			continue
		}

		for _, r := range t.Stabilization.Responders {
			o := get(r.Speaker)
			o.TopicsRespondedTo = append(o.TopicsRespondedTo, t.ID)
			o.UptakeDelays = append(o.UptakeDelays, r.ResponseDelay)
			if r.Similarity >= a.Orientation.RedirectionLow && r.Similarity < a.Orientation.RedirectionHigh {
				o.Redirections = append(o.Redirections, t.ID)
			}
		}

		own, others := 0, 0
		until := t.EndTime + a.Orientation.MonopolizationWindow
		for _, tr := range turns {
			if tr.Start < t.StartTime || tr.Start > until {
				continue
			}
			if tr.Speaker == t.Proposer {
				own++
			} else {
				others++
			}
		}
		if float64(own) > float64(others)*a.Orientation.MonopolizationRatio {
			p.Monopolizations = append(p.Monopolizations, t.ID)
		}
	}

	out := make([]model.SpeakerOrientation, 0, len(acc))
	for _, o := range acc {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Speaker < out[j].Speaker })
	return out
}

// Engagement scores each topic by the attention it drew, highest first.
// Ties keep topic order.
func Engagement(topics []model.Topic) []model.TopicEngagement {
	out := make([]model.TopicEngagement, 0, len(topics))
	for _, t := range topics {
		all := t.Stabilization.AllResponses
		e := model.TopicEngagement{
			TopicID:       t.ID,
			Proposer:      t.Proposer,
			Status:        t.Status,
			ResponseCount: len(all),
			UptakeCount:   len(t.Stabilization.Responders),
			Responders:    make([]string, 0, len(all)),
		}
		unique := make(map[string]bool)
		var simSum float64
		for _, r := range all {
			e.Responders = append(e.Responders, r.Speaker)
			unique[r.Speaker] = true
			e.TotalResponseDuration += r.ResponseDuration
			simSum += r.Similarity
		}
		e.UniqueResponders = len(unique)
		if len(all) > 0 {
			e.AvgSimilarity = simSum / float64(len(all))
		}
		e.Score = float64(e.UptakeCount)*10 + float64(e.ResponseCount)*2 +
			e.TotalResponseDuration/10 + e.AvgSimilarity*5
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
