package relational

import (
	"sort"
	"strings"

	"github.com/rcliao/talkgraph/internal/model"
	"github.com/rcliao/talkgraph/internal/turn"
)

// Phrase lists for elaboration demands, matched as lowercase substrings.
var (
	ClarificationPhrases = []string{
		"what do you mean", "can you clarify", "what does that mean",
		"can you explain", "i don't understand", "what are you saying",
		"could you elaborate", "what do you expect",
	}
	JustificationPhrases = []string{
		"why", "how do you know", "what makes you think",
		"on what basis", "what evidence", "how can you say",
	}
	EvidencePhrases = []string{
		"show me", "prove it", "where is the evidence", "can you show",
		"do you have proof", "what proof",
	}
)

// Accountability tallies elaboration demands aimed at each proposer by
// other speakers shortly after their topics start. A response counts at
// most once per category. Records are sorted by speaker.
func (a *Analyzer) Accountability(topics []model.Topic, idx *turn.Index) []model.AccountabilityRecord {
	acc := make(map[string]*model.AccountabilityRecord)
	for _, t := range topics {
		rec, ok := acc[t.Proposer]
		if !ok {
			rec = &model.AccountabilityRecord{Speaker: t.Proposer, TopicsProposed: []string{}}
			acc[t.Proposer] = rec
		}
		rec.TopicsProposed = append(rec.TopicsProposed, t.ID)

		for _, j := range idx.After(t.StartTime, a.Config.AccountabilityWindow) {
			if idx.Turn(j).Speaker == t.Proposer {
				continue
			}
			text := strings.ToLower(idx.Text(j))
			if contains(text, ClarificationPhrases) {
				rec.ClarificationRequests++
			}
			if contains(text, JustificationPhrases) {
				rec.JustificationRequests++
			}
			if contains(text, EvidencePhrases) {
				rec.EvidenceRequests++
			}
		}
	}

	out := make([]model.AccountabilityRecord, 0, len(acc))
	for _, rec := range acc {
		rec.TotalDemands = rec.ClarificationRequests + rec.JustificationRequests + rec.EvidenceRequests
		rec.AccountabilityRate = float64(rec.TotalDemands) / float64(len(rec.TopicsProposed))
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Speaker < out[j].Speaker })
	return out
}
