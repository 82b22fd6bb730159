// Package interaction builds the speaker interaction graph: transitions
// between adjacent segments, duration-weighted response chains, and the
// participation statistics derived from speaking time.
package interaction

import (
	"sort"

	"github.com/rcliao/talkgraph/internal/model"
)

type pair struct{ from, to string }

func sortedPairs[V any](m map[pair]V) []pair {
	keys := make([]pair, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].from != keys[j].from {
			return keys[i].from < keys[j].from
		}
		return keys[i].to < keys[j].to
	})
	return keys
}

// Transitions counts adjacent segment pairs with differing speakers and
// records every gap, negative gaps included. Sorted by (from, to).
func Transitions(segments []model.Segment) []model.Transition {
	acc := make(map[pair]*model.Transition)
	for i := 0; i+1 < len(segments); i++ {
		cur, next := segments[i], segments[i+1]
		if cur.Speaker == next.Speaker {
			continue
		}
		k := pair{cur.Speaker, next.Speaker}
		tr, ok := acc[k]
		if !ok {
			tr = &model.Transition{From: k.from, To: k.to}
			acc[k] = tr
		}
		tr.Count++
		tr.Gaps = append(tr.Gaps, next.Start-cur.End)
	}

	out := make([]model.Transition, 0, len(acc))
	for _, k := range sortedPairs(acc) {
		tr := acc[k]
		tr.AvgGap = mean(tr.Gaps)
		out = append(out, *tr)
	}
	return out
}

// ResponseChains weights each transition by the summed duration of the
// responder's contiguous run of segments that follows it.
func ResponseChains(segments []model.Segment) []model.ResponseEdge {
	acc := make(map[pair]*model.ResponseEdge)
	for i := 0; i+1 < len(segments); i++ {
		cur, next := segments[i], segments[i+1]
		if cur.Speaker == next.Speaker {
			continue
		}
		var chain float64
		for j := i + 1; j < len(segments) && segments[j].Speaker == next.Speaker; j++ {
			chain += segments[j].Duration()
		}

		k := pair{cur.Speaker, next.Speaker}
		e, ok := acc[k]
		if !ok {
			e = &model.ResponseEdge{From: k.from, To: k.to}
			acc[k] = e
		}
		e.Frequency++
		e.TotalDuration += chain
		if chain > e.MaxDuration {
			e.MaxDuration = chain
		}
	}

	out := make([]model.ResponseEdge, 0, len(acc))
	for _, k := range sortedPairs(acc) {
		e := acc[k]
		e.AvgDuration = e.TotalDuration / float64(e.Frequency)
		out = append(out, *e)
	}
	return out
}

// Attractors credits each edge's source speaker with the responses it
// elicited. Sorted by descending total response duration, then speaker.
func Attractors(edges []model.ResponseEdge) []model.Attractor {
	acc := make(map[string]*model.Attractor)
	for _, e := range edges {
		a, ok := acc[e.From]
		if !ok {
			a = &model.Attractor{Speaker: e.From}
			acc[e.From] = a
		}
		a.IncomingResponses += e.Frequency
		a.TotalResponseDuration += e.TotalDuration
		if e.MaxDuration > a.MaxResponseDuration {
			a.MaxResponseDuration = e.MaxDuration
		}
	}

	out := make([]model.Attractor, 0, len(acc))
	for _, a := range acc {
		if a.IncomingResponses > 0 {
			a.AvgResponseDuration = a.TotalResponseDuration / float64(a.IncomingResponses)
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalResponseDuration != out[j].TotalResponseDuration {
			return out[i].TotalResponseDuration > out[j].TotalResponseDuration
		}
		return out[i].Speaker < out[j].Speaker
	})
	return out
}

// Gaps summarises the non-negative silences between adjacent segments,
// split by whether the speaker changed.
func Gaps(segments []model.Segment) model.GapStats {
	var all, same, change []float64
	for i := 0; i+1 < len(segments); i++ {
		gap := segments[i+1].Start - segments[i].End
		if gap < 0 {
			continue
		}
		all = append(all, gap)
		if segments[i].Speaker == segments[i+1].Speaker {
			same = append(same, gap)
		} else {
			change = append(change, gap)
		}
	}
	return model.GapStats{
		MedianGap:           median(all),
		MeanGap:             mean(all),
		SameSpeakerMedian:   median(same),
		SpeakerChangeMedian: median(change),
	}
}

// AgendaIntroductions returns the first turn and every turn that opens after
// at least silence seconds since the previous turn ended.
func AgendaIntroductions(turns []model.Turn, silence float64) []model.AgendaIntroduction {
	out := []model.AgendaIntroduction{}
	for i, t := range turns {
		if i == 0 {
			out = append(out, model.AgendaIntroduction{Speaker: t.Speaker, Time: t.Start, PrecedingSilence: t.Start})
			continue
		}
		if gap := t.Start - turns[i-1].End; gap >= silence {
			out = append(out, model.AgendaIntroduction{Speaker: t.Speaker, Time: t.Start, PrecedingSilence: gap})
		}
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}
