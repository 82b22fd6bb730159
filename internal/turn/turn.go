// Package turn aggregates segments into speaker turns and indexes which
// segments belong to which turn, so downstream analyzers never rescan the
// transcript to recover a turn's text.
package turn

import (
	"sort"
	"strings"

	"github.com/rcliao/talkgraph/internal/model"
	"github.com/rcliao/talkgraph/internal/transcript"
)

// Aggregate merges consecutive same-speaker segments into turns. Turn
// boundaries depend only on speaker identity, never on filler status.
func Aggregate(segments []model.Segment) []model.Turn {
	return NewIndex(segments).Turns()
}

// Index maps turns to their contiguous segment ranges. It is built once per
// run and is read-only afterwards.
type Index struct {
	segments []model.Segment
	turns    []model.Turn
	ranges   [][2]int // [first, last) segment indices per turn
	turnOf   []int    // turn index per segment
	texts    []string
}

// NewIndex aggregates segments into turns in one pass.
func NewIndex(segments []model.Segment) *Index {
	idx := &Index{
		segments: segments,
		turns:    []model.Turn{},
		turnOf:   make([]int, len(segments)),
	}

	first := 0
	for i, seg := range segments {
		if i > 0 && seg.Speaker == segments[i-1].Speaker {
			t := &idx.turns[len(idx.turns)-1]
			t.End = seg.End
			t.Duration = t.End - t.Start
			idx.turnOf[i] = len(idx.turns) - 1
			continue
		}
		if i > 0 {
			idx.ranges = append(idx.ranges, [2]int{first, i})
		}
		first = i
		idx.turns = append(idx.turns, model.Turn{
			Speaker:  seg.Speaker,
			Start:    seg.Start,
			End:      seg.End,
			Duration: seg.End - seg.Start,
		})
		idx.turnOf[i] = len(idx.turns) - 1
	}
	if len(segments) > 0 {
		idx.ranges = append(idx.ranges, [2]int{first, len(segments)})
	}

	idx.texts = make([]string, len(idx.turns))
	for t, r := range idx.ranges {
		var parts []string
		for _, seg := range segments[r[0]:r[1]] {
			if seg.Filler {
				continue
			}
			if c := transcript.CleanText(seg.Text); c != "" {
				parts = append(parts, c)
			}
		}
		idx.texts[t] = strings.Join(parts, " ")
	}
	return idx
}

// Segments returns the indexed segment sequence.
func (x *Index) Segments() []model.Segment { return x.segments }

// Turns returns the turn sequence in time order.
func (x *Index) Turns() []model.Turn { return x.turns }

// Len returns the number of turns.
func (x *Index) Len() int { return len(x.turns) }

// Turn returns turn i.
func (x *Index) Turn(i int) model.Turn { return x.turns[i] }

// Range returns the half-open segment range [first, last) of turn i.
func (x *Index) Range(i int) (first, last int) { return x.ranges[i][0], x.ranges[i][1] }

// TurnOf returns the index of the turn containing segment i.
func (x *Index) TurnOf(segment int) int { return x.turnOf[segment] }

// Text returns the cleaned, space-joined non-filler text of turn i.
func (x *Index) Text(i int) string { return x.texts[i] }

// Texts returns every turn text in turn order.
func (x *Index) Texts() []string { return x.texts }

// After returns the indices of turns whose start lies strictly inside
// (from, from+window). A negative window means unbounded.
func (x *Index) After(from, window float64) []int {
	var out []int
	for i, t := range x.turns {
		if t.Start <= from {
			continue
		}
		if window >= 0 && t.Start >= from+window {
			continue
		}
		out = append(out, i)
	}
	return out
}

// Stats aggregates turn counts and durations per speaker, sorted by speaker.
func Stats(turns []model.Turn) []model.TurnStats {
	bySpeaker := make(map[string]*model.TurnStats)
	for _, t := range turns {
		st, ok := bySpeaker[t.Speaker]
		if !ok {
			st = &model.TurnStats{Speaker: t.Speaker}
			bySpeaker[t.Speaker] = st
		}
		st.Count++
		st.TotalDuration += t.Duration
		st.Durations = append(st.Durations, t.Duration)
	}

	out := make([]model.TurnStats, 0, len(bySpeaker))
	for _, st := range bySpeaker {
		st.AvgDuration = st.TotalDuration / float64(st.Count)
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Speaker < out[j].Speaker })
	return out
}

// SpeakingTime sums non-filler segment durations per speaker. The meeting
// duration is the latest segment end. Results are sorted by descending time,
// then speaker.
func SpeakingTime(segments []model.Segment) ([]model.SpeakingTime, float64) {
	totals := make(map[string]float64)
	var duration float64
	for _, seg := range segments {
		if !seg.Filler {
			totals[seg.Speaker] += seg.Duration()
		}
		if seg.End > duration {
			duration = seg.End
		}
	}

	out := make([]model.SpeakingTime, 0, len(totals))
	for speaker, secs := range totals {
		st := model.SpeakingTime{Speaker: speaker, Seconds: secs}
		if duration > 0 {
			st.Percentage = secs / duration * 100
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Seconds != out[j].Seconds {
			return out[i].Seconds > out[j].Seconds
		}
		return out[i].Speaker < out[j].Speaker
	})
	return out, duration
}
