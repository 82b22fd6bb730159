// Package interruption detects overlaps and interruption attempts between
// adjacent segments and classifies whether the interrupted speaker kept the
// floor.
package interruption

import (
	"sort"

	"github.com/rcliao/talkgraph/internal/model"
	"github.com/rcliao/talkgraph/internal/turn"
)

// Attempt is an interruption event plus the index of the interrupted
// segment, so the floor check can find its turn without rescanning.
type Attempt struct {
	model.InterruptionEvent
	Segment int
}

// Overlaps flags every adjacent pair where the first segment ends after the
// next one starts, regardless of speaker.
func Overlaps(segments []model.Segment) []model.OverlapEvent {
	out := []model.OverlapEvent{}
	for i := 0; i+1 < len(segments); i++ {
		cur, next := segments[i], segments[i+1]
		if cur.End > next.Start {
			out = append(out, model.OverlapEvent{
				Speaker1:        cur.Speaker,
				Speaker2:        next.Speaker,
				OverlapDuration: cur.End - next.Start,
				Time:            cur.End,
			})
		}
	}
	return out
}

// Attempts flags speaker changes whose gap is below threshold. Negative gaps
// are included.
func Attempts(segments []model.Segment, threshold float64) []Attempt {
	out := []Attempt{}
	for i := 0; i+1 < len(segments); i++ {
		cur, next := segments[i], segments[i+1]
		if cur.Speaker == next.Speaker {
			continue
		}
		gap := next.Start - cur.End
		if gap < threshold {
			out = append(out, Attempt{
				InterruptionEvent: model.InterruptionEvent{
					Interrupted: cur.Speaker,
					Interrupter: next.Speaker,
					Gap:         gap,
					Time:        cur.End,
				},
				Segment: i,
			})
		}
	}
	return out
}

// Events strips the segment indices.
func Events(attempts []Attempt) []model.InterruptionEvent {
	out := make([]model.InterruptionEvent, len(attempts))
	for i, a := range attempts {
		out[i] = a.InterruptionEvent
	}
	return out
}

// FloorOutcomes classifies each attempt. The interrupted speaker kept the
// floor when their next segment after the attempt starts before the
// interrupted turn ends, or less than tolerance seconds after it.
func FloorOutcomes(idx *turn.Index, attempts []Attempt, tolerance float64) []model.FloorOutcome {
	segments := idx.Segments()
	out := make([]model.FloorOutcome, 0, len(attempts))
	for _, a := range attempts {
		floor := idx.Turn(idx.TurnOf(a.Segment))
		o := model.FloorOutcome{
			Interrupted: a.Interrupted,
			Interrupter: a.Interrupter,
			Time:        a.Time,
		}
		for j := a.Segment + 1; j < len(segments); j++ {
			s := segments[j]
			if s.Speaker != a.Interrupted || s.Start <= a.Time {
				continue
			}
			if s.Start < floor.End || s.Start-floor.End < tolerance {
				start, gap := s.Start, s.Start-a.Time
				o.MaintainedFloor = true
				o.ContinuationTime = &start
				o.Gap = &gap
			}
			break
		}
		out = append(out, o)
	}
	return out
}

// ToleranceRates aggregates outcomes per interrupted speaker, sorted by
// speaker.
func ToleranceRates(outcomes []model.FloorOutcome) []model.ToleranceRate {
	acc := make(map[string]*model.ToleranceRate)
	for _, o := range outcomes {
		r, ok := acc[o.Interrupted]
		if !ok {
			r = &model.ToleranceRate{Speaker: o.Interrupted}
			acc[o.Interrupted] = r
		}
		r.Attempts++
		if o.MaintainedFloor {
			r.Maintained++
		}
	}

	out := make([]model.ToleranceRate, 0, len(acc))
	for _, r := range acc {
		r.ToleranceRate = float64(r.Maintained) / float64(r.Attempts)
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Speaker < out[j].Speaker })
	return out
}

// Analyze runs both detectors and the floor check.
func Analyze(idx *turn.Index, threshold, tolerance float64) model.InterruptionReport {
	attempts := Attempts(idx.Segments(), threshold)
	outcomes := FloorOutcomes(idx, attempts, tolerance)
	return model.InterruptionReport{
		Interruptions: Events(attempts),
		Overlaps:      Overlaps(idx.Segments()),
		Outcomes:      outcomes,
		Tolerance:     ToleranceRates(outcomes),
	}
}
