package interaction

import (
	"math"
	"sort"

	"github.com/rcliao/talkgraph/internal/model"
)

// Inequality computes distribution metrics over per-speaker speaking time.
// It returns the zero value when nobody spoke.
func Inequality(times []model.SpeakingTime) model.Inequality {
	xs := make([]float64, 0, len(times))
	var total float64
	for _, st := range times {
		xs = append(xs, st.Seconds)
		total += st.Seconds
	}
	n := len(xs)
	if n == 0 || total == 0 {
		return model.Inequality{}
	}

	// Gini over ascending values.
	sort.Float64s(xs)
	var weighted float64
	for i, x := range xs {
		weighted += float64(i+1) * x
	}
	gini := 2*weighted/(float64(n)*total) - float64(n+1)/float64(n)

	desc := make([]float64, n)
	for i, x := range xs {
		desc[n-1-i] = x
	}
	topCount := max(1, n/10)
	top3 := 100.0
	if n >= 3 {
		top3 = sumOf(desc[:3]) / total * 100
	}

	var entropy float64
	for _, x := range xs {
		if x <= 0 {
			continue
		}
		p := x / total
		entropy -= p * math.Log2(p)
	}
	maxEntropy := math.Log2(float64(n))
	var normalized float64
	if maxEntropy > 0 {
		normalized = entropy / maxEntropy
	}

	return model.Inequality{
		Gini:              gini,
		Top10PercentShare: sumOf(desc[:topCount]) / total * 100,
		Top3Share:         top3,
		Entropy:           entropy,
		NormalizedEntropy: normalized,
		MaxEntropy:        maxEntropy,
	}
}

// Participation divides [0, duration] into equal slices and sums each
// speaker's non-filler speaking time inside every slice.
func Participation(segments []model.Segment, duration float64, slices int) []model.ParticipationSlice {
	out := []model.ParticipationSlice{}
	if slices <= 0 || duration <= 0 {
		return out
	}
	width := duration / float64(slices)
	for i := 0; i < slices; i++ {
		out = append(out, model.ParticipationSlice{
			Start:    float64(i) * width,
			End:      float64(i+1) * width,
			Speakers: map[string]float64{},
		})
	}

	for _, seg := range segments {
		if seg.Filler || seg.End <= seg.Start {
			continue
		}
		first := max(0, int(seg.Start/width))
		for i := first; i < slices; i++ {
			sl := &out[i]
			if sl.Start >= seg.End {
				break
			}
			lo, hi := math.Max(seg.Start, sl.Start), math.Min(seg.End, sl.End)
			if lo < hi {
				sl.Speakers[seg.Speaker] += hi - lo
			}
		}
	}
	return out
}

func sumOf(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}
