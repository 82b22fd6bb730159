package transcript

import (
	"regexp"
	"strings"

	"github.com/rcliao/talkgraph/internal/model"
)

// speakerLookup returns a speaker for seg, or "" when it has none.
type speakerLookup func(seg RawSegment) string

// speakerLookups are tried in order; the first non-empty answer wins.
var speakerLookups = []speakerLookup{
	segmentSpeaker,
	majorityWordSpeaker,
}

// ResolveSpeaker picks the speaker for seg: the segment-level label, else the
// most common word-level label, else [model.UnknownSpeaker].
func ResolveSpeaker(seg RawSegment) string {
	for _, lookup := range speakerLookups {
		if s := lookup(seg); s != "" {
			return s
		}
	}
	return model.UnknownSpeaker
}

func segmentSpeaker(seg RawSegment) string {
	return seg.Speaker
}

// majorityWordSpeaker breaks ties by first appearance.
func majorityWordSpeaker(seg RawSegment) string {
	counts := make(map[string]int)
	var order []string
	for _, w := range seg.Words {
		if w.Speaker == "" {
			continue
		}
		if counts[w.Speaker] == 0 {
			order = append(order, w.Speaker)
		}
		counts[w.Speaker]++
	}
	best, bestCount := "", 0
	for _, s := range order {
		if counts[s] > bestCount {
			best, bestCount = s, counts[s]
		}
	}
	return best
}

// IsFiller reports whether text carries no speech: empty after trimming, or
// only ellipsis/period placeholders.
func IsFiller(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return true
	}
	for _, r := range t {
		if r != '.' && r != '…' && r != ' ' {
			return false
		}
	}
	return true
}

var (
	dotRun     = regexp.MustCompile(`\.{3,}`)
	whitespace = regexp.MustCompile(`\s+`)
)

// CleanText trims text, collapses dot runs to "..." and whitespace runs to a
// single space.
func CleanText(text string) string {
	t := strings.TrimSpace(text)
	t = dotRun.ReplaceAllString(t, "...")
	return whitespace.ReplaceAllString(t, " ")
}
