// Package chunker packs turn contexts into size-bounded text packets for an
// annotator's prompt window.
package chunker

import (
	"fmt"
	"strings"

	"github.com/rcliao/talkgraph/internal/model"
)

const (
	DefaultTargetSize = 400
	DefaultMinSize    = 100
	DefaultMaxSize    = 600
)

// Options configures packing behavior. Sizes are in bytes of rendered text.
type Options struct {
	TargetSize int
	MinSize    int
	MaxSize    int
}

// DefaultOptions returns default packing options.
func DefaultOptions() Options {
	return Options{
		TargetSize: DefaultTargetSize,
		MinSize:    DefaultMinSize,
		MaxSize:    DefaultMaxSize,
	}
}

// Packet is a run of rendered turns and the turn range it covers.
type Packet struct {
	Text      string  `json:"text"`
	FirstTurn int     `json:"first_turn"`
	LastTurn  int     `json:"last_turn"`
	Start     float64 `json:"start_time"`
	End       float64 `json:"end_time"`
}

// Render formats one turn as a single line with its structural markers.
func Render(c model.TurnContext) string {
	var marks []string
	if c.FollowsSilence {
		marks = append(marks, "after silence")
	}
	if c.IsInterruption {
		marks = append(marks, "interruption")
	}
	if c.HasOverlap {
		marks = append(marks, "overlap")
	}
	flag := ""
	if len(marks) > 0 {
		flag = " [" + strings.Join(marks, ", ") + "]"
	}
	return fmt.Sprintf("[%d] %s (%.1fs-%.1fs)%s: %s", c.TurnIndex, c.Speaker, c.StartTime, c.EndTime, flag, c.Text)
}

// Pack merges consecutive turns into packets up to TargetSize. A single turn
// longer than MaxSize is hard-split on word boundaries. A final packet
// shorter than MinSize joins the previous one when the result fits MaxSize.
func Pack(contexts []model.TurnContext, opts Options) []Packet {
	if opts.TargetSize == 0 {
		opts = DefaultOptions()
	}

	var results []Packet
	var accum *Packet

	flushAccum := func() {
		if accum != nil {
			results = append(results, *accum)
			accum = nil
		}
	}

	for _, c := range contexts {
		line := Render(c)
		if len(line) > opts.MaxSize {
			flushAccum()
			results = append(results, hardSplit(line, c, opts)...)
			continue
		}
		if accum == nil {
			accum = &Packet{Text: line, FirstTurn: c.TurnIndex, LastTurn: c.TurnIndex, Start: c.StartTime, End: c.EndTime}
			continue
		}

		combined := accum.Text + "\n" + line
		if len(combined) <= opts.TargetSize {
			accum.Text = combined
			accum.LastTurn = c.TurnIndex
			accum.End = c.EndTime
		} else {
			flushAccum()
			accum = &Packet{Text: line, FirstTurn: c.TurnIndex, LastTurn: c.TurnIndex, Start: c.StartTime, End: c.EndTime}
		}
	}
	flushAccum()

	if n := len(results); n >= 2 && len(results[n-1].Text) < opts.MinSize {
		prev, last := results[n-2], results[n-1]
		if combined := prev.Text + "\n" + last.Text; len(combined) <= opts.MaxSize {
			prev.Text = combined
			prev.LastTurn = last.LastTurn
			prev.End = last.End
			results = append(results[:n-2], prev)
		}
	}
	return results
}

// hardSplit breaks one oversized rendered turn into TargetSize pieces on
// word boundaries. Every piece keeps the turn's range.
func hardSplit(line string, c model.TurnContext, opts Options) []Packet {
	var results []Packet
	var current []string
	curLen := 0

	emit := func() {
		t := strings.Join(current, " ")
		if t != "" {
			results = append(results, Packet{Text: t, FirstTurn: c.TurnIndex, LastTurn: c.TurnIndex, Start: c.StartTime, End: c.EndTime})
		}
		current = nil
		curLen = 0
	}

	for _, w := range strings.Fields(line) {
		if curLen+len(w) > opts.TargetSize && len(current) > 0 {
			emit()
		}
		current = append(current, w)
		curLen += len(w) + 1 // +1 for the joining space
	}
	emit()
	return results
}
