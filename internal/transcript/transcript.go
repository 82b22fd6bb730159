// Package transcript loads diarized transcript segments and normalizes them:
// each segment gets a resolved speaker and a filler flag.
package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rcliao/talkgraph/internal/model"
)

// MalformedInputError reports a segment that cannot be placed on the
// timeline. Index is -1 when the document itself is unreadable.
type MalformedInputError struct {
	Index  int
	Field  string
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Index < 0 {
		return "transcript: malformed input: " + e.Reason
	}
	return fmt.Sprintf("transcript: malformed segment %d: %s: %s", e.Index, e.Field, e.Reason)
}

// Word is a word-level annotation inside a raw segment.
type Word struct {
	Word    string   `json:"word"`
	Start   *float64 `json:"start,omitempty"`
	End     *float64 `json:"end,omitempty"`
	Speaker string   `json:"speaker,omitempty"`
}

// RawSegment is a segment as produced by the transcript source.
type RawSegment struct {
	Speaker string   `json:"speaker,omitempty"`
	Start   *float64 `json:"start"`
	End     *float64 `json:"end"`
	Text    string   `json:"text"`
	Words   []Word   `json:"words,omitempty"`
}

type document struct {
	Segments []RawSegment `json:"segments"`
}

// Load decodes a transcript from r. The document is either an object with a
// "segments" array or a bare array of segments. Segment order is preserved.
func Load(r io.Reader) ([]model.Segment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("transcript: read: %w", err)
	}

	var raws []RawSegment
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0:
		return nil, &MalformedInputError{Index: -1, Reason: "empty document"}
	case trimmed[0] == '[':
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, &MalformedInputError{Index: -1, Reason: err.Error()}
		}
	default:
		var doc document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, &MalformedInputError{Index: -1, Reason: err.Error()}
		}
		raws = doc.Segments
	}

	return Normalize(raws)
}

// LoadFile opens path and decodes it with [Load].
func LoadFile(path string) ([]model.Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("transcript: open %q: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Normalize validates raw segments and resolves their speakers.
func Normalize(raws []RawSegment) ([]model.Segment, error) {
	segments := make([]model.Segment, 0, len(raws))
	for i, raw := range raws {
		if raw.Start == nil {
			return nil, &MalformedInputError{Index: i, Field: "start", Reason: "missing"}
		}
		if raw.End == nil {
			return nil, &MalformedInputError{Index: i, Field: "end", Reason: "missing"}
		}
		if *raw.Start > *raw.End {
			return nil, &MalformedInputError{Index: i, Field: "end",
				Reason: fmt.Sprintf("end %v precedes start %v", *raw.End, *raw.Start)}
		}
		segments = append(segments, model.Segment{
			Speaker: ResolveSpeaker(raw),
			Start:   *raw.Start,
			End:     *raw.End,
			Text:    raw.Text,
			Filler:  IsFiller(raw.Text),
		})
	}
	return segments, nil
}
