// Package annotation handles records produced by a downstream annotator:
// loading and validating them, attaching them to topics by id, comparing
// them with the structural topics, and preparing the candidate windows an
// annotator is given.
package annotation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rcliao/talkgraph/internal/model"
)

// InvalidError reports an annotation that failed validation.
type InvalidError struct {
	Index  int
	Reason string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("annotation %d: %s", e.Index, e.Reason)
}

// Load decodes annotations from r. Both {"annotations": [...]} and a bare
// array are accepted. Every invalid record is reported.
func Load(r io.Reader) ([]model.Annotation, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("annotation: read: %w", err)
	}
	data = bytes.TrimSpace(data)

	var anns []model.Annotation
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &anns); err != nil {
			return nil, fmt.Errorf("annotation: decode: %w", err)
		}
	} else {
		var doc struct {
			Annotations []model.Annotation `json:"annotations"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("annotation: decode: %w", err)
		}
		anns = doc.Annotations
	}
	if err := Validate(anns); err != nil {
		return nil, err
	}
	if anns == nil {
		anns = []model.Annotation{}
	}
	return anns, nil
}

// LoadFile reads annotations from path.
func LoadFile(path string) ([]model.Annotation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("annotation: open %q: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Validate checks topic ids, confidence levels and relation labels.
func Validate(anns []model.Annotation) error {
	var errs []error
	for i, a := range anns {
		if a.TopicID == "" {
			errs = append(errs, &InvalidError{Index: i, Reason: "missing topic_id"})
		}
		if a.Confidence != "" && !model.ValidConfidences[a.Confidence] {
			errs = append(errs, &InvalidError{Index: i, Reason: fmt.Sprintf("unknown confidence %q", a.Confidence)})
		}
		for _, o := range a.SpeakerOrientations {
			if !model.ValidRelations[o.Relation] {
				errs = append(errs, &InvalidError{Index: i, Reason: fmt.Sprintf("unknown relation %q for %s", o.Relation, o.Speaker)})
			}
		}
	}
	return errors.Join(errs...)
}

// Attach keys annotations by topic id. Later annotations for the same topic
// replace earlier ones. Ids that match no topic are kept and returned in
// unknown, in input order. Topics are never modified.
func Attach(topics []model.Topic, anns []model.Annotation) (byTopic map[string]model.Annotation, unknown []string) {
	known := make(map[string]bool, len(topics))
	for _, t := range topics {
		known[t.ID] = true
	}
	byTopic = make(map[string]model.Annotation, len(anns))
	unknown = []string{}
	for _, a := range anns {
		if _, seen := byTopic[a.TopicID]; !seen && !known[a.TopicID] {
			unknown = append(unknown, a.TopicID)
		}
		byTopic[a.TopicID] = a
	}
	return byTopic, unknown
}
