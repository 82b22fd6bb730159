package annotation

import (
	"math"

	"github.com/rcliao/talkgraph/internal/model"
)

// Alignment pairs a structural topic with the annotation covering the same
// time span.
type Alignment struct {
	TopicID          string `json:"topic_id"`
	AnnotationTopic  string `json:"annotation_topic_id"`
	StructuralStatus string `json:"structural_status"`
	AnnotatedStatus  string `json:"annotated_status"`
	StatusMatch      bool   `json:"status_match"`
}

// Comparison summarises agreement between structural topics and
// annotations.
type Comparison struct {
	StructuralCount        int            `json:"structural_count"`
	AnnotatedCount         int            `json:"annotated_count"`
	Aligned                []Alignment    `json:"aligned_topics"`
	StructuralOnly         []string       `json:"structural_only"`
	AnnotatedOnly          []string       `json:"annotated_only"`
	StatusMatches          int            `json:"status_matches"`
	StatusDistribution     map[string]int `json:"status_distribution"`
	RelationDistribution   map[string]int `json:"relation_distribution"`
	ConfidenceDistribution map[string]int `json:"confidence_distribution"`
}

type span struct{ start, end float64 }

func spanOf(start, end float64) span {
	return span{math.Round(start*10) / 10, math.Round(end*10) / 10}
}

// Compare aligns topics and annotations whose start and end times agree to
// a tenth of a second. When several share a span the first one wins.
func Compare(topics []model.Topic, anns []model.Annotation) Comparison {
	c := Comparison{
		StructuralCount:        len(topics),
		AnnotatedCount:         len(anns),
		Aligned:                []Alignment{},
		StructuralOnly:         []string{},
		AnnotatedOnly:          []string{},
		StatusDistribution:     map[string]int{},
		RelationDistribution:   map[string]int{},
		ConfidenceDistribution: map[string]int{},
	}

	bySpan := make(map[span]model.Annotation, len(anns))
	for _, a := range anns {
		k := spanOf(a.StartTime, a.EndTime)
		if _, ok := bySpan[k]; !ok {
			bySpan[k] = a
		}
		c.StatusDistribution[a.Status]++
		c.ConfidenceDistribution[a.Confidence]++
		for _, o := range a.SpeakerOrientations {
			c.RelationDistribution[o.Relation]++
		}
	}

	structural := make(map[span]bool, len(topics))
	for _, t := range topics {
		k := spanOf(t.StartTime, t.EndTime)
		structural[k] = true
		a, ok := bySpan[k]
		if !ok {
			c.StructuralOnly = append(c.StructuralOnly, t.ID)
			continue
		}
		al := Alignment{
			TopicID:          t.ID,
			AnnotationTopic:  a.TopicID,
			StructuralStatus: t.Status,
			AnnotatedStatus:  a.Status,
			StatusMatch:      t.Status == a.Status,
		}
		if al.StatusMatch {
			c.StatusMatches++
		}
		c.Aligned = append(c.Aligned, al)
	}
	for _, a := range anns {
		if !structural[spanOf(a.StartTime, a.EndTime)] {
			c.AnnotatedOnly = append(c.AnnotatedOnly, a.TopicID)
		}
	}
	return c
}
