// Package observe records pipeline metrics through the OpenTelemetry
// Metrics API. Tests should build their own [Metrics] with [NewMetrics] and a
// manual reader rather than use [Default].
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/rcliao/talkgraph/internal/model"
)

// meterName is the instrumentation scope for all talkgraph metrics.
const meterName = "github.com/rcliao/talkgraph"

// Metrics holds the pipeline's instruments. All fields are safe for
// concurrent use.
type Metrics struct {
	// StageDuration tracks per-stage latency. Use with attribute
	// attribute.String("stage", ...).
	StageDuration metric.Float64Histogram

	// Topics counts detected topics. Use with attribute
	// attribute.String("status", ...).
	Topics metric.Int64Counter

	// SimilarityFallbacks counts similarity matrices scored by the fallback
	// strategy.
	SimilarityFallbacks metric.Int64Counter
}

// stageBuckets are histogram boundaries (seconds) for batch stages.
var stageBuckets = []float64{
	0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30,
}

// NewMetrics creates every instrument from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.StageDuration, err = m.Float64Histogram("talkgraph.stage.duration",
		metric.WithDescription("Latency of one analysis stage."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(stageBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Topics, err = m.Int64Counter("talkgraph.topics",
		metric.WithDescription("Detected topics by terminal status."),
	); err != nil {
		return nil, err
	}
	if met.SimilarityFallbacks, err = m.Int64Counter("talkgraph.similarity.fallbacks",
		metric.WithDescription("Similarity matrices scored by the fallback strategy."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// Default returns the package-level instance built on
// [otel.GetMeterProvider]. It panics if instrument creation fails.
func Default() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordStage records how long a stage took.
func (m *Metrics) RecordStage(ctx context.Context, stage string, d time.Duration) {
	m.StageDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(attribute.String("stage", stage)),
	)
}

// RecordTopics counts topics by status.
func (m *Metrics) RecordTopics(ctx context.Context, topics []model.Topic) {
	for _, t := range topics {
		m.Topics.Add(ctx, 1, metric.WithAttributes(attribute.String("status", t.Status)))
	}
}

// RecordFallbacks adds n fallback scorings.
func (m *Metrics) RecordFallbacks(ctx context.Context, n int64) {
	if n > 0 {
		m.SimilarityFallbacks.Add(ctx, n)
	}
}
