// Package analysis runs the full conversation-structure pipeline over one
// transcript: turns, interaction graph, interruptions, topics and relational
// signals.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rcliao/talkgraph/internal/annotation"
	"github.com/rcliao/talkgraph/internal/config"
	"github.com/rcliao/talkgraph/internal/embedding"
	"github.com/rcliao/talkgraph/internal/interaction"
	"github.com/rcliao/talkgraph/internal/interruption"
	"github.com/rcliao/talkgraph/internal/model"
	"github.com/rcliao/talkgraph/internal/observe"
	"github.com/rcliao/talkgraph/internal/relational"
	"github.com/rcliao/talkgraph/internal/similarity"
	"github.com/rcliao/talkgraph/internal/topic"
	"github.com/rcliao/talkgraph/internal/turn"
)

// Result is everything one run produces. Every collection is ordered so that
// identical input marshals to identical JSON.
type Result struct {
	SegmentCount    int                  `json:"segment_count"`
	MeetingDuration float64              `json:"meeting_duration"`
	Similarity      string               `json:"similarity_strategy"`
	Turns           []model.Turn         `json:"turns"`
	SpeakingTime    []model.SpeakingTime `json:"speaking_time"`
	TurnStats       []model.TurnStats    `json:"turn_stats"`

	Transitions   []model.Transition         `json:"transitions"`
	ResponseGraph []model.ResponseEdge       `json:"response_graph"`
	Attractors    []model.Attractor          `json:"attractors"`
	Gaps          model.GapStats             `json:"gaps"`
	Agenda        []model.AgendaIntroduction `json:"agenda_introductions"`
	Inequality    model.Inequality           `json:"inequality"`
	Participation []model.ParticipationSlice `json:"participation"`

	Interruptions model.InterruptionReport `json:"interruptions"`
	Topics        []model.Topic            `json:"topics"`
	Relational    model.RelationalReport   `json:"relational"`

	Annotations        map[string]model.Annotation `json:"annotations,omitempty"`
	UnknownAnnotations []string                    `json:"unknown_annotations,omitempty"`

	// Index is the turn index the run was computed from. It is not
	// serialized.
	Index *turn.Index `json:"-"`
}

// Attach keys annotations onto the result by topic id and returns the ids
// that match no topic. Topic statuses are left untouched.
func (r *Result) Attach(anns []model.Annotation) []string {
	r.Annotations, r.UnknownAnnotations = annotation.Attach(r.Topics, anns)
	return r.UnknownAnnotations
}

// StoredTurns pairs every turn with its index and text.
func (r *Result) StoredTurns() []model.StoredTurn {
	out := make([]model.StoredTurn, len(r.Turns))
	for i, t := range r.Turns {
		out[i] = model.StoredTurn{Index: i, Turn: t}
		if r.Index != nil {
			out[i].Text = r.Index.Text(i)
		}
	}
	return out
}

// Pipeline wires the analyzers together. Metrics and Embedder are optional.
type Pipeline struct {
	Config   *config.Config
	Engine   *similarity.Engine
	Embedder embedding.Embedder
	Logger   *slog.Logger
	Metrics  *observe.Metrics
}

// New returns a pipeline over cfg with the default similarity engine.
func New(cfg *config.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		Config: cfg,
		Engine: similarity.NewEngine(cfg.Similarity.MaxFeatures),
		Logger: logger,
	}
}

// Run analyzes segments. The index is built once and shared read-only by
// every stage; independent stages run concurrently.
func (p *Pipeline) Run(ctx context.Context, segments []model.Segment) (*Result, error) {
	cfg := p.Config
	res := &Result{SegmentCount: len(segments)}

	p.stage(ctx, "turns", func() {
		res.Index = turn.NewIndex(segments)
		res.Turns = res.Index.Turns()
		res.TurnStats = turn.Stats(res.Turns)
		res.SpeakingTime, res.MeetingDuration = turn.SpeakingTime(segments)
	})
	idx := res.Index

	engine, err := p.engine(ctx, idx)
	if err != nil {
		return nil, err
	}
	res.Similarity = engine.Primary.Name()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p.stage(gctx, "interaction", func() {
			res.Transitions = interaction.Transitions(segments)
			res.ResponseGraph = interaction.ResponseChains(segments)
			res.Attractors = interaction.Attractors(res.ResponseGraph)
			res.Gaps = interaction.Gaps(segments)
			res.Agenda = interaction.AgendaIntroductions(res.Turns, cfg.Agenda.SilenceThreshold)
			res.Inequality = interaction.Inequality(res.SpeakingTime)
			res.Participation = interaction.Participation(segments, res.MeetingDuration, cfg.Participation.Slices)
		})
		return gctx.Err()
	})
	g.Go(func() error {
		p.stage(gctx, "interruptions", func() {
			res.Interruptions = interruption.Analyze(idx, cfg.Interruption.GapThreshold, cfg.Interruption.FloorTolerance)
		})
		return gctx.Err()
	})
	g.Go(func() error {
		p.stage(gctx, "topics", func() {
			res.Topics = topic.New(engine, cfg.Topics).Track(idx)
		})
		if err := gctx.Err(); err != nil {
			return err
		}
		var err error
		p.stage(gctx, "relational", func() {
			res.Relational, err = relational.New(engine, cfg.Relational, cfg.Orientation).Analyze(gctx, res.Topics, idx)
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}

	if p.Metrics != nil {
		p.Metrics.RecordTopics(ctx, res.Topics)
		p.Metrics.RecordFallbacks(ctx, engine.Fallbacks())
	}
	p.Logger.Info("analysis complete",
		"segments", len(segments),
		"turns", len(res.Turns),
		"topics", len(res.Topics),
		"similarity", res.Similarity,
		"similarity_fallbacks", engine.Fallbacks(),
	)
	return res, nil
}

// engine returns a run-local engine so fallback counts belong to this run.
// With an embedder configured, every turn text is embedded up front and the
// vectors replace the vector-space primary.
func (p *Pipeline) engine(ctx context.Context, idx *turn.Index) (*similarity.Engine, error) {
	e := &similarity.Engine{Primary: p.Engine.Primary, Fallback: p.Engine.Fallback}
	if p.Embedder == nil {
		return e, nil
	}
	var vecs map[string]embedding.Vector
	var err error
	p.stage(ctx, "embeddings", func() {
		vecs, err = embedding.EmbedAll(ctx, p.Embedder, idx.Texts(), p.Config.Embeddings.Concurrency)
	})
	if err != nil {
		return nil, fmt.Errorf("analysis: embeddings: %w", err)
	}
	e.Primary = &embedding.Strategy{Vectors: vecs}
	return e, nil
}

func (p *Pipeline) stage(ctx context.Context, name string, fn func()) {
	start := time.Now()
	fn()
	d := time.Since(start)
	if p.Metrics != nil {
		p.Metrics.RecordStage(ctx, name, d)
	}
	p.Logger.Debug("stage done", "stage", name, "took", d)
}
