package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/talkgraph/internal/analysis"
	"github.com/rcliao/talkgraph/internal/annotation"
	"github.com/rcliao/talkgraph/internal/config"
	"github.com/rcliao/talkgraph/internal/embedding"
	"github.com/rcliao/talkgraph/internal/model"
	"github.com/rcliao/talkgraph/internal/observe"
	"github.com/rcliao/talkgraph/internal/store"
	"github.com/rcliao/talkgraph/internal/transcript"
)

func init() {
	cmd := &cobra.Command{
		Use:   "analyze [transcript.json]",
		Short: "Analyze a transcript",
		Long:  "Run the full pipeline over a diarized transcript and print the result.",
		Args:  cobra.ExactArgs(1),
		Run:   runAnalyze,
	}

	cmd.Flags().Bool("save", false, "Save the run to the database")
	cmd.Flags().Bool("embed", false, "Score similarity with the configured embedding provider")
	cmd.Flags().Bool("metrics", false, "Print collected pipeline metrics to stderr")
	cmd.Flags().StringP("annotations", "a", "", "Attach annotations from a JSON file")

	RootCmd.AddCommand(cmd)
}

type analyzeOptions struct {
	embed       bool
	metrics     bool
	annotations string
}

// analyzeFile loads and analyzes one transcript.
func analyzeFile(ctx context.Context, cfg *config.Config, path string, opts analyzeOptions) *analysis.Result {
	segments, err := transcript.LoadFile(path)
	if err != nil {
		exitErr("load transcript", err)
	}

	p := analysis.New(cfg, nil)
	if opts.embed {
		p.Embedder = embedding.NewFromConfig(cfg.Embeddings)
		if p.Embedder == nil {
			exitErr("embed", errors.New("embeddings.provider is not set"))
		}
	}

	var reader *sdkmetric.ManualReader
	if opts.metrics {
		reader = sdkmetric.NewManualReader()
		m, err := observe.NewMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
		if err != nil {
			exitErr("metrics", err)
		}
		p.Metrics = m
	}

	res, err := p.Run(ctx, segments)
	if err != nil {
		exitErr("analyze", err)
	}

	if opts.annotations != "" {
		anns, err := annotation.LoadFile(opts.annotations)
		if err != nil {
			exitErr("load annotations", err)
		}
		for _, id := range res.Attach(anns) {
			fmt.Fprintf(os.Stderr, "warning: annotation for unknown topic %s\n", id)
		}
	}

	if reader != nil {
		var rm metricdata.ResourceMetrics
		if err := reader.Collect(ctx, &rm); err != nil {
			exitErr("collect metrics", err)
		}
		printMetrics(rm)
	}
	return res
}

func printMetrics(rm metricdata.ResourceMetrics) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					stage, _ := dp.Attributes.Value("stage")
					fmt.Fprintf(os.Stderr, "%s stage=%s count=%d sum=%.4fs\n", m.Name, stage.Emit(), dp.Count, dp.Sum)
				}
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					fmt.Fprintf(os.Stderr, "%s %s value=%d\n", m.Name, dp.Attributes.Encoded(attribute.DefaultEncoder()), dp.Value)
				}
			}
		}
	}
}

func runAnalyze(cmd *cobra.Command, args []string) {
	save, _ := cmd.Flags().GetBool("save")
	embed, _ := cmd.Flags().GetBool("embed")
	metrics, _ := cmd.Flags().GetBool("metrics")
	anns, _ := cmd.Flags().GetString("annotations")

	cfg := loadConfig()
	res := analyzeFile(cmd.Context(), cfg, args[0], analyzeOptions{embed: embed, metrics: metrics, annotations: anns})

	if save {
		stored := *cfg
		stored.Embeddings.APIKey = ""
		cfgYAML, err := yaml.Marshal(&stored)
		if err != nil {
			exitErr("encode config", err)
		}
		s, err := openStore(cfg)
		if err != nil {
			exitErr("open store", err)
		}
		defer s.Close()

		run, err := s.SaveRun(cmd.Context(), store.SaveParams{Source: args[0], Config: string(cfgYAML), Result: res})
		if err != nil {
			exitErr("save run", err)
		}
		if len(res.Annotations) > 0 {
			if _, err := s.PutAnnotations(cmd.Context(), run.ID, annotationList(res)); err != nil {
				exitErr("save annotations", err)
			}
		}
		if !textFormat() {
			printJSON(cmd, map[string]interface{}{"run": run, "result": res})
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved run %s\n", run.ID)
	}

	if textFormat() {
		printSummary(cmd, res)
		return
	}
	printJSON(cmd, res)
}

// annotationList flattens attached annotations in topic id order.
func annotationList(res *analysis.Result) []model.Annotation {
	ids := make([]string, 0, len(res.Annotations))
	for id := range res.Annotations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]model.Annotation, 0, len(ids))
	for _, id := range ids {
		out = append(out, res.Annotations[id])
	}
	return out
}
