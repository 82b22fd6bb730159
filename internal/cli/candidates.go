package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/talkgraph/internal/annotation"
	"github.com/rcliao/talkgraph/internal/chunker"
)

func init() {
	cmd := &cobra.Command{
		Use:   "candidates [transcript.json]",
		Short: "Prepare topic candidates for an annotator",
		Long: "Analyze a transcript and print each topic candidate with its surrounding turns, " +
			"plus the whole transcript packed into prompt-sized packets.",
		Args: cobra.ExactArgs(1),
		Run:  runCandidates,
	}

	def := chunker.DefaultOptions()
	cmd.Flags().Int("context", 3, "Turns of context on each side of a candidate")
	cmd.Flags().Int("target", def.TargetSize, "Target packet size in bytes")
	cmd.Flags().Int("min", def.MinSize, "Minimum size of a trailing packet")
	cmd.Flags().Int("max", def.MaxSize, "Maximum packet size in bytes")

	RootCmd.AddCommand(cmd)
}

func runCandidates(cmd *cobra.Command, args []string) {
	window, _ := cmd.Flags().GetInt("context")
	target, _ := cmd.Flags().GetInt("target")
	minSize, _ := cmd.Flags().GetInt("min")
	maxSize, _ := cmd.Flags().GetInt("max")

	cfg := loadConfig()
	res := analyzeFile(cmd.Context(), cfg, args[0], analyzeOptions{})

	contexts := annotation.Contexts(res.Index, cfg.Interruption.GapThreshold, cfg.Agenda.SilenceThreshold)
	printJSON(cmd, map[string]interface{}{
		"candidates": annotation.Candidates(contexts, res.Topics, window),
		"packets": chunker.Pack(contexts, chunker.Options{
			TargetSize: target,
			MinSize:    minSize,
			MaxSize:    maxSize,
		}),
	})
}
