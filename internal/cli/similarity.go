package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/talkgraph/internal/similarity"
)

func init() {
	cmd := &cobra.Command{
		Use:   "similarity [text]...",
		Short: "Score pairwise similarity between texts",
		Long:  "Print the similarity matrix the topic tracker would compute for the given texts.",
		Args:  cobra.MinimumNArgs(2),
		Run:   runSimilarity,
	}

	RootCmd.AddCommand(cmd)
}

func runSimilarity(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	engine := similarity.NewEngine(cfg.Similarity.MaxFeatures)

	strategy := engine.Fallback.Name()
	if engine.Primary.Applicable(args) {
		strategy = engine.Primary.Name()
	}
	m := engine.Matrix(args)

	if textFormat() {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "strategy %s\n", strategy)
		for i := range m {
			for j := range m[i] {
				fmt.Fprintf(w, " %5.3f", m[i][j])
			}
			fmt.Fprintf(w, "  %s\n", excerpt(args[i], 40))
		}
		return
	}
	printJSON(cmd, map[string]interface{}{
		"strategy": strategy,
		"texts":    args,
		"matrix":   m,
	})
}
