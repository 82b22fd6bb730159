package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/talkgraph/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "context [run-id] [topic-id]",
		Short: "Assemble the turns around a topic",
		Long:  "Score turns by distance from the topic proposal, then greedily pack them into a character budget.",
		Args:  cobra.ExactArgs(2),
		Run:   runContext,
	}

	cmd.Flags().IntP("budget", "b", store.DefaultContextBudget, "Max characters of turn text in output")

	RootCmd.AddCommand(cmd)
}

func runContext(cmd *cobra.Command, args []string) {
	budget, _ := cmd.Flags().GetInt("budget")

	cfg := loadConfig()
	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	result, err := s.TopicContext(cmd.Context(), store.ContextParams{
		RunID:   args[0],
		TopicID: args[1],
		Budget:  budget,
	})
	if err != nil {
		exitErr("context", err)
	}

	if textFormat() {
		for _, t := range result.Turns {
			fmt.Fprintf(cmd.OutOrStdout(), "[%d] %s (%.1fs): %s\n", t.Index, t.Speaker, t.Start, t.Text)
		}
		return
	}
	printJSON(cmd, result)
}
