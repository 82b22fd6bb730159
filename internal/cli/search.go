package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/talkgraph/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search saved topics by text",
		Long:  "Full-text search over the topic proposals of saved runs.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().StringP("run", "r", "", "Filter by run id")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	runID, _ := cmd.Flags().GetString("run")
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	cfg := loadConfig()
	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	results, err := s.Search(cmd.Context(), store.SearchParams{
		RunID: runID,
		Query: query,
		Limit: limit,
	})
	if err != nil {
		exitErr("search", err)
	}

	if textFormat() {
		for _, r := range results {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %-9s %-12s %s  %s\n", r.RunID, r.TopicID, r.Proposer, statusColor(r.Status), excerpt(r.Text, 60))
		}
		return
	}
	printJSON(cmd, results)
}
