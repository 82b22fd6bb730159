package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/talkgraph/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List saved runs",
		Run:   runRuns,
	}

	cmd.Flags().StringP("source", "s", "", "Filter by transcript source")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runRuns(cmd *cobra.Command, args []string) {
	source, _ := cmd.Flags().GetString("source")
	limit, _ := cmd.Flags().GetInt("limit")

	cfg := loadConfig()
	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	runs, err := s.ListRuns(cmd.Context(), store.ListParams{Source: source, Limit: limit})
	if err != nil {
		exitErr("list", err)
	}

	if textFormat() {
		for _, r := range runs {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %d turns  %d topics  %s\n",
				r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.TurnCount, r.TopicCount, r.Source)
		}
		return
	}
	printJSON(cmd, runs)
}
