package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), getDBPath(cfg))
	if err != nil {
		exitErr("stats", err)
	}

	if textFormat() {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%s (%d bytes)\n", stats.DBPath, stats.DBSizeBytes)
		fmt.Fprintf(w, "%d runs, %d turns, %d topics, %d links, %d annotations\n",
			stats.Runs, stats.Turns, stats.Topics, stats.Links, stats.Annotations)
		for _, sc := range stats.Statuses {
			fmt.Fprintf(w, "  %-18s %d\n", statusColor(sc.Status), sc.Count)
		}
		return
	}
	printJSON(cmd, stats)
}
