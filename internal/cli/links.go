package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "links [run-id]",
		Short: "List topic links of a saved run",
		Args:  cobra.ExactArgs(1),
		Run:   runLinks,
	}

	cmd.Flags().StringP("topic", "t", "", "Only links touching this topic")

	RootCmd.AddCommand(cmd)
}

func runLinks(cmd *cobra.Command, args []string) {
	topicID, _ := cmd.Flags().GetString("topic")

	cfg := loadConfig()
	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	links, err := s.Links(cmd.Context(), args[0], topicID)
	if err != nil {
		exitErr("links", err)
	}

	if textFormat() {
		for _, l := range links {
			fmt.Fprintf(cmd.OutOrStdout(), "%s --%s--> %s  sim %.2f\n", l.FromTopic, l.Rel, l.ToTopic, l.Similarity)
		}
		return
	}
	printJSON(cmd, links)
}
