package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/talkgraph/internal/annotation"
)

func init() {
	cmd := &cobra.Command{
		Use:   "compare [run-id]",
		Short: "Compare structural topics with stored annotations",
		Args:  cobra.ExactArgs(1),
		Run:   runCompare,
	}

	RootCmd.AddCommand(cmd)
}

func runCompare(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	_, res, err := s.GetRun(cmd.Context(), args[0])
	if err != nil {
		exitErr("get run", err)
	}
	anns, err := s.Annotations(cmd.Context(), args[0])
	if err != nil {
		exitErr("annotations", err)
	}

	c := annotation.Compare(res.Topics, anns)
	if textFormat() {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%d structural, %d annotated, %d aligned, %d status matches\n",
			c.StructuralCount, c.AnnotatedCount, len(c.Aligned), c.StatusMatches)
		for _, a := range c.Aligned {
			fmt.Fprintf(w, "  %-9s %s vs %s\n", a.TopicID, statusColor(a.StructuralStatus), a.AnnotatedStatus)
		}
		return
	}
	printJSON(cmd, c)
}
