package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/talkgraph/internal/annotation"
)

func init() {
	cmd := &cobra.Command{
		Use:   "annotate [run-id] [annotations.json]",
		Short: "Attach annotator output to a saved run",
		Long:  `Store annotations for a run. The file is a JSON array or {"annotations": [...]}.`,
		Args:  cobra.ExactArgs(2),
		Run:   runAnnotate,
	}

	RootCmd.AddCommand(cmd)
}

func runAnnotate(cmd *cobra.Command, args []string) {
	anns, err := annotation.LoadFile(args[1])
	if err != nil {
		exitErr("load annotations", err)
	}

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
	_, unknown := annotation.Attach(res.Topics, anns)
	for _, id := range unknown {
		fmt.Fprintf(os.Stderr, "warning: annotation for unknown topic %s\n", id)
	}

	n, err := s.PutAnnotations(cmd.Context(), args[0], anns)
	if err != nil {
		exitErr("annotate", err)
	}
	printJSON(cmd, map[string]interface{}{"ok": true, "stored": n, "unknown_topics": unknown})
}
