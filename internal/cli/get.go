package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get [run-id]",
		Short: "Retrieve a saved run",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}

	cmd.Flags().Bool("turns", false, "Return the stored turns instead of the result")

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	turns, _ := cmd.Flags().GetBool("turns")

	cfg := loadConfig()
	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if turns {
		ts, err := s.Turns(cmd.Context(), args[0])
		if err != nil {
			exitErr("get", err)
		}
		printJSON(cmd, ts)
		return
	}

	run, res, err := s.GetRun(cmd.Context(), args[0])
	if err != nil {
		exitErr("get", err)
	}
	if textFormat() {
		printSummary(cmd, res)
		return
	}
	printJSON(cmd, map[string]interface{}{"run": run, "result": res})
}
