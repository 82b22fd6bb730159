package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export saved runs as JSON",
		Long:  "Export runs with their turns and annotations. Filter by transcript source with -s.",
		Run:   runExport,
	}

	cmd.Flags().StringP("source", "s", "", "Filter by transcript source")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	source, _ := cmd.Flags().GetString("source")

	cfg := loadConfig()
	s, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	exports, err := s.ExportAll(cmd.Context(), source)
	if err != nil {
		exitErr("export", err)
	}
	printJSON(cmd, exports)
}
