// Package cli implements the talkgraph CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rcliao/talkgraph/internal/config"
	"github.com/rcliao/talkgraph/internal/model"
	"github.com/rcliao/talkgraph/internal/store"
)

var (
	dbPath     string
	formatFlag string
	configPath string
	logLevel   string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "talkgraph",
	Short: "Conversation structure from diarized transcripts",
	Long: "Reconstructs turns, interaction graphs, interruptions, topic lifecycles and relational signals " +
		"from a diarized transcript. Runs can be saved to SQLite, searched and annotated.",
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $TALKGRAPH_DB, store.path or ~/.talkgraph/talkgraph.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $TALKGRAPH_CONFIG)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
}

// loadConfig reads the configuration and installs the default logger.
func loadConfig() *config.Config {
	path := configPath
	if path == "" {
		path = os.Getenv("TALKGRAPH_CONFIG")
	}
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			exitErr("load config", err)
		}
	}
	if logLevel != "" {
		cfg.LogLevel = config.LogLevel(logLevel)
		if err := config.Validate(cfg); err != nil {
			exitErr("log level", err)
		}
	}
	slog.SetDefault(newLogger(cfg.LogLevel, os.Stderr))
	return cfg
}

func newLogger(level config.LogLevel, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level.SlogLevel()}))
}

func getDBPath(cfg *config.Config) string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("TALKGRAPH_DB"); env != "" {
		return env
	}
	if cfg != nil && cfg.Store.Path != "" {
		return cfg.Store.Path
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".talkgraph", "talkgraph.db")
}

func openStore(cfg *config.Config) (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath(cfg))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

func textFormat() bool { return formatFlag == "text" }

func printJSON(cmd *cobra.Command, v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		exitErr("encode output", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}

func statusColor(status string) string {
	switch status {
	case model.StatusStabilized:
		return color.New(color.FgHiGreen).Sprint(status)
	case model.StatusFailedNoUptake:
		return color.New(color.FgYellow).Sprint(status)
	case model.StatusFailedSilence:
		return color.New(color.FgRed).Sprint(status)
	default:
		return status
	}
}
