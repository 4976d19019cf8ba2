// Package main is the entry point for the recall CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/flemzord/recall/internal/config"
	"github.com/flemzord/recall/internal/index"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "recall",
		Short:         "Append-only question/answer memory for conversational agents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "Path to configuration file")
	root.PersistentFlags().Bool("debug", false, "Enable debug logging")

	root.AddCommand(
		versionCmd(),
		initCmd(),
		sessionCmd(),
		logCmd(),
		queryCmd(),
		recentCmd(),
		topicCmd(),
		statsCmd(),
		extractCmd(),
		analyzeCmd(),
		contextCmd(),
		daemonCmd(),
		serveCmd(),
		setupCmd(),
		serviceCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("recall %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

// newLogger builds the CLI logger writing to stderr so command output
// on stdout stays machine-readable.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// loadConfig resolves and loads the configuration for a command.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		resolved, err := resolveConfigPath()
		if err != nil {
			return nil, err
		}
		path = resolved
	}
	return config.Load(path)
}

func openRepo(cfg *config.Config) *index.Repository {
	return index.NewRepository(cfg.Memory.IndexPath)
}

// resolveConfigPath searches for a config file in standard locations.
// Search order: $XDG_CONFIG_HOME/recall/recall.yaml → ~/.recall/config.yaml → ./recall.yaml
func resolveConfigPath() (string, error) {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "recall", "recall.yaml"))
	}
	candidates = append(candidates, config.DefaultPath(), "recall.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no configuration file found (searched: %v); run 'recall setup' to create one", candidates)
}
