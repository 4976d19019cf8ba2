package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/flemzord/recall/internal/cron"
	"github.com/flemzord/recall/internal/extract"
	"github.com/flemzord/recall/internal/inject"
)

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Snapshot the recent extraction window and analyze it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			hours, _ := cmd.Flags().GetInt("hours")
			if hours <= 0 {
				hours = cfg.Extraction.Hours
			}
			session, _ := cmd.Flags().GetString("session")

			job := &cron.ExtractionJob{
				Repo:    openRepo(cfg),
				Dir:     cfg.Extraction.Dir,
				Hours:   hours,
				Session: session,
				Timeout: cfg.Extraction.Timeout,
				Logger:  newLogger(cmd),
			}
			if err := job.Run(context.Background()); err != nil {
				return err
			}
			fmt.Printf("Extraction complete under %s\n", cfg.Extraction.Dir)
			return nil
		},
	}
	cmd.Flags().Int("hours", 0, "Lookback window in hours (default: configured)")
	cmd.Flags().StringP("session", "s", "", "Restrict extraction to one session")
	return cmd
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [snapshot-dir]",
		Short: "Print the analysis report for a snapshot (default: the latest)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			var analysis *extract.Analysis
			if len(args) == 1 {
				// Analyze the named snapshot directory in place.
				analysis, err = extract.Analyze(args[0])
				if err != nil {
					return err
				}
				if _, err := extract.WriteAnalysis(args[0], analysis); err != nil {
					return err
				}
			} else {
				path, ok := extract.LatestAnalysis(cfg.Extraction.Dir)
				if !ok {
					return fmt.Errorf("no analysis found under %s; run 'recall extract' first", cfg.Extraction.Dir)
				}
				analysis, err = extract.ReadAnalysis(path)
				if err != nil {
					return err
				}
			}

			fmt.Print(extract.Report(analysis))
			return nil
		},
	}
}

func contextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Build the memory context block for prompt injection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			doc, err := openRepo(cfg).Load()
			if err != nil {
				return err
			}

			session, _ := cmd.Flags().GetString("session")
			if session == "" {
				session = cfg.Memory.Session
			}
			window, _ := cmd.Flags().GetInt("window")
			if window <= 0 {
				window = cfg.Context.Window
			}

			params := inject.Params{
				Session:    session,
				Window:     window,
				PreviewLen: cfg.Context.PreviewLen,
				Now:        time.Now().UTC(),
			}
			if path, ok := extract.LatestAnalysis(cfg.Extraction.Dir); ok {
				params.AnalysisPath = path
			}

			block := inject.Build(doc, params)

			target, _ := cmd.Flags().GetString("into")
			if target == "" {
				fmt.Print(block)
				return nil
			}
			if block == "" {
				// Nothing to inject; leave the target untouched.
				return nil
			}

			raw, err := os.ReadFile(target)
			if err != nil {
				return fmt.Errorf("reading %s: %w", target, err)
			}
			updated := inject.InsertAfterIntro(block, string(raw))
			if err := os.WriteFile(target, []byte(updated), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", target, err)
			}
			fmt.Printf("Injected memory context into %s\n", filepath.Clean(target))
			return nil
		},
	}
	cmd.Flags().StringP("session", "s", "", "Session whose recent exchanges to include")
	cmd.Flags().IntP("window", "w", 0, "How many recent exchanges to include")
	cmd.Flags().String("into", "", "Splice the context into this file after its intro paragraph")
	return cmd
}
