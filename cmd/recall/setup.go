package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/flemzord/recall/internal/config"
	"github.com/flemzord/recall/internal/index"
)

func setupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Interactively create a configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			home, err := os.UserHomeDir()
			if err != nil {
				home = "."
			}

			indexPath := filepath.Join(home, ".recall", "index.json")
			extractionsDir := filepath.Join(home, ".recall", "extractions")
			session := config.DefaultSession
			schedule := "0 * * * *"
			statusAddr := ""
			initIndex := true

			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Index path").
						Description("Where the JSON memory index lives").
						Value(&indexPath).
						Validate(required("index path")),
					huh.NewInput().
						Title("Extractions directory").
						Description("Where periodic snapshots are written").
						Value(&extractionsDir).
						Validate(required("extractions directory")),
					huh.NewInput().
						Title("Default session").
						Value(&session).
						Validate(required("session")),
				),
				huh.NewGroup(
					huh.NewSelect[string]().
						Title("Extraction schedule").
						Options(
							huh.NewOption("Every hour", "0 * * * *"),
							huh.NewOption("Every 6 hours", "0 */6 * * *"),
							huh.NewOption("Daily at midnight", "0 0 * * *"),
							huh.NewOption("Disabled", ""),
						).
						Value(&schedule),
					huh.NewInput().
						Title("Status endpoint address").
						Description("Leave empty to disable the HTTP status server").
						Placeholder("127.0.0.1:7878").
						Value(&statusAddr),
					huh.NewConfirm().
						Title("Initialize the index now?").
						Value(&initIndex),
				),
			)
			if err := form.Run(); err != nil {
				return err
			}

			cfg := config.Config{
				Version: "1",
				Memory: config.MemoryConfig{
					IndexPath: indexPath,
					Session:   session,
				},
				Extraction: config.ExtractionConfig{
					Dir:      extractionsDir,
					Schedule: schedule,
				},
				Status: config.StatusConfig{Addr: statusAddr},
			}
			if err := config.Validate(&cfg); err != nil {
				return err
			}

			out, _ := cmd.Flags().GetString("output")
			if out == "" {
				out = config.DefaultPath()
			}
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return err
			}
			raw, err := yaml.Marshal(&cfg)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, raw, 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote configuration to %s\n", out)

			if initIndex {
				repo := index.NewRepository(indexPath)
				switch _, err := repo.Init(time.Now().UTC()); {
				case err == nil:
					fmt.Printf("Initialized memory index at %s\n", indexPath)
				case errors.Is(err, index.ErrExists):
					fmt.Printf("Memory index already exists at %s\n", indexPath)
				default:
					return err
				}

				// Appends require an existing session, so create the
				// configured one up front.
				created := false
				err := index.Update(repo, func(doc *index.Document) error {
					created = false
					if doc.Session(session) != nil {
						return nil
					}
					if _, err := doc.CreateSession(session, time.Now().UTC()); err != nil {
						return err
					}
					created = true
					return nil
				})
				if err != nil {
					return err
				}
				if created {
					fmt.Printf("Created session %q\n", session)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "Config file to write (default: the standard location)")
	return cmd
}

func required(name string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}
