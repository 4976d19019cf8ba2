package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/flemzord/recall/internal/index"
	"github.com/flemzord/recall/internal/query"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create an empty memory index at the configured path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			repo := openRepo(cfg)
			if _, err := repo.Init(time.Now().UTC()); err != nil {
				return err
			}
			fmt.Printf("Initialized memory index at %s\n", repo.Path())
			return nil
		},
	}
}

func sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Session management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "new <id>",
		Short: "Create a new session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			err = index.Update(openRepo(cfg), func(doc *index.Document) error {
				_, err := doc.CreateSession(args[0], time.Now().UTC())
				return err
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created session %q\n", args[0])
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List sessions with their entry counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			doc, err := openRepo(cfg).Load()
			if err != nil {
				return err
			}
			type row struct {
				id      string
				entries int
				updated time.Time
			}
			rows := make([]row, 0, len(doc.Sessions))
			for i := range doc.Sessions {
				s := &doc.Sessions[i]
				rows = append(rows, row{s.SessionID, len(s.Entries), s.LastUpdated})
			}
			sort.Slice(rows, func(i, j int) bool { return rows[i].id < rows[j].id })
			for _, r := range rows {
				fmt.Printf("%s\t%d entries\tlast updated %s\n", r.id, r.entries, r.updated.Format(time.RFC3339))
			}
			return nil
		},
	})
	return cmd
}

func logCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log <question> [answer]",
		Short: "Log a question/answer exchange",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			session, _ := cmd.Flags().GetString("session")
			if session == "" {
				session = cfg.Memory.Session
			}
			user, _ := cmd.Flags().GetString("user")
			topics, _ := cmd.Flags().GetStringSlice("topics")

			now := time.Now().UTC()
			params := index.AppendParams{
				User:     user,
				Question: args[0],
				Topics:   topics,
				Keywords: cfg.Keywords(),
				Now:      now,
			}
			if len(args) == 2 {
				params.Answer = args[1]
			}
			if cmd.Flags().Changed("significance") {
				sig, _ := cmd.Flags().GetFloat64("significance")
				params.Significance = &sig
			}

			create, _ := cmd.Flags().GetBool("create")

			var logged *index.Entry
			err = index.Update(openRepo(cfg), func(doc *index.Document) error {
				if create && doc.Session(session) == nil {
					if _, err := doc.CreateSession(session, now); err != nil {
						return err
					}
				}
				e, err := doc.Append(session, params)
				if err != nil {
					return err
				}
				logged = e
				return nil
			})
			if err != nil {
				return err
			}

			if logged.Answered() {
				fmt.Printf("Logged [%d] in %q (significance: %.2f)\n", logged.Seq, session, logged.Significance)
			} else {
				fmt.Printf("Logged [%d] in %q (unanswered)\n", logged.Seq, session)
			}
			return nil
		},
	}
	cmd.Flags().StringP("session", "s", "", "Session to log into (default: configured session)")
	cmd.Flags().StringP("user", "u", "", "User identifier")
	cmd.Flags().StringSliceP("topics", "t", nil, "Topic tags")
	cmd.Flags().Float64("significance", 0, "Override the significance score (0.0-1.0)")
	cmd.Flags().Bool("create", false, "Create the session if it does not exist")
	return cmd
}

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Search memory by token overlap with stored questions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			doc, err := openRepo(cfg).Load()
			if err != nil {
				return err
			}

			session, _ := cmd.Flags().GetString("session")
			limit, _ := cmd.Flags().GetInt("limit")
			matches := query.FindRelevant(doc, query.Params{
				Query:           args[0],
				Session:         session,
				Limit:           limit,
				MinSignificance: cfg.Memory.MinSignificance,
			})

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(matches)
		},
	}
	cmd.Flags().StringP("session", "s", "", "Boost and restrict relevance toward this session")
	cmd.Flags().IntP("limit", "n", 0, "Maximum results (default: 5)")
	return cmd
}

func recentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show the most recent exchanges of a session",
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

			entries := query.Recent(doc, session, window)
			if len(entries) == 0 {
				fmt.Printf("No exchanges in session %q.\n", session)
				return nil
			}
			for i := range entries {
				e := &entries[i]
				fmt.Printf("[%d] %s %s\n", e.Seq, e.Timestamp.Format(time.RFC3339), e.Question)
				if e.Answered() {
					fmt.Printf("    %s (sig: %.2f)\n", e.Answer, e.Significance)
				} else {
					fmt.Println("    (unanswered)")
				}
			}
			return nil
		},
	}
	cmd.Flags().StringP("session", "s", "", "Session to read (default: configured session)")
	cmd.Flags().IntP("window", "w", 0, "How many exchanges to show")
	return cmd
}

func topicCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "topic <tag>",
		Short: "List exchanges tagged with a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			doc, err := openRepo(cfg).Load()
			if err != nil {
				return err
			}

			entries, err := query.ByTopic(doc, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Topic %q: %d exchange(s)\n", args[0], len(entries))
			for _, te := range entries {
				if te.Missing != nil {
					fmt.Printf("[%s/%d] (unresolvable reference)\n", te.Ref.Session, te.Ref.Seq)
					continue
				}
				fmt.Printf("[%s/%d] %s\n", te.Ref.Session, te.Ref.Seq, te.Entry.Question)
			}
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print memory index totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			doc, err := openRepo(cfg).Load()
			if err != nil {
				return err
			}

			fmt.Printf("Total pairs: %d\n", doc.Metadata.TotalPairs)
			fmt.Printf("Stored answers: %d\n", doc.Metadata.StoredAnswers)
			fmt.Printf("Empty answers: %d\n", doc.Metadata.EmptyAnswers)
			fmt.Printf("Topics: %d\n", len(doc.Index.ByTopic))
			fmt.Printf("Sessions: %d\n", len(doc.Sessions))
			fmt.Printf("Last updated: %s\n", doc.Metadata.LastUpdated.Format(time.RFC3339))
			return nil
		},
	}
}
