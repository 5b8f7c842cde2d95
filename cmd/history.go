package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mandela/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past quizzes and the most misremembered items",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		source, _ := cmd.Flags().GetString("source")

		ctx := cmd.Context()
		e, err := loadEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.withStore(ctx); err != nil {
			return err
		}
		repo := e.store.EventRepo()

		sessions, err := repo.QuerySessionSummaries(ctx, store.QueryOpts{Limit: limit, Source: source})
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Println("No quizzes recorded yet.")
			return nil
		}

		fmt.Printf("%-36s  %-16s  %-8s  %-7s  %-8s  %s\n", "Session", "Started", "Source", "Score", "Duration", "Restarts")
		fmt.Println(strings.Repeat("─", 96))
		for _, s := range sessions {
			score := "-"
			if s.Completed() {
				score = fmt.Sprintf("%d/%d", s.Score, s.Total)
			}
			fmt.Printf("%-36s  %-16s  %-8s  %-7s  %-8s  %d\n",
				s.SessionID,
				s.StartedAt.Local().Format("2006-01-02 15:04"),
				s.Source,
				score,
				s.Duration.String(),
				s.Restarts,
			)
		}

		stats, err := repo.ItemStats(ctx)
		if err != nil {
			return fmt.Errorf("query item stats: %w", err)
		}
		if len(stats) == 0 {
			return nil
		}

		fmt.Println()
		fmt.Printf("%-22s  %7s  %7s  %s\n", "Item", "Answers", "Correct", "Missed")
		fmt.Println(strings.Repeat("─", 52))
		for _, st := range stats {
			title := st.ItemID
			if it, ok := e.catalog.Lookup(st.ItemID); ok {
				title = it.Title()
			}
			fmt.Printf("%-22s  %7d  %7d  %5.0f%%\n", title, st.Answers, st.Correct, st.MissRate()*100)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show")
	historyCmd.Flags().String("source", "", "Only sessions from tui, cli, http or telegram")
}
