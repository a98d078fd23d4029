package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show practice statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		ctx := cmd.Context()
		repo := a.store.AttemptRepo()

		stats, err := repo.Stats(ctx, a.userID)
		if err != nil {
			return fmt.Errorf("load stats: %w", err)
		}
		if stats.Total == 0 {
			fmt.Println("No attempts yet. Run `sqldrill practice` first.")
			return nil
		}

		fmt.Printf("Attempts: %d   Correct: %d   Accuracy: %.1f%%\n",
			stats.Total, stats.Correct, stats.Accuracy*100)

		if len(stats.ByType) > 0 {
			fmt.Println("\nBy question type:")
			for _, t := range stats.ByType {
				acc := 0.0
				if t.Attempts > 0 {
					acc = float64(t.Correct) / float64(t.Attempts) * 100
				}
				fmt.Printf("  %-16s %4d attempts  %5.1f%%\n", t.Type, t.Attempts, acc)
			}
		}

		missed, err := repo.MostMissed(ctx, a.userID, 5)
		if err != nil {
			return fmt.Errorf("load missed questions: %w", err)
		}
		if len(missed) > 0 {
			fmt.Println("\nMost missed:")
			for _, m := range missed {
				body := m.Body
				if len(body) > 70 {
					body = strings.TrimSpace(body[:70]) + "…"
				}
				fmt.Printf("  %dx  %s\n", m.Misses, body)
			}
		}
		return nil
	},
}
