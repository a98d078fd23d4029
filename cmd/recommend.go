package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/sqldrill/internal/recommend"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend unseen questions matched to your history",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("count")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		embedder, err := a.newEmbedder()
		if err != nil {
			return fmt.Errorf("configure embeddings: %w", err)
		}

		r := recommend.New(a.store.QuestionRepo(), a.store.AttemptRepo(), embedder, a.log)
		scored, err := r.Recommend(cmd.Context(), a.userID, n)
		if err != nil {
			return fmt.Errorf("recommend: %w", err)
		}
		if len(scored) == 0 {
			fmt.Println("Nothing to recommend: you've attempted every active question.")
			return nil
		}

		for i, s := range scored {
			fmt.Printf("%2d. [%s, %s] %s", i+1, s.Question.Type, s.Question.Difficulty, s.Question.Body)
			if s.Similarity != 0 {
				fmt.Printf("  (%.3f)", s.Similarity)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	recommendCmd.Flags().IntP("count", "n", 10, "Number of questions to recommend")
}
