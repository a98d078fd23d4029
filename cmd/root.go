package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sqldrill",
	Short: "MySQL practice drills with AI-assisted grading",
	Long: "Sqldrill — terminal practice tool for MySQL knowledge: " +
		"multiple choice, true/false, fill-in-the-blank and free-text " +
		"questions with instant feedback and personalized recommendations.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPractice(cmd)
	},
}

func Execute() error {
	// Best effort; a missing .env is the normal case.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Database DSN or SQLite path (overrides SQLDRILL_DSN)")
	rootCmd.PersistentFlags().String("user", "default", "Learner id attempts are recorded under")

	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionCmd)
}
