package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the starter question bank into an empty database",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		n, err := a.store.Seed(cmd.Context())
		if err != nil {
			return fmt.Errorf("seed question bank: %w", err)
		}
		if n == 0 {
			fmt.Println("Question bank already populated; nothing to do.")
			return nil
		}
		fmt.Printf("Inserted %d questions.\n", n)
		return nil
	},
}
