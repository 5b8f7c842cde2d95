package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all recorded quiz history and LLM requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("this deletes every recorded event; re-run with --yes to confirm")
		}

		ctx := cmd.Context()
		e, err := loadEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.withStore(ctx); err != nil {
			return err
		}
		if err := e.store.Reset(ctx); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		fmt.Println("History cleared.")
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm deletion")
}
