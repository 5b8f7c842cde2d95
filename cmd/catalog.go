package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mandela/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect quiz items",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every item with its answer",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		items := e.catalog.Items()
		fmt.Printf("%-3s  %-22s  %-8s  %-8s  %s\n", "#", "ID", "Kind", "Answer", "Assets")
		fmt.Println(strings.Repeat("─", 100))
		for i, it := range items {
			fmt.Printf("%-3d  %-22s  %-8s  %-8s  %s\n",
				i+1, it.ID, it.Kind, it.Correct.Label(), strings.Join(it.Assets(), ", "))
		}
		fmt.Printf("\n%d items\n", len(items))
		return nil
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a YAML catalog file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.LoadFile(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d items OK\n", args[0], cat.Len())
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
}
