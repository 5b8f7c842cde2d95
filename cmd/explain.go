package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/mandela/internal/quiz"
)

var explainCmd = &cobra.Command{
	Use:   "explain <item-id>",
	Short: "Ask the LLM why people misremember an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := loadEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		item, ok := e.catalog.Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown item %q (see `mandela catalog list`)", args[0])
		}
		if err := e.withStore(ctx); err != nil {
			return err
		}
		if err := e.withInsight(ctx); err != nil {
			return err
		}

		in, err := e.insight.Explain(ctx, item)
		if err != nil {
			return err
		}

		fmt.Println(item.Title())
		fmt.Println(quiz.CorrectAnswerLine(item))
		fmt.Println()
		fmt.Println(in.Headline)
		fmt.Println()
		fmt.Println(in.WhyMisremember)
		fmt.Println()
		fmt.Println("Fun fact:", in.FunFact)
		return nil
	},
}
