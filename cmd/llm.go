package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/mandela/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded deep-dive LLM calls",
}

// openRepo loads config and the event store for read-only commands.
func openRepo(cmd *cobra.Command) (store.EventRepo, func(), error) {
	e, err := loadEnv(cmd, false)
	if err != nil {
		return nil, nil, err
	}
	if err := e.withStore(cmd.Context()); err != nil {
		e.Close()
		return nil, nil, err
	}
	return e.store.EventRepo(), e.Close, nil
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM calls, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		failedOnly, _ := cmd.Flags().GetBool("failed")

		repo, done, err := openRepo(cmd)
		if err != nil {
			return err
		}
		defer done()

		events, err := repo.QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTIME\tPURPOSE\tMODEL\tTOKENS\tLATENCY\tSTATUS")
		var shown int
		for _, e := range events {
			if purpose != "" && e.Purpose != purpose {
				continue
			}
			if failedOnly && e.Success {
				continue
			}
			status := "ok"
			if !e.Success {
				status = "failed"
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d→%d\t%dms\t%s\n",
				e.ID, e.Timestamp.Local().Format("Jan 02 15:04:05"), e.Purpose,
				e.Model, e.InputTokens, e.OutputTokens, e.LatencyMs, status)
			shown++
		}
		if shown == 0 {
			fmt.Println("No LLM calls recorded. Deep dives record one per item explained.")
			return nil
		}
		return tw.Flush()
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and raw response of one LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		repo, done, err := openRepo(cmd)
		if err != nil {
			return err
		}
		defer done()

		e, err := repo.GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("no LLM call with ID %d (see `mandela llm list`)", id)
		}

		fields := [][2]string{
			{"Time", e.Timestamp.Local().Format("2006-01-02 15:04:05")},
			{"Provider", e.Provider + " / " + e.Model},
			{"Purpose", e.Purpose},
			{"Tokens", fmt.Sprintf("%d in, %d out", e.InputTokens, e.OutputTokens)},
			{"Latency", fmt.Sprintf("%dms", e.LatencyMs)},
		}
		if e.ErrorMessage != "" {
			fields = append(fields, [2]string{"Error", e.ErrorMessage})
		}
		fmt.Printf("LLM call #%d\n", e.ID)
		for _, f := range fields {
			fmt.Printf("  %-9s %s\n", f[0]+":", f[1])
		}

		for _, section := range [][2]string{{"Request", e.RequestBody}, {"Response", e.ResponseBody}} {
			body := section[1]
			if body == "" {
				body = "(not captured)"
			}
			fmt.Printf("\n== %s %s\n%s\n", section[0], strings.Repeat("=", 50-len(section[0])), body)
		}
		return nil
	},
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to fetch")
	llmListCmd.Flags().String("purpose", "", "Only calls with this purpose (e.g. insight)")
	llmListCmd.Flags().Bool("failed", false, "Only failed calls")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
}
