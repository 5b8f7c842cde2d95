package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abhisek/mandela/internal/assets"
	"github.com/abhisek/mandela/internal/catalog"
	"github.com/abhisek/mandela/internal/quiz"
	"github.com/abhisek/mandela/internal/tracker"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the quiz in plain text (no TUI)",
	Long: `Answer each question on stdin. Type 1 or 2 for picture pairs and
true or false for single pictures. Images are listed by name; set
assets.dir to check they exist.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := loadEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.withStore(ctx); err != nil {
			return err
		}
		if err := e.withAssets(); err != nil {
			return err
		}

		p := &plainQuiz{
			in:      bufio.NewScanner(os.Stdin),
			out:     os.Stdout,
			tracker: e.tracker(tracker.SourceCLI),
			assets:  e.assets,
		}
		return p.run(ctx, quiz.NewSession(uuid.NewString(), e.catalog))
	},
}

// plainQuiz drives a session over line-oriented input.
type plainQuiz struct {
	in      *bufio.Scanner
	out     io.Writer
	tracker *tracker.Tracker
	assets  assets.Provider
}

var errInputClosed = errors.New("input closed")

func (p *plainQuiz) run(ctx context.Context, sess *quiz.Session) error {
	p.tracker.Start(ctx, sess)
	for {
		for sess.Phase() == quiz.InProgress {
			if err := p.ask(ctx, sess); err != nil {
				if errors.Is(err, errInputClosed) {
					fmt.Fprintln(p.out, "\n(input closed)")
					return nil
				}
				return err
			}
		}

		sum, err := sess.Summary()
		if err != nil {
			return err
		}
		p.printSummary(sess.Catalog, sum)

		fmt.Fprintf(p.out, "\n%s? [y/N] ", quiz.RestartLabel)
		line, ok := p.readLine()
		if !ok || !strings.EqualFold(line, "y") {
			return nil
		}
		p.tracker.Restart(ctx, sess)
	}
}

func (p *plainQuiz) ask(ctx context.Context, sess *quiz.Session) error {
	item, index, err := sess.CurrentItem()
	if err != nil {
		return err
	}

	fmt.Fprintf(p.out, "── %s ──\n", quiz.QuestionHeading(index, item))
	for i, ref := range item.Assets() {
		label := "Picture"
		if item.Kind == catalog.PairedChoice {
			label = item.Domain()[i].Label()
		}
		fmt.Fprintf(p.out, "  %s: %s\n", label, p.describe(ctx, ref))
	}

	for {
		fmt.Fprintf(p.out, "\nYour answer (%s): ", choicePrompt(item))
		line, ok := p.readLine()
		if !ok {
			return errInputClosed
		}
		choice, err := catalog.ParseChoice(line)
		if err != nil {
			fmt.Fprintf(p.out, "%v\n", err)
			continue
		}

		rec, err := p.tracker.Submit(ctx, sess, choice)
		if errors.Is(err, quiz.ErrInvalidChoice) {
			fmt.Fprintf(p.out, "%s does not apply here.\n", choice.Label())
			continue
		}
		if err != nil {
			return err
		}

		if rec.WasCorrect {
			fmt.Fprintln(p.out, "\033[32m✓ Correct!\033[0m")
		} else {
			fmt.Fprintf(p.out, "\033[31m✗ Wrong.\033[0m %s\n", quiz.CorrectAnswerLine(item))
		}
		fmt.Fprintln(p.out, quiz.ExplanationLine(item))
		fmt.Fprintln(p.out)
		return nil
	}
}

// describe names ref, or the not-found notice when it cannot be opened.
func (p *plainQuiz) describe(ctx context.Context, ref string) string {
	if p.assets == nil {
		return ref
	}
	rc, err := p.assets.Open(ctx, ref)
	if err != nil {
		return assets.NotFoundText
	}
	_ = rc.Close()
	return ref
}

func (p *plainQuiz) readLine() (string, bool) {
	if !p.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.in.Text()), true
}

func (p *plainQuiz) printSummary(cat *catalog.Catalog, sum quiz.Summary) {
	fmt.Fprintf(p.out, "── %s ──\n\n", quiz.SummaryHeading(sum))
	fmt.Fprintln(p.out, quiz.FeedbackHeading)
	for _, rec := range sum.Log {
		item, _ := cat.Lookup(rec.ItemID)
		mark := "✓"
		if !rec.WasCorrect {
			mark = "✗"
		}
		fmt.Fprintf(p.out, "\n%s %s\n", mark, item.Title())
		fmt.Fprintf(p.out, "  Picture: %s\n", item.CorrectAsset())
		fmt.Fprintf(p.out, "  %s\n", quiz.CorrectAnswerLine(item))
		fmt.Fprintf(p.out, "  %s\n", quiz.ExplanationLine(item))
	}
}

func choicePrompt(item catalog.Item) string {
	if item.Kind == catalog.BooleanChoice {
		return "true/false"
	}
	return "1/2"
}
