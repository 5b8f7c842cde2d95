package question

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mandela/internal/assets"
	"github.com/abhisek/mandela/internal/catalog"
	"github.com/abhisek/mandela/internal/quiz"
	"github.com/abhisek/mandela/internal/ui/components"
	"github.com/abhisek/mandela/internal/ui/layout"
	"github.com/abhisek/mandela/internal/ui/theme"
)

// pictureScale picks pixels-per-cell so pictures fit the content area.
func pictureScale(item catalog.Item, height int) int {
	compact := height < 28
	switch {
	case item.Kind == catalog.BooleanChoice && compact:
		return 7
	case item.Kind == catalog.BooleanChoice:
		return 5
	case compact:
		return 15
	default:
		return 10
	}
}

// feedbackScale shrinks the answer picture so the explanation fits.
func feedbackScale(item catalog.Item) int {
	if item.Kind == catalog.BooleanChoice {
		return 10
	}
	return 20
}

func (s *QuestionScreen) View(width, height int) string {
	if s.feedback != nil {
		return s.renderFeedback(width, height)
	}
	item, index, err := s.sess.CurrentItem()
	if err != nil {
		return layout.Center(width, theme.Hint.Render("\n\nQuiz complete. Press any key for your results."))
	}

	var b strings.Builder

	bar := components.NewProgressBar("Progress", index, s.sess.Catalog.Len(), min(width-8, 60))
	b.WriteString(layout.Center(width, bar.View()))
	b.WriteString("\n\n")

	b.WriteString(layout.Center(width, theme.Title.Render(quiz.QuestionHeading(index, item))))
	b.WriteString("\n\n")

	b.WriteString(layout.Center(width, s.renderPictures(item, height)))
	b.WriteString("\n\n")

	prompt := "Which one is right?"
	if item.Kind == catalog.BooleanChoice {
		prompt = "Does this exist?"
	}
	b.WriteString(layout.Center(width, theme.Body.Render(prompt)))
	b.WriteString("\n\n")

	b.WriteString(layout.Center(width, s.renderButtons(item)))

	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(layout.Center(width, theme.Incorrect.Render(s.errMsg)))
	}

	return b.String()
}

func (s *QuestionScreen) renderPictures(item catalog.Item, height int) string {
	cols, rows := components.PictureSize(assets.SizeFor(item.Kind), pictureScale(item, height))

	if s.loading {
		return lipgloss.NewStyle().Width(cols).Height(rows).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.TextDim).
			Render("Loading...")
	}

	refs := item.Assets()
	views := make([]string, 0, len(refs)*2)
	for i, ref := range refs {
		caption := item.Title()
		if item.Kind == catalog.PairedChoice {
			caption = item.Domain()[i].Label()
		}
		if i > 0 {
			views = append(views, "    ")
		}
		views = append(views, components.Picture{
			Image:   s.pictures[ref],
			Columns: cols,
			Rows:    rows,
			Caption: caption,
		}.View())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

func (s *QuestionScreen) renderButtons(item catalog.Item) string {
	domain := item.Domain()
	buttons := make([]components.Button, len(domain))
	for i, c := range domain {
		buttons[i] = components.Button{
			Label:  quiz.ChoiceButton(c),
			Key:    hotkey(c),
			Active: i == s.selected,
		}
	}
	return components.ButtonRow(buttons, 4)
}

func hotkey(c catalog.Choice) string {
	switch c {
	case catalog.ChoiceA:
		return "1"
	case catalog.ChoiceB:
		return "2"
	case catalog.ChoiceTrue:
		return "T"
	case catalog.ChoiceFalse:
		return "F"
	}
	return ""
}

func (s *QuestionScreen) renderFeedback(width, height int) string {
	fb := s.feedback
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(layout.Center(width, theme.Title.Render(quiz.QuestionHeading(fb.Index, fb.Item))))
	b.WriteString("\n\n")

	verdict := theme.Correct.Render("✓ Correct!")
	if !fb.Record.WasCorrect {
		verdict = theme.Incorrect.Render("✗ Wrong. You picked " + fb.Record.Choice.Label() + ".")
	}
	b.WriteString(layout.Center(width, verdict))
	b.WriteString("\n\n")

	if height >= 28 {
		cols, rows := components.PictureSize(assets.SizeFor(fb.Item.Kind), feedbackScale(fb.Item))
		ref := fb.Item.CorrectAsset()
		b.WriteString(layout.Center(width, components.Picture{
			Image:   s.pictures[ref],
			Columns: cols,
			Rows:    rows,
		}.View()))
		b.WriteString("\n\n")
	}

	textWidth := min(width-8, 70)
	block := lipgloss.NewStyle().Width(textWidth).Foreground(theme.Text)
	b.WriteString(layout.Center(width, block.Bold(true).Render(quiz.CorrectAnswerLine(fb.Item))))
	b.WriteString("\n")
	b.WriteString(layout.Center(width, block.Render(quiz.ExplanationLine(fb.Item))))
	b.WriteString("\n\n")
	b.WriteString(layout.Center(width, theme.Hint.Render("Press any key to continue")))

	return b.String()
}
