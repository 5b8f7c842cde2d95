package quiz

import (
	"fmt"

	"github.com/abhisek/mandela/internal/catalog"
)

// Wording shared by every front-end.
const (
	FeedbackHeading = "Detailed Feedback"
	RestartLabel    = "Restart Quiz"
)

// QuestionHeading renders "Question N: Title" for the item at index.
func QuestionHeading(index int, it catalog.Item) string {
	return fmt.Sprintf("Question %d: %s", index+1, it.Title())
}

// SummaryHeading renders "Quiz Complete! Your Score: X/N".
func SummaryHeading(sum Summary) string {
	return fmt.Sprintf("Quiz Complete! Your Score: %d/%d", sum.Score, sum.Total)
}

// ChoiceButton is the label of the button that submits c.
func ChoiceButton(c catalog.Choice) string {
	switch c {
	case catalog.ChoiceA, catalog.ChoiceB:
		return "Choose " + c.Label()
	}
	return c.Label()
}

// CorrectAnswerLine renders "Correct Answer: <label>".
func CorrectAnswerLine(it catalog.Item) string {
	return "Correct Answer: " + it.Correct.Label()
}

// ExplanationLine renders "Explanation: ...".
func ExplanationLine(it catalog.Item) string {
	return "Explanation: " + it.Explanation
}
