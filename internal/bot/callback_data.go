package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/mandela/internal/catalog"
)

const (
	actionQuiz = "quiz"

	quizAnswer  = "answer"
	quizRestart = "restart"
)

// callbackData is the structured form of an inline button payload.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// buildAnswerCallback encodes quiz:answer:<index>:<choice>.
func buildAnswerCallback(index int, choice catalog.Choice) string {
	return callbackData{
		Action: actionQuiz,
		Params: []string{quizAnswer, strconv.Itoa(index), string(choice)},
	}.encode()
}

func buildRestartCallback() string {
	return callbackData{Action: actionQuiz, Params: []string{quizRestart}}.encode()
}

// parseAnswer extracts index and choice from an answer callback.
func parseAnswer(cd callbackData) (int, catalog.Choice, error) {
	if cd.Action != actionQuiz || len(cd.Params) != 3 || cd.Params[0] != quizAnswer {
		return 0, "", fmt.Errorf("not an answer callback: %q", cd.Raw)
	}
	index, err := strconv.Atoi(cd.Params[1])
	if err != nil || index < 0 {
		return 0, "", fmt.Errorf("invalid index in callback %q", cd.Raw)
	}
	choice, err := catalog.ParseChoice(cd.Params[2])
	if err != nil {
		return 0, "", err
	}
	return index, choice, nil
}
