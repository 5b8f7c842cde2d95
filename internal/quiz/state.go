package quiz

import (
	"errors"
	"fmt"

	"github.com/abhisek/mandela/internal/catalog"
)

var (
	// ErrInvalidChoice is returned when a choice is outside the current
	// item's answer domain.
	ErrInvalidChoice = errors.New("invalid choice")

	// ErrInvalidState is returned when an operation is not allowed in the
	// session's current phase.
	ErrInvalidState = errors.New("invalid session state")
)

// Phase is derived from a state and its catalog.
type Phase int

const (
	InProgress Phase = iota
	Complete
)

func (p Phase) String() string {
	if p == Complete {
		return "complete"
	}
	return "in_progress"
}

// AnswerRecord is one scored answer.
type AnswerRecord struct {
	ItemID     string         `json:"item_id"`
	Choice     catalog.Choice `json:"choice"`
	WasCorrect bool           `json:"was_correct"`
}

// State is an immutable snapshot of quiz progress. Transitions return a new
// State and never modify the receiver's log in place.
type State struct {
	Score int
	Index int
	Log   []AnswerRecord
}

// Summary is the end-of-quiz report.
type Summary struct {
	Score int
	Total int
	Log   []AnswerRecord
}

// Restart returns a fresh state.
func Restart() State {
	return State{Log: []AnswerRecord{}}
}

// PhaseOf reports whether st has answered every item in cat.
func PhaseOf(cat *catalog.Catalog, st State) Phase {
	if st.Index >= cat.Len() {
		return Complete
	}
	return InProgress
}

// CurrentItem returns the item awaiting an answer.
func CurrentItem(cat *catalog.Catalog, st State) (catalog.Item, error) {
	if PhaseOf(cat, st) == Complete {
		return catalog.Item{}, fmt.Errorf("%w: quiz is complete", ErrInvalidState)
	}
	return cat.ItemAt(st.Index)
}

// Submit scores choice against the current item and advances.
func Submit(cat *catalog.Catalog, st State, choice catalog.Choice) (State, AnswerRecord, error) {
	item, err := CurrentItem(cat, st)
	if err != nil {
		return st, AnswerRecord{}, err
	}
	if !item.Accepts(choice) {
		return st, AnswerRecord{}, fmt.Errorf("%w: %q for %s item %q", ErrInvalidChoice, choice, item.Kind, item.ID)
	}

	rec := AnswerRecord{
		ItemID:     item.ID,
		Choice:     choice,
		WasCorrect: item.IsCorrect(choice),
	}

	next := State{
		Score: st.Score,
		Index: st.Index + 1,
		Log:   make([]AnswerRecord, len(st.Log), len(st.Log)+1),
	}
	copy(next.Log, st.Log)
	next.Log = append(next.Log, rec)
	if rec.WasCorrect {
		next.Score++
	}
	return next, rec, nil
}

// Summarize returns the final report. Only valid once the quiz is complete.
func Summarize(cat *catalog.Catalog, st State) (Summary, error) {
	if PhaseOf(cat, st) != Complete {
		return Summary{}, fmt.Errorf("%w: %d of %d answered", ErrInvalidState, st.Index, cat.Len())
	}
	log := make([]AnswerRecord, len(st.Log))
	copy(log, st.Log)
	return Summary{Score: st.Score, Total: cat.Len(), Log: log}, nil
}

// Accuracy returns the fraction answered correctly, 0 for an empty quiz.
func (s Summary) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Score) / float64(s.Total)
}
