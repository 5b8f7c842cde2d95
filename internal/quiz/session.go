package quiz

import (
	"sync"
	"time"

	"github.com/abhisek/mandela/internal/catalog"
)

// Session binds a State to a catalog and serialises transitions so a
// session can be shared between goroutines (HTTP handlers, bot updates).
type Session struct {
	ID        string
	Catalog   *catalog.Catalog
	StartedAt time.Time

	mu       sync.Mutex
	state    State
	restarts int
}

// NewSession starts a session at the first item.
func NewSession(id string, cat *catalog.Catalog) *Session {
	return &Session{
		ID:        id,
		Catalog:   cat,
		StartedAt: time.Now(),
		state:     Restart(),
	}
}

// State returns a snapshot of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Phase returns the session's phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PhaseOf(s.Catalog, s.state)
}

// CurrentItem returns the item awaiting an answer and its index.
func (s *Session) CurrentItem() (catalog.Item, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, err := CurrentItem(s.Catalog, s.state)
	return item, s.state.Index, err
}

// Answered is a transition captured under the session lock: the record,
// the index it answered and the state it left behind.
type Answered struct {
	Record    AnswerRecord
	Index     int
	Completed bool
	State     State
}

// Submit answers the current item.
func (s *Session) Submit(choice catalog.Choice) (AnswerRecord, error) {
	a, err := s.Answer(choice)
	return a.Record, err
}

// SubmitAt answers only if index is still the current item. Returns
// ErrInvalidState when the caller is answering a stale question.
func (s *Session) SubmitAt(index int, choice catalog.Choice) (AnswerRecord, error) {
	a, err := s.AnswerAt(index, choice)
	return a.Record, err
}

// Answer is Submit reporting the answered index and whether this
// answer completed the session.
func (s *Session) Answer(choice catalog.Choice) (Answered, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply(choice)
}

// AnswerAt is SubmitAt reporting the same details as Answer.
func (s *Session) AnswerAt(index int, choice catalog.Choice) (Answered, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index != s.state.Index {
		return Answered{}, ErrInvalidState
	}
	return s.apply(choice)
}

// apply requires s.mu.
func (s *Session) apply(choice catalog.Choice) (Answered, error) {
	index := s.state.Index
	next, rec, err := Submit(s.Catalog, s.state, choice)
	if err != nil {
		return Answered{}, err
	}
	s.state = next
	return Answered{
		Record:    rec,
		Index:     index,
		Completed: PhaseOf(s.Catalog, next) == Complete,
		State:     next,
	}, nil
}

// Restart resets progress. Always succeeds.
func (s *Session) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Restart()
	s.restarts++
	s.StartedAt = time.Now()
}

// Restarts returns how many times the session was restarted.
func (s *Session) Restarts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restarts
}

// Summary returns the final report once complete.
func (s *Session) Summary() (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summarize(s.Catalog, s.state)
}
