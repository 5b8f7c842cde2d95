package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int       // id > After
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
	Source string    // session source filter (session events only)
}

// Session actions.
const (
	ActionStart    = "start"
	ActionComplete = "complete"
	ActionRestart  = "restart"
)

// SessionEventData captures a session lifecycle transition.
type SessionEventData struct {
	SessionID    string
	Source       string // tui, http, telegram, cli
	Action       string
	Score        int
	Answered     int
	Total        int
	DurationSecs int
}

// SessionEvent is a stored session lifecycle row.
type SessionEvent struct {
	ID        int
	Timestamp time.Time
	SessionEventData
}

// AnswerEventData captures a single scored answer.
type AnswerEventData struct {
	SessionID string
	ItemID    string
	ItemIndex int
	Choice    string
	Correct   bool
	TimeMs    int64
}

// AnswerEvent is a stored answer row.
type AnswerEvent struct {
	ID        int
	Timestamp time.Time
	AnswerEventData
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM call.
type LLMRequestEvent struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// SessionSummary folds the start and completion events of one session.
type SessionSummary struct {
	SessionID   string
	Source      string
	StartedAt   time.Time
	CompletedAt time.Time // zero when never completed
	Score       int
	Answered    int
	Total       int
	Duration    time.Duration
	Restarts    int
}

// Completed reports whether the session reached its summary.
func (s SessionSummary) Completed() bool {
	return !s.CompletedAt.IsZero()
}

// Accuracy returns the fraction of items answered correctly.
func (s SessionSummary) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Score) / float64(s.Total)
}

// ItemStat aggregates answers for one catalog item.
type ItemStat struct {
	ItemID  string
	Answers int
	Correct int
}

// MissRate is the fraction of answers that picked the false memory.
func (s ItemStat) MissRate() float64 {
	if s.Answers == 0 {
		return 0
	}
	return float64(s.Answers-s.Correct) / float64(s.Answers)
}

// EventRepo provides append and query access to quiz events.
type EventRepo interface {
	AppendSessionEvent(ctx context.Context, data SessionEventData) error
	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QuerySessionSummaries returns one summary per session, newest first.
	QuerySessionSummaries(ctx context.Context, opts QueryOpts) ([]SessionSummary, error)
	// QueryAnswers returns the answers for a session in order.
	QueryAnswers(ctx context.Context, sessionID string) ([]AnswerEvent, error)
	// ItemStats aggregates answers per item across all sessions.
	ItemStats(ctx context.Context) ([]ItemStat, error)

	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)
	// GetLLMEvent returns nil, nil when id does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)
}
