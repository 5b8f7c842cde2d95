package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType doubles as the AMQP routing key.
type EventType string

const (
	EventTypeSessionStarted   EventType = "quiz.session.started"
	EventTypeSessionCompleted EventType = "quiz.session.completed"
	EventTypeSessionRestarted EventType = "quiz.session.restarted"
	EventTypeAnswerSubmitted  EventType = "quiz.answer.submitted"
)

// BaseEvent holds the fields common to all events.
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"`
	Version   string    `json:"version"`
}

// SessionEvent describes a session lifecycle transition.
type SessionEvent struct {
	BaseEvent
	SessionID string `json:"sessionId"`
	Source    string `json:"source"`
	Score     int    `json:"score"`
	Answered  int    `json:"answered"`
	Total     int    `json:"total"`
}

// AnswerEvent describes one scored answer.
type AnswerEvent struct {
	BaseEvent
	SessionID string `json:"sessionId"`
	Source    string `json:"source"`
	ItemID    string `json:"itemId"`
	ItemIndex int    `json:"itemIndex"`
	Choice    string `json:"choice"`
	Correct   bool   `json:"correct"`
}

func newBase(t EventType) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now().Unix(),
		Version:   "1.0",
	}
}

// NewSessionEvent builds a session event of the given type.
func NewSessionEvent(t EventType, sessionID, source string, score, answered, total int) *SessionEvent {
	return &SessionEvent{
		BaseEvent: newBase(t),
		SessionID: sessionID,
		Source:    source,
		Score:     score,
		Answered:  answered,
		Total:     total,
	}
}

// NewAnswerEvent builds an answer event.
func NewAnswerEvent(sessionID, source, itemID string, index int, choice string, correct bool) *AnswerEvent {
	return &AnswerEvent{
		BaseEvent: newBase(EventTypeAnswerSubmitted),
		SessionID: sessionID,
		Source:    source,
		ItemID:    itemID,
		ItemIndex: index,
		Choice:    choice,
		Correct:   correct,
	}
}
