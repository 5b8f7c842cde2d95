package events

import (
	"context"
	"sync"
)

// MockPublisher records events in memory.
type MockPublisher struct {
	mu       sync.Mutex
	Sessions []*SessionEvent
	Answers  []*AnswerEvent
	Err      error
}

func (m *MockPublisher) PublishSession(_ context.Context, event *SessionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sessions = append(m.Sessions, event)
	return nil
}

func (m *MockPublisher) PublishAnswer(_ context.Context, event *AnswerEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Answers = append(m.Answers, event)
	return nil
}

func (m *MockPublisher) Close() error { return nil }

// Types returns the recorded event types in publish order per kind.
func (m *MockPublisher) Types() []EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EventType, 0, len(m.Sessions))
	for _, e := range m.Sessions {
		out = append(out, e.Type)
	}
	return out
}
