package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/mandela/internal/store"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: attempts,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2,
	}
}

func TestRetry_SucceedsAfterTransientErrors(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{}},
		MockResponse{Err: &ErrRateLimit{RetryAfter: time.Millisecond}},
		MockResponse{Content: json.RawMessage(`"ok"`)},
	)
	p := WithRetry(mock, fastRetry(3), nil)

	resp, err := p.Generate(context.Background(), UserPrompt("", "x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `"ok"` {
		t.Errorf("Content = %s", resp.Content)
	}
	if mock.CallCount() != 3 {
		t.Errorf("CallCount = %d, want 3", mock.CallCount())
	}
}

func TestRetry_GivesUp(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{}},
		MockResponse{Err: &ErrProviderUnavailable{}},
		MockResponse{Content: json.RawMessage(`"late"`)},
	)
	p := WithRetry(mock, fastRetry(2), nil)

	_, err := p.Generate(context.Background(), UserPrompt("", "x"))
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	if mock.CallCount() != 2 {
		t.Errorf("CallCount = %d, want 2", mock.CallCount())
	}
}

func TestRetry_InvalidResponseRetriedOnce(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrInvalidResponse{Err: errors.New("bad")}},
		MockResponse{Err: &ErrInvalidResponse{Err: errors.New("bad again")}},
		MockResponse{Content: json.RawMessage(`"never"`)},
	)
	p := WithRetry(mock, fastRetry(5), nil)

	_, err := p.Generate(context.Background(), UserPrompt("", "x"))
	if err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount() != 2 {
		t.Errorf("CallCount = %d, want 2", mock.CallCount())
	}
}

func TestRetry_MaxTokensNotRetried(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrMaxTokensExceeded{}},
		MockResponse{Content: json.RawMessage(`"x"`)},
	)
	p := WithRetry(mock, fastRetry(3), nil)

	if _, err := p.Generate(context.Background(), UserPrompt("", "x")); err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount() != 1 {
		t.Errorf("CallCount = %d, want 1", mock.CallCount())
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{}},
		MockResponse{Content: json.RawMessage(`"x"`)},
	)
	p := WithRetry(mock, RetryConfig{MaxAttempts: 3, InitialWait: time.Hour, MaxWait: time.Hour, Multiplier: 1}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := p.Generate(ctx, UserPrompt("", "x"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBackoff_RespectsRetryAfterAndCap(t *testing.T) {
	r := &RetryProvider{config: RetryConfig{InitialWait: time.Second, MaxWait: 2 * time.Second, Multiplier: 10}}

	if got := r.backoff(0, &ErrRateLimit{RetryAfter: 7 * time.Second}); got != 7*time.Second {
		t.Errorf("backoff with RetryAfter = %v, want 7s", got)
	}
	got := r.backoff(5, errors.New("x"))
	if got < 1600*time.Millisecond || got > 2400*time.Millisecond {
		t.Errorf("capped backoff = %v, want 2s ±20%%", got)
	}
}

type recordingRepo struct {
	store.EventRepo
	mu     sync.Mutex
	events []store.LLMRequestEventData
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, d store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, d)
	return nil
}

func TestRecording_AppendsEvent(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"headline":"x"}`), Usage: Usage{InputTokens: 12, OutputTokens: 7}},
		MockResponse{Err: errors.New("boom")},
	)
	p := WithRecording(mock, repo, nopLogger())

	ctx := WithPurpose(context.Background(), "insight")
	req := UserPrompt("sys", "explain")
	req.Schema = testSchema()
	if _, err := p.Generate(ctx, req); err != nil {
		t.Fatal(err)
	}
	_, _ = p.Generate(ctx, UserPrompt("", "again"))

	if len(repo.events) != 2 {
		t.Fatalf("recorded %d events, want 2", len(repo.events))
	}
	ok := repo.events[0]
	if !ok.Success || ok.Purpose != "insight" || ok.Provider != "mock" || ok.InputTokens != 12 {
		t.Errorf("event[0] = %+v", ok)
	}
	if ok.ResponseBody != `{"headline":"x"}` {
		t.Errorf("ResponseBody = %q", ok.ResponseBody)
	}
	failed := repo.events[1]
	if failed.Success || failed.ErrorMessage != "boom" {
		t.Errorf("event[1] = %+v", failed)
	}
}

func TestTimeout(t *testing.T) {
	slow := &slowProvider{delay: time.Second}
	p := WithTimeout(slow, 10*time.Millisecond)
	_, err := p.Generate(context.Background(), UserPrompt("", "x"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}

type slowProvider struct{ delay time.Duration }

func (s *slowProvider) Name() string    { return "slow" }
func (s *slowProvider) ModelID() string { return "slow" }
func (s *slowProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.delay):
		return &Response{}, nil
	}
}
