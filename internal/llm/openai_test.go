package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	}
}

func newTestChatProvider(t *testing.T, name string, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return newChatProvider(name, "test-key", server.URL+"/v1", "gpt-4o-mini")
}

func jsonHandler(status int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}
}

func TestOpenAIProvider_HappyPath(t *testing.T) {
	var gotBody map[string]any
	p := newTestChatProvider(t, "openai", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		jsonHandler(http.StatusOK, chatCompletion(`{"headline":"No dash"}`, "stop"))(w, r)
	})

	resp, err := p.Generate(context.Background(), Request{
		System:    "You explain false memories.",
		Messages:  []Message{{Role: RoleUser, Content: "Coca-Cola logo"}},
		Schema:    testSchema(),
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.InputTokens != 40 || resp.Usage.OutputTokens != 25 {
		t.Errorf("usage = %+v", resp.Usage)
	}
	if resp.StopReason != "end" {
		t.Errorf("StopReason = %q, want end", resp.StopReason)
	}
	msgs, _ := gotBody["messages"].([]any)
	if len(msgs) != 2 {
		t.Errorf("sent %d messages, want system + user", len(msgs))
	}
	if _, ok := gotBody["response_format"]; !ok {
		t.Error("response_format not sent with schema")
	}
}

func TestOpenAIProvider_RateLimit(t *testing.T) {
	p := newTestChatProvider(t, "openai", jsonHandler(http.StatusTooManyRequests, map[string]any{
		"error": map[string]any{"type": "tokens", "message": "Rate limit exceeded", "code": "rate_limit_exceeded"},
	}))
	_, err := p.Generate(context.Background(), UserPrompt("", "test"))
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T (%v)", err, err)
	}
}

func TestOpenAIProvider_ServerError(t *testing.T) {
	p := newTestChatProvider(t, "openai", jsonHandler(http.StatusInternalServerError, map[string]any{
		"error": map[string]any{"type": "server_error", "message": "Internal server error"},
	}))
	_, err := p.Generate(context.Background(), UserPrompt("", "test"))
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T (%v)", err, err)
	}
}

func TestOpenAIProvider_SchemaMismatch(t *testing.T) {
	p := newTestChatProvider(t, "openai", jsonHandler(http.StatusOK, chatCompletion(`{"nope":1}`, "stop")))
	req := UserPrompt("", "x")
	req.Schema = testSchema()
	_, err := p.Generate(context.Background(), req)
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
	}
}

func TestOpenAIProvider_Truncated(t *testing.T) {
	p := newTestChatProvider(t, "openai", jsonHandler(http.StatusOK, chatCompletion(`{"headl`, "length")))
	_, err := p.Generate(context.Background(), UserPrompt("", "x"))
	var mt *ErrMaxTokensExceeded
	if !errors.As(err, &mt) {
		t.Fatalf("expected ErrMaxTokensExceeded, got: %T (%v)", err, err)
	}
}

func TestOpenRouterProvider(t *testing.T) {
	p := newTestChatProvider(t, "openrouter", jsonHandler(http.StatusOK, chatCompletion(`"hi"`, "stop")))
	if p.Name() != "openrouter" {
		t.Errorf("Name() = %q", p.Name())
	}
	if _, err := p.Generate(context.Background(), UserPrompt("", "x")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := NewOpenRouterProvider(OpenRouterConfig{}); err == nil {
		t.Error("expected error without API key")
	}
	rp, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "k", Model: "x/y"})
	if err != nil {
		t.Fatal(err)
	}
	if rp.ModelID() != "x/y" {
		t.Errorf("ModelID() = %q", rp.ModelID())
	}
}
