package llm

import (
	"context"
	"encoding/json"
	"testing"

	"go.uber.org/zap"
)

func nopLogger() *zap.Logger { return zap.NewNop() }

func TestPurpose(t *testing.T) {
	if got := PurposeFrom(context.Background()); got != "unknown" {
		t.Errorf("PurposeFrom(empty) = %q", got)
	}
	ctx := WithPurpose(context.Background(), "insight")
	if got := PurposeFrom(ctx); got != "insight" {
		t.Errorf("PurposeFrom = %q", got)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"mock needs nothing", Config{Provider: "mock"}, false},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "k"}}, false},
		{"openai missing key", Config{Provider: "openai"}, true},
		{"gemini missing key", Config{Provider: "gemini"}, true},
		{"openrouter with key", Config{Provider: "openrouter", OpenRouter: OpenRouterConfig{APIKey: "k"}}, false},
		{"unknown", Config{Provider: "llama"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDiscoverConfig(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	if _, ok := DiscoverConfig(); ok {
		t.Fatal("expected no provider discovered")
	}

	t.Setenv("ANTHROPIC_API_KEY", "a")
	t.Setenv("OPENAI_API_KEY", "o")
	cfg, ok := DiscoverConfig()
	if !ok {
		t.Fatal("expected provider discovered")
	}
	if cfg.Provider != "openai" || cfg.OpenAI.APIKey != "o" {
		t.Errorf("cfg = %+v, want openai first", cfg)
	}
}

func TestNewProvider_Mock(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"headline":"x"}`)})
	cfg := DefaultConfig()
	cfg.Provider = "mock"

	p, err := NewProvider(context.Background(), cfg, Options{Mock: mock, Logger: nopLogger()})
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "mock" || p.ModelID() != "mock" {
		t.Errorf("Name/ModelID = %q/%q", p.Name(), p.ModelID())
	}
	if _, err := p.Generate(context.Background(), UserPrompt("", "x")); err != nil {
		t.Fatal(err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("CallCount = %d, want 1", mock.CallCount())
	}
}

func TestNewProvider_Invalid(t *testing.T) {
	if _, err := NewProvider(context.Background(), Config{Provider: "openai"}, Options{}); err == nil {
		t.Error("expected validation error")
	}
}

func TestMockProvider_Fallback(t *testing.T) {
	m := NewMockProvider()
	m.Fallback = func(req Request) (json.RawMessage, error) {
		return json.RawMessage(`{"headline":"` + req.Messages[0].Content + `"}`), nil
	}
	req := UserPrompt("", "echo")
	req.Schema = testSchema()
	resp, err := m.Generate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if string(resp.Content) != `{"headline":"echo"}` {
		t.Errorf("Content = %s", resp.Content)
	}
}
