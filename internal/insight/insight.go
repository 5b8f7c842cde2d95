// Package insight asks an LLM for background on why a quiz item is so
// commonly misremembered.
package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/abhisek/mandela/internal/catalog"
	"github.com/abhisek/mandela/internal/llm"
)

// Insight is a short deep dive on one item.
type Insight struct {
	ItemID         string `json:"item_id"`
	Headline       string `json:"headline"`
	WhyMisremember string `json:"why_people_misremember"`
	FunFact        string `json:"fun_fact"`
}

type output struct {
	Headline       string `json:"headline"`
	WhyMisremember string `json:"why_people_misremember"`
	FunFact        string `json:"fun_fact"`
}

// Config tunes generation.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns defaults for deep-dive generation.
func DefaultConfig() Config {
	return Config{MaxTokens: 512, Temperature: 0.5}
}

// Schema is the JSON schema deep-dive responses must satisfy.
var Schema = &llm.Schema{
	Name:        "item-insight",
	Description: "Background on a commonly misremembered logo, spelling, symbol or emoji",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"headline": map[string]any{
				"type":        "string",
				"description": "One sentence stating what the real version looks like",
			},
			"why_people_misremember": map[string]any{
				"type":        "string",
				"description": "2-3 sentences on the memory or design cues behind the false version",
			},
			"fun_fact": map[string]any{
				"type":        "string",
				"description": "One surprising related fact",
			},
		},
		"required":             []string{"headline", "why_people_misremember", "fun_fact"},
		"additionalProperties": false,
	},
}

const systemPrompt = `You explain the "Mandela Effect": collectively misremembered details of famous logos, brand names, symbols and emoji.
Be accurate and concise. Never invent history; if unsure, say what is documented.
Respond with JSON only.`

// Service generates insights, caching one per item.
type Service struct {
	provider llm.Provider
	cfg      Config

	cache sync.Map // item id -> *Insight

	mu      sync.Mutex
	pending *Insight
	err     error
	ready   bool
}

// NewService creates an insight service.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg}
}

// Explain returns the insight for item, generating it on first use.
func (s *Service) Explain(ctx context.Context, item catalog.Item) (*Insight, error) {
	if cached, ok := s.cache.Load(item.ID); ok {
		return cached.(*Insight), nil
	}

	ctx = llm.WithPurpose(ctx, "insight")
	req := llm.UserPrompt(systemPrompt, buildPrompt(item))
	req.Schema = Schema
	req.MaxTokens = s.cfg.MaxTokens
	req.Temperature = s.cfg.Temperature

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("insight generation: %w", err)
	}

	var out output
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("parse insight response: %w", err)
	}
	in := &Insight{
		ItemID:         item.ID,
		Headline:       out.Headline,
		WhyMisremember: out.WhyMisremember,
		FunFact:        out.FunFact,
	}

	s.cache.Store(item.ID, in)
	return in, nil
}

// Request starts generation in the background. Only one request is
// tracked at a time; a newer request replaces the pending result.
func (s *Service) Request(ctx context.Context, item catalog.Item) {
	s.mu.Lock()
	s.ready = false
	s.mu.Unlock()

	go func() {
		in, err := s.Explain(ctx, item)
		s.mu.Lock()
		defer s.mu.Unlock()
		s.pending = in
		s.err = err
		s.ready = true
	}()
}

// Consume returns the finished result and clears the slot. ok is false
// while generation is still running or nothing was requested.
func (s *Service) Consume() (in *Insight, err error, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil, nil, false
	}
	in, err = s.pending, s.err
	s.pending, s.err, s.ready = nil, nil, false
	return in, err, true
}

func buildPrompt(item catalog.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Quiz item: %s\n", item.Title())
	switch item.Kind {
	case catalog.PairedChoice:
		fmt.Fprintf(&b, "The player chose between two images: %q and %q.\n", item.AssetA, item.AssetB)
		fmt.Fprintf(&b, "The authentic one is %q.\n", item.CorrectAsset())
	case catalog.BooleanChoice:
		fmt.Fprintf(&b, "The player was asked whether %q depicts something real. Answer: %s.\n", item.AssetA, item.Correct)
	}
	fmt.Fprintf(&b, "Known fact: %s\n", item.Explanation)
	b.WriteString("Explain why so many people remember it differently.")
	return b.String()
}

// OfflineResponder answers insight prompts from the catalog alone. It is
// plugged into the mock provider so deep dives work without an API key.
func OfflineResponder(cat *catalog.Catalog) func(llm.Request) (json.RawMessage, error) {
	return func(req llm.Request) (json.RawMessage, error) {
		if len(req.Messages) == 0 {
			return nil, fmt.Errorf("empty request")
		}
		prompt := req.Messages[0].Content
		for _, item := range cat.Items() {
			if !strings.Contains(prompt, "Quiz item: "+item.Title()+"\n") {
				continue
			}
			return json.Marshal(output{
				Headline:       item.Explanation,
				WhyMisremember: "Memory fills gaps with familiar patterns, so a small, plausible variation spreads easily once many people repeat it.",
				FunFact:        fmt.Sprintf("This item appears in the quiz as %q.", item.Title()),
			})
		}
		return nil, fmt.Errorf("no catalog item matches prompt")
	}
}
