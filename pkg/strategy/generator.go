package strategy

import (
	"context"
	"errors"
	"log"
	"time"

	"tradie-recovery-be/pkg/llm"
)

const DefaultTimeout = 60 * time.Second

var ErrNoProvider = errors.New("no llm provider configured")

type Generator struct {
	provider llm.LLMProvider
	timeout  time.Duration
}

// NewGenerator accepts a nil provider; every call then returns fallback content.
func NewGenerator(provider llm.LLMProvider, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Generator{provider: provider, timeout: timeout}
}

func (g *Generator) Enabled() bool {
	return g != nil && g.provider != nil
}

// Generate never fails. Source reports whether the model produced the
// content or the static fallback did.
func (g *Generator) Generate(ctx context.Context, f Facts) (Strategy, Source) {
	if !g.Enabled() {
		return Fallback(f), SourceFallback
	}

	resp, err := g.Complete(ctx, systemPrompt, BuildPrompt(f))
	if err != nil {
		log.Printf("[STRATEGY] provider call failed, using fallback: %v", err)
		return Fallback(f), SourceFallback
	}

	s, err := Parse(resp, f)
	if err != nil {
		log.Printf("[STRATEGY] unusable model output, using fallback: %v", err)
		return Fallback(f), SourceFallback
	}
	return s, SourceAI
}

// Complete exposes the configured provider with the same timeout and
// sampling settings to sibling packages (contract review, tagging).
func (g *Generator) Complete(ctx context.Context, system, prompt string) (string, error) {
	if !g.Enabled() {
		return "", ErrNoProvider
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	return g.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: prompt},
	}, llm.WithTemperature(0.2), llm.WithJSONResponse())
}
