// Package llm wraps the chat-completion providers the assistant can route to.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider is the interface for all LLM providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions transforms raw instructions into model-specific formats
	AdaptInstructions(rawInstructions string) string
}

// OfflineProvider answers without a network call. It is the fallback when no
// API key is configured and the provider used in tests.
type OfflineProvider struct {
	// Reply, when set, is returned verbatim.
	Reply string
}

var _ Provider = (*OfflineProvider)(nil)

func (p *OfflineProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.Reply != "" {
		return p.Reply, nil
	}
	question := prompt
	if i := strings.LastIndex(prompt, "Question:"); i >= 0 {
		question = strings.TrimSpace(prompt[i+len("Question:"):])
	}
	return fmt.Sprintf("## Offline review\n\nNo model provider is configured, so this answer was not generated.\n\n**Question:** %s", question), nil
}

func (p *OfflineProvider) AdaptInstructions(raw string) string {
	return raw
}
