package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/Soham2704/Pdf-chat/internal/config"
)

// OpenAIGenerator implements Generator against an OpenAI-compatible chat
// endpoint. Temperature is pinned to zero for factual consistency.
type OpenAIGenerator struct {
	client llms.Model
}

// NewOpenAIGenerator creates a generator from the LLM config section.
func NewOpenAIGenerator(cfg *config.LLMConfig) (*OpenAIGenerator, error) {
	client, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(cfg.Token),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("create llm client: %w", err)
	}
	return &OpenAIGenerator{client: client}, nil
}

// Generate runs a single-turn completion for the given prompt.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, g.client, prompt, llms.WithTemperature(0))
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return out, nil
}
