// Package llm provides single-turn text generation via OpenAI-compatible APIs.
package llm

import "context"

// Generator produces text from a prompt. The model has no built-in memory;
// all context must be included in the prompt on every call.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
