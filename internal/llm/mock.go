package llm

import (
	"context"
	"strings"
	"sync"
)

// MockGenerator is a scripted generator for tests. Each rule maps a prompt
// substring to a canned reply; the first matching rule wins. Prompts matching
// no rule get Default. All received prompts are recorded for assertions.
type MockGenerator struct {
	Rules   []MockRule
	Default string
	Err     error

	mu      sync.Mutex
	Prompts []string
}

// MockRule is one prompt-substring-to-reply mapping. A non-nil Err is
// returned instead of the reply, simulating a transport failure for that
// prompt only.
type MockRule struct {
	Contains string
	Reply    string
	Err      error
}

// Generate records the prompt and returns the scripted reply.
func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	for _, rule := range m.Rules {
		if strings.Contains(prompt, rule.Contains) {
			return rule.Reply, rule.Err
		}
	}
	return m.Default, nil
}

// PromptCount returns the number of Generate calls received.
func (m *MockGenerator) PromptCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}
