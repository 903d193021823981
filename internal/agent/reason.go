package agent

import (
	"context"
	"fmt"

	"github.com/Soham2704/Pdf-chat/internal/models"
)

// reason runs the multi-step analysis strategy. It performs no retrieval of
// its own: the evidence was fetched by the lookup stage earlier in the same
// query and passes through unchanged.
func (p *Pipeline) reason(ctx context.Context, state models.QueryState) (models.QueryState, error) {
	answer, err := p.gen.Generate(ctx, reasonPrompt(state.Question, state.Evidence))
	if err != nil {
		return state, fmt.Errorf("reason generation: %w", err)
	}
	state.Answer = answer
	return state, nil
}
