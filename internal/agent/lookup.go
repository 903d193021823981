package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Soham2704/Pdf-chat/internal/models"
)

// lookup runs the direct-lookup strategy: fetch a surplus of candidates,
// deduplicate by fingerprint in ascending-distance order, keep the first few
// unique results, and answer with citations. When the query's intent is
// reason, lookup only retrieves: the evidence is handed to the reasoning
// stage and no answer is generated.
func (p *Pipeline) lookup(ctx context.Context, state models.QueryState) (models.QueryState, error) {
	candidates, err := p.store.Search(ctx, state.Question, p.cfg.LookupFetchK, "")
	if err != nil {
		return state, fmt.Errorf("lookup retrieval: %w", err)
	}
	state.Evidence = dedupe(candidates, p.cfg.FingerprintLength, p.cfg.LookupKeep)

	if state.Intent == models.IntentReason {
		if p.logger != nil {
			p.logger.Debug("lookup handing off to reasoning",
				zap.Int("evidence", len(state.Evidence)),
			)
		}
		return state, nil
	}

	answer, err := p.gen.Generate(ctx, lookupPrompt(state.Question, state.Evidence))
	if err != nil {
		return state, fmt.Errorf("lookup generation: %w", err)
	}
	state.Answer = answer
	return state, nil
}
