// Package agent implements the intent router and the three retrieval
// strategies (lookup, summarize, reason) as an explicit state machine over
// a per-query state passed by value between stages.
package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Soham2704/Pdf-chat/internal/config"
	"github.com/Soham2704/Pdf-chat/internal/llm"
	"github.com/Soham2704/Pdf-chat/internal/models"
)

// Retriever is the chunk-store capability the strategies consume.
type Retriever interface {
	Search(ctx context.Context, query string, k int, sourceFilter string) ([]*models.Evidence, error)
}

// Pipeline sequences classification, retrieval, and generation for one query
// at a time. It holds no per-query state, so a single Pipeline serves
// concurrent queries.
type Pipeline struct {
	store  Retriever
	gen    llm.Generator
	cfg    *config.RetrievalConfig
	logger *zap.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets a logger for debug output (intent decisions, hand-offs).
func WithLogger(l *zap.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = l }
}

// NewPipeline creates a pipeline with the given dependencies.
func NewPipeline(store Retriever, gen llm.Generator, cfg *config.RetrievalConfig, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{store: store, gen: gen, cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// queryPhase names the pipeline's states. Every query walks
// Start -> Classified -> Retrieved -> Done.
type queryPhase int

const (
	phaseStart queryPhase = iota
	phaseClassified
	phaseRetrieved
	phaseDone
)

// Answer is the single entry point: classify the question, dispatch to the
// matching strategy (or the lookup-then-reason chain), and return the
// generated answer with its supporting evidence.
func (p *Pipeline) Answer(ctx context.Context, question string, candidateFiles []string) (*models.Answer, error) {
	state := models.QueryState{
		Question:       question,
		CandidateFiles: candidateFiles,
	}
	chained := false

	var err error
	for phase := phaseStart; phase != phaseDone; {
		switch phase {
		case phaseStart:
			state.Intent, err = p.classify(ctx, question)
			if err != nil {
				return nil, err
			}
			if p.logger != nil {
				p.logger.Debug("intent classified",
					zap.String("intent", string(state.Intent)),
					zap.String("question", question),
				)
			}
			phase = phaseClassified

		case phaseClassified:
			switch state.Intent {
			case models.IntentSummarize:
				state, err = p.summarize(ctx, state)
			case models.IntentReason:
				// Chain: lookup retrieves but does not answer; reasoning
				// consumes what lookup fetched without re-querying.
				state, err = p.lookup(ctx, state)
				chained = err == nil
			default:
				state, err = p.lookup(ctx, state)
			}
			if err != nil {
				return nil, err
			}
			phase = phaseRetrieved

		case phaseRetrieved:
			if state.Intent == models.IntentReason {
				state, err = p.reason(ctx, state)
				if err != nil {
					return nil, err
				}
			}
			phase = phaseDone
		}
	}

	return &models.Answer{
		Intent:   state.Intent,
		Text:     state.Answer,
		Evidence: state.Evidence,
		Chained:  chained,
	}, nil
}

// classify asks the generator for the query's intent. Replies outside
// {summarize, reason, rag} default to rag; model non-compliance is a data
// decision, never an error. Transport failures from the generator propagate.
func (p *Pipeline) classify(ctx context.Context, question string) (models.Intent, error) {
	reply, err := p.gen.Generate(ctx, classifyPrompt(question))
	if err != nil {
		return "", fmt.Errorf("classify intent: %w", err)
	}
	return models.ParseIntent(strings.ToLower(strings.TrimSpace(reply))), nil
}
