package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Soham2704/Pdf-chat/internal/models"
)

// summarize runs the cross-document summarization strategy: select target
// files, fetch a budgeted number of chunks per file, interleave the per-file
// groups round-robin, deduplicate, and generate the summary.
func (p *Pipeline) summarize(ctx context.Context, state models.QueryState) (models.QueryState, error) {
	targets := p.selectTargetFiles(ctx, state.Question, state.CandidateFiles)
	if p.logger != nil {
		p.logger.Debug("summarize targets selected", zap.Strings("files", targets))
	}

	groups, err := p.fetchGroups(ctx, state.Question, targets)
	if err != nil {
		return state, err
	}

	state.Evidence = dedupe(interleave(groups), p.cfg.FingerprintLength, 0)

	answer, err := p.gen.Generate(ctx, summaryPrompt(state.Evidence))
	if err != nil {
		return state, fmt.Errorf("summarize generation: %w", err)
	}
	state.Answer = answer
	return state, nil
}

// selectTargetFiles asks the generator which files the user means. The match
// between the model's suggestions and the real filenames is deliberately
// loose (case-sensitive substring containment in either direction) to
// tolerate model phrasing variance; a file matches at most once. Any failure
// to identify a file, including a generator error, falls back to all
// candidate files so selection can never block summarization.
func (p *Pipeline) selectTargetFiles(ctx context.Context, question string, files []string) []string {
	if len(files) <= 1 {
		return files
	}
	reply, err := p.gen.Generate(ctx, fileSelectionPrompt(question, files))
	if err != nil {
		if p.logger != nil {
			p.logger.Warn("file selection failed, targeting all files", zap.Error(err))
		}
		return files
	}
	cleaned := strings.NewReplacer("'", "", `"`, "").Replace(strings.TrimSpace(reply))
	if strings.Contains(strings.ToUpper(cleaned), "ALL") {
		return files
	}
	suggestions := strings.Split(cleaned, ",")
	var targets []string
	for _, f := range files {
		for _, raw := range suggestions {
			s := strings.TrimSpace(raw)
			if s == "" {
				continue
			}
			if strings.Contains(f, s) || strings.Contains(s, f) {
				targets = append(targets, f)
				break
			}
		}
	}
	if len(targets) == 0 {
		return files
	}
	return targets
}

// fetchGroups retrieves one ordered result group per target file. The total
// budget is divided evenly across files (minimum one chunk per file), so
// fewer files get deeper retrieval per file. Per-file fetches are independent
// and read-only, so they fan out concurrently; group order follows target
// order. With no target files, a single unfiltered group is fetched.
func (p *Pipeline) fetchGroups(ctx context.Context, question string, targets []string) ([][]*models.Evidence, error) {
	if len(targets) == 0 {
		group, err := p.store.Search(ctx, question, p.cfg.SummarizeFallbackK, "")
		if err != nil {
			return nil, fmt.Errorf("summarize fallback retrieval: %w", err)
		}
		return [][]*models.Evidence{group}, nil
	}

	kPerFile := p.cfg.SummarizeBudget / len(targets)
	if kPerFile < 1 {
		kPerFile = 1
	}

	fetched := make([][]*models.Evidence, len(targets))
	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, file := range targets {
		wg.Add(1)
		go func(i int, file string) {
			defer wg.Done()
			fetched[i], errs[i] = p.store.Search(ctx, question, kPerFile, file)
		}(i, file)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("summarize retrieval for %s: %w", targets[i], err)
		}
	}

	groups := make([][]*models.Evidence, 0, len(fetched))
	for _, g := range fetched {
		if len(g) > 0 {
			groups = append(groups, g)
		}
	}
	return groups, nil
}
