package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/Soham2704/Pdf-chat/internal/config"
	"github.com/Soham2704/Pdf-chat/internal/llm"
	"github.com/Soham2704/Pdf-chat/internal/models"
)

type searchCall struct {
	Query  string
	K      int
	Filter string
}

// fakeStore returns scripted evidence per source filter and records calls.
type fakeStore struct {
	mu      sync.Mutex
	calls   []searchCall
	results map[string][]*models.Evidence
	err     error
}

func (f *fakeStore) Search(ctx context.Context, query string, k int, filter string) ([]*models.Evidence, error) {
	f.mu.Lock()
	f.calls = append(f.calls, searchCall{Query: query, K: k, Filter: filter})
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := f.results[filter]
	if k < len(out) {
		out = out[:k]
	}
	return out, nil
}

func (f *fakeStore) recorded() []searchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]searchCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func testCfg() *config.RetrievalConfig {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return &cfg.Retrieval
}

func sourceEv(id, source, text string, score float64) *models.Evidence {
	return &models.Evidence{
		Chunk: &models.Chunk{ID: id, Text: text, SourceDocument: source, PageNumber: 1},
		Score: score,
	}
}

func TestPipeline_IntentDefault(t *testing.T) {
	tests := []struct {
		reply string
		want  models.Intent
	}{
		{"rag", models.IntentRAG},
		{" Summarize \n", models.IntentSummarize},
		{"REASON", models.IntentReason},
		{"maybe", models.IntentRAG},
		{"", models.IntentRAG},
		{"I think the user wants a summary", models.IntentRAG},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("reply=%q", tt.reply), func(t *testing.T) {
			gen := &llm.MockGenerator{
				Rules:   []llm.MockRule{{Contains: classifyInstruction, Reply: tt.reply}},
				Default: "answer",
			}
			p := NewPipeline(&fakeStore{results: map[string][]*models.Evidence{}}, gen, testCfg())
			intent, err := p.classify(context.Background(), "question")
			if err != nil {
				t.Fatal(err)
			}
			if intent != tt.want {
				t.Errorf("intent = %q, want %q", intent, tt.want)
			}
		})
	}
}

func TestPipeline_ClassifierErrorPropagates(t *testing.T) {
	gen := &llm.MockGenerator{Err: errors.New("service unavailable")}
	p := NewPipeline(&fakeStore{}, gen, testCfg())
	if _, err := p.Answer(context.Background(), "question", nil); err == nil {
		t.Error("transport failure must not be swallowed")
	}
}

func TestPipeline_LookupDedupsAndKeepsFive(t *testing.T) {
	shared := strings.Repeat("boilerplate header text ", 6) // > 100 chars
	unfiltered := []*models.Evidence{
		sourceEv("c1", "a.pdf", shared+"one", 0.10),
		sourceEv("c2", "a.pdf", shared+"two", 0.12), // dup of c1
		sourceEv("c3", "a.pdf", "unique three", 0.15),
		sourceEv("c4", "a.pdf", "unique four", 0.20),
		sourceEv("c5", "a.pdf", "unique five", 0.25),
		sourceEv("c6", "a.pdf", "unique six", 0.30),
		sourceEv("c7", "a.pdf", "unique seven", 0.35),
		sourceEv("c8", "a.pdf", "unique eight", 0.40),
	}
	store := &fakeStore{results: map[string][]*models.Evidence{"": unfiltered}}
	gen := &llm.MockGenerator{
		Rules:   []llm.MockRule{{Contains: classifyInstruction, Reply: "rag"}},
		Default: "the total is 500 [Source: a.pdf | ID: c1]",
	}
	p := NewPipeline(store, gen, testCfg())
	ans, err := p.Answer(context.Background(), "what is the total", []string{"a.pdf"})
	if err != nil {
		t.Fatal(err)
	}
	if ans.Intent != models.IntentRAG {
		t.Errorf("intent = %q", ans.Intent)
	}
	if len(ans.Evidence) != 5 {
		t.Fatalf("expected 5 unique evidence items, got %d", len(ans.Evidence))
	}
	ids := make([]string, len(ans.Evidence))
	for i, e := range ans.Evidence {
		ids[i] = e.Chunk.ID
	}
	want := []string{"c1", "c3", "c4", "c5", "c6"}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("evidence order %v, want %v", ids, want)
			break
		}
	}
	calls := store.recorded()
	if len(calls) != 1 || calls[0].K != 10 || calls[0].Filter != "" {
		t.Errorf("lookup should fetch k=10 unfiltered, got %+v", calls)
	}
	if ans.Text == "" {
		t.Error("answer text should be set")
	}
}

func TestPipeline_ReasonHandoff(t *testing.T) {
	unfiltered := []*models.Evidence{
		sourceEv("c1", "a.pdf", "fact one", 0.1),
		sourceEv("c2", "b.pdf", "fact two", 0.2),
	}
	store := &fakeStore{results: map[string][]*models.Evidence{"": unfiltered}}
	gen := &llm.MockGenerator{
		Rules: []llm.MockRule{
			{Contains: classifyInstruction, Reply: "reason"},
			{Contains: "reasoning agent", Reply: "comparison: one vs two"},
		},
		Default: "UNEXPECTED GENERATION",
	}
	p := NewPipeline(store, gen, testCfg())
	ans, err := p.Answer(context.Background(), "compare the facts", []string{"a.pdf", "b.pdf"})
	if err != nil {
		t.Fatal(err)
	}
	if ans.Intent != models.IntentReason {
		t.Errorf("intent = %q", ans.Intent)
	}
	if len(ans.Evidence) == 0 {
		t.Error("hand-off evidence should be non-empty")
	}
	if ans.Text != "comparison: one vs two" {
		t.Errorf("answer should come from the reasoning stage, got %q", ans.Text)
	}
	if !ans.Chained {
		t.Error("reason path should report chaining")
	}
	// classify + reason only: the lookup stage must not generate in hand-off mode.
	if gen.PromptCount() != 2 {
		t.Errorf("expected 2 generator calls, got %d: %v", gen.PromptCount(), gen.Prompts)
	}
}

func TestPipeline_ReasonWithEmptyCorpus(t *testing.T) {
	store := &fakeStore{results: map[string][]*models.Evidence{}}
	gen := &llm.MockGenerator{
		Rules: []llm.MockRule{
			{Contains: classifyInstruction, Reply: "reason"},
			{Contains: "reasoning agent", Reply: "the documents contain no information to reason over"},
		},
	}
	p := NewPipeline(store, gen, testCfg())
	ans, err := p.Answer(context.Background(), "compare everything", nil)
	if err != nil {
		t.Fatalf("empty corpus must not fail: %v", err)
	}
	if len(ans.Evidence) != 0 {
		t.Errorf("expected empty evidence, got %d", len(ans.Evidence))
	}
	if ans.Text == "" {
		t.Error("expected an answer noting the lack of information")
	}
}

func TestSummarize_BudgetConservation(t *testing.T) {
	files := []string{"a.pdf", "b.pdf", "c.pdf"}
	results := map[string][]*models.Evidence{}
	for _, f := range files {
		results[f] = []*models.Evidence{sourceEv("id-"+f, f, "content of "+f, 0.1)}
	}
	store := &fakeStore{results: results}
	gen := &llm.MockGenerator{
		Rules: []llm.MockRule{
			{Contains: classifyInstruction, Reply: "summarize"},
			{Contains: "file selector", Reply: "ALL"},
		},
		Default: "summary",
	}
	p := NewPipeline(store, gen, testCfg())
	if _, err := p.Answer(context.Background(), "summarize everything", files); err != nil {
		t.Fatal(err)
	}
	perFile := map[string]int{}
	total := 0
	for _, c := range store.recorded() {
		if c.Filter == "" {
			t.Errorf("unexpected unfiltered fetch: %+v", c)
			continue
		}
		perFile[c.Filter] += c.K
		total += c.K
	}
	// budget 30 across 3 files: 10 each, 30 total.
	for f, k := range perFile {
		if k != 10 {
			t.Errorf("file %s fetched %d, want 10", f, k)
		}
	}
	if total != 30 {
		t.Errorf("total fetch = %d, want 30", total)
	}
}

func TestSummarize_MinimumOnePerFile(t *testing.T) {
	cfg := testCfg()
	cfg.SummarizeBudget = 2
	var files []string
	results := map[string][]*models.Evidence{}
	for i := 0; i < 5; i++ {
		f := fmt.Sprintf("f%d.pdf", i)
		files = append(files, f)
		results[f] = []*models.Evidence{sourceEv("id-"+f, f, "content "+f, 0.1)}
	}
	store := &fakeStore{results: results}
	gen := &llm.MockGenerator{
		Rules: []llm.MockRule{
			{Contains: classifyInstruction, Reply: "summarize"},
			{Contains: "file selector", Reply: "ALL"},
		},
		Default: "summary",
	}
	p := NewPipeline(store, gen, cfg)
	if _, err := p.Answer(context.Background(), "summarize all", files); err != nil {
		t.Fatal(err)
	}
	for _, c := range store.recorded() {
		if c.K != 1 {
			t.Errorf("per-file quota should floor at 1, got %d for %s", c.K, c.Filter)
		}
	}
}

func TestSummarize_InterleavesAcrossFiles(t *testing.T) {
	results := map[string][]*models.Evidence{
		"a.pdf": {
			sourceEv("A1", "a.pdf", "alpha one", 0.10),
			sourceEv("A2", "a.pdf", "alpha two", 0.20),
		},
		"b.pdf": {
			sourceEv("B1", "b.pdf", "beta one", 0.11),
			sourceEv("B2", "b.pdf", "beta two", 0.21),
		},
	}
	store := &fakeStore{results: results}
	gen := &llm.MockGenerator{
		Rules: []llm.MockRule{
			{Contains: classifyInstruction, Reply: "summarize"},
			{Contains: "file selector", Reply: "ALL"},
		},
		Default: "summary of a.pdf and b.pdf",
	}
	p := NewPipeline(store, gen, testCfg())
	ans, err := p.Answer(context.Background(), "summarize everything", []string{"a.pdf", "b.pdf"})
	if err != nil {
		t.Fatal(err)
	}
	if ans.Intent != models.IntentSummarize {
		t.Errorf("intent = %q", ans.Intent)
	}
	var order []string
	for _, e := range ans.Evidence {
		order = append(order, e.Chunk.ID)
	}
	want := []string{"A1", "B1", "A2", "B2"}
	if len(order) != len(want) {
		t.Fatalf("evidence order %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("evidence order %v, want %v", order, want)
		}
	}
}

func TestSummarize_FileSelection(t *testing.T) {
	files := []string{"invoice_2024.pdf", "annual_report.pdf"}
	tests := []struct {
		name  string
		reply string
		want  []string
	}{
		{"all keyword", "ALL", files},
		{"all embedded in prose", "The answer is ALL files", files},
		{"exact filename", "invoice_2024.pdf", []string{"invoice_2024.pdf"}},
		{"suggestion is substring of filename", "invoice_2024", []string{"invoice_2024.pdf"}},
		{"filename is substring of suggestion", "the file invoice_2024.pdf please", []string{"invoice_2024.pdf"}},
		{"comma separated", "invoice_2024.pdf, annual_report.pdf", files},
		{"quoted reply", `"invoice_2024.pdf"`, []string{"invoice_2024.pdf"}},
		{"zero matches falls back to all", "shopping_list.txt", files},
		{"empty reply falls back to all", "", files},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &llm.MockGenerator{
				Rules: []llm.MockRule{{Contains: "file selector", Reply: tt.reply}},
			}
			p := NewPipeline(&fakeStore{}, gen, testCfg())
			got := p.selectTargetFiles(context.Background(), "summarize", files)
			if len(got) != len(tt.want) {
				t.Fatalf("targets = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("targets = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestSummarize_SelectionErrorFallsBackToAll(t *testing.T) {
	files := []string{"a.pdf", "b.pdf"}
	gen := &llm.MockGenerator{
		Rules: []llm.MockRule{{Contains: "file selector", Err: errors.New("timeout")}},
	}
	p := NewPipeline(&fakeStore{}, gen, testCfg())
	got := p.selectTargetFiles(context.Background(), "summarize", files)
	if len(got) != 2 {
		t.Errorf("selection failure must target all files, got %v", got)
	}
}

func TestSummarize_SingleFileSkipsSelection(t *testing.T) {
	gen := &llm.MockGenerator{Default: "should not be called"}
	p := NewPipeline(&fakeStore{}, gen, testCfg())
	got := p.selectTargetFiles(context.Background(), "summarize", []string{"only.pdf"})
	if len(got) != 1 || got[0] != "only.pdf" {
		t.Errorf("single candidate should be the target, got %v", got)
	}
	if gen.PromptCount() != 0 {
		t.Error("selection must not call the generator for a single file")
	}
}

func TestSummarize_NoFilesFallsBackToGlobalFetch(t *testing.T) {
	store := &fakeStore{results: map[string][]*models.Evidence{
		"": {sourceEv("g1", "x.pdf", "global content", 0.1)},
	}}
	gen := &llm.MockGenerator{
		Rules:   []llm.MockRule{{Contains: classifyInstruction, Reply: "summarize"}},
		Default: "summary",
	}
	p := NewPipeline(store, gen, testCfg())
	ans, err := p.Answer(context.Background(), "summarize", nil)
	if err != nil {
		t.Fatal(err)
	}
	calls := store.recorded()
	if len(calls) != 1 || calls[0].Filter != "" || calls[0].K != 20 {
		t.Errorf("expected single unfiltered fetch of 20, got %+v", calls)
	}
	if len(ans.Evidence) != 1 {
		t.Errorf("evidence = %d items", len(ans.Evidence))
	}
}

func TestSummarize_RetrievalErrorPropagates(t *testing.T) {
	store := &fakeStore{err: errors.New("index offline")}
	gen := &llm.MockGenerator{
		Rules: []llm.MockRule{
			{Contains: classifyInstruction, Reply: "summarize"},
			{Contains: "file selector", Reply: "ALL"},
		},
	}
	p := NewPipeline(store, gen, testCfg())
	if _, err := p.Answer(context.Background(), "summarize", []string{"a.pdf", "b.pdf"}); err == nil {
		t.Error("retrieval failure must propagate")
	}
}
