// Package chunkstore ingests page text into overlapping chunks and serves
// nearest-neighbor search over their embeddings.
package chunkstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/textsplitter"
	"go.uber.org/zap"

	"github.com/Soham2704/Pdf-chat/internal/config"
	"github.com/Soham2704/Pdf-chat/internal/embedding"
	"github.com/Soham2704/Pdf-chat/internal/models"
	"github.com/Soham2704/Pdf-chat/internal/vector"
)

// ErrNoContent indicates ingestion produced zero chunks (e.g. scanned PDFs
// with no extractable text). Callers must surface this as "no content
// indexed" rather than proceeding with an empty corpus.
var ErrNoContent = errors.New("no content indexed")

// snapshot is one immutable generation of the store. Ingest builds a fresh
// snapshot and swaps it in, so in-flight searches never observe a
// half-rebuilt corpus.
type snapshot struct {
	index   *vector.MemoryIndex
	chunks  map[string]*models.Chunk
	ordered []*models.Chunk
}

// Store is the shared, read-mostly chunk store. Concurrent searches read the
// current snapshot; re-ingestion replaces it wholesale.
type Store struct {
	embedder embedding.Embedder
	splitter textsplitter.RecursiveCharacter
	logger   *zap.Logger

	mu   sync.RWMutex
	snap *snapshot
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets a logger for debug output (chunk counts, rebuild events).
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// NewStore creates a chunk store. The splitter follows the recursive
// separator-priority order: sentence-ending punctuation first, then newline,
// then space, then a hard character cut.
func NewStore(embedder embedding.Embedder, cfg *config.IngestConfig, opts ...StoreOption) *Store {
	s := &Store{
		embedder: embedder,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(cfg.ChunkSize),
			textsplitter.WithChunkOverlap(cfg.ChunkOverlap),
			textsplitter.WithSeparators([]string{".", "!", "?", "\n", " ", ""}),
		),
		snap: &snapshot{chunks: make(map[string]*models.Chunk)},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest cleans, splits, embeds, and indexes the given pages. It is a full
// rebuild: prior store content is replaced atomically once the new
// generation is complete. Returns ErrNoContent if no page yields chunks.
func (s *Store) Ingest(ctx context.Context, pages []models.PageText) error {
	var chunks []*models.Chunk
	for _, page := range pages {
		cleaned := Clean(page.Text)
		if cleaned == "" {
			continue
		}
		pieces, err := s.splitter.SplitText(cleaned)
		if err != nil {
			return fmt.Errorf("split page %d of %s: %w", page.PageNumber, page.SourceDocument, err)
		}
		for _, piece := range pieces {
			chunks = append(chunks, &models.Chunk{
				ID:             uuid.New().String()[:8],
				Text:           piece,
				SourceDocument: page.SourceDocument,
				PageNumber:     page.PageNumber,
			})
		}
	}
	if len(chunks) == 0 {
		return ErrNoContent
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	index, err := vector.NewMemoryIndex(s.embedder.Dimensions())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	ids := make([]string, len(chunks))
	byID := make(map[string]*models.Chunk, len(chunks))
	for i, ch := range chunks {
		ids[i] = ch.ID
		byID[ch.ID] = ch
	}
	if err := index.Add(ctx, ids, embeddings); err != nil {
		return fmt.Errorf("index chunks: %w", err)
	}

	s.mu.Lock()
	s.snap = &snapshot{index: index, chunks: byID, ordered: chunks}
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Debug("chunk store rebuilt",
			zap.Int("pages", len(pages)),
			zap.Int("chunks", len(chunks)),
		)
	}
	return nil
}

// Search returns up to k chunks ranked by ascending distance, restricted to
// sourceFilter when non-empty. Tolerates k larger than the corpus. It is
// side-effect-free and safe for concurrent use.
func (s *Store) Search(ctx context.Context, query string, k int, sourceFilter string) ([]*models.Evidence, error) {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()
	if snap.index == nil || len(snap.chunks) == 0 {
		return nil, nil
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	var filter vector.Filter
	if sourceFilter != "" {
		filter = func(id string) bool {
			ch, ok := snap.chunks[id]
			return ok && ch.SourceDocument == sourceFilter
		}
	}
	results, err := snap.index.Search(ctx, queryVec, k, filter)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	evidence := make([]*models.Evidence, 0, len(results))
	for _, r := range results {
		ch, ok := snap.chunks[r.ID]
		if !ok {
			continue
		}
		evidence = append(evidence, &models.Evidence{Chunk: ch, Score: r.Distance})
	}
	return evidence, nil
}

// Chunks returns the current generation's chunks in ingestion order.
// Used for persistence.
func (s *Store) Chunks() []*models.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Chunk, len(s.snap.ordered))
	copy(out, s.snap.ordered)
	return out
}

// Sources returns the distinct source-document names in the store, in first-seen order.
func (s *Store) Sources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	var sources []string
	for _, ch := range s.snap.ordered {
		if !seen[ch.SourceDocument] {
			seen[ch.SourceDocument] = true
			sources = append(sources, ch.SourceDocument)
		}
	}
	return sources
}

// Size returns the number of indexed chunks.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snap.chunks)
}

// SaveIndex persists the current vector index to path.
func (s *Store) SaveIndex(path string) error {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()
	if snap.index == nil {
		return nil
	}
	return snap.index.Save(path)
}

// Restore rebuilds the store from persisted chunks and a saved vector index,
// skipping re-extraction and re-embedding. Chunk order must match the order
// the index was built with (ingestion order).
func (s *Store) Restore(chunks []*models.Chunk, indexPath string) error {
	if len(chunks) == 0 {
		return nil
	}
	index, err := vector.NewMemoryIndex(s.embedder.Dimensions())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	if err := index.Load(indexPath); err != nil {
		return fmt.Errorf("load index: %w", err)
	}
	if index.Size() != len(chunks) {
		return fmt.Errorf("index/chunk count mismatch: %d vectors, %d chunks", index.Size(), len(chunks))
	}
	byID := make(map[string]*models.Chunk, len(chunks))
	for _, ch := range chunks {
		byID[ch.ID] = ch
	}
	s.mu.Lock()
	s.snap = &snapshot{index: index, chunks: byID, ordered: chunks}
	s.mu.Unlock()
	if s.logger != nil {
		s.logger.Debug("chunk store restored", zap.Int("chunks", len(chunks)))
	}
	return nil
}
