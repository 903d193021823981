// Package indexer orchestrates PDF ingestion: page extraction, chunk store
// rebuild, and persistence of the document registry, chunks, and vector index.
package indexer

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Soham2704/Pdf-chat/internal/chunkstore"
	"github.com/Soham2704/Pdf-chat/internal/extract"
	"github.com/Soham2704/Pdf-chat/internal/models"
	"github.com/Soham2704/Pdf-chat/internal/storage"
)

// Indexer rebuilds the chunk store from PDF files and keeps storage in sync.
type Indexer struct {
	store     *chunkstore.Store
	db        storage.Storage
	indexPath string
	logger    *zap.Logger
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(idx *Indexer) { idx.logger = l }
}

// NewIndexer creates an indexer. indexPath is where the vector index is saved
// after a rebuild; empty disables index persistence.
func NewIndexer(store *chunkstore.Store, db storage.Storage, indexPath string, opts ...Option) *Indexer {
	idx := &Indexer{
		store:     store,
		db:        db,
		indexPath: indexPath,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Summary reports the outcome of an ingestion pass.
type Summary struct {
	Documents int `json:"documents"`
	Pages     int `json:"pages"`
	Chunks    int `json:"chunks"`
	Skipped   int `json:"skipped"`
}

// IngestFiles rebuilds the whole corpus from the given PDF paths. Unreadable
// files are logged and skipped; the rest are extracted page by page, chunked
// and embedded, then persisted so a restart can restore without re-embedding.
// Returns chunkstore.ErrNoContent if no file yields any text.
func (idx *Indexer) IngestFiles(ctx context.Context, paths []string) (*Summary, error) {
	var allPages []models.PageText
	var docs []*models.Document

	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		doc, err := extract.OpenFile(abs)
		if err != nil {
			idx.logger.Warn("skipping unreadable PDF", zap.String("path", abs), zap.Error(err))
			continue
		}
		pages, err := doc.Pages()
		doc.Close()
		if err != nil {
			idx.logger.Warn("skipping PDF with failed extraction", zap.String("path", abs), zap.Error(err))
			continue
		}
		name := filepath.Base(abs)
		for _, p := range pages {
			allPages = append(allPages, models.PageText{
				SourceDocument: name,
				PageNumber:     p.Number,
				Text:           p.Text,
			})
		}
		docs = append(docs, &models.Document{
			Name:      name,
			Path:      abs,
			PageCount: len(pages),
		})
	}
	skipped := len(paths) - len(docs)

	if err := idx.store.Ingest(ctx, allPages); err != nil {
		return nil, err
	}

	chunks := idx.store.Chunks()
	perSource := make(map[string]int)
	for _, c := range chunks {
		perSource[c.SourceDocument]++
	}

	if err := idx.db.ReplaceChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("persist chunks: %w", err)
	}
	for _, d := range docs {
		d.ChunkCount = perSource[d.Name]
		if err := idx.db.UpsertDocument(ctx, d); err != nil {
			return nil, fmt.Errorf("register document %s: %w", d.Name, err)
		}
	}
	if err := idx.pruneRegistry(ctx, docs); err != nil {
		return nil, err
	}

	if idx.indexPath != "" {
		if err := idx.store.SaveIndex(idx.indexPath); err != nil {
			return nil, fmt.Errorf("save vector index: %w", err)
		}
	}

	summary := &Summary{
		Documents: len(docs),
		Pages:     len(allPages),
		Chunks:    len(chunks),
		Skipped:   skipped,
	}
	idx.logger.Info("corpus rebuilt",
		zap.Int("documents", summary.Documents),
		zap.Int("pages", summary.Pages),
		zap.Int("chunks", summary.Chunks),
		zap.Int("skipped", summary.Skipped))
	return summary, nil
}

// pruneRegistry drops registry entries for documents absent from the rebuild.
func (idx *Indexer) pruneRegistry(ctx context.Context, kept []*models.Document) error {
	current := make(map[string]bool, len(kept))
	for _, d := range kept {
		current[d.Name] = true
	}
	registered, err := idx.db.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	for _, d := range registered {
		if current[d.Name] {
			continue
		}
		idx.logger.Debug("pruning stale document", zap.String("name", d.Name))
		if err := idx.db.DeleteDocument(ctx, d.Name); err != nil {
			return fmt.Errorf("prune document %s: %w", d.Name, err)
		}
	}
	return nil
}

// Restore reloads persisted chunks and the saved vector index into the chunk
// store. Returns the number of restored chunks; zero with a nil error means
// there was nothing persisted.
func (idx *Indexer) Restore(ctx context.Context) (int, error) {
	chunks, err := idx.db.LoadChunks(ctx)
	if err != nil {
		return 0, fmt.Errorf("load chunks: %w", err)
	}
	if len(chunks) == 0 {
		return 0, nil
	}
	if err := idx.store.Restore(chunks, idx.indexPath); err != nil {
		return 0, err
	}
	idx.logger.Info("chunk store restored", zap.Int("chunks", len(chunks)))
	return len(chunks), nil
}
