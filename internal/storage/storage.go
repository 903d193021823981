// Package storage persists the document registry and extracted chunks so a
// restarted process can rebuild its in-memory state without re-reading PDFs.
package storage

import (
	"context"

	"github.com/Soham2704/Pdf-chat/internal/models"
)

// Storage defines document registry and chunk persistence operations.
type Storage interface {
	// Document registry
	UpsertDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, name string) (*models.Document, error)
	ListDocuments(ctx context.Context) ([]*models.Document, error)
	DeleteDocument(ctx context.Context, name string) error

	// Chunk persistence. ReplaceChunks swaps the whole chunk set in one
	// transaction; LoadChunks returns them in insertion order so the
	// vector index rows line up.
	ReplaceChunks(ctx context.Context, chunks []*models.Chunk) error
	LoadChunks(ctx context.Context) ([]*models.Chunk, error)

	// Stats
	CountDocuments(ctx context.Context) (int64, error)
	CountChunks(ctx context.Context) (int64, error)

	Close() error
}
