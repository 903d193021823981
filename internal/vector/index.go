// Package vector provides vector indexing and similarity search for chunks.
package vector

import "context"

// Result is a single vector search hit. ID is the chunk ID. Distance is
// cosine distance (lower = closer); results are returned ascending.
type Result struct {
	ID       string
	Distance float64
}

// Filter restricts a search to IDs it accepts. A nil Filter accepts all.
type Filter func(id string) bool

// Index defines vector storage and nearest-neighbor search.
type Index interface {
	Add(ctx context.Context, ids []string, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int, filter Filter) ([]*Result, error)
	Save(path string) error
	Load(path string) error
	Size() int
}
