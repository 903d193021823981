// Package models defines core data structures for chunks, queries, and evidence.
package models

// Chunk is the immutable unit of indexed text. Each chunk belongs to exactly
// one source document and one page, and its ID is stable across queries.
type Chunk struct {
	ID             string `json:"id"`
	Text           string `json:"text"`
	SourceDocument string `json:"source_document"`
	PageNumber     int    `json:"page_number"`
}

// Evidence is a retrieval result: a chunk plus the relevance score attached at
// query time. Score is distance-based (lower = closer), so the same chunk can
// carry different scores for different queries.
type Evidence struct {
	Chunk *Chunk  `json:"chunk"`
	Score float64 `json:"score"`
}

// Relevance converts the distance score into a 0-1 display value
// (1 = most relevant). Used by API consumers for progress-style bars.
func (e *Evidence) Relevance() float64 {
	r := 1.0 - e.Score
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

// PageText is one page of raw extracted text handed to ingestion.
type PageText struct {
	SourceDocument string
	PageNumber     int
	Text           string
}
