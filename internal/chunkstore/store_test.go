package chunkstore

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Soham2704/Pdf-chat/internal/config"
	"github.com/Soham2704/Pdf-chat/internal/embedding"
	"github.com/Soham2704/Pdf-chat/internal/models"
)

func testStore() *Store {
	cfg := &config.IngestConfig{ChunkSize: 1000, ChunkOverlap: 200}
	return NewStore(embedding.NewMockEmbedder(32), cfg)
}

func testPages() []models.PageText {
	return []models.PageText{
		{SourceDocument: "invoice.pdf", PageNumber: 1, Text: "The invoice total is 500 dollars.\nPayment is due in thirty days."},
		{SourceDocument: "report.pdf", PageNumber: 1, Text: "Quarterly revenue grew by ten percent. Expenses remained flat."},
		{SourceDocument: "report.pdf", PageNumber: 2, Text: "The outlook for next quarter is positive."},
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a\nb", "a b"},
		{"  a   b\t\nc  ", "a b c"},
		{"\n\n\t ", ""},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := Clean(tt.in); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStore_IngestAndSearch(t *testing.T) {
	s := testStore()
	if err := s.Ingest(context.Background(), testPages()); err != nil {
		t.Fatal(err)
	}
	if s.Size() == 0 {
		t.Fatal("store is empty after ingest")
	}
	results, err := s.Search(context.Background(), "invoice total", 10, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 {
		t.Fatal("expected results")
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score < results[i-1].Score {
			t.Error("results not in ascending distance order")
		}
	}
	for _, r := range results {
		if strings.Contains(r.Chunk.Text, "\n") {
			t.Error("chunk text should be newline-free")
		}
		if r.Chunk.ID == "" || len(r.Chunk.ID) != 8 {
			t.Errorf("chunk ID %q should be 8 chars", r.Chunk.ID)
		}
	}
}

func TestStore_SearchFilter(t *testing.T) {
	s := testStore()
	if err := s.Ingest(context.Background(), testPages()); err != nil {
		t.Fatal(err)
	}
	results, err := s.Search(context.Background(), "revenue", 50, "report.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 {
		t.Fatal("expected filtered results")
	}
	for _, r := range results {
		if r.Chunk.SourceDocument != "report.pdf" {
			t.Errorf("filter leaked chunk from %s", r.Chunk.SourceDocument)
		}
	}
}

func TestStore_SearchKLargerThanCorpus(t *testing.T) {
	s := testStore()
	if err := s.Ingest(context.Background(), testPages()); err != nil {
		t.Fatal(err)
	}
	results, err := s.Search(context.Background(), "anything", 1000, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != s.Size() {
		t.Errorf("expected %d results, got %d", s.Size(), len(results))
	}
}

func TestStore_IngestEmptyFails(t *testing.T) {
	s := testStore()
	err := s.Ingest(context.Background(), []models.PageText{
		{SourceDocument: "scan.pdf", PageNumber: 1, Text: "   \n\t  "},
	})
	if !errors.Is(err, ErrNoContent) {
		t.Errorf("expected ErrNoContent, got %v", err)
	}
}

func TestStore_IngestReplacesPriorContent(t *testing.T) {
	s := testStore()
	if err := s.Ingest(context.Background(), testPages()); err != nil {
		t.Fatal(err)
	}
	replacement := []models.PageText{
		{SourceDocument: "new.pdf", PageNumber: 1, Text: "Entirely new content."},
	}
	if err := s.Ingest(context.Background(), replacement); err != nil {
		t.Fatal(err)
	}
	sources := s.Sources()
	if len(sources) != 1 || sources[0] != "new.pdf" {
		t.Errorf("prior content survived rebuild: %v", sources)
	}
}

func TestStore_ChunkIDsStableAcrossSearches(t *testing.T) {
	s := testStore()
	if err := s.Ingest(context.Background(), testPages()); err != nil {
		t.Fatal(err)
	}
	first, _ := s.Search(context.Background(), "total", 3, "")
	second, _ := s.Search(context.Background(), "total", 3, "")
	if len(first) == 0 || len(first) != len(second) {
		t.Fatal("expected identical result counts")
	}
	for i := range first {
		if first[i].Chunk.ID != second[i].Chunk.ID {
			t.Error("chunk identity must be stable across queries")
		}
	}
}

func TestStore_SplitterOverlap(t *testing.T) {
	cfg := &config.IngestConfig{ChunkSize: 60, ChunkOverlap: 20}
	s := NewStore(embedding.NewMockEmbedder(16), cfg)
	long := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 10)
	err := s.Ingest(context.Background(), []models.PageText{
		{SourceDocument: "long.pdf", PageNumber: 1, Text: long},
	})
	if err != nil {
		t.Fatal(err)
	}
	chunks := s.Chunks()
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for _, ch := range chunks {
		if len(ch.Text) > 60+10 {
			t.Errorf("chunk exceeds target size: %d chars", len(ch.Text))
		}
		if ch.PageNumber != 1 || ch.SourceDocument != "long.pdf" {
			t.Error("chunk lost its page tag")
		}
	}
}

func TestStore_SaveRestore(t *testing.T) {
	s := testStore()
	if err := s.Ingest(context.Background(), testPages()); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "vectors")
	if err := s.SaveIndex(path); err != nil {
		t.Fatal(err)
	}
	chunks := s.Chunks()

	restored := testStore()
	if err := restored.Restore(chunks, path); err != nil {
		t.Fatal(err)
	}
	if restored.Size() != s.Size() {
		t.Errorf("restored size %d != %d", restored.Size(), s.Size())
	}
	results, err := restored.Search(context.Background(), "invoice total", 3, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) == 0 {
		t.Error("restored store returned no results")
	}
}
