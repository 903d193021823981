// Package locator resolves evidence snippets to highlight rectangles on
// the source PDF pages they were extracted from.
package locator

import (
	"context"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/Soham2704/Pdf-chat/internal/models"
)

// candidateLengths are the word-prefix sizes tried longest-first when
// matching a snippet against rendered page text.
var candidateLengths = []int{15, 10, 5, 3}

// PageSearcher searches rendered page text for an exact normalized phrase.
// Close releases the document once the search is done.
type PageSearcher interface {
	PageCount() int
	SearchPage(pageNumber int, phrase string) ([]models.Rectangle, error)
	Close() error
}

// OpenFunc resolves a source document name to its searchable PDF.
type OpenFunc func(sourceDocument string) (PageSearcher, error)

// Option configures a Locator.
type Option func(*Locator)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Locator) {
		l.logger = logger
	}
}

// Locator finds on-page coordinates for evidence snippets.
type Locator struct {
	open   OpenFunc
	logger *zap.Logger
}

// NewLocator creates a Locator that resolves documents through open.
func NewLocator(open OpenFunc, opts ...Option) *Locator {
	l := &Locator{
		open:   open,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Locate returns highlight rectangles for snippet on the given 1-based page
// of sourceDocument. Word-layout differences between extraction and rendering
// make full-snippet matches unreliable, so progressively shorter word
// prefixes of the snippet are tried and the first one that appears on the
// page wins. A snippet that cannot be found, an empty snippet, or a page
// outside the document all yield an empty result, not an error.
func (l *Locator) Locate(ctx context.Context, sourceDocument string, pageNumber int, snippet string) ([]models.Rectangle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	candidates := candidatePhrases(snippet)
	if len(candidates) == 0 {
		return nil, nil
	}
	doc, err := l.open(sourceDocument)
	if err != nil {
		return nil, err
	}
	defer doc.Close()
	if pageNumber < 1 || pageNumber > doc.PageCount() {
		l.logger.Debug("highlight page out of range",
			zap.String("source", sourceDocument),
			zap.Int("page", pageNumber),
			zap.Int("pages", doc.PageCount()))
		return nil, nil
	}
	for _, phrase := range candidates {
		rects, err := doc.SearchPage(pageNumber, phrase)
		if err != nil {
			return nil, err
		}
		if len(rects) > 0 {
			l.logger.Debug("snippet located",
				zap.String("source", sourceDocument),
				zap.Int("page", pageNumber),
				zap.Int("phraseWords", len(strings.Fields(phrase))),
				zap.Int("rects", len(rects)))
			return rects, nil
		}
	}
	return nil, nil
}

// candidatePhrases normalizes snippet and builds the longest-first list of
// word-prefix phrases to try. Snippets shorter than the smallest prefix are
// used whole.
func candidatePhrases(snippet string) []string {
	words := normalizeSnippet(snippet)
	if len(words) == 0 {
		return nil
	}
	if len(words) < candidateLengths[len(candidateLengths)-1] {
		return []string{strings.Join(words, " ")}
	}
	var candidates []string
	for _, n := range candidateLengths {
		if n > len(words) {
			continue
		}
		candidates = append(candidates, strings.Join(words[:n], " "))
	}
	return candidates
}

// normalizeSnippet lowercases, strips punctuation, and splits into words,
// matching the normalization applied to rendered page text.
func normalizeSnippet(s string) []string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Fields(b.String())
}
