package chunkstore

import (
	"strings"
	"unicode"
)

// Clean normalizes raw page text for indexing: every whitespace run,
// newlines included, collapses to a single space, and the result is trimmed.
// Keeping chunk text newline-free is what lets the highlighter later match it
// against rendered page words.
func Clean(text string) string {
	text = strings.TrimSpace(text)
	var b strings.Builder
	wasSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !wasSpace {
				b.WriteRune(' ')
				wasSpace = true
			}
		} else {
			b.WriteRune(r)
			wasSpace = false
		}
	}
	return strings.TrimSpace(b.String())
}
