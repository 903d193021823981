package agent

import "github.com/Soham2704/Pdf-chat/internal/models"

// fingerprint returns the duplicate-detection key for a chunk's text: its
// first n bytes. Two chunks with identical leading text are treated as
// duplicates even if they diverge later; a cheap heuristic that tolerates
// the overlap-window chunking producing near-identical neighbors.
func fingerprint(text string, n int) string {
	if len(text) > n {
		return text[:n]
	}
	return text
}

// dedupe walks items in order, dropping any whose fingerprint was already
// seen, so the surviving occurrence is always the earliest (closest-distance)
// one. A positive limit caps the number of survivors.
func dedupe(items []*models.Evidence, fpLen, limit int) []*models.Evidence {
	seen := make(map[string]bool)
	var out []*models.Evidence
	for _, item := range items {
		fp := fingerprint(item.Chunk.Text, fpLen)
		if seen[fp] {
			continue
		}
		seen[fp] = true
		out = append(out, item)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// interleave merges per-file result groups round-robin: index 0 of every
// group, then index 1, and so on, skipping exhausted groups. The evidence
// list then alternates across source files instead of exhausting one file
// before the next appears.
func interleave(groups [][]*models.Evidence) []*models.Evidence {
	maxLen := 0
	for _, g := range groups {
		if len(g) > maxLen {
			maxLen = len(g)
		}
	}
	var out []*models.Evidence
	for i := 0; i < maxLen; i++ {
		for _, g := range groups {
			if i < len(g) {
				out = append(out, g[i])
			}
		}
	}
	return out
}
