// Package cli provides output formatting for the command line interface.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Soham2704/Pdf-chat/internal/models"
)

// OutputFormat selects how responses are rendered.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat maps a flag value to an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch s {
	case "", "text":
		return OutputText, nil
	case "json":
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// WriteAnswer writes an answer with its evidence to w in the given format.
func WriteAnswer(w io.Writer, answer *models.Answer, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(answer)
	}
	writeAnswerText(w, answer)
	return nil
}

func writeAnswerText(w io.Writer, answer *models.Answer) {
	fmt.Fprintf(w, "[%s]", answer.Intent)
	if answer.Chained {
		fmt.Fprint(w, " (reasoned over retrieved evidence)")
	}
	fmt.Fprintf(w, "\n\n%s\n", answer.Text)
	if len(answer.Evidence) == 0 {
		return
	}
	fmt.Fprintf(w, "\nEvidence (%d):\n", len(answer.Evidence))
	for i, ev := range answer.Evidence {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "%d. %s p.%d | ID: %s | Relevance: %.2f\n",
			i+1, ev.Chunk.SourceDocument, ev.Chunk.PageNumber, ev.Chunk.ID, ev.Relevance())
		fmt.Fprintf(w, "   %s\n", TruncateWords(ev.Chunk.Text, 40))
	}
}

// WriteHighlights writes highlight rectangles to w in the given format.
func WriteHighlights(w io.Writer, rects []models.Rectangle, format OutputFormat) error {
	if format == OutputJSON {
		if rects == nil {
			rects = []models.Rectangle{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rects)
	}
	if len(rects) == 0 {
		fmt.Fprintln(w, "No highlights found.")
		return nil
	}
	for _, r := range rects {
		fmt.Fprintf(w, "page %d: x=%.1f y=%.1f w=%.1f h=%.1f\n", r.Page, r.X, r.Y, r.Width, r.Height)
	}
	return nil
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
