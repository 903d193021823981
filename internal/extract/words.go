package extract

import (
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/Soham2704/Pdf-chat/internal/models"
)

// word is a rendered word with its page box in top-left-origin coordinates.
type word struct {
	text string // normalized: punctuation stripped, lowercased
	x    float64
	y    float64
	w    float64
	h    float64
}

// SearchPage performs exact substring search of phrase within the normalized
// rendered text of the given 1-based page and returns one rectangle per
// matched word run per row. Out-of-range pages and misses return an empty
// slice, not an error. The phrase is expected in normalized form
// (punctuation stripped, lowercase, single-spaced).
func (d *Document) SearchPage(pageNumber int, phrase string) ([]models.Rectangle, error) {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" || pageNumber < 1 || pageNumber > d.reader.NumPage() {
		return nil, nil
	}
	page := d.reader.Page(pageNumber)
	if page.V.IsNull() {
		return nil, nil
	}
	words := buildWords(page.Content().Text, pageHeight(page))
	rects := searchWords(words, phrase)
	for i := range rects {
		rects[i].Page = pageNumber
	}
	return rects, nil
}

// pageHeight resolves the page's MediaBox height, walking up the page tree
// for inherited attributes. Used to flip PDF bottom-left origin coordinates
// to the top-left origin the viewer expects.
func pageHeight(page pdf.Page) float64 {
	node := page.V
	for !node.IsNull() {
		box := node.Key("MediaBox")
		if !box.IsNull() && box.Len() == 4 {
			return box.Index(3).Float64() - box.Index(1).Float64()
		}
		node = node.Key("Parent")
	}
	// US Letter fallback
	return 792
}

// normalizeWord strips punctuation and lowercases, mirroring the snippet
// normalization on the query side.
func normalizeWord(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// buildWords groups content-stream text fragments into words. A word breaks
// on whitespace fragments, row changes, or a horizontal gap wider than a
// third of the font size. Fragment Y is the baseline in bottom-left-origin
// coordinates; boxes are flipped to top-left origin with height approximated
// by the font size.
func buildWords(fragments []pdf.Text, height float64) []word {
	var words []word
	var cur *word
	var raw strings.Builder
	var prevX, prevW, prevY float64

	flush := func() {
		if cur == nil {
			return
		}
		cur.text = normalizeWord(raw.String())
		if cur.text != "" {
			words = append(words, *cur)
		}
		cur = nil
		raw.Reset()
	}

	for _, f := range fragments {
		if strings.TrimSpace(f.S) == "" {
			flush()
			prevX, prevW, prevY = f.X, f.W, f.Y
			continue
		}
		size := f.FontSize
		if size <= 0 {
			size = 12
		}
		rowChanged := cur != nil && absDiff(f.Y, prevY) > size/2
		gapped := cur != nil && f.X-(prevX+prevW) > size/3
		if rowChanged || gapped {
			flush()
		}
		if cur == nil {
			cur = &word{
				x: f.X,
				y: height - f.Y - size,
				w: 0,
				h: size * 1.2,
			}
		}
		raw.WriteString(f.S)
		cur.w = f.X + f.W - cur.x
		prevX, prevW, prevY = f.X, f.W, f.Y
	}
	flush()
	return words
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

// searchWords finds every occurrence of phrase in the space-joined word
// text and returns the covering rectangles, merging consecutive matched
// words on the same row into one box.
func searchWords(words []word, phrase string) []models.Rectangle {
	if len(words) == 0 {
		return nil
	}
	texts := make([]string, len(words))
	starts := make([]int, len(words))
	offset := 0
	for i, w := range words {
		texts[i] = w.text
		starts[i] = offset
		offset += len(w.text) + 1 // joining space
	}
	joined := strings.Join(texts, " ")

	var rects []models.Rectangle
	from := 0
	for {
		idx := strings.Index(joined[from:], phrase)
		if idx < 0 {
			break
		}
		start := from + idx
		end := start + len(phrase)
		rects = append(rects, mergeRows(matchedWords(words, starts, start, end))...)
		from = start + 1
	}
	return rects
}

// matchedWords returns the words whose character ranges overlap [start, end).
func matchedWords(words []word, starts []int, start, end int) []word {
	var out []word
	for i, w := range words {
		wStart := starts[i]
		wEnd := wStart + len(w.text)
		if wEnd > start && wStart < end {
			out = append(out, w)
		}
	}
	return out
}

// mergeRows collapses a run of matched words into one rectangle per row.
func mergeRows(matched []word) []models.Rectangle {
	var rects []models.Rectangle
	for _, w := range matched {
		if n := len(rects); n > 0 {
			last := &rects[n-1]
			if absDiff(last.Y, w.y) < w.h/2 {
				right := w.x + w.w
				if right > last.X+last.Width {
					last.Width = right - last.X
				}
				if w.h > last.Height {
					last.Height = w.h
				}
				continue
			}
		}
		rects = append(rects, models.Rectangle{X: w.x, Y: w.y, Width: w.w, Height: w.h})
	}
	return rects
}
