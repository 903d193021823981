// Package extract provides per-page text extraction and on-page phrase
// geometry from PDF documents.
package extract

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// Page is one page of extracted text. Number is 1-based.
type Page struct {
	Number int
	Text   string
}

// Document wraps a parsed PDF for page text and geometry queries. Documents
// opened from a file hold its handle until Close is called.
type Document struct {
	reader *pdf.Reader
	closer io.Closer
}

// Open parses PDF bytes. Returns an error if the content is not a readable PDF.
func Open(content []byte) (*Document, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	return &Document{reader: r}, nil
}

// OpenFile reads and parses the PDF at path. The underlying file stays open
// until the Document is closed.
func OpenFile(path string) (*Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open PDF %s: %w", path, err)
	}
	return &Document{reader: r, closer: f}, nil
}

// Close releases the underlying file handle, if any.
func (d *Document) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return d.reader.NumPage()
}

// Pages extracts plain text page by page. Pages that fail extraction or have
// no content render as empty text rather than aborting the whole document.
func (d *Document) Pages() ([]Page, error) {
	numPages := d.reader.NumPage()
	pages := make([]Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := d.reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, Page{Number: i})
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, Page{Number: i})
			continue
		}
		pages = append(pages, Page{Number: i, Text: text})
	}
	return pages, nil
}

// ExtractPages is a convenience for one-shot extraction from raw bytes.
func ExtractPages(content []byte) ([]Page, error) {
	doc, err := Open(content)
	if err != nil {
		return nil, err
	}
	return doc.Pages()
}
