package acquire

import (
	"context"
	"fmt"
	"strings"

	"github.com/dslipak/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/polmat77/classreviewmaster/internal/layout"
)

// letterHeight is the fallback page height in points, used to flip the
// PDF coordinate system (origin bottom-left) into reading order
// (origin top-left) for row clustering.
const letterHeight = 792.0

// PDFSource extracts positioned vector text from a PDF file.
type PDFSource struct {
	path string
}

// NewPDFSource creates a source for the given PDF file.
func NewPDFSource(path string) *PDFSource {
	return &PDFSource{path: path}
}

// Name returns the file path.
func (s *PDFSource) Name() string { return s.path }

// Validate checks the file is a readable, non-encrypted PDF before
// text extraction is attempted.
func (s *PDFSource) Validate() error {
	if _, err := api.PageCountFile(s.path); err != nil {
		if isEncryptionError(err) {
			return fmt.Errorf("pdf %q is password protected: %w", s.path, err)
		}
		return fmt.Errorf("pdf %q failed validation: %w", s.path, err)
	}
	return nil
}

func isEncryptionError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "encrypted") ||
		strings.Contains(msg, "password") ||
		strings.Contains(msg, "decrypt")
}

// Extract reads all pages into positioned fragments, flipping the Y
// axis so that smaller Y means higher on the page.
func (s *PDFSource) Extract(ctx context.Context) (*Document, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	reader, err := pdf.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %q: %w", s.path, err)
	}
	// dslipak/pdf Reader does not need explicit closing.

	doc := &Document{Kind: "pdf"}
	totalPages := reader.NumPage()
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		doc.Pages = append(doc.Pages, Page{
			Number:    pageNum,
			Fragments: extractPageFragments(page, pageNum),
		})
	}
	return doc, nil
}

func extractPageFragments(page pdf.Page, pageNum int) []layout.TextFragment {
	var fragments []layout.TextFragment

	rows, err := page.GetTextByRow()
	if err == nil && len(rows) > 0 {
		for _, row := range rows {
			for _, word := range row.Content {
				if strings.TrimSpace(word.S) == "" {
					continue
				}
				fragments = append(fragments, layout.TextFragment{
					Text: word.S,
					X:    word.X,
					Y:    letterHeight - word.Y,
					Page: pageNum,
				})
			}
		}
		return fragments
	}

	// Fallback for pages where row extraction fails: plain text split
	// into lines with synthetic geometry.
	fonts := make(map[string]*pdf.Font)
	plain, err := page.GetPlainText(fonts)
	if err != nil {
		return nil
	}
	for i, line := range strings.Split(plain, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fragments = append(fragments, layout.TextFragment{
			Text: line,
			X:    0,
			Y:    float64(i) * rowHeight,
			Page: pageNum,
		})
	}
	return fragments
}
