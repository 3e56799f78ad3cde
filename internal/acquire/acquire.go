// Package acquire wraps the external text-extraction primitives and
// normalizes their output into a uniform stream of positioned text
// fragments, regardless of whether the document is a positioned-text
// PDF, a spreadsheet, or plain text.
package acquire

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/polmat77/classreviewmaster/internal/layout"
)

// Page is one document page worth of positioned fragments.
type Page struct {
	Number    int                   `json:"page_number"`
	Fragments []layout.TextFragment `json:"fragments"`
}

// Document is the normalized acquisition output. Tabular-origin
// sources additionally expose their raw rows so that explicit
// column-index templates can bypass layout reconstruction.
type Document struct {
	Kind  string `json:"kind"` // "pdf", "xlsx", "csv" or "text"
	Pages []Page `json:"pages"`

	// Text is the full document text for prose processing. Empty for
	// sources that only produce fragments; see FullText.
	Text string `json:"text,omitempty"`

	// TabularRows holds the raw cell grid for spreadsheet-origin
	// documents, first row included.
	TabularRows [][]string `json:"tabular_rows,omitempty"`
}

// Fragments flattens all pages into one fragment slice.
func (d *Document) Fragments() []layout.TextFragment {
	var out []layout.TextFragment
	for _, p := range d.Pages {
		out = append(out, p.Fragments...)
	}
	return out
}

// FullText returns the document text, reconstructing it from clustered
// fragments when the source did not provide a text form.
func (d *Document) FullText() string {
	if d.Text != "" {
		return d.Text
	}
	rows := layout.NewClusterer(0).Cluster(d.Fragments())
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, r.Text())
	}
	return strings.Join(lines, "\n")
}

// RowMaps converts the raw tabular rows into the column-keyed row form
// of the spreadsheet entry point, using the first row as the header.
func (d *Document) RowMaps() []map[string]string {
	if len(d.TabularRows) < 2 {
		return nil
	}
	header := d.TabularRows[0]
	out := make([]map[string]string, 0, len(d.TabularRows)-1)
	for _, row := range d.TabularRows[1:] {
		m := make(map[string]string, len(header))
		for i, key := range header {
			if i < len(row) {
				m[key] = row[i]
			}
		}
		out = append(out, m)
	}
	return out
}

// Source is a single document ready for extraction.
type Source interface {
	// Name identifies the source, typically the file path.
	Name() string
	// Extract reads the document into its normalized form. It honors
	// context cancellation between pages.
	Extract(ctx context.Context) (*Document, error)
}

// ForFile picks a source implementation by file extension.
func ForFile(path string) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return NewPDFSource(path), nil
	case ".xlsx", ".xlsm", ".xls":
		return NewXLSXSource(path), nil
	case ".csv":
		return NewCSVSource(path), nil
	case ".txt", ".text", "":
		return NewTextSource(path), nil
	default:
		return nil, fmt.Errorf("unsupported document format %q", filepath.Ext(path))
	}
}

// SupportedExtensions lists the file extensions ForFile accepts.
func SupportedExtensions() []string {
	return []string{".pdf", ".xlsx", ".xlsm", ".xls", ".csv", ".txt"}
}

// Synthetic fragment geometry for cell-grid sources: column index maps
// to X, row index to Y, so both entry shapes converge on the same
// clustering pipeline.
const (
	cellWidth = 100.0
	rowHeight = 20.0
)

func gridFragments(rows [][]string) []layout.TextFragment {
	var fragments []layout.TextFragment
	for r, row := range rows {
		for c, cell := range row {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			fragments = append(fragments, layout.TextFragment{
				Text: cell,
				X:    float64(c) * cellWidth,
				Y:    float64(r) * rowHeight,
				Page: 1,
			})
		}
	}
	return fragments
}
