package acquire

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/polmat77/classreviewmaster/internal/layout"
)

// TextSource reads a plain-text document. Lines become fragments with
// synthetic geometry so that tabular detection can still be attempted
// on column-aligned text dumps.
type TextSource struct {
	path string
}

// NewTextSource creates a source for the given text file.
func NewTextSource(path string) *TextSource {
	return &TextSource{path: path}
}

// Name returns the file path.
func (s *TextSource) Name() string { return s.path }

// Extract reads the file.
func (s *TextSource) Extract(ctx context.Context) (*Document, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", s.path, err)
	}
	return FromText(string(data)), nil
}

// FromText wraps an in-memory document, for callers that already hold
// the text (tests, HTTP uploads).
func FromText(text string) *Document {
	var fragments []layout.TextFragment
	for i, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fragments = append(fragments, layout.TextFragment{
			Text: line,
			X:    0,
			Y:    float64(i) * rowHeight,
			Page: 1,
		})
	}
	return &Document{
		Kind:  "text",
		Pages: []Page{{Number: 1, Fragments: fragments}},
		Text:  text,
	}
}

// TextReader adapts an in-memory string to the Source interface.
type TextReader struct {
	name string
	text string
}

// NewTextReader creates a source over an in-memory document.
func NewTextReader(name, text string) *TextReader {
	return &TextReader{name: name, text: text}
}

// Name returns the source name.
func (r *TextReader) Name() string { return r.name }

// Extract wraps the text.
func (r *TextReader) Extract(ctx context.Context) (*Document, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return FromText(r.text), nil
}
