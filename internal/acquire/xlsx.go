package acquire

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXSource reads the first sheet of a spreadsheet into a raw cell
// grid plus synthetic positioned fragments, so both the explicit
// column-mapping path and the layout-reconstruction path can run on
// the same document.
type XLSXSource struct {
	path  string
	sheet string
}

// NewXLSXSource creates a source for the given workbook. The first
// sheet is used unless WithSheet overrides it.
func NewXLSXSource(path string) *XLSXSource {
	return &XLSXSource{path: path}
}

// WithSheet selects a specific sheet by name.
func (s *XLSXSource) WithSheet(name string) *XLSXSource {
	s.sheet = name
	return s
}

// Name returns the file path.
func (s *XLSXSource) Name() string { return s.path }

// Extract reads the sheet rows.
func (s *XLSXSource) Extract(ctx context.Context) (*Document, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %q: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	sheet := s.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %q has no sheets", s.path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	return &Document{
		Kind:        "xlsx",
		Pages:       []Page{{Number: 1, Fragments: gridFragments(rows)}},
		TabularRows: rows,
	}, nil
}
