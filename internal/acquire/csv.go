package acquire

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// CSVSource reads a delimited text file into the same grid form as a
// spreadsheet. The delimiter is sniffed from the first line because
// French exports commonly use semicolons.
type CSVSource struct {
	path string
}

// NewCSVSource creates a source for the given CSV file.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Name returns the file path.
func (s *CSVSource) Name() string { return s.path }

// Extract reads all records.
func (s *CSVSource) Extract(ctx context.Context) (*Document, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", s.path, err)
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.Comma = sniffDelimiter(string(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", s.path, err)
	}

	return &Document{
		Kind:        "csv",
		Pages:       []Page{{Number: 1, Fragments: gridFragments(rows)}},
		TabularRows: rows,
	}, nil
}

func sniffDelimiter(data string) rune {
	line := data
	if i := strings.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	return ','
}
