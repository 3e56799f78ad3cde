package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/polmat77/classreviewmaster/internal/report"
)

// DocumentShape selects which structural interpretation of a document
// the pipeline attempts.
type DocumentShape int

const (
	// ShapeAuto tries the tabular interpretation first and falls back
	// to bulletin prose when no table header is found.
	ShapeAuto DocumentShape = iota
	ShapeTabular
	ShapeProse
)

// String returns the shape label used in flags and logs.
func (s DocumentShape) String() string {
	switch s {
	case ShapeTabular:
		return "tabular"
	case ShapeProse:
		return "prose"
	default:
		return "auto"
	}
}

// MarshalText serializes the shape as its label.
func (s DocumentShape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a shape label.
func (s *DocumentShape) UnmarshalText(text []byte) error {
	shape, err := ParseShape(string(text))
	if err != nil {
		return err
	}
	*s = shape
	return nil
}

// ParseShape parses a shape label, case-insensitively.
func ParseShape(s string) (DocumentShape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ShapeAuto, nil
	case "tabular", "table":
		return ShapeTabular, nil
	case "prose", "bulletin":
		return ShapeProse, nil
	default:
		return ShapeAuto, fmt.Errorf("unknown document shape %q", s)
	}
}

// Result is the outcome of analyzing one document. A failed document
// still yields a Result: Degraded is set, Failure explains why, and
// the dataset may be a placeholder when sample fallback is enabled.
type Result struct {
	Source   string                 `json:"source"`
	Shape    DocumentShape          `json:"shape"`
	Students []report.StudentRecord `json:"students,omitempty"`
	Dataset  *report.ClassDataset   `json:"dataset,omitempty"`

	Degraded       bool          `json:"degraded"`
	SampleFallback bool          `json:"sample_fallback,omitempty"`
	Warnings       []string      `json:"warnings,omitempty"`
	Failure        *ExtractError `json:"failure,omitempty"`
	Duration       time.Duration `json:"duration"`

	// meta captured during template extraction, merged into the
	// dataset during aggregation.
	meta report.Meta
}
