// Package template implements the mapping-template mechanism: named,
// serializable extraction rule sets that are either auto-inferred from
// a document sample or hand-authored, and applied instead of (or in
// addition to) the built-in heuristics.
//
// Applying a template is a pure function of (document, template): the
// engine never mutates a template, so one instance may serve many
// documents concurrently.
package template

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// UnusedColumn is the sentinel for a tabular field with no column.
const UnusedColumn = -1

// ErrMissingColumnMapping reports a tabular template that lacks one of
// the required column indices (name, subject, grade).
var ErrMissingColumnMapping = errors.New("missing required column mapping")

// ProseRules holds the regex patterns used on narrative bulletins.
// Every pattern is optional; an empty pattern simply never matches.
type ProseRules struct {
	BlockDelimiter string `yaml:"block_delimiter,omitempty" json:"block_delimiter,omitempty"`
	StudentName    string `yaml:"student_name,omitempty" json:"student_name,omitempty"`
	Subject        string `yaml:"subject,omitempty" json:"subject,omitempty"`
	Grade          string `yaml:"grade,omitempty" json:"grade,omitempty"`
	ClassAverage   string `yaml:"class_average,omitempty" json:"class_average,omitempty"`
	TeacherComment string `yaml:"teacher_comment,omitempty" json:"teacher_comment,omitempty"`
	Term           string `yaml:"term,omitempty" json:"term,omitempty"`
	ClassName      string `yaml:"class_name,omitempty" json:"class_name,omitempty"`
	SchoolName     string `yaml:"school_name,omitempty" json:"school_name,omitempty"`

	// Custom holds user-defined named patterns that are matched and
	// reported but not interpreted by the engine.
	Custom map[string]string `yaml:"custom,omitempty" json:"custom,omitempty"`
}

// TabularRules holds explicit zero-based column indices for tabular
// documents in long format (one row per student-subject pair).
type TabularRules struct {
	NameColumn         int `yaml:"name_column" json:"name_column"`
	SubjectColumn      int `yaml:"subject_column" json:"subject_column"`
	GradeColumn        int `yaml:"grade_column" json:"grade_column"`
	ClassAverageColumn int `yaml:"class_average_column" json:"class_average_column"`
	CommentColumn      int `yaml:"comment_column" json:"comment_column"`
	TeacherColumn      int `yaml:"teacher_column" json:"teacher_column"`
}

// NewTabularRules returns tabular rules with every column unused.
func NewTabularRules() TabularRules {
	return TabularRules{
		NameColumn:         UnusedColumn,
		SubjectColumn:      UnusedColumn,
		GradeColumn:        UnusedColumn,
		ClassAverageColumn: UnusedColumn,
		CommentColumn:      UnusedColumn,
		TeacherColumn:      UnusedColumn,
	}
}

// Template is a named bundle of extraction rules. Templates are user
// data: the engine consumes and produces template values but never
// assigns identifiers or persists them.
type Template struct {
	Name    string       `yaml:"name" json:"name"`
	Prose   ProseRules   `yaml:"prose,omitempty" json:"prose,omitempty"`
	Tabular TabularRules `yaml:"tabular,omitempty" json:"tabular,omitempty"`
}

// New returns an empty template with all tabular columns unused.
func New(name string) *Template {
	return &Template{Name: name, Tabular: NewTabularRules()}
}

// ValidateTabular checks that the minimum viable tabular mapping is
// present: name, subject and grade columns. Anything less and the
// engine would be guessing, which is exactly what templates exist to
// avoid.
func (t *Template) ValidateTabular() error {
	missing := ""
	switch {
	case t.Tabular.NameColumn == UnusedColumn:
		missing = "name"
	case t.Tabular.SubjectColumn == UnusedColumn:
		missing = "subject"
	case t.Tabular.GradeColumn == UnusedColumn:
		missing = "grade"
	default:
		return nil
	}
	return fmt.Errorf("%w: %s column is unset", ErrMissingColumnMapping, missing)
}

// HasProseRules reports whether any prose pattern is configured.
func (t *Template) HasProseRules() bool {
	p := t.Prose
	return p.BlockDelimiter != "" || p.StudentName != "" || p.Subject != "" ||
		p.Grade != "" || p.ClassAverage != "" || p.TeacherComment != "" ||
		p.Term != "" || p.ClassName != "" || p.SchoolName != "" || len(p.Custom) > 0
}

// HasTabularRules reports whether any tabular column is mapped.
func (t *Template) HasTabularRules() bool {
	return t.ValidateTabular() == nil
}

// Marshal encodes the template as YAML.
func (t *Template) Marshal() ([]byte, error) {
	return yaml.Marshal(t)
}

// Unmarshal decodes a YAML template. Tabular columns absent from the
// document stay UnusedColumn rather than decoding to zero, since zero
// is a valid column index.
func Unmarshal(data []byte) (*Template, error) {
	t := New("")
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("decoding template: %w", err)
	}
	return t, nil
}

// LoadFile reads a YAML template from disk.
func LoadFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template %q: %w", path, err)
	}
	t, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", path, err)
	}
	return t, nil
}

// SaveFile writes the template to disk as YAML.
func (t *Template) SaveFile(path string) error {
	data, err := t.Marshal()
	if err != nil {
		return fmt.Errorf("encoding template %q: %w", t.Name, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing template %q: %w", path, err)
	}
	return nil
}

// compilePattern compiles an optional pattern. Empty patterns and
// compile failures both yield nil, meaning "field absent": a broken
// user pattern degrades that one field, never the whole run.
func compilePattern(pattern string) *regexp.Regexp {
	if pattern == "" {
		return nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil
	}
	return re
}
