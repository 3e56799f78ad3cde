// Package report holds the normalized record set produced by the
// extraction pipeline: grades, student records, subject feedback and
// aggregated class datasets.
package report

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/polmat77/classreviewmaster/internal/textnorm"
)

// Grade is an optional numeric mark. Zero is a valid failing grade, so
// "no data" is modeled explicitly instead of reusing the zero value.
type Grade struct {
	value   float64
	present bool
}

// NewGrade returns a present grade with the given value.
func NewGrade(v float64) Grade {
	return Grade{value: v, present: true}
}

// AbsentGrade returns the explicit "no data" grade.
func AbsentGrade() Grade {
	return Grade{}
}

// Present reports whether the grade carries a numeric value.
func (g Grade) Present() bool {
	return g.present
}

// Value returns the numeric value and whether it is present.
func (g Grade) Value() (float64, bool) {
	return g.value, g.present
}

func (g Grade) String() string {
	if !g.present {
		return "absent"
	}
	return strconv.FormatFloat(g.value, 'f', -1, 64)
}

// MarshalJSON encodes a present grade as a number and an absent grade
// as null.
func (g Grade) MarshalJSON() ([]byte, error) {
	if !g.present {
		return []byte("null"), nil
	}
	return json.Marshal(g.value)
}

// UnmarshalJSON decodes null as absent and a number as present.
func (g *Grade) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*g = AbsentGrade()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*g = NewGrade(v)
	return nil
}

// absenceMarkers are the folded spellings of "no grade" cells seen in
// school-management exports.
var absenceMarkers = map[string]struct{}{
	"":         {},
	"-":        {},
	"--":       {},
	"abs":      {},
	"abs.":     {},
	"absent":   {},
	"absente":  {},
	"disp":     {},
	"disp.":    {},
	"dispense": {},
	"n.not":    {},
	"n.not.":   {},
	"nn":       {},
	"n/a":      {},
	"na":       {},
	"non note": {},
}

// ParseGrade converts cell or prose text into a Grade. It accepts both
// "." and "," as the decimal separator and strips a "/20"-style
// denominator. Absence markers and unparseable text yield AbsentGrade,
// never a silent zero.
func ParseGrade(s string) Grade {
	t := strings.TrimSpace(s)
	if _, ok := absenceMarkers[textnorm.Fold(t)]; ok {
		return AbsentGrade()
	}
	if i := strings.IndexByte(t, '/'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	t = strings.ReplaceAll(t, ",", ".")
	v, err := strconv.ParseFloat(t, 64)
	if err != nil || v < 0 {
		return AbsentGrade()
	}
	return NewGrade(v)
}

// MeanGrades computes the mean of the present grades, skipping absent
// ones. The second return value is false when no grade is present.
func MeanGrades(grades []Grade) (float64, bool) {
	sum := 0.0
	n := 0
	for _, g := range grades {
		if v, ok := g.Value(); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
