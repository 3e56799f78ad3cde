// Package table turns clustered rows into a column model and typed
// student records for tabular grade sheets.
package table

import "math"

// ColumnRole classifies what a detected column holds.
type ColumnRole int

const (
	// RoleOther marks columns excluded from extraction (rank, totals,
	// absence counts and similar).
	RoleOther ColumnRole = iota
	// RoleName marks the student name column.
	RoleName
	// RoleSubject marks a per-subject grade column.
	RoleSubject
	// RoleAverage marks the overall average column.
	RoleAverage
)

func (r ColumnRole) String() string {
	switch r {
	case RoleName:
		return "name"
	case RoleSubject:
		return "subject"
	case RoleAverage:
		return "average"
	default:
		return "other"
	}
}

// lastColumnWidth is the sentinel width of the rightmost anchor.
const lastColumnWidth = 1e6

// ColumnAnchor is one classified column position derived from the
// header row. Anchors are sorted ascending by X and non-overlapping:
// each anchor's width extends to the next anchor's X.
type ColumnAnchor struct {
	Role  ColumnRole `json:"role"`
	Label string     `json:"label"`
	X     float64    `json:"x"`
	Width float64    `json:"width"`
}

// ColumnModel is the per-document column layout derived once from the
// detected header row.
type ColumnModel struct {
	Anchors     []ColumnAnchor `json:"anchors"`
	HeaderPage  int            `json:"header_page"`
	HeaderIndex int            `json:"header_index"`
}

// NameColumn returns the index of the name anchor, if any.
func (m *ColumnModel) NameColumn() (int, bool) {
	return m.firstWithRole(RoleName)
}

// AverageColumn returns the index of the overall average anchor, if any.
func (m *ColumnModel) AverageColumn() (int, bool) {
	return m.firstWithRole(RoleAverage)
}

// SubjectColumns returns the indices of all subject anchors in order.
func (m *ColumnModel) SubjectColumns() []int {
	var indices []int
	for i, a := range m.Anchors {
		if a.Role == RoleSubject {
			indices = append(indices, i)
		}
	}
	return indices
}

func (m *ColumnModel) firstWithRole(role ColumnRole) (int, bool) {
	for i, a := range m.Anchors {
		if a.Role == role {
			return i, true
		}
	}
	return 0, false
}

// NearestAnchor returns the index of the anchor minimizing |x - anchor.X|.
func (m *ColumnModel) NearestAnchor(x float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, a := range m.Anchors {
		if d := math.Abs(x - a.X); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}
