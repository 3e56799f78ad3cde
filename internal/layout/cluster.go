package layout

import "sort"

// DefaultTolerance is the vertical band tolerance in layout units used
// when no explicit tolerance is configured. Values between 5 and 10
// work well for the report-card exports seen in practice.
const DefaultTolerance = 6.0

// Clusterer groups text fragments into ordered rows by vertical
// proximity.
type Clusterer struct {
	tolerance float64
}

// NewClusterer creates a clusterer with the given vertical tolerance.
// Non-positive values fall back to DefaultTolerance.
func NewClusterer(tolerance float64) *Clusterer {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Clusterer{tolerance: tolerance}
}

// Tolerance returns the configured vertical tolerance.
func (c *Clusterer) Tolerance() float64 {
	return c.tolerance
}

// Cluster groups fragments into rows. A new row starts whenever the
// page changes or the vertical gap from the current row's reference Y
// strictly exceeds the tolerance; a fragment exactly on the boundary
// stays in the current row. The input is not modified.
//
// The full sort key is (page, y, x, text) so that repeated runs over
// identical input always produce identical output.
func (c *Clusterer) Cluster(fragments []TextFragment) []Row {
	if len(fragments) == 0 {
		return nil
	}

	sorted := make([]TextFragment, len(fragments))
	copy(sorted, fragments)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Text < b.Text
	})

	var rows []Row
	current := Row{Page: sorted[0].Page, Y: sorted[0].Y}
	for _, f := range sorted {
		if f.Page != current.Page || f.Y-current.Y > c.tolerance {
			rows = append(rows, finishRow(current))
			current = Row{Page: f.Page, Y: f.Y}
		}
		current.Fragments = append(current.Fragments, f)
	}
	rows = append(rows, finishRow(current))
	return rows
}

// finishRow orders a completed row's fragments left to right. Ties on X
// are broken by text to keep the output deterministic.
func finishRow(r Row) Row {
	sort.SliceStable(r.Fragments, func(i, j int) bool {
		if r.Fragments[i].X != r.Fragments[j].X {
			return r.Fragments[i].X < r.Fragments[j].X
		}
		return r.Fragments[i].Text < r.Fragments[j].Text
	})
	return r
}
