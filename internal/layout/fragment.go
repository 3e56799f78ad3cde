// Package layout reconstructs the line structure of a document from the
// positioned text fragments produced by an acquisition adapter.
package layout

import "strings"

// TextFragment is a single positioned piece of text extracted from a
// document page. Ordering within a page is not guaranteed by the
// extraction primitive; the clusterer establishes it.
type TextFragment struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Page int     `json:"page"`
}

// Row is an ordered sequence of fragments sharing an inferred vertical
// band on one page. Fragments are sorted ascending by X.
type Row struct {
	Page      int            `json:"page"`
	Y         float64        `json:"y"`
	Fragments []TextFragment `json:"fragments"`
}

// Text returns the row's fragments joined by single spaces, in
// left-to-right order.
func (r Row) Text() string {
	parts := make([]string, 0, len(r.Fragments))
	for _, f := range r.Fragments {
		parts = append(parts, f.Text)
	}
	return strings.Join(parts, " ")
}
