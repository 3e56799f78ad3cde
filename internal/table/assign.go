package table

import (
	"strings"

	"github.com/polmat77/classreviewmaster/internal/layout"
)

// RecordRow maps anchor indices to the concatenated text assigned to
// that column for one data row.
type RecordRow struct {
	Cells map[int]string `json:"cells"`
	Text  string         `json:"text"`
}

// Cell returns the text assigned to the anchor index, if any.
func (r RecordRow) Cell(anchor int) (string, bool) {
	s, ok := r.Cells[anchor]
	return s, ok
}

// Assignment is the result of distributing data rows over the column
// model: student data rows and class-level aggregate rows, separated.
type Assignment struct {
	Records    []RecordRow
	Aggregates []RecordRow
}

// AssignRows assigns every fragment of the data rows (rows after the
// header) to its nearest column anchor. Same-column fragments within a
// row are concatenated with a single space in left-to-right order.
// Rows matching an aggregate-row pattern are split out so they can feed
// class-average statistics without producing student records.
func AssignRows(rows []layout.Row, model *ColumnModel) Assignment {
	var out Assignment
	for i, row := range rows {
		if i <= model.HeaderIndex {
			continue
		}
		rec := assignRow(row, model)
		if len(rec.Cells) == 0 {
			continue
		}
		if isAggregateRow(rec.Text) {
			out.Aggregates = append(out.Aggregates, rec)
		} else {
			out.Records = append(out.Records, rec)
		}
	}
	return out
}

func assignRow(row layout.Row, model *ColumnModel) RecordRow {
	cells := make(map[int]string, len(model.Anchors))
	for _, f := range row.Fragments {
		if strings.TrimSpace(f.Text) == "" {
			continue
		}
		idx := model.NearestAnchor(f.X)
		if cells[idx] == "" {
			cells[idx] = f.Text
		} else {
			cells[idx] += " " + f.Text
		}
	}
	return RecordRow{Cells: cells, Text: row.Text()}
}
