package table

import (
	"errors"
	"strconv"

	"github.com/polmat77/classreviewmaster/internal/layout"
	"github.com/polmat77/classreviewmaster/internal/textnorm"
)

// ErrNoHeaderDetected is returned when no row in the document looks
// like a grade-table header. Callers fall back to a mapping template or
// a degraded result instead of aborting the run.
var ErrNoHeaderDetected = errors.New("no header row detected")

// minHeaderFragments is the minimum number of fragments a header row
// must carry: at least a name column and two grade columns.
const minHeaderFragments = 3

// minAverageMarkers is the number of "Moy."-style sub-header tokens
// required for the keywordless fallback detection.
const minAverageMarkers = 3

// DetectHeader scans rows from the top for the first header row and
// derives the document's column model from it.
//
// A row qualifies when its concatenated text contains a header keyword
// and it has at least minHeaderFragments fragments. When no keyword
// match exists anywhere, the first row repeating the average-marker
// token at least minAverageMarkers times qualifies instead; this
// handles exports that repeat a generic per-subject sub-header rather
// than naming each subject once.
func DetectHeader(rows []layout.Row) (*ColumnModel, error) {
	for i, row := range rows {
		if len(row.Fragments) < minHeaderFragments {
			continue
		}
		if isHeaderText(row.Text()) {
			return buildModel(rows, i, false), nil
		}
	}
	for i, row := range rows {
		if len(row.Fragments) < minHeaderFragments {
			continue
		}
		if textnorm.CountOccurrences(row.Text(), averageMarkerToken) >= minAverageMarkers {
			return buildModel(rows, i, true), nil
		}
	}
	return nil, ErrNoHeaderDetected
}

// buildModel classifies the header row's fragments into column anchors.
// Each anchor's right edge is the next anchor's X; the last column
// extends to a large sentinel width.
//
// In marker mode the header is a repeated per-subject sub-header, so
// the repeated columns are subjects (with synthesized labels, since
// "Moy." is not a usable subject name) and the leftmost column holds
// the student names.
func buildModel(rows []layout.Row, headerIndex int, markerMode bool) *ColumnModel {
	header := rows[headerIndex]
	anchors := make([]ColumnAnchor, 0, len(header.Fragments))
	subjectOrdinal := 0
	for i, f := range header.Fragments {
		role := classifyHeaderLabel(f.Text)
		label := f.Text
		if markerMode {
			if i == 0 {
				role = RoleName
			} else {
				role = RoleSubject
				subjectOrdinal++
				label = "Matière " + strconv.Itoa(subjectOrdinal)
			}
		}
		anchors = append(anchors, ColumnAnchor{
			Role:  role,
			Label: label,
			X:     f.X,
		})
	}
	for i := range anchors {
		if i < len(anchors)-1 {
			anchors[i].Width = anchors[i+1].X - anchors[i].X
		} else {
			anchors[i].Width = lastColumnWidth
		}
	}
	return &ColumnModel{
		Anchors:     anchors,
		HeaderPage:  header.Page,
		HeaderIndex: headerIndex,
	}
}
