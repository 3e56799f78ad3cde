package table

import (
	"strings"

	"github.com/polmat77/classreviewmaster/internal/report"
)

// BuildResult carries the typed records produced from assigned rows
// plus per-subject class averages read from aggregate rows.
type BuildResult struct {
	Students      []report.StudentRecord
	ClassAverages map[string]report.Grade
	Warnings      []string
}

// BuildRecords converts assigned record rows into student records.
//
// The name comes from the name column when one was detected, otherwise
// from the first column (flagged as guessed). Grades parse through
// report.ParseGrade, so absence markers and junk become explicit
// absences rather than zeros. The declared average column is trusted
// when parsable; otherwise the average derives from present grades.
func BuildRecords(assignment Assignment, model *ColumnModel) BuildResult {
	result := BuildResult{ClassAverages: make(map[string]report.Grade)}

	nameCol, hasNameCol := model.NameColumn()
	avgCol, hasAvgCol := model.AverageColumn()
	subjectCols := model.SubjectColumns()

	for _, row := range assignment.Records {
		name, guessed := rowName(row, nameCol, hasNameCol)
		if name == "" {
			continue
		}

		rec := report.NewStudentRecord(name)
		rec.NameGuessed = guessed
		if guessed {
			result.Warnings = append(result.Warnings,
				"no name column detected, used first column for "+name)
		}

		gradeCount := 0
		for _, col := range subjectCols {
			cell, ok := row.Cell(col)
			if !ok {
				rec.Grades[model.Anchors[col].Label] = report.AbsentGrade()
				continue
			}
			g := report.ParseGrade(cell)
			rec.Grades[model.Anchors[col].Label] = g
			if g.Present() {
				gradeCount++
			}
		}

		// A row with a name but not a single parsable grade is most
		// likely decoration, not a student.
		if gradeCount == 0 && !rowHasDeclaredAverage(row, avgCol, hasAvgCol) {
			continue
		}

		if hasAvgCol {
			if cell, ok := row.Cell(avgCol); ok {
				if g := report.ParseGrade(cell); g.Present() {
					rec.Average = g
					rec.AverageSource = report.AverageDeclared
				}
			}
		}
		rec.FinalizeAverage()
		result.Students = append(result.Students, *rec)
	}

	for _, row := range assignment.Aggregates {
		for _, col := range subjectCols {
			cell, ok := row.Cell(col)
			if !ok {
				continue
			}
			if g := report.ParseGrade(cell); g.Present() {
				result.ClassAverages[model.Anchors[col].Label] = g
			}
		}
	}

	if len(result.ClassAverages) > 0 {
		for i := range result.Students {
			result.Students[i].ClassAverages = cloneGrades(result.ClassAverages)
		}
	}

	return result
}

func rowName(row RecordRow, nameCol int, hasNameCol bool) (string, bool) {
	if hasNameCol {
		if cell, ok := row.Cell(nameCol); ok && strings.TrimSpace(cell) != "" {
			return strings.TrimSpace(cell), false
		}
	}
	// Fall back to the leftmost column when the name cell is missing.
	if cell, ok := row.Cell(0); ok {
		return strings.TrimSpace(cell), true
	}
	return "", false
}

func rowHasDeclaredAverage(row RecordRow, avgCol int, hasAvgCol bool) bool {
	if !hasAvgCol {
		return false
	}
	cell, ok := row.Cell(avgCol)
	return ok && report.ParseGrade(cell).Present()
}

func cloneGrades(src map[string]report.Grade) map[string]report.Grade {
	dst := make(map[string]report.Grade, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
