package testutil

import (
	"fmt"
	"strings"
)

// SubjectGrade is one graded subject line in a synthetic bulletin.
type SubjectGrade struct {
	Subject string
	Grade   string // grade text, e.g. "13,50"
}

// BulletinStudent describes one student in a synthetic bulletin.
type BulletinStudent struct {
	Name   string
	Grades []SubjectGrade
}

// BulletinText builds a synthetic multi-bulletin document in the
// layout produced by French school management exports: one bulletin
// per student, subjects as uppercase line prefixes.
func BulletinText(term string, students []BulletinStudent) string {
	var b strings.Builder
	for _, student := range students {
		fmt.Fprintf(&b, "Bulletin du %s\n", term)
		fmt.Fprintf(&b, "Élève : %s\n", student.Name)
		for _, sg := range student.Grades {
			fmt.Fprintf(&b, "%s M. DURAND %s Travail correct.\n", sg.Subject, sg.Grade)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// GradeTableRow is one student line in a synthetic grade table.
type GradeTableRow struct {
	Name   string
	Grades []string
}

// GradeTableCSV builds a synthetic semicolon-separated grade table:
// one header row, one row per student.
func GradeTableCSV(subjects []string, rows []GradeTableRow) string {
	var b strings.Builder
	b.WriteString("Élève")
	for _, subject := range subjects {
		b.WriteString(";" + subject)
	}
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(row.Name)
		for _, grade := range row.Grades {
			b.WriteString(";" + grade)
		}
		b.WriteString("\n")
	}
	return b.String()
}
