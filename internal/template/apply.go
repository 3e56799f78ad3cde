package template

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/polmat77/classreviewmaster/internal/report"
)

// ErrNoBlocks reports that a prose document could not be cut into any
// usable block at all. Individual field misses never cause errors.
var ErrNoBlocks = errors.New("document produced no blocks")

// ExtractionResult is the outcome of applying a template to one
// document.
type ExtractionResult struct {
	Students []report.StudentRecord
	Meta     report.Meta
	// Custom holds matches of user-defined patterns, keyed by pattern
	// name, concatenated per document.
	Custom   map[string][]string
	Warnings []string
}

// genericDelimiter splits on dashed/underscored rule lines or runs of
// blank lines when the template does not supply a block delimiter.
var genericDelimiter = regexp.MustCompile(`(?m)^[-_=]{3,}\s*$|\n\s*\n\s*\n`)

// ApplyProse applies the template's prose rules to a narrative
// document. It is a pure function: neither the template nor the input
// is mutated, so calling it twice with the same arguments returns
// equal results.
func ApplyProse(text string, t *Template) (*ExtractionResult, error) {
	blocks := splitBlocks(text, t.Prose.BlockDelimiter)
	if len(blocks) == 0 {
		return nil, ErrNoBlocks
	}

	result := &ExtractionResult{Custom: make(map[string][]string)}

	nameRe := compilePattern(t.Prose.StudentName)
	subjectRe := compilePattern(t.Prose.Subject)
	gradeRe := compilePattern(t.Prose.Grade)
	classAvgRe := compilePattern(t.Prose.ClassAverage)
	commentRe := compilePattern(t.Prose.TeacherComment)

	result.Meta = proseMeta(text, t)

	for i, block := range blocks {
		rec := extractBlock(block, i, nameRe, subjectRe, gradeRe, classAvgRe, commentRe)
		if rec == nil {
			result.Warnings = append(result.Warnings, "block "+strconv.Itoa(i+1)+" yielded no fields")
			continue
		}
		result.Students = append(result.Students, *rec)
	}

	for name, pattern := range t.Prose.Custom {
		if re := compilePattern(pattern); re != nil {
			if matches := re.FindAllString(text, -1); len(matches) > 0 {
				result.Custom[name] = matches
			}
		}
	}

	return result, nil
}

// splitBlocks cuts the document using the template delimiter, falling
// back to the generic blank-line/rule-of-dashes heuristic when the
// delimiter is empty or matches nothing.
func splitBlocks(text string, delimiter string) []string {
	if re := compilePattern(delimiter); re != nil {
		if blocks := nonEmptySplit(re, text); len(blocks) > 1 {
			return blocks
		}
	}
	if blocks := nonEmptySplit(genericDelimiter, text); len(blocks) > 0 {
		return blocks
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return []string{text}
}

func nonEmptySplit(re *regexp.Regexp, text string) []string {
	var blocks []string
	for _, part := range re.Split(text, -1) {
		if strings.TrimSpace(part) != "" {
			blocks = append(blocks, part)
		}
	}
	return blocks
}

// extractBlock pulls one student record out of a block. Grades,
// class averages and comments associate with the nearest preceding
// subject match within the same block. Returns nil when not a single
// field matched.
func extractBlock(block string, index int, nameRe, subjectRe, gradeRe, classAvgRe, commentRe *regexp.Regexp) *report.StudentRecord {
	name := firstCapture(nameRe, block)
	subjects := captureOffsets(subjectRe, block)

	matched := name != "" || len(subjects) > 0
	if name == "" {
		name = "Élève " + strconv.Itoa(index+1)
	}

	rec := report.NewStudentRecord(name)

	for _, g := range captureOffsets(gradeRe, block) {
		subj, ok := precedingSubject(subjects, g.offset)
		if !ok {
			continue
		}
		if grade := report.ParseGrade(g.value); grade.Present() {
			rec.Grades[subj] = grade
			matched = true
		}
	}
	for _, a := range captureOffsets(classAvgRe, block) {
		subj, ok := precedingSubject(subjects, a.offset)
		if !ok {
			continue
		}
		if grade := report.ParseGrade(a.value); grade.Present() {
			rec.ClassAverages[subj] = grade
			matched = true
		}
	}
	for _, c := range captureOffsets(commentRe, block) {
		subj, ok := precedingSubject(subjects, c.offset)
		if !ok {
			continue
		}
		rec.Comments[subj] = strings.TrimSpace(c.value)
		matched = true
	}

	// Subjects with no associated grade still belong to the record.
	for _, s := range subjects {
		if _, ok := rec.Grades[s.value]; !ok {
			rec.Grades[s.value] = report.AbsentGrade()
		}
	}

	if !matched {
		return nil
	}
	rec.FinalizeAverage()
	return rec
}

// proseMeta extracts document-scoped fields (term, class, school).
func proseMeta(text string, t *Template) report.Meta {
	return report.Meta{
		Term:       firstCapture(compilePattern(t.Prose.Term), text),
		ClassName:  firstCapture(compilePattern(t.Prose.ClassName), text),
		SchoolName: firstCapture(compilePattern(t.Prose.SchoolName), text),
	}
}

// ApplyTabular reads explicit column indices from each data row (long
// format: one row per student-subject pair). The first row is treated
// as a header when it does not parse as data.
func ApplyTabular(rows [][]string, t *Template) (*ExtractionResult, error) {
	if err := t.ValidateTabular(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoBlocks
	}

	result := &ExtractionResult{Custom: make(map[string][]string)}
	byName := make(map[string]*report.StudentRecord)
	var order []string

	for _, row := range rows {
		name := strings.TrimSpace(cellAt(row, t.Tabular.NameColumn))
		subject := strings.TrimSpace(cellAt(row, t.Tabular.SubjectColumn))
		if name == "" || subject == "" {
			continue
		}
		grade := report.ParseGrade(cellAt(row, t.Tabular.GradeColumn))
		if !grade.Present() && looksLikeHeader(name, subject) {
			continue
		}

		rec, ok := byName[name]
		if !ok {
			rec = report.NewStudentRecord(name)
			byName[name] = rec
			order = append(order, name)
		}
		rec.Grades[subject] = grade

		if t.Tabular.ClassAverageColumn != UnusedColumn {
			if g := report.ParseGrade(cellAt(row, t.Tabular.ClassAverageColumn)); g.Present() {
				rec.ClassAverages[subject] = g
			}
		}
		if t.Tabular.CommentColumn != UnusedColumn {
			if c := strings.TrimSpace(cellAt(row, t.Tabular.CommentColumn)); c != "" {
				rec.Comments[subject] = c
			}
		}
		if t.Tabular.TeacherColumn != UnusedColumn {
			if teacher := strings.TrimSpace(cellAt(row, t.Tabular.TeacherColumn)); teacher != "" {
				rec.TeacherNames[subject] = teacher
			}
		}
	}

	for _, name := range order {
		rec := byName[name]
		rec.FinalizeAverage()
		result.Students = append(result.Students, *rec)
	}
	return result, nil
}

type offsetCapture struct {
	value  string
	offset int
}

// captureOffsets returns all matches with their byte offsets. The
// first capture group is preferred over the whole match when present.
func captureOffsets(re *regexp.Regexp, text string) []offsetCapture {
	if re == nil {
		return nil
	}
	var out []offsetCapture
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[0], loc[1]
		if len(loc) >= 4 && loc[2] >= 0 {
			start, end = loc[2], loc[3]
		}
		out = append(out, offsetCapture{value: text[start:end], offset: loc[0]})
	}
	return out
}

// precedingSubject finds the nearest subject match starting at or
// before the given offset.
func precedingSubject(subjects []offsetCapture, offset int) (string, bool) {
	best := ""
	found := false
	for _, s := range subjects {
		if s.offset <= offset {
			best = strings.TrimSpace(s.value)
			found = true
		} else {
			break
		}
	}
	return best, found
}

func firstCapture(re *regexp.Regexp, text string) string {
	if re == nil {
		return ""
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	if len(m) > 1 && m[1] != "" {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(m[0])
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// looksLikeHeader guards against counting a header row as a student
// when the grade cell does not parse.
func looksLikeHeader(name, subject string) bool {
	lower := strings.ToLower(name + " " + subject)
	return strings.Contains(lower, "nom") || strings.Contains(lower, "ève") ||
		strings.Contains(lower, "eleve") || strings.Contains(lower, "student") ||
		strings.Contains(lower, "mati") || strings.Contains(lower, "subject")
}
