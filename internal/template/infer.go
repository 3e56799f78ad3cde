package template

import (
	"regexp"

	"github.com/polmat77/classreviewmaster/internal/textnorm"
)

// fieldCandidates is an ordered battery of patterns for one prose
// field. Inference keeps the first candidate that matches the sample,
// which keeps the fallback behavior auditable per candidate instead of
// buried in nested conditionals.
type fieldCandidates struct {
	field      string
	candidates []string
}

var proseCandidates = []fieldCandidates{
	{"block_delimiter", []string{
		`(?i)bulletin du \d+\s*(?:er|e|eme|ème)?\s*(?:trimestre|semestre)`,
		`(?i)bulletin (?:scolaire|de notes)`,
		`(?m)^[-_=]{3,}\s*$`,
	}},
	{"student_name", []string{
		`(?i)(?:élève|eleve|nom)\s*:\s*([\p{L}' -]+)`,
		`(?i)bulletin de\s+([\p{L}' -]+)`,
	}},
	{"subject", []string{
		`(?m)^([A-ZÀ-Ü][A-ZÀ-Ü&'. -]{2,40})(?:\s+M)`,
		`(?m)^([A-ZÀ-Ü][A-ZÀ-Ü&'. -]{2,40})\b`,
		`(?m)^([A-ZÀ-Ü][\p{L}&'. -]{2,40}?)\s*[:(]`,
	}},
	{"grade", []string{
		`(\d{1,2}[.,]\d{1,2})\s*/\s*20`,
		`\b(\d{1,2}[.,]\d{1,2})\b`,
		`\b(\d{1,2})\s*/\s*20\b`,
	}},
	{"class_average", []string{
		`(?i)moyenne (?:de (?:la )?)?classe\s*:?\s*(\d{1,2}(?:[.,]\d{1,2})?)`,
	}},
	{"teacher_comment", []string{
		`(?i)appr[ée]ciation\s*:?\s*(.+)`,
		`(?i)observation\s*:?\s*(.+)`,
	}},
	{"term", []string{
		`(?i)(\d+\s*(?:er|e|eme|ème)?\s*(?:trimestre|semestre))`,
	}},
	{"class_name", []string{
		`(?i)classe\s*(?:de)?\s*:?\s*(\d?[\p{L}\d]{1,3}\s?[A-Za-z]?)`,
	}},
	{"school_name", []string{
		`(?i)((?:coll[èe]ge|lyc[ée]e|[ée]cole)\s+[\p{L}' -]+)`,
	}},
}

// InferProse tries the candidate battery per field against the sample
// document and keeps, for every field, the first candidate that
// matches. Fields with no matching candidate stay empty; apply treats
// empty patterns as "field absent".
func InferProse(name, sample string) *Template {
	t := New(name)
	for _, fc := range proseCandidates {
		pattern := firstMatchingCandidate(fc.candidates, sample)
		switch fc.field {
		case "block_delimiter":
			t.Prose.BlockDelimiter = pattern
		case "student_name":
			t.Prose.StudentName = pattern
		case "subject":
			t.Prose.Subject = pattern
		case "grade":
			t.Prose.Grade = pattern
		case "class_average":
			t.Prose.ClassAverage = pattern
		case "teacher_comment":
			t.Prose.TeacherComment = pattern
		case "term":
			t.Prose.Term = pattern
		case "class_name":
			t.Prose.ClassName = pattern
		case "school_name":
			t.Prose.SchoolName = pattern
		}
	}
	return t
}

func firstMatchingCandidate(candidates []string, sample string) string {
	for _, c := range candidates {
		re, err := regexp.Compile(c)
		if err != nil {
			continue
		}
		if re.MatchString(sample) {
			return c
		}
	}
	return ""
}

// Tabular header vocabularies, folded.
var (
	inferNameWords     = []string{"eleve", "nom", "student", "name"}
	inferSubjectWords  = []string{"matiere", "subject", "discipline"}
	inferGradeWords    = []string{"note", "grade", "moyenne eleve", "moyenne"}
	inferClassAvgWords = []string{"moyenne classe", "moyenne de la classe", "class average"}
	inferCommentWords  = []string{"appreciation", "commentaire", "observation", "comment", "remark"}
	inferTeacherWords  = []string{"professeur", "prof", "enseignant", "teacher"}
)

// InferTabular guesses column indices from the header cells of a
// tabular sample by substring vocabulary. More specific vocabularies
// (class average) are resolved before the generic grade words so that
// "Moyenne classe" does not claim the grade column.
func InferTabular(name string, header []string) *Template {
	t := New(name)

	claimed := make(map[int]bool)
	claim := func(words []string) int {
		for i, cell := range header {
			if claimed[i] {
				continue
			}
			if textnorm.ContainsAny(cell, words) {
				claimed[i] = true
				return i
			}
		}
		return UnusedColumn
	}

	t.Tabular.NameColumn = claim(inferNameWords)
	t.Tabular.SubjectColumn = claim(inferSubjectWords)
	t.Tabular.ClassAverageColumn = claim(inferClassAvgWords)
	t.Tabular.GradeColumn = claim(inferGradeWords)
	t.Tabular.CommentColumn = claim(inferCommentWords)
	t.Tabular.TeacherColumn = claim(inferTeacherWords)

	return t
}
