package bulletin

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/polmat77/classreviewmaster/internal/report"
)

// feedbackPattern is one candidate extractor for subject-feedback
// lines. Patterns use named groups: subject, teacher, average, remark.
type feedbackPattern struct {
	name string
	re   *regexp.Regexp
}

// defaultPatterns are tried in priority order. The first pattern that
// yields at least one match inside a block wins, so partial results
// from incompatible pattern guesses never mix within one block.
var defaultPatterns = []feedbackPattern{
	{
		// "MATHÉMATIQUES M. BERNARD 13,50 Bon trimestre dans l'ensemble."
		name: "uppercase-subject-teacher-grade",
		re: regexp.MustCompile(`(?m)^\s*(?P<subject>[A-ZÀ-Ü][A-ZÀ-Ü&'. -]{2,40}?)\s+` +
			`(?P<teacher>(?:M\.|Mme|Mlle|Mr|Ms)\s+[A-ZÀ-Ü][\p{L}'-]+)\s+` +
			`(?P<average>\d{1,2}(?:[.,]\d{1,2})?)\s+` +
			`(?P<remark>\p{L}.+)$`),
	},
	{
		// "Mathématiques (M. Bernard) : 13,5 - Bon trimestre."
		name: "subject-parenthesized-teacher",
		re: regexp.MustCompile(`(?m)^\s*(?P<subject>\p{L}[\p{L}&'. -]{2,40}?)\s*` +
			`\((?P<teacher>[^)]+)\)\s*:\s*` +
			`(?P<average>\d{1,2}(?:[.,]\d{1,2})?)\s*[-–]?\s*` +
			`(?P<remark>\p{L}.+)$`),
	},
	{
		// "Mathématiques : 13,5 Bon trimestre." (no teacher)
		name: "subject-grade-remark",
		re: regexp.MustCompile(`(?m)^\s*(?P<subject>\p{L}[\p{L}&'. -]{2,40}?)\s*:\s*` +
			`(?P<average>\d{1,2}(?:[.,]\d{1,2})?)\s+` +
			`(?P<remark>\p{L}.+)$`),
	},
	{
		// "Mathématiques : bon trimestre." (remark only)
		name: "subject-remark",
		re: regexp.MustCompile(`(?m)^\s*(?P<subject>[A-ZÀ-Ü][\p{L}&'. -]{2,40}?)\s*:\s*` +
			`(?P<remark>\p{L}.+)$`),
	},
}

// studentNamePatterns locate the student's name inside a block.
var studentNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:élève|eleve|nom)\s*:\s*(?P<name>[\p{L}' -]+)`),
	regexp.MustCompile(`(?i)bulletin de\s+(?P<name>[\p{L}' -]+)`),
}

// termPattern captures the grading period mentioned in a block.
var termPattern = regexp.MustCompile(`(?i)\d+\s*(?:er|e|eme|ème)?\s*(?:trimestre|semestre)`)

// Extractor pulls subject-feedback tuples out of bulletin blocks.
type Extractor struct {
	patterns []feedbackPattern
	logger   *slog.Logger
}

// NewExtractor creates an extractor using the built-in pattern battery.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{patterns: defaultPatterns, logger: logger}
}

// Extract applies the candidate patterns to one block in priority
// order and returns the tuples of the first pattern that matched.
func (e *Extractor) Extract(block Block) []report.SubjectFeedback {
	for _, p := range e.patterns {
		matches := p.re.FindAllStringSubmatch(block.Text, -1)
		if len(matches) == 0 {
			continue
		}
		feedback := make([]report.SubjectFeedback, 0, len(matches))
		for _, m := range matches {
			fb := tupleFromMatch(p.re, m)
			if fb.Subject == "" {
				continue
			}
			feedback = append(feedback, fb)
		}
		if len(feedback) > 0 {
			e.logger.Debug("extracted subject feedback",
				"pattern", p.name, "block", block.Index, "tuples", len(feedback))
			return feedback
		}
	}
	return nil
}

// BuildStudents converts blocks into student records. Blocks yielding
// zero feedback tuples are logged as unparsed and dropped from the
// result.
func (e *Extractor) BuildStudents(blocks []Block) ([]report.StudentRecord, []string) {
	var students []report.StudentRecord
	var unparsed []string

	for _, block := range blocks {
		feedback := e.Extract(block)
		if len(feedback) == 0 {
			e.logger.Warn("bulletin block yielded no subject feedback", "block", block.Index)
			unparsed = append(unparsed, blockSummary(block))
			continue
		}

		rec := report.NewStudentRecord(StudentName(block))
		for _, fb := range feedback {
			rec.AttachFeedback(fb)
		}
		rec.FinalizeAverage()
		students = append(students, *rec)
	}
	return students, unparsed
}

// StudentName finds the student's name inside a block, falling back to
// a positional placeholder when no name pattern matches.
func StudentName(block Block) string {
	for _, re := range studentNamePatterns {
		if m := re.FindStringSubmatch(block.Text); m != nil {
			idx := re.SubexpIndex("name")
			if idx >= 0 && idx < len(m) {
				return strings.TrimSpace(m[idx])
			}
		}
	}
	return "Élève " + strconv.Itoa(block.Index+1)
}

// Term returns the grading period mentioned in the text, if any.
func Term(text string) string {
	return strings.TrimSpace(termPattern.FindString(text))
}

func tupleFromMatch(re *regexp.Regexp, m []string) report.SubjectFeedback {
	group := func(name string) string {
		idx := re.SubexpIndex(name)
		if idx < 0 || idx >= len(m) {
			return ""
		}
		return strings.TrimSpace(m[idx])
	}

	fb := report.SubjectFeedback{
		Subject: group("subject"),
		Teacher: group("teacher"),
		Remark:  group("remark"),
		Average: report.AbsentGrade(),
	}
	if avg := group("average"); avg != "" {
		fb.Average = report.ParseGrade(avg)
	}
	return fb
}

func blockSummary(block Block) string {
	runes := []rune(strings.TrimSpace(block.Text))
	if len(runes) > 60 {
		return string(runes[:60]) + "…"
	}
	return string(runes)
}
