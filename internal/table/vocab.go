package table

import "github.com/polmat77/classreviewmaster/internal/textnorm"

// Header vocabularies, folded (lowercase, no diacritics). French first
// since the dominant exports are PRONOTE/EcoleDirecte style, English as
// a fallback for international schools.
var (
	nameWords = []string{"eleve", "nom", "etudiant", "student", "name", "apprenant"}

	subjectWords = []string{"matiere", "subject", "discipline"}

	averageWords = []string{"moyenne", "average", "overall", "mean"}

	// averageAbbreviations only count as the overall average on an
	// exact match; as substrings they would swallow the repeated
	// per-subject "Moy." sub-headers.
	averageAbbreviations = map[string]struct{}{"moy": {}, "moy.": {}}

	// perSubjectQualifiers disqualify an average-looking header from
	// being the overall average column ("moyenne par matiere").
	perSubjectQualifiers = []string{"matiere", "subject", "discipline"}

	// excludedWords mark columns that are neither names, subjects nor
	// averages and must not produce grades.
	excludedWords = []string{"rang", "rank", "total", "absence", "retard", "observation", "appreciation", "vie scolaire"}

	// averageMarkerToken is the generic per-subject sub-header token
	// used by exports that repeat "Moy." under every subject instead of
	// naming subjects in the header row.
	averageMarkerToken = "moy"
)

// classifyHeaderLabel maps a header fragment's text to a column role.
func classifyHeaderLabel(label string) ColumnRole {
	_, abbrev := averageAbbreviations[textnorm.Fold(label)]
	switch {
	case textnorm.ContainsAny(label, nameWords):
		return RoleName
	case (abbrev || textnorm.ContainsAny(label, averageWords)) && !textnorm.ContainsAny(label, perSubjectQualifiers):
		return RoleAverage
	case textnorm.ContainsAny(label, excludedWords):
		return RoleOther
	default:
		return RoleSubject
	}
}

// isHeaderText reports whether a row's concatenated text looks like a
// grade-table header.
func isHeaderText(text string) bool {
	return textnorm.ContainsAny(text, nameWords) ||
		textnorm.ContainsAny(text, subjectWords) ||
		textnorm.ContainsAny(text, averageWords)
}

// aggregateRowWords identify trailing summary rows (class averages)
// that must not become student records.
var aggregateRowWords = []string{"moyenne de la classe", "moyenne classe", "moyennes de la classe", "class average", "moyenne generale de la classe"}

// isAggregateRow reports whether a data row is a class-level summary.
func isAggregateRow(text string) bool {
	return textnorm.ContainsAny(text, aggregateRowWords)
}
