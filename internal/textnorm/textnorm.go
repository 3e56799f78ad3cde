// Package textnorm provides text normalization helpers shared by the
// header vocabulary matchers and the template inference engine.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases s and strips diacritical marks, so that "Élève",
// "ELEVE" and "eleve" all normalize to the same key.
func Fold(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		// Fall back to plain lowercasing for malformed input.
		return strings.ToLower(s)
	}
	return strings.ToLower(folded)
}

// ContainsAny reports whether the folded form of s contains any of the
// given folded keywords.
func ContainsAny(s string, keywords []string) bool {
	folded := Fold(s)
	for _, kw := range keywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}

// CountOccurrences counts non-overlapping occurrences of the folded
// keyword in the folded form of s.
func CountOccurrences(s, keyword string) int {
	return strings.Count(Fold(s), keyword)
}
