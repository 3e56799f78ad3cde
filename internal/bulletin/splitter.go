// Package bulletin extracts per-student records from narrative report
// documents: multi-student files are split on a recurring anchor
// pattern, then each block yields (subject, teacher, average, remark)
// tuples.
package bulletin

import (
	"regexp"
	"strings"
)

// Block is a contiguous text span believed to hold one student's full
// bulletin.
type Block struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// anchorCandidates are the recurring markers tried, in priority order,
// when no template supplies an anchor. Each matches a phrase that
// appears exactly once per student bulletin in the common exports.
var anchorCandidates = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bulletin du \d+\s*(?:er|e|eme|ème)?\s*(?:trimestre|semestre)`),
	regexp.MustCompile(`(?i)bulletin (?:scolaire|de notes)`),
	regexp.MustCompile(`(?i)^\s*\d+\s*(?:er|e|eme|ème)\s+(?:trimestre|semestre)\b`),
}

// Split cuts text into blocks on lines matching the anchor. A matching
// line starts a new block; following lines up to the next anchor (or
// end of document) belong to it. Zero anchor matches yield one block
// holding the whole document, and the caller is responsible for
// noticing that no splitting occurred.
func Split(text string, anchor *regexp.Regexp) []Block {
	lines := strings.Split(text, "\n")

	var starts []int
	for i, line := range lines {
		if anchor.MatchString(line) {
			starts = append(starts, i)
		}
	}
	if len(starts) == 0 {
		return []Block{{Index: 0, Text: text}}
	}

	blocks := make([]Block, 0, len(starts))
	for i, start := range starts {
		end := len(lines)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		blocks = append(blocks, Block{
			Index: i,
			Text:  strings.Join(lines[start:end], "\n"),
		})
	}
	return blocks
}

// SplitAuto tries the built-in anchor candidates in order and keeps the
// first one that cuts the document into at least two blocks. The
// second return value reports whether splitting actually occurred.
func SplitAuto(text string) ([]Block, bool) {
	for _, anchor := range anchorCandidates {
		blocks := Split(text, anchor)
		if len(blocks) >= 2 {
			return blocks, true
		}
	}
	// Single-student files legitimately match an anchor exactly once.
	for _, anchor := range anchorCandidates {
		if anchor.MatchString(text) {
			return Split(text, anchor), true
		}
	}
	return []Block{{Index: 0, Text: text}}, false
}
