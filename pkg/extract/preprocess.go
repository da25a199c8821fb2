package extract

import (
	"regexp"
	"strings"
)

var (
	// standalonePageNumberPattern matches lines containing only a page number.
	standalonePageNumberPattern = regexp.MustCompile(`^\d+\s*$`)

	// hyphenatedLineEndPattern matches lines ending with a hyphen (word
	// break across lines in PDF-extracted text).
	hyphenatedLineEndPattern = regexp.MustCompile(`[a-zA-Z]-$`)
)

// Preprocess cleans up extracted treatise text before scanning: standalone
// page numbers are dropped and words hyphenated across line breaks are
// rejoined. Other artifacts (running headers, titles) are left alone; the
// scanner tolerates them as unmatched text.
func Preprocess(lines []string) []string {
	var cleaned []string
	for _, line := range lines {
		if standalonePageNumberPattern.MatchString(strings.TrimSpace(line)) {
			continue
		}
		cleaned = append(cleaned, line)
	}
	return rejoinHyphenatedLines(cleaned)
}

// rejoinHyphenatedLines merges lines ending in a hyphen with the following
// line, dropping the hyphen ("sub-" + "stance" -> "substance").
func rejoinHyphenatedLines(lines []string) []string {
	var result []string
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimRight(line, " \t")

		for hyphenatedLineEndPattern.MatchString(trimmed) && i+1 < len(lines) {
			next := strings.TrimLeft(lines[i+1], " \t")
			trimmed = strings.TrimSuffix(trimmed, "-") + next
			trimmed = strings.TrimRight(trimmed, " \t")
			i++
		}

		result = append(result, trimmed)
	}
	return result
}
