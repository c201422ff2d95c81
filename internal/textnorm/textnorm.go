// Package textnorm flattens extracted document text into a single clean blob.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"
)

const formattingGlyphs = "-|=_"

var controlRuns = regexp.MustCompile("[\r\n\v\f  \t]+")

// IsDecorative reports whether the line carries nothing but formatting
// glyphs. Empty and whitespace-only lines are not decorative; they pass
// through and disappear in join semantics instead.
func IsDecorative(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	for _, r := range trimmed {
		if !strings.ContainsRune(formattingGlyphs, r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// Clean collapses every run of line-break and control characters into a
// single space and trims the result. Clean is idempotent.
func Clean(text string) string {
	return strings.TrimSpace(controlRuns.ReplaceAllString(text, " "))
}

// ReducePages drops decorative lines from each page, joins the survivors
// with single spaces, and cleans the flattened result. A page with no
// extractable text contributes an empty segment.
func ReducePages(pages []string) string {
	segments := make([]string, 0, len(pages))
	for _, page := range pages {
		lines := strings.Split(page, "\n")
		kept := make([]string, 0, len(lines))
		for _, line := range lines {
			if IsDecorative(line) {
				continue
			}
			kept = append(kept, strings.TrimSpace(line))
		}
		segments = append(segments, strings.Join(kept, " "))
	}
	return Clean(strings.Join(segments, " "))
}
