package medicines

import (
	"regexp"
	"strings"
)

// Pre-compiled patterns, shared by the loader and the recommendation path.
var (
	compositionPunctRegex = regexp.MustCompile(`[()\[\],]`)
	whitespaceRegex       = regexp.MustCompile(`\s+`)
	dosageRegex           = regexp.MustCompile(`\d+\s*mg|\d+\s*ml|\d+\s*mcg`)
)

// NormalizeComposition lowercases a composition string, replaces the
// punctuation characters ()[], with spaces, collapses whitespace runs and
// trims the result. An empty or absent value yields an empty string.
// The function is pure and idempotent.
func NormalizeComposition(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ToLower(text)
	text = compositionPunctRegex.ReplaceAllString(text, " ")
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// NormalizeName lowercases and trims a display name for substring lookup.
func NormalizeName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

// ExtractDosage pulls every strength token (digits followed by mg, ml or
// mcg) out of a medicine name, in order of appearance, and joins them with
// single spaces. Whitespace between the number and the unit is dropped, so
// "500 mg" and "500mg" produce the same token. Returns "" when the name
// carries no strength tokens.
//
// The result is used as an exact-match key: "500mg 5ml" and "5ml 500mg"
// are different keys even though they describe the same strengths.
func ExtractDosage(name string) string {
	matches := dosageRegex.FindAllString(strings.ToLower(name), -1)
	if len(matches) == 0 {
		return ""
	}
	for i, m := range matches {
		matches[i] = whitespaceRegex.ReplaceAllString(m, "")
	}
	return strings.Join(matches, " ")
}
