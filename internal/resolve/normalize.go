package resolve

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Scraped titles carry UI noise: edition suffixes, year tags, decorative
// separators. Normalization is applied once, in order, and each step keeps
// its result only when non-empty.

var (
	directorsCutSuffix = regexp.MustCompile(`(?i)\s*[:\-]?\s*director'?s\s+cut\s*$`)
	bracketedSuffix    = regexp.MustCompile(`\s*[(\[][^()\[\]]*[)\]]\s*$`)
)

// NormalizeTitle strips a trailing "Director's Cut" suffix and a trailing
// parenthesized or bracketed tag from a scraped title.
func NormalizeTitle(raw string) string {
	title := strings.TrimSpace(raw)
	if stripped := strings.TrimSpace(directorsCutSuffix.ReplaceAllString(title, "")); stripped != "" {
		title = stripped
	}
	if stripped := strings.TrimSpace(bracketedSuffix.ReplaceAllString(title, "")); stripped != "" {
		title = stripped
	}
	return title
}

// AmpersandVariant rewrites "&" as " and " with collapsed whitespace. The
// boolean is false when the title contains no ampersand.
func AmpersandVariant(title string) (string, bool) {
	if !strings.Contains(title, "&") {
		return "", false
	}
	replaced := strings.ReplaceAll(title, "&", " and ")
	collapsed := strings.Join(strings.Fields(replaced), " ")
	if collapsed == "" {
		return "", false
	}
	return collapsed, true
}

// splitSeparators are checked in priority order: a dash outranks a colon so
// that "Mission: Impossible - Fallout" truncates to "Mission: Impossible"
// rather than "Mission".
var splitSeparators = []string{"-", ":", "&"}

// SplitVariant cuts the title at the highest-priority separator present.
// takeRemainder selects the substring after the separator (detail-page
// confirmation context); otherwise the substring before it is used. Fragments
// of minLength characters or fewer are never attempted.
func SplitVariant(title string, takeRemainder bool, minLength int) (string, bool) {
	for _, sep := range splitSeparators {
		idx := strings.Index(title, sep)
		if idx < 0 {
			continue
		}
		var fragment string
		if takeRemainder {
			fragment = title[idx+len(sep):]
		} else {
			fragment = title[:idx]
		}
		fragment = strings.TrimSpace(fragment)
		if len(fragment) > minLength {
			return fragment, true
		}
		return "", false
	}
	return "", false
}

// DisplayTitle renders an all-caps scraped title in title case for human
// output. Mixed-case input is returned unchanged.
func DisplayTitle(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return trimmed
	}
	upper := strings.ToUpper(trimmed)
	if trimmed != upper || upper == strings.ToLower(trimmed) {
		return trimmed
	}
	return cases.Title(language.Und).String(strings.ToLower(trimmed))
}
