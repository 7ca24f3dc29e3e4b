// Package slug derives URL-safe identifiers from post titles.
package slug

import "strings"

const maxLength = 100

// Make lowercases the title, collapses every run of non-alphanumeric
// characters into a single hyphen, strips boundary hyphens, and truncates
// to 100 characters. Deterministic: the same title always maps to the same
// slug. Truncation can make distinct titles collide; the repository's
// upsert-on-slug policy is the defined tie-break.
func Make(title string) string {
	lowered := strings.ToLower(title)

	var b strings.Builder
	b.Grow(len(lowered))
	hyphenPending := false
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if hyphenPending && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphenPending = false
			b.WriteRune(r)
			continue
		}
		hyphenPending = true
	}

	s := b.String()
	if len(s) > maxLength {
		s = strings.TrimRight(s[:maxLength], "-")
	}
	return s
}
