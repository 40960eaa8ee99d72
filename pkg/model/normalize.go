package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeID folds a field id or hint into the comparison form used for
// fuzzy matching: accents removed, lowercased, and every rune outside
// [a-z0-9] dropped. "Date of Birth" and "date_of_birth" both become
// "dateofbirth".
func NormalizeID(value string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn))), value)
	if err != nil {
		folded = value
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
