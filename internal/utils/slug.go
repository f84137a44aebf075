// Package utils holds small helpers shared by the handlers.
package utils

import (
	"strings"
	"unicode"
)

// Azerbaijani letters that have no direct ASCII lowering; the public site
// serves slugs in plain ASCII so these are transliterated rather than
// dropped.
var slugTransliterations = map[rune]string{
	'ə': "e", 'Ə': "e",
	'ı': "i", 'I': "i", 'İ': "i",
	'ö': "o", 'Ö': "o",
	'ü': "u", 'Ü': "u",
	'ç': "c", 'Ç': "c",
	'ş': "s", 'Ş': "s",
	'ğ': "g", 'Ğ': "g",
}

// Slugify converts a title into a URL slug: transliterate, lowercase,
// collapse every run of non-alphanumerics into a single dash, and trim
// dashes from both ends.  An empty result (a title of only punctuation)
// comes back as "post" so the slug column never receives an empty string.
func Slugify(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	prevDash := false
	for _, r := range title {
		if t, ok := slugTransliterations[r]; ok {
			b.WriteString(t)
			prevDash = false
			continue
		}
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			prevDash = false
		default:
			if !prevDash && b.Len() > 0 {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	s := strings.Trim(b.String(), "-")
	if s == "" {
		return "post"
	}
	return s
}
