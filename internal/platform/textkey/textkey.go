// Package textkey derives comparison keys for names and free-text search.
package textkey

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold returns the case-insensitive uniqueness key for a name: trimmed and case-folded.
func Fold(s string) string {
	// Casers carry state, so each call gets its own.
	return cases.Fold().String(strings.TrimSpace(s))
}

// Equal reports whether two names collide under Fold.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}

// Search returns a key for accent- and case-insensitive matching, so "pho" matches "Phở".
func Search(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Map(func(r rune) rune {
			switch r {
			case 'đ':
				return 'd'
			case 'Đ':
				return 'D'
			}
			return r
		}),
		norm.NFC,
	)
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		out = strings.TrimSpace(s)
	}
	return cases.Fold().String(out)
}

// Contains reports whether query matches any of fields under Search keys. An empty query matches everything.
func Contains(query string, fields ...string) bool {
	q := Search(query)
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(Search(f), q) {
			return true
		}
	}
	return false
}
