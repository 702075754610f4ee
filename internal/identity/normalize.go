// Package identity turns free-text names into comparable keys so that
// leader, welcomer and visitor names typed by hand or produced by the
// extraction step match regardless of accents, case and spacing.
package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize returns the canonical key for s: diacritics stripped, whitespace
// runs joined by a single underscore, anything outside [A-Za-z0-9_] dropped,
// lower-cased. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	// Transformers keep state, so each call builds its own chain.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	joined := strings.Join(strings.Fields(stripped), "_")

	var b strings.Builder
	b.Grow(len(joined))
	for _, r := range joined {
		if isKeyRune(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// Equal reports whether a and b normalize to the same non-empty key.
func Equal(a, b string) bool {
	ka := Normalize(a)
	return ka != "" && ka == Normalize(b)
}

func isKeyRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
