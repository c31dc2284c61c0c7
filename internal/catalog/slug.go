package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// slugFolder strips combining marks so accented titles fold to plain ASCII
// identifiers ("Matemática" -> "Matematica").
var slugFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// TranslateSlug converts a human-friendly identifier into the internal form:
// lowercase, diacritics removed, word separators collapsed to single dashes.
// The translation is idempotent — an already-internal identifier passes
// through unchanged.
func TranslateSlug(raw string) string {
	folded, _, err := transform.String(slugFolder, raw)
	if err != nil {
		folded = raw
	}

	var b strings.Builder
	b.Grow(len(folded))
	lastDash := true // swallow leading separators
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
