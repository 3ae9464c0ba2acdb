package shared

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFold decomposes characters and strips combining marks, so that
// accented letters collapse to their closest unaccented equivalents.
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize cleans a title or artist string for comparison purposes.
//
// Diacritics are transliterated to plain ASCII and punctuation is removed,
// with the period as the only punctuation character kept. Case is preserved;
// callers that need case-insensitive comparison fold case themselves.
//
// Normalize is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if folded, _, err := transform.String(asciiFold, s); err == nil {
		s = folded
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r != '.' && unicode.IsPunct(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// TrackKey builds the "<normalized artist> - <normalized title>" identity key
// used for playlist membership checks. Interior whitespace is collapsed so
// formatting noise does not defeat deduplication; case is preserved, matching
// the behavior of [Normalize].
func TrackKey(artist, title string) string {
	a := strings.Join(strings.Fields(Normalize(artist)), " ")
	t := strings.Join(strings.Fields(Normalize(title)), " ")
	return a + " - " + t
}
