package musicbrainz

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// variousArtists is the placeholder credit used by compilation releases.
// It is never a genuine performer match target.
const variousArtists = "Various Artists"

// foldTransformer strips combining marks so "Beyoncé" and "Beyonce"
// compare equal.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeName lowercases, removes diacritics and strips all spaces,
// producing the comparison form used by the matching heuristics.
func normalizeName(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	return strings.Join(strings.Fields(folded), "")
}

// nameWithin reports whether the normalized name occurs inside the
// normalized query artist string.
func nameWithin(name, queryArtist string) bool {
	n := normalizeName(name)
	if n == "" {
		return false
	}
	return strings.Contains(normalizeName(queryArtist), n)
}

// SameTitle compares two titles or names in normalized form.
func SameTitle(a, b string) bool {
	return normalizeName(a) == normalizeName(b)
}
