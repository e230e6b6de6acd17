// Package artistsplit breaks a compound collaboration credit such as
// "A feat. B" into individual artist names. It is deliberately
// conservative: callers should only split after a lookup of the full
// string has already failed, since names like "Emerson, Lake & Palmer"
// are single entities.
package artistsplit

import "strings"

// pairDelimiters are tested in priority order and split into exactly two
// pieces: everything before and everything after. The first class that
// matches pre-empts all later ones, so "A feat. B, C" yields
// ["A", "B, C"] rather than three names.
var pairDelimiters = []string{
	" feat. ",
	" featuring ",
	" ft. ",
	" feat ",
	" with ",
	" w/ ",
	" vs. ",
	" versus ",
	" vs ",
	" x ",
	" × ", // multiplication sign, seen in j-pop collabs
}

// listDelimiters form a single lowest-priority class: an ampersand/comma
// list splits into all its pieces ("Emerson, Lake & Palmer" -> three).
var listDelimiters = []string{" & ", ","}

// Split returns the individual artist names implied by the strongest
// matching delimiter class, or the original string as a single-element
// list when no delimiter is present. Matching is case-insensitive; the
// returned pieces keep their original casing.
func Split(artist string) []string {
	trimmed := strings.TrimSpace(artist)
	if trimmed == "" {
		return nil
	}

	lower := strings.ToLower(trimmed)
	for _, delim := range pairDelimiters {
		idx := strings.Index(lower, delim)
		if idx < 0 {
			continue
		}
		before := strings.TrimSpace(trimmed[:idx])
		after := strings.TrimSpace(trimmed[idx+len(delim):])
		return nonEmpty(before, after)
	}

	if strings.ContainsAny(trimmed, ",&") {
		parts := []string{trimmed}
		for _, delim := range listDelimiters {
			var next []string
			for _, p := range parts {
				next = append(next, splitFold(p, delim)...)
			}
			parts = next
		}
		if out := nonEmpty(parts...); len(out) > 0 {
			return out
		}
	}

	return []string{trimmed}
}

// splitFold splits s on delim, matching case-insensitively.
func splitFold(s, delim string) []string {
	lower := strings.ToLower(s)
	var parts []string
	start := 0
	for {
		idx := strings.Index(lower[start:], delim)
		if idx < 0 {
			parts = append(parts, s[start:])
			return parts
		}
		parts = append(parts, s[start:start+idx])
		start += idx + len(delim)
	}
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
