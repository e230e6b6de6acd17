package meta

import (
	"slices"
	"strconv"
	"strings"
)

// shortBioLimit is the target length for the derived short biography.
const shortBioLimit = 450

// Finalize applies the end-of-pipeline touch-ups: publisher aliasing,
// list dedup, https upgrade, duration coercion, blank removal and
// short-bio derivation. It mutates m in place and returns it.
func Finalize(m TrackMetadata) TrackMetadata {
	if m == nil {
		return TrackMetadata{}
	}

	// Publishers double as labels for most electronic releases.
	if !m.Has(FieldLabel) && m.Has(FieldPublisher) {
		m[FieldLabel] = m.String(FieldPublisher)
	}

	DedupList(m, FieldArtistWebsites, false)
	DedupList(m, FieldArtistIDs, false)
	DedupList(m, FieldISRC, true)

	if sites := m.StringList(FieldArtistWebsites); len(sites) > 0 {
		m[FieldArtistWebsites] = UpgradeHTTPS(sites)
	}

	CoerceDuration(m)

	if !m.Has(FieldShortBio) && m.Has(FieldLongBio) {
		if bio := ShortBio(m.String(FieldLongBio)); bio != "" {
			m[FieldShortBio] = bio
		}
	}

	StripBlanks(m)
	return m
}

// StripBlanks removes keys whose values are empty; absence means unknown,
// never an empty sentinel.
func StripBlanks(m TrackMetadata) {
	for k, v := range m {
		switch val := v.(type) {
		case nil:
			delete(m, k)
		case string:
			if strings.TrimSpace(val) == "" {
				delete(m, k)
			}
		case []string:
			kept := val[:0]
			for _, s := range val {
				if strings.TrimSpace(s) != "" {
					kept = append(kept, s)
				}
			}
			if len(kept) == 0 {
				delete(m, k)
			} else {
				m[k] = kept
			}
		case []byte:
			if len(val) == 0 {
				delete(m, k)
			}
		}
	}
}

// DedupList removes duplicate entries from a list field, preserving
// first-seen order, optionally sorting the result.
func DedupList(m TrackMetadata, key string, sorted bool) {
	list := m.StringList(key)
	if len(list) == 0 {
		return
	}
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, v := range list {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if sorted {
		slices.Sort(out)
	}
	m[key] = out
}

// UpgradeHTTPS drops an http:// URL when its https:// counterpart is
// already in the list.
func UpgradeHTTPS(urls []string) []string {
	secure := make(map[string]struct{})
	for _, u := range urls {
		if rest, ok := strings.CutPrefix(u, "https://"); ok {
			secure[rest] = struct{}{}
		}
	}
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if rest, ok := strings.CutPrefix(u, "http://"); ok {
			if _, dup := secure[rest]; dup {
				continue
			}
		}
		out = append(out, u)
	}
	return out
}

// CoerceDuration forces the duration field to integer seconds. A value
// that cannot be parsed is dropped rather than failing the pass. It runs
// as part of local enrichment so recognizers see a typed duration.
func CoerceDuration(m TrackMetadata) {
	v, ok := m[FieldDuration]
	if !ok {
		return
	}
	switch val := v.(type) {
	case int:
		return
	case float64:
		m[FieldDuration] = int(val)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			delete(m, FieldDuration)
			return
		}
		m[FieldDuration] = int(f)
	default:
		delete(m, FieldDuration)
	}
}

// ShortBio derives a display-sized biography from a long one: take the
// first ~450-character chunk, keep whole sentences, skip fragments that
// start with "Note:", and drop a trailing fragment that never reached
// terminal punctuation.
func ShortBio(long string) string {
	long = strings.Join(strings.Fields(long), " ")
	if long == "" {
		return ""
	}

	chunk := long
	if len(chunk) > shortBioLimit {
		chunk = chunk[:shortBioLimit]
		// back up to the last word boundary
		if idx := strings.LastIndexByte(chunk, ' '); idx > 0 {
			chunk = chunk[:idx]
		}
	}

	var out []string
	for _, sentence := range splitSentences(chunk) {
		if strings.HasPrefix(sentence, "Note:") {
			continue
		}
		out = append(out, sentence)
	}
	if len(out) == 0 {
		return ""
	}
	last := out[len(out)-1]
	if !strings.HasSuffix(last, ".") && !strings.HasSuffix(last, "!") && !strings.HasSuffix(last, "?") {
		out = out[:len(out)-1]
	}
	return strings.Join(out, " ")
}

// splitSentences breaks text on sentence-final punctuation followed by a
// space. The trailing piece is kept even without terminal punctuation so
// the caller can decide its fate.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		c := text[i]
		if (c == '.' || c == '!' || c == '?') && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(text[start:i+1]))
			start = i + 2
		}
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}
