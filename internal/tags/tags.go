// Package tags reads embedded metadata from music files into the
// pipeline's seed map.
package tags

import (
	"strconv"
	"strings"

	"github.com/llehouerou/trackmeta/internal/meta"
)

// File extensions supported by the tags package.
const (
	ExtMP3  = ".mp3"
	ExtFLAC = ".flac"
	ExtOPUS = ".opus"
	ExtOGG  = ".ogg"
	ExtM4A  = ".m4a"
	ExtMP4  = ".mp4"
)

// Tag contains the file tag fields the enrichment pipeline consumes.
type Tag struct {
	Path        string
	Title       string
	Artist      string
	AlbumArtist string
	Album       string
	Genre       string
	Date        string // Release date (YYYY-MM-DD or YYYY)
	Label       string
	ISRC        string
	Comment     string
	Duration    int // seconds
	Fingerprint string

	// MusicBrainz IDs
	MBArtistID    string
	MBRecordingID string
}

// Metadata converts the tag into mergeable track metadata. Empty fields
// are omitted.
func (t *Tag) Metadata() meta.TrackMetadata {
	m := meta.TrackMetadata{}
	set := func(key, val string) {
		if val != "" {
			m[key] = val
		}
	}
	set(meta.FieldTitle, t.Title)
	set(meta.FieldArtist, t.Artist)
	set(meta.FieldAlbum, t.Album)
	set(meta.FieldGenre, t.Genre)
	set(meta.FieldDate, t.Date)
	set(meta.FieldLabel, t.Label)
	set(meta.FieldComments, t.Comment)
	set(meta.FieldFingerprint, t.Fingerprint)
	if t.Duration > 0 {
		m[meta.FieldDuration] = t.Duration
	}
	if t.ISRC != "" {
		m[meta.FieldISRC] = []string{t.ISRC}
	}
	if t.MBArtistID != "" {
		m[meta.FieldArtistIDs] = []string{t.MBArtistID}
	}
	set(meta.FieldRecordingID, t.MBRecordingID)
	return m
}

// IsMusicFile returns true if the path has a supported music file extension.
func IsMusicFile(path string) bool {
	ext := strings.ToLower(path)
	if idx := strings.LastIndex(ext, "."); idx >= 0 {
		ext = ext[idx:]
	} else {
		return false
	}
	return ext == ExtMP3 || ext == ExtFLAC || ext == ExtOPUS || ext == ExtOGG || ext == ExtM4A || ext == ExtMP4
}

// taglibTags wraps a taglib result map with helper methods.
type taglibTags map[string][]string

// get returns the first value for any of the given keys, or empty string if not found.
func (t taglibTags) get(keys ...string) string {
	for _, key := range keys {
		if values, ok := t[key]; ok && len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

// yearToDate converts a year integer to a date string.
// Returns empty string for year 0.
func yearToDate(year int) string {
	if year == 0 {
		return ""
	}
	return strconv.Itoa(year)
}
