// Package meta defines the open track metadata mapping and the merge
// policy that controls when enrichment output may overwrite seed data.
package meta

import (
	"maps"
	"slices"
)

// Well-known field names. The mapping is open: providers may add fields
// beyond these, and absence of a key always means "unknown".
const (
	FieldArtist         = "artist"
	FieldTitle          = "title"
	FieldAlbum          = "album"
	FieldDate           = "date"
	FieldLabel          = "label"
	FieldPublisher      = "publisher"
	FieldGenre          = "genre"
	FieldGenres         = "genres"
	FieldISRC           = "isrc"
	FieldDuration       = "duration"
	FieldFingerprint    = "acoustidfingerprint"
	FieldComments       = "comments"
	FieldFilename       = "filename"
	FieldHostname       = "hostname"
	FieldHostFQDN       = "hostfqdn"
	FieldHostIP         = "hostip"
	FieldArtistWebsites = "artistwebsites"
	FieldArtistIDs      = "musicbrainzartistid"
	FieldRecordingID    = "musicbrainzrecordingid"
	FieldCoverArt       = "coverimageraw"
	FieldLongBio        = "artistlongbio"
	FieldShortBio       = "artistshortbio"
	FieldFanartURLs     = "artistfanarturls"
	FieldBannerRaw      = "artistbannerraw"
	FieldThumbnailRaw   = "artistthumbnailraw"
)

// TrackMetadata is an open mapping from field name to value. Scalar fields
// hold string, list fields hold []string, binary fields hold []byte.
type TrackMetadata map[string]any

// Clone returns a copy of the metadata. List and binary values are copied
// so mutations of the clone never leak back to the original.
func (m TrackMetadata) Clone() TrackMetadata {
	if m == nil {
		return TrackMetadata{}
	}
	out := make(TrackMetadata, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case []string:
			out[k] = slices.Clone(val)
		case []byte:
			out[k] = slices.Clone(val)
		default:
			out[k] = v
		}
	}
	return out
}

// String returns the string value for key, or "" if absent or not a string.
func (m TrackMetadata) String(key string) string {
	s, _ := m[key].(string)
	return s
}

// StringList returns the list value for key. A scalar string is promoted to
// a one-element list so callers can treat list fields uniformly.
func (m TrackMetadata) StringList(key string) []string {
	switch v := m[key].(type) {
	case []string:
		return v
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}

// Bytes returns the binary value for key, or nil.
func (m TrackMetadata) Bytes(key string) []byte {
	b, _ := m[key].([]byte)
	return b
}

// Has reports whether key holds a non-empty value.
func (m TrackMetadata) Has(key string) bool {
	v, ok := m[key]
	if !ok {
		return false
	}
	return !emptyValue(v)
}

// Keys returns the field names present in the mapping, sorted.
func (m TrackMetadata) Keys() []string {
	return slices.Sorted(maps.Keys(m))
}

func emptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []string:
		return len(val) == 0
	case []byte:
		return len(val) == 0
	}
	return false
}
