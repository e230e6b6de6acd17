package meta

// ReplaceFlags selects the fields a provider may overwrite even when the
// target already holds a value. All other fields are fill-only.
type ReplaceFlags struct {
	Artist         bool
	Title          bool
	ArtistWebsites bool
}

// replaceable is the set of fields that ReplaceFlags can unlock.
func (f ReplaceFlags) allows(key string) bool {
	switch key {
	case FieldArtist:
		return f.Artist
	case FieldTitle:
		return f.Title
	case FieldArtistWebsites:
		return f.ArtistWebsites
	}
	return false
}

// MergeInto folds addition into target and returns target. For every key in
// addition: an unlocked replaceable field with a non-empty new value
// overwrites; otherwise the new value only fills a missing or empty slot.
// The same policy applies no matter which pipeline stage produced addition.
func MergeInto(target, addition TrackMetadata, flags ReplaceFlags) TrackMetadata {
	if target == nil {
		target = TrackMetadata{}
	}
	for key, value := range addition {
		if emptyValue(value) {
			continue
		}
		if flags.allows(key) || !target.Has(key) {
			target[key] = value
		}
	}
	return target
}
