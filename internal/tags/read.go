package tags

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"go.senan.xyz/taglib"

	"github.com/llehouerou/trackmeta/internal/meta"
)

// Read reads tag metadata from a music file.
func Read(path string) (*Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		// dhowden/tag fails on some UTF-16 ID3 tags and some
		// ffmpeg-created M4A/Ogg files; TagLib handles those.
		return readWithTaglib(path)
	}

	title := m.Title()
	if title == "" {
		title = filepath.Base(path)
	}

	t := &Tag{
		Path:    path,
		Title:   title,
		Artist:  m.Artist(),
		Album:   m.Album(),
		Genre:   m.Genre(),
		Date:    yearToDate(m.Year()),
		Comment: m.Comment(),
	}
	if aa := m.AlbumArtist(); aa != "" {
		t.AlbumArtist = aa
	} else {
		t.AlbumArtist = t.Artist
	}

	// Label, ISRC, fingerprint and provider ids are not exposed by
	// dhowden/tag.
	readExtendedTags(path, t)
	t.Duration = readDuration(path)

	return t, nil
}

// readWithTaglib reads all fields through TagLib.
func readWithTaglib(path string) (*Tag, error) {
	rawTags, err := taglib.ReadTags(path)
	if err != nil {
		return nil, err
	}
	tags := taglibTags(rawTags)

	title := tags.get(taglib.Title)
	if title == "" {
		title = filepath.Base(path)
	}

	artist := tags.get(taglib.Artist)
	albumArtist := tags.get(taglib.AlbumArtist)
	if albumArtist == "" {
		albumArtist = artist
	}

	t := &Tag{
		Path:        path,
		Title:       title,
		Artist:      artist,
		AlbumArtist: albumArtist,
		Album:       tags.get(taglib.Album),
		Genre:       tags.get(taglib.Genre),
		Date:        tags.get(taglib.Date),
		Comment:     tags.get("COMMENT"),
	}
	fillExtendedTags(tags, t)
	t.Duration = readDuration(path)

	return t, nil
}

// readDuration reads the audio length through TagLib's properties,
// rounded down to whole seconds. Best effort: unreadable files get no
// duration.
func readDuration(path string) int {
	props, err := taglib.ReadProperties(path)
	if err != nil {
		return 0
	}
	return int(props.Length.Seconds())
}

// readExtendedTags fills the fields dhowden/tag cannot provide.
func readExtendedTags(path string, t *Tag) {
	rawTags, err := taglib.ReadTags(path)
	if err != nil {
		return
	}
	fillExtendedTags(taglibTags(rawTags), t)
}

func fillExtendedTags(tags taglibTags, t *Tag) {
	t.Label = tags.get(taglib.Label, "LABEL")
	t.ISRC = tags.get(taglib.ISRC, "ISRC")
	t.Fingerprint = tags.get(taglib.AcoustIDFingerprint)

	// MusicBrainz ids appear in the TagLib underscore format, uppercase
	// with spaces, or the Picard/Mutagen mixed-case form.
	t.MBArtistID = tags.get(
		taglib.MusicBrainzArtistID,
		"MUSICBRAINZ ARTIST ID",
		"MusicBrainz Artist Id",
	)
	t.MBRecordingID = tags.get(
		taglib.MusicBrainzTrackID,
		"MUSICBRAINZ TRACK ID",
		"MusicBrainz Track Id",
	)
	if t.Date == "" {
		t.Date = tags.get(taglib.Date)
	}
}

// ReadSeed reads a file's tags directly into seed metadata, including
// the filename field.
func ReadSeed(path string) (meta.TrackMetadata, error) {
	t, err := Read(path)
	if err != nil {
		return nil, err
	}
	m := t.Metadata()
	m[meta.FieldFilename] = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return m, nil
}
