package meta

import (
	"strings"
	"testing"
)

func TestStripBlanks(t *testing.T) {
	m := TrackMetadata{
		FieldArtist:         "Orbital",
		FieldAlbum:          "  ",
		FieldArtistWebsites: []string{"", "https://orbital.com"},
		FieldCoverArt:       []byte{},
	}

	StripBlanks(m)

	if m.Has(FieldAlbum) {
		t.Error("blank album should have been removed")
	}
	if m.Has(FieldCoverArt) {
		t.Error("empty cover art should have been removed")
	}
	if got := m.StringList(FieldArtistWebsites); len(got) != 1 || got[0] != "https://orbital.com" {
		t.Errorf("websites = %v, want single non-blank entry", got)
	}
}

func TestDedupList_PreservesFirstSeenOrder(t *testing.T) {
	m := TrackMetadata{FieldArtistIDs: []string{"b", "a", "b", "c", "a"}}

	DedupList(m, FieldArtistIDs, false)

	got := m.StringList(FieldArtistIDs)
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
			break
		}
	}
}

func TestDedupList_SortsWhenRequested(t *testing.T) {
	m := TrackMetadata{FieldISRC: []string{"USWB10101", "GBARL01", "USWB10101"}}

	DedupList(m, FieldISRC, true)

	got := m.StringList(FieldISRC)
	if len(got) != 2 || got[0] != "GBARL01" || got[1] != "USWB10101" {
		t.Errorf("isrc = %v, want sorted dedup", got)
	}
}

func TestUpgradeHTTPS(t *testing.T) {
	urls := []string{
		"http://bandcamp.com/artist",
		"https://bandcamp.com/artist",
		"http://only-http.example",
	}

	got := UpgradeHTTPS(urls)

	if len(got) != 2 {
		t.Fatalf("got %v, want 2 entries", got)
	}
	if got[0] != "https://bandcamp.com/artist" || got[1] != "http://only-http.example" {
		t.Errorf("got %v", got)
	}
}

func TestFinalize_DurationCoercion(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  any
	}{
		{"float string", "245.7", 245},
		{"int string", "245", 245},
		{"float", 245.7, 245},
		{"garbage dropped", "abc", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := TrackMetadata{FieldDuration: tt.value}
			Finalize(m)
			if tt.want == nil {
				if m.Has(FieldDuration) {
					t.Errorf("duration = %v, want dropped", m[FieldDuration])
				}
				return
			}
			if m[FieldDuration] != tt.want {
				t.Errorf("duration = %v, want %v", m[FieldDuration], tt.want)
			}
		})
	}
}

func TestFinalize_PublisherAliasesLabel(t *testing.T) {
	m := TrackMetadata{FieldPublisher: "Warp Records"}
	Finalize(m)
	if got := m.String(FieldLabel); got != "Warp Records" {
		t.Errorf("label = %q, want publisher alias", got)
	}

	m = TrackMetadata{FieldPublisher: "Warp Records", FieldLabel: "Rephlex"}
	Finalize(m)
	if got := m.String(FieldLabel); got != "Rephlex" {
		t.Errorf("label = %q, existing label must win", got)
	}
}

func TestShortBio(t *testing.T) {
	long := "First sentence about the artist. Second sentence with detail. " +
		"Note: this fragment is dropped. Third sentence closes things out."
	got := ShortBio(long)
	if strings.Contains(got, "Note:") {
		t.Errorf("short bio retained a Note fragment: %q", got)
	}
	if !strings.HasPrefix(got, "First sentence") {
		t.Errorf("short bio = %q", got)
	}

	// A long bio is cut at the chunk boundary and the dangling fragment
	// without terminal punctuation is dropped.
	long = strings.Repeat("A complete sentence sits here. ", 20) + "then it trails off without endin"
	got = ShortBio(long)
	if len(got) > shortBioLimit {
		t.Errorf("short bio length = %d, want <= %d", len(got), shortBioLimit)
	}
	if !strings.HasSuffix(got, ".") {
		t.Errorf("short bio must end at sentence boundary, got %q", got)
	}
}

func TestShortBio_Empty(t *testing.T) {
	if got := ShortBio("   "); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
