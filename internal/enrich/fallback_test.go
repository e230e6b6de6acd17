package enrich

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/llehouerou/trackmeta/internal/meta"
	"github.com/llehouerou/trackmeta/internal/musicbrainz"
)

func TestLastDitch_FullStringFirst(t *testing.T) {
	var artists []string
	res := &mockResolver{
		searchFunc: func(_ context.Context, q musicbrainz.Query) (*musicbrainz.Resolved, error) {
			artists = append(artists, q.Artist)
			return &musicbrainz.Resolved{Title: q.Title, Artist: q.Artist, Album: "Album"}, nil
		},
	}
	o := New(res, nil, defaultOptions())

	seed := meta.TrackMetadata{
		meta.FieldArtist: "A feat. B",
		meta.FieldTitle:  "Song",
	}
	got := o.Enrich(context.Background(), seed, nil, false)

	assert.Equal(t, []string{"A feat. B"}, artists,
		"a full-string hit must pre-empt splitting")
	assert.Equal(t, "Album", got.String(meta.FieldAlbum))
}

func TestLastDitch_SplitterRetryStopsAtFirstHit(t *testing.T) {
	var artists []string
	res := &mockResolver{
		searchFunc: func(_ context.Context, q musicbrainz.Query) (*musicbrainz.Resolved, error) {
			artists = append(artists, q.Artist)
			if q.Artist == "A" {
				return &musicbrainz.Resolved{Title: q.Title, Artist: "A", Album: "A's Album"}, nil
			}
			return nil, nil
		},
	}
	o := New(res, nil, defaultOptions())

	seed := meta.TrackMetadata{
		meta.FieldArtist: "A feat. B",
		meta.FieldTitle:  "Song",
	}
	got := o.Enrich(context.Background(), seed, nil, false)

	assert.Equal(t, []string{"A feat. B", "A"}, artists,
		"stop at the first split name that resolves")
	assert.Equal(t, "A's Album", got.String(meta.FieldAlbum))
}

func TestLastDitch_SkippedWhenIdentifierPresent(t *testing.T) {
	res := &mockResolver{
		searchFunc: func(_ context.Context, _ musicbrainz.Query) (*musicbrainz.Resolved, error) {
			t.Error("fallback must not run when an identifier is present")
			return nil, nil
		},
	}
	opts := defaultOptions()
	opts.MusicBrainz = false // leave the id unresolved
	opts.LastDitch = true
	o := New(res, nil, opts)

	seed := meta.TrackMetadata{
		meta.FieldArtist:      "Artist",
		meta.FieldTitle:       "Title",
		meta.FieldRecordingID: "rec",
	}
	o.Enrich(context.Background(), seed, nil, false)
}

func TestLastDitch_TrailingParentheticalRetry(t *testing.T) {
	var titles []string
	res := &mockResolver{
		searchFunc: func(_ context.Context, q musicbrainz.Query) (*musicbrainz.Resolved, error) {
			titles = append(titles, q.Title)
			if q.Title == "Song" {
				return &musicbrainz.Resolved{Title: "Song", Artist: q.Artist, Album: "Album"}, nil
			}
			return nil, nil
		},
	}
	o := New(res, nil, defaultOptions())

	seed := meta.TrackMetadata{
		meta.FieldArtist: "Artist",
		meta.FieldTitle:  "Song (Extended Remix)",
	}
	got := o.Enrich(context.Background(), seed, nil, false)

	assert.Contains(t, titles, "Song (Extended Remix)")
	assert.Contains(t, titles, "Song")
	assert.Equal(t, "Album", got.String(meta.FieldAlbum))
}

func TestLastDitch_VideoTitleHeuristic(t *testing.T) {
	var queries []musicbrainz.Query
	res := &mockResolver{
		searchFunc: func(_ context.Context, q musicbrainz.Query) (*musicbrainz.Resolved, error) {
			queries = append(queries, q)
			if q.Artist == "Real Artist" && q.Title == "Real Title" {
				return &musicbrainz.Resolved{Title: "Real Title", Artist: "Real Artist", Album: "Album"}, nil
			}
			return nil, nil
		},
	}
	o := New(res, nil, Options{
		MusicBrainz:     true,
		LastDitch:       true,
		VideoTitleSplit: true,
	})

	seed := meta.TrackMetadata{
		meta.FieldArtist:   "channel name",
		meta.FieldTitle:    "Real Artist - Real Title",
		meta.FieldComments: "https://www.youtube.com/watch?v=abc",
	}
	got := o.Enrich(context.Background(), seed, nil, false)

	assert.Equal(t, "Album", got.String(meta.FieldAlbum))

	// Without a video-source comment the heuristic stays off.
	queries = nil
	seed2 := meta.TrackMetadata{
		meta.FieldArtist: "channel name",
		meta.FieldTitle:  "Real Artist - Real Title",
	}
	got2 := o.Enrich(context.Background(), seed2, nil, false)
	assert.False(t, got2.Has(meta.FieldAlbum))
	for _, q := range queries {
		assert.NotEqual(t, "Real Artist", q.Artist)
	}
}

func TestApplyAlbumPolicy_StrictAlbumRejection(t *testing.T) {
	res := &mockResolver{
		searchFunc: func(_ context.Context, q musicbrainz.Query) (*musicbrainz.Resolved, error) {
			return &musicbrainz.Resolved{
				Title:       "Y2",
				Artist:      "X",
				Album:       "Wrong Album",
				RecordingID: "rec",
			}, nil
		},
	}
	opts := defaultOptions()
	opts.StrictAlbum = true
	o := New(res, nil, opts)

	seed := meta.TrackMetadata{
		meta.FieldArtist: "X",
		meta.FieldTitle:  "Y",
		meta.FieldAlbum:  "Z",
	}
	got := o.Enrich(context.Background(), seed, nil, false)

	assert.Equal(t, "Z", got.String(meta.FieldAlbum), "seed album untouched")
	assert.False(t, got.Has(meta.FieldRecordingID),
		"strict album matching discards the whole mismatched result")
}

func TestApplyAlbumPolicy_DemotionToArtistOnly(t *testing.T) {
	o := New(&mockResolver{}, nil, defaultOptions())

	resolved := &musicbrainz.Resolved{
		Title:       "Y2",
		Artist:      "X",
		Album:       "Album",
		Date:        "2001",
		Label:       "Label",
		RecordingID: "rec",
		ArtistIDs:   []string{"a1"},
		CoverArt:    []byte{1},
	}
	got := o.applyAlbumPolicy(musicbrainz.Query{Artist: "X", Title: "Y", Album: "Z"}, resolved)

	assert.NotNil(t, got)
	assert.Equal(t, "X", got.Artist)
	assert.Equal(t, []string{"a1"}, got.ArtistIDs)
	assert.Empty(t, got.Album)
	assert.Empty(t, got.Date)
	assert.Empty(t, got.Label)
	assert.Empty(t, got.RecordingID)
	assert.Nil(t, got.CoverArt)
}

func TestApplyAlbumPolicy_NoAlbumExpectationKeepsResult(t *testing.T) {
	o := New(&mockResolver{}, nil, defaultOptions())

	resolved := &musicbrainz.Resolved{Title: "Y2", Artist: "X", Album: "Album"}
	got := o.applyAlbumPolicy(musicbrainz.Query{Artist: "X", Title: "Y"}, resolved)

	assert.Equal(t, "Album", got.Album)
}

func TestStripTrailingParenthetical(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Song (Extended Remix)", "Song"},
		{"Song (Live) (Remaster)", "Song (Live)"},
		{"(Intro)", "(Intro)"},
		{"Song", "Song"},
		{"Song (unclosed", "Song (unclosed"},
	}
	for _, tt := range tests {
		if got := stripTrailingParenthetical(tt.in); got != tt.want {
			t.Errorf("stripTrailingParenthetical(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
