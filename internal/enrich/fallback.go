package enrich

import (
	"context"
	"strings"

	"github.com/llehouerou/trackmeta/internal/artistsplit"
	"github.com/llehouerou/trackmeta/internal/meta"
	"github.com/llehouerou/trackmeta/internal/musicbrainz"
)

// videoSourceMarkers identify comment fields written by downloaders of
// streaming-video platforms, whose titles follow an "artist - title"
// convention.
var videoSourceMarkers = []string{"youtube", "youtu.be"}

// lastDitch is the fallback resolution chain: full-string search,
// per-split-name retry, trailing-parenthetical strip, and the
// video-title heuristic. The first hit wins; every result passes the
// album policy before being returned.
func (o *Orchestrator) lastDitch(ctx context.Context, current meta.TrackMetadata) *musicbrainz.Resolved {
	q := o.queryFrom(current)

	if resolved := o.searchChain(ctx, q); resolved != nil {
		return resolved
	}

	// Remix-style trailing parenthetical: strip it and retry the whole
	// chain once.
	if stripped := stripTrailingParenthetical(q.Title); stripped != q.Title {
		sq := q
		sq.Title = stripped
		if resolved := o.searchChain(ctx, sq); resolved != nil {
			return resolved
		}
	}

	// Streaming-video uploads title themselves "artist - title"; only
	// trust that when the comment says where the file came from.
	if o.opts.VideoTitleSplit && looksLikeVideoTitle(q.Title) && fromVideoSource(current.String(meta.FieldComments)) {
		artist, title, _ := strings.Cut(q.Title, " - ")
		vq := musicbrainz.Query{Artist: strings.TrimSpace(artist), Title: strings.TrimSpace(title)}
		if vq.Artist != "" && vq.Title != "" {
			if resolved := o.searchChain(ctx, vq); resolved != nil {
				return resolved
			}
		}
	}

	return nil
}

// searchChain searches the full artist string, then each split name,
// stopping at the first hit.
func (o *Orchestrator) searchChain(ctx context.Context, q musicbrainz.Query) *musicbrainz.Resolved {
	if resolved := o.search(ctx, q); resolved != nil {
		return resolved
	}

	names := artistsplit.Split(q.Artist)
	if len(names) < 2 {
		return nil
	}
	for _, name := range names {
		nq := q
		nq.Artist = name
		if resolved := o.search(ctx, nq); resolved != nil {
			return resolved
		}
	}
	return nil
}

func (o *Orchestrator) search(ctx context.Context, q musicbrainz.Query) *musicbrainz.Resolved {
	resolved, err := o.resolver.Search(ctx, q)
	if err != nil {
		o.log.Warn("fallback search failed", "artist", q.Artist, "title", q.Title, "error", err)
		return nil
	}
	if resolved == nil {
		return nil
	}
	return o.applyAlbumPolicy(q, resolved)
}

// applyAlbumPolicy guards against attaching a wrong album to a correct
// artist. On a title mismatch: with no album expectation the result is
// kept whole; with strict album matching on and an album expected, the
// whole result is discarded; otherwise it is demoted to artist-only
// data.
func (o *Orchestrator) applyAlbumPolicy(q musicbrainz.Query, resolved *musicbrainz.Resolved) *musicbrainz.Resolved {
	if q.Title == "" || musicbrainz.SameTitle(resolved.Title, q.Title) {
		return resolved
	}
	if q.Album == "" {
		return resolved
	}
	if o.opts.StrictAlbum {
		o.log.Debug("discarding fallback result on title mismatch",
			"got", resolved.Title, "want", q.Title)
		return nil
	}
	demoted := *resolved
	demoted.Title = ""
	demoted.Album = ""
	demoted.Date = ""
	demoted.Label = ""
	demoted.RecordingID = ""
	demoted.CoverArt = nil
	return &demoted
}

// stripTrailingParenthetical removes a trailing "(...)" group, e.g.
// "Song (Extended Remix)" -> "Song".
func stripTrailingParenthetical(title string) string {
	s := strings.TrimSpace(title)
	if !strings.HasSuffix(s, ")") {
		return title
	}
	open := strings.LastIndex(s, "(")
	if open <= 0 {
		return title
	}
	return strings.TrimSpace(s[:open])
}

func looksLikeVideoTitle(title string) bool {
	return strings.Contains(title, " - ")
}

func fromVideoSource(comment string) bool {
	c := strings.ToLower(comment)
	for _, marker := range videoSourceMarkers {
		if strings.Contains(c, marker) {
			return true
		}
	}
	return false
}
