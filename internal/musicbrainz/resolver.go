package musicbrainz

import (
	"context"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/llehouerou/trackmeta/internal/meta"
)

// API is the client surface the resolver needs. Keeping it an interface
// allows mocking in tests.
type API interface {
	SearchRecordings(ctx context.Context, query string, limit int) (*RecordingSearchResult, error)
	LookupRecording(ctx context.Context, recordingID string) (*CandidateRecording, error)
	LookupISRC(ctx context.Context, isrc string) ([]CandidateRecording, error)
	BrowseReleases(ctx context.Context, recordingID, status string) ([]CandidateRelease, error)
	LookupArtist(ctx context.Context, artistID string) (*ArtistDetail, error)
	FrontCover(ctx context.Context, releaseID string) ([]byte, error)
	ReleaseGroupFrontCover(ctx context.Context, releaseGroupID string) ([]byte, error)
}

// Query is one immutable lookup attempt: the expected artist/title and
// optional album. Known identifiers are passed to the dedicated
// Resolve* entry points instead.
type Query struct {
	Artist string
	Title  string
	Album  string
}

// WebsiteFlags enables artist link destinations individually. Wikidata
// links are always included when present.
type WebsiteFlags struct {
	Homepage bool
	Bandcamp bool
	LastFM   bool
	Discogs  bool
}

// Resolved is the complete trusted record a successful resolution yields.
// It is only ever merged into track metadata through the orchestrator's
// merge policy.
type Resolved struct {
	Title       string
	Artist      string
	Album       string
	Date        string
	Label       string
	Genre       string
	Genres      []string
	RecordingID string
	ArtistIDs   []string
	ISRCs       []string
	Websites    []string
	CoverArt    []byte
}

// Metadata converts the resolution into mergeable track metadata fields.
func (r *Resolved) Metadata() meta.TrackMetadata {
	m := meta.TrackMetadata{}
	set := func(key, val string) {
		if val != "" {
			m[key] = val
		}
	}
	set(meta.FieldTitle, r.Title)
	set(meta.FieldArtist, r.Artist)
	set(meta.FieldAlbum, r.Album)
	set(meta.FieldDate, r.Date)
	set(meta.FieldLabel, r.Label)
	set(meta.FieldGenre, r.Genre)
	set(meta.FieldRecordingID, r.RecordingID)
	if len(r.Genres) > 0 {
		m[meta.FieldGenres] = r.Genres
	}
	if len(r.ArtistIDs) > 0 {
		m[meta.FieldArtistIDs] = r.ArtistIDs
	}
	if len(r.ISRCs) > 0 {
		m[meta.FieldISRC] = r.ISRCs
	}
	if len(r.Websites) > 0 {
		m[meta.FieldArtistWebsites] = r.Websites
	}
	if len(r.CoverArt) > 0 {
		m[meta.FieldCoverArt] = r.CoverArt
	}
	return m
}

// Resolver picks the single best recording/release among ambiguous
// candidates. It is purely functional over its inputs; the client holds
// the only mutable state.
type Resolver struct {
	api      API
	log      hclog.Logger
	websites WebsiteFlags
}

// NewResolver creates a resolver on top of an API client.
func NewResolver(api API, log hclog.Logger, websites WebsiteFlags) *Resolver {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Resolver{
		api:      api,
		log:      log.Named("resolver"),
		websites: websites,
	}
}

// PickRecording walks the candidates in first-release-date order and
// returns the first acceptable match, resolved to full detail. There is
// no scoring: the date ordering biases toward original releases, and the
// compilation/live exclusion (lifted by allowOthers) reinforces that.
// Returns (nil, nil) when nothing matched.
func (r *Resolver) PickRecording(ctx context.Context, q Query, candidates []CandidateRecording, allowOthers bool) (*Resolved, error) {
	sorted := make([]CandidateRecording, len(candidates))
	copy(sorted, candidates)
	// Unknown dates sort last so dated originals are preferred.
	sort.SliceStable(sorted, func(i, j int) bool {
		di, dj := sorted[i].FirstReleaseDate, sorted[j].FirstReleaseDate
		if di == "" {
			return false
		}
		if dj == "" {
			return true
		}
		return di < dj
	})

	var fallbackRecordingID string
	var fallbackArtistIDs []string

	for i := range sorted {
		rec := &sorted[i]
		if len(rec.Releases) == 0 {
			continue
		}

		artistIDs, ok := r.verifyCredit(rec, q.Artist)
		if !ok {
			continue
		}

		for j := range rec.Releases {
			rel := &rec.Releases[j]
			if q.Album != "" && !SameTitle(rel.Title, q.Album) {
				continue
			}
			if rel.ArtistCreditPhrase == variousArtists {
				// Remember the first various-artists hit but never
				// select it directly.
				if fallbackRecordingID == "" {
					fallbackRecordingID = rec.ID
					fallbackArtistIDs = artistIDs
				}
				continue
			}
			if rel.ReleaseGroup == nil {
				continue
			}
			if !allowOthers && rel.ReleaseGroup.IsCompilationOrLive() {
				continue
			}
			return r.resolveDetail(ctx, q, rec.ID)
		}
	}

	if fallbackRecordingID != "" {
		resolved, err := r.resolveDetail(ctx, q, fallbackRecordingID)
		if err != nil || resolved == nil {
			return resolved, err
		}
		// The compilation credit is "Various Artists"; restore the ids
		// computed from the recording's own credit.
		if len(fallbackArtistIDs) > 0 {
			resolved.ArtistIDs = fallbackArtistIDs
		}
		return resolved, nil
	}

	return nil, nil
}

// verifyCredit checks every credited contributor against the query
// artist and returns the artist ids in credited order. A credit naming
// Various Artists is always rejected.
func (r *Resolver) verifyCredit(rec *CandidateRecording, queryArtist string) ([]string, bool) {
	if len(rec.ArtistCredit) == 0 {
		return nil, false
	}
	ids := make([]string, 0, len(rec.ArtistCredit))
	for _, credit := range rec.ArtistCredit {
		if strings.EqualFold(credit.Name, variousArtists) {
			return nil, false
		}
		if queryArtist != "" && !nameWithin(credit.Name, queryArtist) {
			return nil, false
		}
		if credit.ArtistID != "" {
			ids = append(ids, credit.ArtistID)
		}
	}
	return ids, true
}

// ResolveRecordingID performs the per-ID detail lookup directly, used
// when the seed already carries a recording id.
func (r *Resolver) ResolveRecordingID(ctx context.Context, q Query, recordingID string) (*Resolved, error) {
	return r.resolveDetail(ctx, q, recordingID)
}

// ResolveISRC looks up the recordings registered under an ISRC and picks
// one, first excluding compilations, then allowing them.
func (r *Resolver) ResolveISRC(ctx context.Context, q Query, isrc string) (*Resolved, error) {
	recordings, err := r.api.LookupISRC(ctx, isrc)
	if err != nil {
		return nil, err
	}
	resolved, err := r.PickRecording(ctx, q, recordings, false)
	if err != nil || resolved != nil {
		return resolved, err
	}
	return r.PickRecording(ctx, q, recordings, true)
}

// ResolveArtistIDs returns artist-level data only: canonical names in id
// order plus website links. Used when the seed carries artist ids but no
// recording identifier.
func (r *Resolver) ResolveArtistIDs(ctx context.Context, artistIDs []string) (*Resolved, error) {
	if len(artistIDs) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(artistIDs))
	for _, id := range artistIDs {
		detail, err := r.api.LookupArtist(ctx, id)
		if err != nil {
			r.log.Warn("artist lookup failed", "artistid", id, "error", err)
			continue
		}
		if detail.Name != "" {
			names = append(names, detail.Name)
		}
	}
	if len(names) == 0 {
		return nil, nil
	}
	return &Resolved{
		Artist:    strings.Join(names, ", "),
		ArtistIDs: artistIDs,
		Websites:  r.ArtistWebsites(ctx, artistIDs),
	}, nil
}

// Search runs a Lucene recording search for the query. When the provider
// reports more than a page's worth of hits, a stricter query excluding
// compilation/live and non-official releases is issued instead.
func (r *Resolver) Search(ctx context.Context, q Query) (*Resolved, error) {
	result, err := r.api.SearchRecordings(ctx, buildSearchQuery(q, false), 100)
	if err != nil {
		return nil, err
	}
	if result.Count > 100 {
		r.log.Debug("overly broad search, reissuing stricter query",
			"artist", q.Artist, "title", q.Title, "count", result.Count)
		result, err = r.api.SearchRecordings(ctx, buildSearchQuery(q, true), 100)
		if err != nil {
			return nil, err
		}
	}
	resolved, err := r.PickRecording(ctx, q, result.Recordings, false)
	if err != nil || resolved != nil {
		return resolved, err
	}
	return r.PickRecording(ctx, q, result.Recordings, true)
}

// resolveDetail is the full per-ID lookup: canonical recording data, a
// preferred official release, cover art with release-group fallback, and
// the credited artists' website links.
func (r *Resolver) resolveDetail(ctx context.Context, q Query, recordingID string) (*Resolved, error) {
	rec, err := r.api.LookupRecording(ctx, recordingID)
	if err != nil {
		return nil, err
	}

	resolved := &Resolved{
		Title:       rec.Title,
		Artist:      rec.CreditedArtist(),
		Date:        rec.FirstReleaseDate,
		Genre:       rec.GenreString(),
		Genres:      rec.GenreNames(),
		RecordingID: rec.ID,
		ArtistIDs:   rec.ArtistIDs(),
		ISRCs:       rec.ISRCs,
	}

	if release := r.pickDetailRelease(ctx, q, recordingID); release != nil {
		resolved.Album = release.Title
		resolved.Label = release.Label
		resolved.CoverArt = r.fetchCoverArt(ctx, release)
	}

	resolved.Websites = r.ArtistWebsites(ctx, resolved.ArtistIDs)
	return resolved, nil
}

// pickDetailRelease browses the recording's releases, preferring official
// status and a credit matching the query artist over Various Artists.
func (r *Resolver) pickDetailRelease(ctx context.Context, q Query, recordingID string) *CandidateRelease {
	releases, err := r.api.BrowseReleases(ctx, recordingID, "official")
	if err != nil {
		r.log.Warn("official release browse failed", "recordingid", recordingID, "error", err)
	}
	if len(releases) == 0 {
		releases, err = r.api.BrowseReleases(ctx, recordingID, "")
		if err != nil {
			r.log.Warn("release browse failed", "recordingid", recordingID, "error", err)
			return nil
		}
	}
	if len(releases) == 0 {
		return nil
	}

	if q.Artist != "" {
		for i := range releases {
			if SameTitle(releases[i].ArtistCreditPhrase, q.Artist) {
				return &releases[i]
			}
		}
	}
	for i := range releases {
		if releases[i].ArtistCreditPhrase != variousArtists {
			return &releases[i]
		}
	}
	return &releases[0]
}

// fetchCoverArt tries the release's own front cover, then the release
// group's. Failures degrade to no art.
func (r *Resolver) fetchCoverArt(ctx context.Context, release *CandidateRelease) []byte {
	art, err := r.api.FrontCover(ctx, release.ID)
	if err != nil {
		r.log.Debug("release cover art fetch failed", "releaseid", release.ID, "error", err)
	}
	if len(art) > 0 {
		return art
	}
	if release.ReleaseGroup == nil {
		return nil
	}
	art, err = r.api.ReleaseGroupFrontCover(ctx, release.ReleaseGroup.ID)
	if err != nil {
		r.log.Debug("release group cover art fetch failed",
			"releasegroupid", release.ReleaseGroup.ID, "error", err)
		return nil
	}
	return art
}

// ArtistWebsites resolves external links for the artists in order,
// applying the per-destination flags. Wikidata is always included.
// The result is deduplicated preserving first-seen order.
func (r *Resolver) ArtistWebsites(ctx context.Context, artistIDs []string) []string {
	var urls []string
	seen := make(map[string]struct{})
	add := func(u string) {
		if _, dup := seen[u]; dup {
			return
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}

	for _, id := range artistIDs {
		detail, err := r.api.LookupArtist(ctx, id)
		if err != nil {
			r.log.Warn("artist url lookup failed", "artistid", id, "error", err)
			continue
		}
		for _, rel := range detail.Relations {
			target := rel.Target
			switch {
			case strings.Contains(target, "wikidata.org"):
				add(target)
			case rel.Type == "official homepage":
				if r.websites.Homepage {
					add(target)
				}
			case strings.Contains(target, "bandcamp.com"):
				if r.websites.Bandcamp {
					add(target)
				}
			case strings.Contains(target, "last.fm"):
				if r.websites.LastFM {
					add(target)
				}
			case strings.Contains(target, "discogs.com"):
				if r.websites.Discogs {
					add(target)
				}
			}
		}
	}
	return urls
}

// buildSearchQuery assembles the Lucene query for a last-ditch search.
// The strict variant filters to official non-compilation material.
func buildSearchQuery(q Query, strict bool) string {
	var parts []string
	if q.Artist != "" {
		parts = append(parts, `artist:"`+luceneEscape(q.Artist)+`"`)
	}
	if q.Title != "" {
		parts = append(parts, `recording:"`+luceneEscape(q.Title)+`"`)
	}
	if q.Album != "" {
		parts = append(parts, `release:"`+luceneEscape(q.Album)+`"`)
	}
	query := strings.Join(parts, " AND ")
	if strict {
		query += ` AND status:official AND -secondarytype:compilation AND -secondarytype:live`
	}
	return query
}

func luceneEscape(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
