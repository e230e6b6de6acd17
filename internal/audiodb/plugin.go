package audiodb

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/llehouerou/trackmeta/internal/enrich"
	"github.com/llehouerou/trackmeta/internal/meta"
)

// artistSource is satisfied by *Client; tests substitute a fake.
type artistSource interface {
	SearchArtist(ctx context.Context, name string) (*Artist, error)
	LookupArtistMBID(ctx context.Context, mbid string) (*Artist, error)
	FetchImage(ctx context.Context, rawURL string) ([]byte, error)
}

// Plugin fetches artist biography, fan art and banner material during
// the extras fan-out.
type Plugin struct {
	client artistSource
	log    hclog.Logger
}

var _ enrich.Extras = (*Plugin)(nil)

func NewPlugin(client *Client, log hclog.Logger) *Plugin {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Plugin{client: client, log: log.Named("audiodb")}
}

func (p *Plugin) Name() string { return "theaudiodb" }

func (p *Plugin) Download(ctx context.Context, m meta.TrackMetadata, sink enrich.ImageSink) (meta.TrackMetadata, error) {
	name := m.String(meta.FieldArtist)
	if name == "" {
		return nil, nil
	}

	artist, err := p.lookup(ctx, m, name)
	if err != nil || artist == nil {
		return nil, err
	}

	out := meta.TrackMetadata{}
	if artist.Biography != "" && !m.Has(meta.FieldLongBio) {
		out[meta.FieldLongBio] = artist.Biography
	}
	if fanart := artist.fanartURLs(); len(fanart) > 0 {
		out[meta.FieldFanartURLs] = fanart
	}
	p.fetchArtwork(ctx, m, artist, out, sink)

	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// lookup prefers the MusicBrainz artist id over a name search.
func (p *Plugin) lookup(ctx context.Context, m meta.TrackMetadata, name string) (*Artist, error) {
	if ids := m.StringList(meta.FieldArtistIDs); len(ids) > 0 {
		artist, err := p.client.LookupArtistMBID(ctx, ids[0])
		if err == nil && artist != nil {
			return artist, nil
		}
		if err != nil {
			p.log.Debug("mbid lookup failed, falling back to name search",
				"mbid", ids[0], "error", err)
		}
	}
	return p.client.SearchArtist(ctx, name)
}

// fetchArtwork downloads banner and thumbnail bytes. Image failures
// degrade to missing fields.
func (p *Plugin) fetchArtwork(ctx context.Context, m meta.TrackMetadata, artist *Artist, out meta.TrackMetadata, sink enrich.ImageSink) {
	name := m.String(meta.FieldArtist)

	if artist.Banner != "" && !m.Has(meta.FieldBannerRaw) {
		if data, err := p.client.FetchImage(ctx, artist.Banner); err == nil && len(data) > 0 {
			out[meta.FieldBannerRaw] = data
			p.sinkPut(sink, name, "banner", data)
		}
	}
	if artist.Thumb != "" && !m.Has(meta.FieldThumbnailRaw) {
		if data, err := p.client.FetchImage(ctx, artist.Thumb); err == nil && len(data) > 0 {
			out[meta.FieldThumbnailRaw] = data
			p.sinkPut(sink, name, "thumbnail", data)
		}
	}
}

func (p *Plugin) sinkPut(sink enrich.ImageSink, identifier, imageType string, data []byte) {
	if sink == nil {
		return
	}
	if err := sink.Put(identifier, imageType, data); err != nil {
		p.log.Warn("image sink write failed", "identifier", identifier, "type", imageType, "error", err)
	}
}

func (a *Artist) fanartURLs() []string {
	var urls []string
	for _, u := range []string{a.Fanart, a.Fanart2, a.Fanart3} {
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
