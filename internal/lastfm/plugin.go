package lastfm

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/llehouerou/trackmeta/internal/enrich"
	"github.com/llehouerou/trackmeta/internal/meta"
)

// infoClient is satisfied by *Client; tests substitute a fake.
type infoClient interface {
	GetArtistInfo(name, mbid string) (*ArtistInfo, error)
}

// Plugin fetches the artist biography during the extras fan-out.
type Plugin struct {
	client infoClient
	log    hclog.Logger
}

var _ enrich.Extras = (*Plugin)(nil)

func NewPlugin(client *Client, log hclog.Logger) *Plugin {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Plugin{client: client, log: log.Named("lastfm")}
}

func (p *Plugin) Name() string { return "lastfm" }

// Download fills the long biography from artist.getInfo. The Last.fm
// API client has no context support, so cancellation is only observed
// between calls.
func (p *Plugin) Download(ctx context.Context, m meta.TrackMetadata, _ enrich.ImageSink) (meta.TrackMetadata, error) {
	artist := m.String(meta.FieldArtist)
	if artist == "" || m.Has(meta.FieldLongBio) {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var mbid string
	if ids := m.StringList(meta.FieldArtistIDs); len(ids) > 0 {
		mbid = ids[0]
	}
	info, err := p.client.GetArtistInfo(artist, mbid)
	if err != nil {
		return nil, err
	}
	if info.Bio == "" {
		return nil, nil
	}
	return meta.TrackMetadata{meta.FieldLongBio: info.Bio}, nil
}
