// Package lastfm supplies artist biographies from the Last.fm API as
// an extras plugin.
package lastfm

import (
	"fmt"
	"strings"

	"github.com/shkh/lastfm-go/lastfm"
)

// Client wraps the Last.fm API for artist info lookups.
type Client struct {
	api *lastfm.Api
}

// New creates a new Last.fm client with the given API credentials.
func New(apiKey, apiSecret string) *Client {
	return &Client{
		api: lastfm.New(apiKey, apiSecret),
	}
}

// ArtistInfo is the subset of artist.getInfo this pipeline consumes.
type ArtistInfo struct {
	Name string
	URL  string
	Bio  string
}

// GetArtistInfo fetches an artist's page, preferring the MusicBrainz id
// when one is known.
func (c *Client) GetArtistInfo(name, mbid string) (*ArtistInfo, error) {
	params := lastfm.P{"artist": name}
	if mbid != "" {
		params["mbid"] = mbid
	}
	result, err := c.api.Artist.GetInfo(params)
	if err != nil {
		return nil, fmt.Errorf("artist info: %w", err)
	}
	return &ArtistInfo{
		Name: result.Name,
		URL:  result.Url,
		Bio:  cleanBio(result.Bio.Content),
	}, nil
}

// cleanBio strips the "Read more on Last.fm" footer link the API
// appends to every biography.
func cleanBio(bio string) string {
	if idx := strings.Index(bio, `<a href="https://www.last.fm`); idx >= 0 {
		bio = bio[:idx]
	}
	return strings.TrimSpace(bio)
}
