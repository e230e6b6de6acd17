// Package audiodb supplies artist biographies and artwork from
// TheAudioDB as an extras plugin.
package audiodb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-hclog"
)

const defaultTimeout = 30 * time.Second

// Artist is the subset of TheAudioDB artist record this pipeline
// consumes.
type Artist struct {
	Name      string `json:"strArtist"`
	Biography string `json:"strBiographyEN"`
	Thumb     string `json:"strArtistThumb"`
	Fanart    string `json:"strArtistFanart"`
	Fanart2   string `json:"strArtistFanart2"`
	Fanart3   string `json:"strArtistFanart3"`
	Banner    string `json:"strArtistBanner"`
}

type artistResponse struct {
	Artists []Artist `json:"artists"`
}

// Client handles communication with TheAudioDB API.
type Client struct {
	log        hclog.Logger
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// NewClient creates a TheAudioDB API client. The free-tier key "1" is
// used when no key is configured.
func NewClient(log hclog.Logger, apiKey, userAgent string) *Client {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	if apiKey == "" {
		apiKey = "1"
	}
	return &Client{
		log:        log.Named("audiodb"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    "https://www.theaudiodb.com/api/v1/json/" + apiKey,
		userAgent:  userAgent,
	}
}

// SearchArtist searches for an artist by name.
func (c *Client) SearchArtist(ctx context.Context, name string) (*Artist, error) {
	return c.fetchArtist(ctx, c.baseURL+"/search.php?s="+url.QueryEscape(name))
}

// LookupArtistMBID looks an artist up by MusicBrainz artist id.
func (c *Client) LookupArtistMBID(ctx context.Context, mbid string) (*Artist, error) {
	return c.fetchArtist(ctx, c.baseURL+"/artist-mb.php?i="+url.QueryEscape(mbid))
}

func (c *Client) fetchArtist(ctx context.Context, rawURL string) (*Artist, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api returned status %d", resp.StatusCode)
	}

	var decoded artistResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode artist response: %w", err)
	}
	if len(decoded.Artists) == 0 {
		return nil, nil
	}
	return &decoded.Artists[0], nil
}

// FetchImage downloads one artwork URL. Misses degrade to nil.
func (c *Client) FetchImage(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}
	return io.ReadAll(resp.Body)
}
