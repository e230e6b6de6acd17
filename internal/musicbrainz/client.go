package musicbrainz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	baseURL   = "https://musicbrainz.org/ws/2"
	userAgent = "trackmeta/0.1 (https://github.com/llehouerou/trackmeta)"

	defaultInterval   = 500 * time.Millisecond
	defaultMaxRetries = 2
	defaultTimeout    = 15 * time.Second

	// retryDelay is the fixed pause before retrying a 500/502/503,
	// which MusicBrainz uses to signal transient overload.
	retryDelay = 500 * time.Millisecond

	// defaultDetailTTL is how long per-recording detail lookups stay cached.
	defaultDetailTTL = 7 * 24 * time.Hour
)

// ResponseCache stores raw provider payloads keyed by endpoint. The
// eviction policy belongs to the implementation.
type ResponseCache interface {
	Get(provider, key string) ([]byte, bool)
	Set(provider, key string, payload []byte, ttl time.Duration) error
}

// Options configures a Client. The zero value gets sensible defaults.
type Options struct {
	Interval   time.Duration // minimum gap between requests
	MaxRetries *int          // additional attempts on transient errors; nil means the default, 0 disables retries
	Timeout    time.Duration // per-request timeout
	Cache      ResponseCache // optional, used for detail lookups
	DetailTTL  time.Duration // cache lifetime for detail lookups
}

// Client is a rate-limited MusicBrainz API client. A single mutex-guarded
// "time of last request" gate serializes bursts from concurrent callers.
type Client struct {
	httpClient  *http.Client
	log         hclog.Logger
	interval    time.Duration
	maxRetries  int
	cache       ResponseCache
	detailTTL   time.Duration
	lastRequest time.Time
	mu          sync.Mutex
}

// NewClient creates a MusicBrainz API client.
func NewClient(log hclog.Logger, opts Options) *Client {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	maxRetries := defaultMaxRetries
	if opts.MaxRetries != nil && *opts.MaxRetries >= 0 {
		maxRetries = *opts.MaxRetries
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.DetailTTL <= 0 {
		opts.DetailTTL = defaultDetailTTL
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		log:        log.Named("musicbrainz"),
		interval:   opts.Interval,
		maxRetries: maxRetries,
		cache:      opts.Cache,
		detailTTL:  opts.DetailTTL,
	}
}

// waitForRateLimit ensures the configured minimum gap between requests.
func (c *Client) waitForRateLimit() {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := time.Since(c.lastRequest)
	if elapsed < c.interval {
		time.Sleep(c.interval - elapsed)
	}
	c.lastRequest = time.Now()
}

// get performs a rate-limited GET against a ws/2 endpoint and returns the
// raw body. 500/502/503 retries after a short fixed delay, a timed-out
// request retries immediately, anything else fails fast.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	reqURL := fmt.Sprintf("%s/%s?%s", baseURL, endpoint, params.Encode())

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			break
		}
		c.waitForRateLimit()
		attempts++

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, &NetworkError{Endpoint: endpoint, Attempts: attempts, Err: err}
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if isTimeout(err) && ctx.Err() == nil {
				// Timed-out request: retry immediately, no delay.
				lastErr = err
				c.log.Debug("request timed out, retrying", "endpoint", endpoint, "attempt", attempts)
				continue
			}
			// Connection/TLS failures are not retryable.
			return nil, &NetworkError{Endpoint: endpoint, Attempts: attempts, Err: err}
		}

		switch resp.StatusCode {
		case http.StatusOK:
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, &NetworkError{Endpoint: endpoint, Attempts: attempts, Err: err}
			}
			return body, nil
		case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
			// Transient overload, pause briefly then retry.
			resp.Body.Close()
			lastErr = fmt.Errorf("server returned status %d", resp.StatusCode)
			c.log.Debug("transient server error", "endpoint", endpoint, "status", resp.StatusCode, "attempt", attempts)
			if attempt < c.maxRetries {
				time.Sleep(retryDelay)
			}
		default:
			resp.Body.Close()
			return nil, &ResponseError{Endpoint: endpoint, StatusCode: resp.StatusCode}
		}
	}

	if lastErr == nil {
		lastErr = ctx.Err()
	}
	return nil, &NetworkError{Endpoint: endpoint, Attempts: attempts, Err: lastErr}
}

// cachedGet consults the response cache before hitting the network.
func (c *Client) cachedGet(ctx context.Context, endpoint string, params url.Values, ttl time.Duration) ([]byte, error) {
	if c.cache == nil {
		return c.get(ctx, endpoint, params)
	}
	key := endpoint + "?" + params.Encode()
	if body, ok := c.cache.Get("musicbrainz", key); ok {
		return body, nil
	}
	body, err := c.get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set("musicbrainz", key, body, ttl); err != nil {
		c.log.Warn("cache write failed", "key", key, "error", err)
	}
	return body, nil
}

// FetchBinary downloads an image or other binary resource through the
// same rate gate. There is no retry: images are best effort and a miss
// degrades to "no cover art". A 404 returns nil bytes without error.
func (c *Client) FetchBinary(ctx context.Context, rawURL string) ([]byte, error) {
	c.waitForRateLimit()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, &NetworkError{Endpoint: rawURL, Attempts: 1, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Endpoint: rawURL, Attempts: 1, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ResponseError{Endpoint: rawURL, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Endpoint: rawURL, Attempts: 1, Err: err}
	}
	return data, nil
}

// isTimeout reports whether err is a request timeout rather than a
// connection failure.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	// http.Client wraps its own deadline error without a typed cause.
	return strings.Contains(err.Error(), "Client.Timeout exceeded")
}

// SearchRecordings runs a Lucene recording search and decodes the result.
func (c *Client) SearchRecordings(ctx context.Context, query string, limit int) (*RecordingSearchResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("fmt", "json")
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}

	body, err := c.get(ctx, "recording", params)
	if err != nil {
		return nil, err
	}
	return DecodeRecordingSearch(body)
}

// LookupRecording fetches full detail for one recording: canonical
// artist credit, first release date, genres and ISRCs. Results are
// cached for a week since recordings rarely change.
func (c *Client) LookupRecording(ctx context.Context, recordingID string) (*CandidateRecording, error) {
	params := url.Values{}
	params.Set("fmt", "json")
	params.Set("inc", "artists+releases+release-groups+genres+isrcs")

	body, err := c.cachedGet(ctx, "recording/"+recordingID, params, c.detailTTL)
	if err != nil {
		return nil, err
	}
	return DecodeRecordingDetail(body)
}

// LookupISRC returns the recordings registered under an ISRC.
func (c *Client) LookupISRC(ctx context.Context, isrc string) ([]CandidateRecording, error) {
	params := url.Values{}
	params.Set("fmt", "json")
	params.Set("inc", "artists+releases+release-groups")

	body, err := c.get(ctx, "isrc/"+isrc, params)
	if err != nil {
		return nil, err
	}
	env, err := DecodeRecordingSearch(body)
	if err != nil {
		return nil, err
	}
	return env.Recordings, nil
}

// BrowseReleases lists the releases carrying a recording, optionally
// filtered by status ("official").
func (c *Client) BrowseReleases(ctx context.Context, recordingID, status string) ([]CandidateRelease, error) {
	params := url.Values{}
	params.Set("recording", recordingID)
	params.Set("fmt", "json")
	params.Set("inc", "artist-credits+labels+release-groups")
	params.Set("limit", "100")
	if status != "" {
		params.Set("status", status)
	}

	body, err := c.cachedGet(ctx, "release", params, c.detailTTL)
	if err != nil {
		return nil, err
	}
	return DecodeReleaseBrowse(body)
}

// LookupArtist fetches an artist's name and external URL relations.
func (c *Client) LookupArtist(ctx context.Context, artistID string) (*ArtistDetail, error) {
	params := url.Values{}
	params.Set("fmt", "json")
	params.Set("inc", "url-rels")

	body, err := c.cachedGet(ctx, "artist/"+artistID, params, c.detailTTL)
	if err != nil {
		return nil, err
	}
	return DecodeArtistDetail(body)
}
