// Package acoustid recognizes tracks from a chromaprint fingerprint
// via the AcoustID lookup API.
package acoustid

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/llehouerou/trackmeta/internal/enrich"
	"github.com/llehouerou/trackmeta/internal/meta"
)

const (
	lookupURL      = "https://api.acoustid.org/v2/lookup"
	defaultTimeout = 15 * time.Second
)

type lookupResponse struct {
	Status  string   `json:"status"`
	Results []result `json:"results"`
}

type result struct {
	Score      float64     `json:"score"`
	Recordings []recording `json:"recordings"`
}

type recording struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Artists []artist `json:"artists"`
}

type artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Plugin is a recognition plugin backed by the AcoustID service. It
// requires a fingerprint and duration in the seed metadata; without
// them it contributes nothing.
type Plugin struct {
	apiKey     string
	httpClient *http.Client
	log        hclog.Logger
	endpoint   string
}

var _ enrich.Recognizer = (*Plugin)(nil)

func NewPlugin(apiKey string, log hclog.Logger) *Plugin {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Plugin{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        log.Named("acoustid"),
		endpoint:   lookupURL,
	}
}

func (p *Plugin) Name() string { return "acoustid" }

func (p *Plugin) ProviderFields() []string {
	return []string{meta.FieldRecordingID, meta.FieldArtist, meta.FieldTitle}
}

func (p *Plugin) Recognize(ctx context.Context, m meta.TrackMetadata) (meta.TrackMetadata, error) {
	fingerprint := m.String(meta.FieldFingerprint)
	duration, ok := m[meta.FieldDuration].(int)
	if fingerprint == "" || !ok || duration <= 0 {
		return nil, nil
	}

	resp, err := p.lookup(ctx, fingerprint, duration)
	if err != nil {
		return nil, err
	}
	best := bestRecording(resp)
	if best == nil {
		return nil, nil
	}

	out := meta.TrackMetadata{}
	if best.ID != "" {
		out[meta.FieldRecordingID] = best.ID
	}
	if best.Title != "" {
		out[meta.FieldTitle] = best.Title
	}
	if len(best.Artists) > 0 {
		names := make([]string, 0, len(best.Artists))
		ids := make([]string, 0, len(best.Artists))
		for _, a := range best.Artists {
			names = append(names, a.Name)
			if a.ID != "" {
				ids = append(ids, a.ID)
			}
		}
		out[meta.FieldArtist] = strings.Join(names, ", ")
		if len(ids) > 0 {
			out[meta.FieldArtistIDs] = ids
		}
	}
	return out, nil
}

func (p *Plugin) lookup(ctx context.Context, fingerprint string, duration int) (*lookupResponse, error) {
	params := url.Values{}
	params.Set("client", p.apiKey)
	params.Set("meta", "recordings")
	params.Set("duration", strconv.Itoa(duration))
	params.Set("fingerprint", fingerprint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lookup returned status %d", resp.StatusCode)
	}
	var decoded lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode lookup response: %w", err)
	}
	if decoded.Status != "ok" {
		return nil, fmt.Errorf("lookup status %q", decoded.Status)
	}
	return &decoded, nil
}

// bestRecording returns the first recording of the highest-scoring
// result that actually carries one.
func bestRecording(resp *lookupResponse) *recording {
	results := make([]result, len(resp.Results))
	copy(results, resp.Results)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	for i := range results {
		if len(results[i].Recordings) > 0 {
			return &results[i].Recordings[0]
		}
	}
	return nil
}
