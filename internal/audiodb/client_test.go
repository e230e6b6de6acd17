package audiodb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const searchPayload = `{
	"artists": [{
		"strArtist": "Nine Inch Nails",
		"strBiographyEN": "Nine Inch Nails is an American industrial rock band.",
		"strArtistThumb": "https://img.example/thumb.jpg",
		"strArtistFanart": "https://img.example/fanart.jpg",
		"strArtistBanner": "https://img.example/banner.jpg"
	}]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(nil, "testkey", "trackmeta/test")
	c.baseURL = srv.URL
	return c
}

func TestSearchArtist(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search.php" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("s"); got != "Nine Inch Nails" {
			t.Errorf("search param = %q", got)
		}
		if ua := r.Header.Get("User-Agent"); ua != "trackmeta/test" {
			t.Errorf("user agent = %q", ua)
		}
		w.Write([]byte(searchPayload))
	})

	artist, err := c.SearchArtist(context.Background(), "Nine Inch Nails")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if artist == nil || artist.Name != "Nine Inch Nails" {
		t.Fatalf("artist = %+v", artist)
	}
	if artist.Banner != "https://img.example/banner.jpg" {
		t.Errorf("banner = %q", artist.Banner)
	}
}

func TestSearchArtist_NullResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"artists": null}`))
	})

	artist, err := c.SearchArtist(context.Background(), "Nobody")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if artist != nil {
		t.Errorf("artist = %+v, want nil", artist)
	}
}

func TestSearchArtist_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if _, err := c.SearchArtist(context.Background(), "X"); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestFetchImage_MissReturnsNil(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	data, err := c.FetchImage(context.Background(), c.baseURL+"/img.jpg")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if data != nil {
		t.Errorf("data = %v, want nil on 404", data)
	}
}
