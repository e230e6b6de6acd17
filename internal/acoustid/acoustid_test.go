package acoustid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/go-hclog"

	"github.com/llehouerou/trackmeta/internal/meta"
)

const lookupPayload = `{
	"status": "ok",
	"results": [
		{
			"score": 0.4,
			"recordings": [{"id": "low-score", "title": "Wrong"}]
		},
		{
			"score": 0.98,
			"recordings": [{
				"id": "2d7f08e1-be1c-4b86-b725-6e675b7b6de0",
				"title": "15 Ghosts II",
				"artists": [{"id": "b7ffd2af-418f-4be2-bdd1-22f8b48613da", "name": "Nine Inch Nails"}]
			}]
		}
	]
}`

func newTestPlugin(t *testing.T, handler http.HandlerFunc) *Plugin {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewPlugin("testkey", hclog.NewNullLogger())
	p.endpoint = srv.URL
	return p
}

func TestRecognize_PicksHighestScore(t *testing.T) {
	p := newTestPlugin(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("client") != "testkey" || q.Get("fingerprint") != "FP" || q.Get("duration") != "232" {
			t.Errorf("unexpected query: %v", q)
		}
		w.Write([]byte(lookupPayload))
	})

	m := meta.TrackMetadata{
		meta.FieldFingerprint: "FP",
		meta.FieldDuration:    232,
	}
	got, err := p.Recognize(context.Background(), m)
	if err != nil {
		t.Fatalf("recognize failed: %v", err)
	}

	if got.String(meta.FieldRecordingID) != "2d7f08e1-be1c-4b86-b725-6e675b7b6de0" {
		t.Errorf("recording id = %q", got.String(meta.FieldRecordingID))
	}
	if got.String(meta.FieldArtist) != "Nine Inch Nails" {
		t.Errorf("artist = %q", got.String(meta.FieldArtist))
	}
	if got.String(meta.FieldTitle) != "15 Ghosts II" {
		t.Errorf("title = %q", got.String(meta.FieldTitle))
	}
}

func TestRecognize_NoFingerprint(t *testing.T) {
	p := newTestPlugin(t, func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected without a fingerprint")
	})

	got, err := p.Recognize(context.Background(), meta.TrackMetadata{
		meta.FieldArtist: "Artist",
	})
	if err != nil {
		t.Fatalf("recognize failed: %v", err)
	}
	if got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func TestRecognize_ErrorStatus(t *testing.T) {
	p := newTestPlugin(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status": "error"}`))
	})

	m := meta.TrackMetadata{
		meta.FieldFingerprint: "FP",
		meta.FieldDuration:    100,
	}
	if _, err := p.Recognize(context.Background(), m); err == nil {
		t.Fatal("expected error for non-ok status")
	}
}

func TestRecognize_NoResults(t *testing.T) {
	p := newTestPlugin(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status": "ok", "results": []}`))
	})

	m := meta.TrackMetadata{
		meta.FieldFingerprint: "FP",
		meta.FieldDuration:    100,
	}
	got, err := p.Recognize(context.Background(), m)
	if err != nil {
		t.Fatalf("recognize failed: %v", err)
	}
	if got != nil {
		t.Errorf("got %v, want nil", got)
	}
}
