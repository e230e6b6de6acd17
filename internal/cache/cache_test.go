package cache

import (
	"path/filepath"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := OpenPath("")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGet_Miss(t *testing.T) {
	s := setupTestStore(t)

	if _, ok := s.Get("musicbrainz", "recording/abc"); ok {
		t.Error("expected miss on empty store")
	}
}

func TestSetAndGet(t *testing.T) {
	s := setupTestStore(t)

	payload := []byte(`{"id":"abc"}`)
	if err := s.Set("musicbrainz", "recording/abc", payload, time.Hour); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, ok := s.Get("musicbrainz", "recording/abc")
	if !ok {
		t.Fatal("expected hit")
	}
	if string(got) != string(payload) {
		t.Errorf("payload = %q, want %q", got, payload)
	}

	// Different provider, same key: miss.
	if _, ok := s.Get("theaudiodb", "recording/abc"); ok {
		t.Error("expected miss for other provider")
	}
}

func TestSet_ReplacesExisting(t *testing.T) {
	s := setupTestStore(t)

	if err := s.Set("musicbrainz", "k", []byte("old"), time.Hour); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := s.Set("musicbrainz", "k", []byte("new"), time.Hour); err != nil {
		t.Fatalf("second set failed: %v", err)
	}

	got, ok := s.Get("musicbrainz", "k")
	if !ok || string(got) != "new" {
		t.Errorf("got %q, %v; want \"new\", true", got, ok)
	}
}

func TestGet_Expired(t *testing.T) {
	s := setupTestStore(t)

	if err := s.Set("musicbrainz", "k", []byte("v"), -time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, ok := s.Get("musicbrainz", "k"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestPrune(t *testing.T) {
	s := setupTestStore(t)

	if err := s.Set("musicbrainz", "live", []byte("v"), time.Hour); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := s.Set("musicbrainz", "dead", []byte("v"), -time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if err := s.Prune(); err != nil {
		t.Fatalf("prune failed: %v", err)
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM responses`).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("rows after prune = %d, want 1", count)
	}
	if _, ok := s.Get("musicbrainz", "live"); !ok {
		t.Error("live entry must survive prune")
	}
}

func TestOpenPrunesExpiredEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "responses.db")

	s, err := OpenPath(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := s.Set("musicbrainz", "dead", []byte("v"), -time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	s, err = OpenPath(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM responses`).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 0 {
		t.Errorf("rows after reopen = %d, want 0 (expired entry pruned)", count)
	}
}
