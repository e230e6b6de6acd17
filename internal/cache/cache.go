// Package cache provides a SQLite-backed store for raw provider
// responses, keyed by provider name and request key, with per-entry
// expiry.
package cache

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName    = "trackmeta"
	dbFileName = "responses.db"
)

type Store struct {
	db *sql.DB
}

// Open creates or opens the response cache under the XDG data directory.
func Open() (*Store, error) {
	dbPath, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	return open(dbPath)
}

// OpenPath opens a cache at an explicit path. An empty path opens an
// in-memory store.
func OpenPath(path string) (*Store, error) {
	if path == "" {
		path = ":memory:"
	}
	return open(path)
}

func open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	s := &Store{db: db}
	// Opportunistic: expired entries already behave as misses.
	_ = s.Prune()
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the cached payload for a provider/key pair. Expired
// entries behave as misses.
func (s *Store) Get(provider, key string) ([]byte, bool) {
	var payload []byte
	var expiresAt int64
	err := s.db.QueryRow(`
		SELECT payload, expires_at FROM responses
		WHERE provider = ? AND key = ?`,
		provider, key,
	).Scan(&payload, &expiresAt)
	if err != nil {
		return nil, false
	}
	if time.Now().Unix() >= expiresAt {
		return nil, false
	}
	return payload, true
}

// Set stores a payload, replacing any previous entry for the same
// provider/key pair.
func (s *Store) Set(provider, key string, payload []byte, ttl time.Duration) error {
	now := time.Now()
	_, err := s.db.Exec(`
		INSERT INTO responses (provider, key, payload, stored_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(provider, key) DO UPDATE SET
			payload = excluded.payload,
			stored_at = excluded.stored_at,
			expires_at = excluded.expires_at`,
		provider, key, payload, now.Unix(), now.Add(ttl).Unix(),
	)
	return err
}

// Prune deletes expired entries. It runs once at open; the cache works
// correctly without it since expired entries already read as misses.
func (s *Store) Prune() error {
	_, err := s.db.Exec(`DELETE FROM responses WHERE expires_at <= ?`, time.Now().Unix())
	return err
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS responses (
			provider TEXT NOT NULL,
			key TEXT NOT NULL,
			payload BLOB NOT NULL,
			stored_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL,
			PRIMARY KEY (provider, key)
		);

		CREATE INDEX IF NOT EXISTS idx_responses_expires_at ON responses(expires_at);
	`)
	return err
}
