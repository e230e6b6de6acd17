package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	// MusicBrainz settings
	MusicBrainz MusicBrainzConfig `koanf:"musicbrainz"`

	// Per-field replace behavior during merges
	Replace ReplaceConfig `koanf:"replace"`

	// Last-ditch fallback settings
	Fallback FallbackConfig `koanf:"fallback"`

	// Extras plugin fan-out settings
	Extras ExtrasConfig `koanf:"extras"`

	// Response cache settings
	Cache CacheConfig `koanf:"cache"`

	// Recognition / extras provider credentials
	AcoustID AcoustIDConfig `koanf:"acoustid"`
	Lastfm   LastfmConfig   `koanf:"lastfm"`
	AudioDB  AudioDBConfig  `koanf:"audiodb"`
}

// MusicBrainzConfig holds settings for the MusicBrainz resolver.
type MusicBrainzConfig struct {
	Enabled     *bool `koanf:"enabled"`      // master switch (default: true)
	IntervalMS  int   `koanf:"interval_ms"`  // min gap between requests (default: 500)
	MaxRetries  *int  `koanf:"max_retries"`  // extra attempts on 5xx (default: 2, 0 disables)
	StrictAlbum bool  `koanf:"strict_album"` // require album match in fallback search
	LastDitch   *bool `koanf:"last_ditch"`   // enable fallback search (default: true)

	Websites WebsitesConfig `koanf:"websites"`
}

// WebsitesConfig gates artist link destinations individually. Wikidata
// links are always collected.
type WebsitesConfig struct {
	Homepage bool `koanf:"homepage"`
	Bandcamp bool `koanf:"bandcamp"`
	Lastfm   bool `koanf:"lastfm"`
	Discogs  bool `koanf:"discogs"`
}

// ReplaceConfig selects which fields trusted sources may overwrite
// instead of fill-only merging.
type ReplaceConfig struct {
	Artist         bool `koanf:"artist"`
	Title          bool `koanf:"title"`
	ArtistWebsites bool `koanf:"artistwebsites"`
}

// FallbackConfig tunes the last-ditch resolution strategies.
type FallbackConfig struct {
	VideoTitleSplit *bool `koanf:"video_title_split"` // "artist - title" comment heuristic (default: true)
}

// ExtrasConfig tunes the extras plugin fan-out.
type ExtrasConfig struct {
	DelayMS int `koanf:"delay_ms"` // base processing delay budget (default: 5000)
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Enabled *bool  `koanf:"enabled"` // default: true
	Path    string `koanf:"path"`    // default: XDG data dir
	TTLDays int    `koanf:"ttl_days"`
}

// AcoustIDConfig holds AcoustID fingerprint recognition credentials.
type AcoustIDConfig struct {
	APIKey string `koanf:"api_key"`
}

// LastfmConfig holds Last.fm extras credentials.
type LastfmConfig struct {
	APIKey    string `koanf:"api_key"`
	APISecret string `koanf:"api_secret"`
}

// AudioDBConfig holds TheAudioDB extras credentials.
type AudioDBConfig struct {
	APIKey string `koanf:"api_key"`
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.Cache.Path != "" {
		cfg.Cache.Path = expandPath(cfg.Cache.Path)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/trackmeta/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "trackmeta", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// MusicBrainzEnabled reports whether the MusicBrainz resolver should run.
func (c *Config) MusicBrainzEnabled() bool {
	return c.MusicBrainz.Enabled == nil || *c.MusicBrainz.Enabled
}

// LastDitchEnabled reports whether the fallback search should run when
// direct identifiers are absent.
func (c *Config) LastDitchEnabled() bool {
	return c.MusicBrainz.LastDitch == nil || *c.MusicBrainz.LastDitch
}

// VideoTitleSplitEnabled reports whether the "artist - title" comment
// heuristic may seed a fallback query.
func (c *Config) VideoTitleSplitEnabled() bool {
	return c.Fallback.VideoTitleSplit == nil || *c.Fallback.VideoTitleSplit
}

// CacheEnabled reports whether the response cache should be opened.
func (c *Config) CacheEnabled() bool {
	return c.Cache.Enabled == nil || *c.Cache.Enabled
}

// GetMusicBrainzConfig returns the MusicBrainz settings with defaults
// applied.
func (c *Config) GetMusicBrainzConfig() MusicBrainzConfig {
	cfg := c.MusicBrainz

	// Apply defaults
	if cfg.IntervalMS <= 0 {
		cfg.IntervalMS = 500
	}
	// MaxRetries stays nil when unset; the client applies its own
	// default so that an explicit 0 disables retries.

	return cfg
}

// GetExtrasConfig returns the extras settings with defaults applied.
func (c *Config) GetExtrasConfig() ExtrasConfig {
	cfg := c.Extras
	if cfg.DelayMS <= 0 {
		cfg.DelayMS = 5000
	}
	return cfg
}

// GetCacheConfig returns the cache settings with defaults applied.
func (c *Config) GetCacheConfig() CacheConfig {
	cfg := c.Cache
	if cfg.TTLDays <= 0 {
		cfg.TTLDays = 7
	}
	return cfg
}

// HasAcoustIDConfig returns true if fingerprint recognition is configured.
func (c *Config) HasAcoustIDConfig() bool {
	return c.AcoustID.APIKey != ""
}

// HasLastfmConfig returns true if Last.fm extras are configured.
func (c *Config) HasLastfmConfig() bool {
	return c.Lastfm.APIKey != ""
}

// HasAudioDBConfig returns true if TheAudioDB extras are configured.
func (c *Config) HasAudioDBConfig() bool {
	return c.AudioDB.APIKey != ""
}
