// trackmeta enriches sparse track metadata into a complete record:
// canonical artist/title, album, date, label, genre, cover art and
// artist links. Give it a music file or an artist/title pair.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/llehouerou/trackmeta/internal/acoustid"
	"github.com/llehouerou/trackmeta/internal/audiodb"
	"github.com/llehouerou/trackmeta/internal/cache"
	"github.com/llehouerou/trackmeta/internal/config"
	"github.com/llehouerou/trackmeta/internal/enrich"
	"github.com/llehouerou/trackmeta/internal/lastfm"
	"github.com/llehouerou/trackmeta/internal/meta"
	"github.com/llehouerou/trackmeta/internal/musicbrainz"
	"github.com/llehouerou/trackmeta/internal/tags"
)

const userAgent = "trackmeta/0.1 (https://github.com/llehouerou/trackmeta)"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		artist      = flag.String("artist", "", "seed artist (instead of reading a file)")
		title       = flag.String("title", "", "seed title (instead of reading a file)")
		album       = flag.String("album", "", "seed album")
		skipPlugins = flag.Bool("skip-plugins", false, "skip recognition and extras plugins")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := hclog.Warn
	if *verbose {
		level = hclog.Debug
	}
	log := hclog.New(&hclog.LoggerOptions{
		Name:   "trackmeta",
		Level:  level,
		Output: os.Stderr,
	})

	seed, err := buildSeed(*artist, *title, *album, flag.Args())
	if err != nil {
		return err
	}

	orchestrator, cleanup, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	enriched := orchestrator.Enrich(ctx, seed, nil, *skipPlugins)
	printMetadata(enriched)
	return nil
}

func buildSeed(artist, title, album string, args []string) (meta.TrackMetadata, error) {
	if len(args) > 0 {
		if !tags.IsMusicFile(args[0]) {
			return nil, fmt.Errorf("%s: not a supported music file", args[0])
		}
		return tags.ReadSeed(args[0])
	}
	if artist == "" && title == "" {
		return nil, fmt.Errorf("give a music file or -artist/-title")
	}
	seed := meta.TrackMetadata{}
	if artist != "" {
		seed[meta.FieldArtist] = artist
	}
	if title != "" {
		seed[meta.FieldTitle] = title
	}
	if album != "" {
		seed[meta.FieldAlbum] = album
	}
	return seed, nil
}

func buildPipeline(cfg *config.Config, log hclog.Logger) (*enrich.Orchestrator, func(), error) {
	cleanup := func() {}

	mbCfg := cfg.GetMusicBrainzConfig()
	opts := musicbrainz.Options{
		Interval:   time.Duration(mbCfg.IntervalMS) * time.Millisecond,
		MaxRetries: mbCfg.MaxRetries,
		DetailTTL:  time.Duration(cfg.GetCacheConfig().TTLDays) * 24 * time.Hour,
	}
	if cfg.CacheEnabled() {
		store, err := openCache(cfg)
		if err != nil {
			log.Warn("response cache unavailable, continuing without", "error", err)
		} else {
			opts.Cache = store
			cleanup = func() { store.Close() }
		}
	}
	client := musicbrainz.NewClient(log, opts)
	resolver := musicbrainz.NewResolver(client, log, musicbrainz.WebsiteFlags{
		Homepage: mbCfg.Websites.Homepage,
		Bandcamp: mbCfg.Websites.Bandcamp,
		LastFM:   mbCfg.Websites.Lastfm,
		Discogs:  mbCfg.Websites.Discogs,
	})

	orchestrator := enrich.New(resolver, log, enrich.Options{
		Replace: meta.ReplaceFlags{
			Artist:         cfg.Replace.Artist,
			Title:          cfg.Replace.Title,
			ArtistWebsites: cfg.Replace.ArtistWebsites,
		},
		MusicBrainz:     cfg.MusicBrainzEnabled(),
		LastDitch:       cfg.LastDitchEnabled(),
		StrictAlbum:     mbCfg.StrictAlbum,
		VideoTitleSplit: cfg.VideoTitleSplitEnabled(),
		ExtrasDelay:     time.Duration(cfg.GetExtrasConfig().DelayMS) * time.Millisecond,
	})

	if cfg.HasAcoustIDConfig() {
		orchestrator.AddRecognizer(acoustid.NewPlugin(cfg.AcoustID.APIKey, log))
	}
	if cfg.HasLastfmConfig() {
		orchestrator.AddExtras(lastfm.NewPlugin(lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret), log))
	}
	if cfg.HasAudioDBConfig() {
		orchestrator.AddExtras(audiodb.NewPlugin(audiodb.NewClient(log, cfg.AudioDB.APIKey, userAgent), log))
	}

	return orchestrator, cleanup, nil
}

func openCache(cfg *config.Config) (*cache.Store, error) {
	if path := cfg.GetCacheConfig().Path; path != "" {
		return cache.OpenPath(path)
	}
	return cache.Open()
}

func printMetadata(m meta.TrackMetadata) {
	keys := m.Keys()
	sort.Strings(keys)
	for _, key := range keys {
		switch v := m[key].(type) {
		case []byte:
			fmt.Printf("%-24s <%d bytes>\n", key, len(v))
		case []string:
			for i, item := range v {
				if i == 0 {
					fmt.Printf("%-24s %s\n", key, item)
				} else {
					fmt.Printf("%-24s %s\n", "", item)
				}
			}
		default:
			fmt.Printf("%-24s %v\n", key, v)
		}
	}
}
