// Package enrich drives the metadata enrichment pipeline: local
// enrichment, provider resolution with a last-ditch fallback, plugin
// recognition, and a concurrent extras fan-out, all feeding one merge
// policy.
package enrich

import (
	"context"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/llehouerou/trackmeta/internal/meta"
	"github.com/llehouerou/trackmeta/internal/musicbrainz"
)

const (
	minExtrasDeadline = 5 * time.Second
	maxExtrasDeadline = 15 * time.Second

	// cancelGrace bounds how long the fan-out waits for plugins to
	// acknowledge cancellation after the deadline.
	cancelGrace = 2 * time.Second
)

// Resolver is the provider lookup surface the orchestrator needs.
// Keeping it an interface allows mocking in tests.
type Resolver interface {
	ResolveRecordingID(ctx context.Context, q musicbrainz.Query, recordingID string) (*musicbrainz.Resolved, error)
	ResolveISRC(ctx context.Context, q musicbrainz.Query, isrc string) (*musicbrainz.Resolved, error)
	ResolveArtistIDs(ctx context.Context, artistIDs []string) (*musicbrainz.Resolved, error)
	Search(ctx context.Context, q musicbrainz.Query) (*musicbrainz.Resolved, error)
}

// Options configures one orchestrator.
type Options struct {
	Replace         meta.ReplaceFlags
	MusicBrainz     bool // provider resolution enabled
	LastDitch       bool // fallback search when identifiers are absent
	StrictAlbum     bool // discard fallback results on title mismatch when an album was expected
	VideoTitleSplit bool // "artist - title" comment heuristic
	ExtrasDelay     time.Duration
}

// Orchestrator runs one enrichment pass per call. It holds no
// per-track state; plugins are registered once at startup and iterated
// in registration order.
type Orchestrator struct {
	resolver    Resolver
	log         hclog.Logger
	opts        Options
	recognizers []Recognizer
	extras      []Extras
}

func New(resolver Resolver, log hclog.Logger, opts Options) *Orchestrator {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Orchestrator{
		resolver: resolver,
		log:      log.Named("enrich"),
		opts:     opts,
	}
}

// AddRecognizer registers a recognition plugin. Registration order is
// execution order.
func (o *Orchestrator) AddRecognizer(r Recognizer) {
	o.recognizers = append(o.recognizers, r)
}

// AddExtras registers an extras plugin for the concurrent fan-out.
func (o *Orchestrator) AddExtras(e Extras) {
	o.extras = append(o.extras, e)
}

// Enrich runs the full pipeline over a copy of the seed and returns
// the merged result. The caller's map is never mutated. Provider and
// plugin failures degrade to missing fields; Enrich never fails.
func (o *Orchestrator) Enrich(ctx context.Context, seed meta.TrackMetadata, sink ImageSink, skipPlugins bool) meta.TrackMetadata {
	current := seed.Clone()

	// Stage 1: local enrichment. Duration is coerced here so later
	// stages always see integer seconds.
	meta.StripBlanks(current)
	meta.CoerceDuration(current)
	o.addHostFields(current)

	// Stage 2: direct-identifier resolution.
	if o.opts.MusicBrainz {
		o.resolveIdentifiers(ctx, current)
	}

	// Stage 3: recognition plugins, sequential, each seeing the
	// previous ones' merged output.
	if !skipPlugins {
		o.runRecognizers(ctx, current)
	}

	// Stage 4: last-ditch fallback search.
	if o.opts.MusicBrainz && o.opts.LastDitch && o.needsFallback(current) {
		if resolved := o.lastDitch(ctx, current); resolved != nil {
			meta.MergeInto(current, resolved.Metadata(), o.opts.Replace)
		}
	}

	// Stage 5: concurrent extras fan-out.
	if !skipPlugins && len(o.extras) > 0 {
		for _, part := range o.runExtras(ctx, current, sink) {
			meta.MergeInto(current, part, o.opts.Replace)
		}
	}

	// Stage 6: final touch-ups.
	meta.Finalize(current)
	return current
}

// resolveIdentifiers resolves via the most specific identifier the
// metadata already carries, stopping at the first one that yields data.
func (o *Orchestrator) resolveIdentifiers(ctx context.Context, current meta.TrackMetadata) {
	q := o.queryFrom(current)

	if id := current.String(meta.FieldRecordingID); id != "" {
		if o.tryResolve(ctx, current, "recordingid", func() (*musicbrainz.Resolved, error) {
			return o.resolver.ResolveRecordingID(ctx, q, id)
		}) {
			return
		}
	}
	if isrc := current.StringList(meta.FieldISRC); len(isrc) > 0 {
		if o.tryResolve(ctx, current, "isrc", func() (*musicbrainz.Resolved, error) {
			return o.resolver.ResolveISRC(ctx, q, isrc[0])
		}) {
			return
		}
	}
	if ids := current.StringList(meta.FieldArtistIDs); len(ids) > 0 {
		o.tryResolve(ctx, current, "artistids", func() (*musicbrainz.Resolved, error) {
			return o.resolver.ResolveArtistIDs(ctx, ids)
		})
	}
}

func (o *Orchestrator) tryResolve(ctx context.Context, current meta.TrackMetadata, kind string, fn func() (*musicbrainz.Resolved, error)) bool {
	resolved, err := fn()
	if err != nil {
		o.log.Warn("identifier resolution failed", "identifier", kind, "error", err)
		return false
	}
	if resolved == nil {
		return false
	}
	meta.MergeInto(current, resolved.Metadata(), o.opts.Replace)
	return true
}

// runRecognizers runs each recognition plugin that is still missing at
// least one of the fields it claims to provide.
func (o *Orchestrator) runRecognizers(ctx context.Context, current meta.TrackMetadata) {
	for _, r := range o.recognizers {
		if !missingAny(current, r.ProviderFields()) {
			continue
		}
		part, err := r.Recognize(ctx, current.Clone())
		if err != nil {
			o.log.Warn("recognition plugin failed", "plugin", r.Name(), "error", err)
			continue
		}
		if len(part) > 0 {
			meta.MergeInto(current, part, o.opts.Replace)
		}
	}
}

// needsFallback reports whether the last-ditch search should run: no
// identifier resolved so far, and there is an artist and title to
// search with.
func (o *Orchestrator) needsFallback(current meta.TrackMetadata) bool {
	if current.Has(meta.FieldRecordingID) || current.Has(meta.FieldISRC) || current.Has(meta.FieldArtistIDs) {
		return false
	}
	return current.String(meta.FieldArtist) != "" && current.String(meta.FieldTitle) != ""
}

// runExtras launches all extras plugins concurrently and waits for
// them up to a deadline derived from the configured delay. Plugins
// still pending at the deadline are cancelled and awaited; one that
// ignores cancellation past the grace period is logged and abandoned.
func (o *Orchestrator) runExtras(ctx context.Context, current meta.TrackMetadata, sink ImageSink) []meta.TrackMetadata {
	deadline := extrasDeadline(o.opts.ExtrasDelay)
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	var (
		g       errgroup.Group
		mu      sync.Mutex
		results []meta.TrackMetadata
	)
	for _, e := range o.extras {
		g.Go(func() error {
			part, err := e.Download(ctx, current.Clone(), sink)
			if err != nil {
				o.log.Warn("extras plugin failed", "plugin", e.Name(), "error", err)
				return nil
			}
			if len(part) > 0 {
				mu.Lock()
				results = append(results, part)
				mu.Unlock()
			}
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(deadline + cancelGrace):
		// Keep what already completed; only the straggler is lost.
		o.log.Error("extras plugin ignoring cancellation, abandoning fan-out")
	}

	mu.Lock()
	defer mu.Unlock()
	return results
}

// extrasDeadline derives the fan-out deadline from the configured base
// delay, clamped to a sane window.
func extrasDeadline(delay time.Duration) time.Duration {
	d := time.Duration(float64(delay) * 1.2)
	if d < minExtrasDeadline {
		return minExtrasDeadline
	}
	if d > maxExtrasDeadline {
		return maxExtrasDeadline
	}
	return d
}

// queryFrom builds a resolution query from the current metadata.
func (o *Orchestrator) queryFrom(current meta.TrackMetadata) musicbrainz.Query {
	return musicbrainz.Query{
		Artist: current.String(meta.FieldArtist),
		Title:  current.String(meta.FieldTitle),
		Album:  current.String(meta.FieldAlbum),
	}
}

func missingAny(current meta.TrackMetadata, fields []string) bool {
	for _, f := range fields {
		if !current.Has(f) {
			return true
		}
	}
	return false
}

// addHostFields fills host identity fields, best effort.
func (o *Orchestrator) addHostFields(current meta.TrackMetadata) {
	hostname, err := os.Hostname()
	if err != nil {
		return
	}
	if !current.Has(meta.FieldHostname) {
		current[meta.FieldHostname] = hostname
	}
	if !current.Has(meta.FieldHostFQDN) {
		if fqdn := lookupFQDN(hostname); fqdn != "" {
			current[meta.FieldHostFQDN] = fqdn
		}
	}
	if !current.Has(meta.FieldHostIP) {
		if ip := primaryIP(); ip != "" {
			current[meta.FieldHostIP] = ip
		}
	}
}

func lookupFQDN(hostname string) string {
	addrs, err := net.LookupHost(hostname)
	if err != nil || len(addrs) == 0 {
		return ""
	}
	names, err := net.LookupAddr(addrs[0])
	if err != nil || len(names) == 0 {
		return ""
	}
	return strings.TrimSuffix(names[0], ".")
}

func primaryIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if v4 := ipNet.IP.To4(); v4 != nil {
			return v4.String()
		}
	}
	return ""
}
