package enrich

import (
	"context"

	"github.com/llehouerou/trackmeta/internal/meta"
)

// Recognizer identifies a track from whatever the metadata already
// holds (fingerprint, filename, partial tags). Recognizers run
// sequentially in registration order; each sees the merged output of
// the ones before it.
type Recognizer interface {
	Name() string
	// ProviderFields lists the metadata fields this recognizer can
	// supply. The recognizer is skipped when none of them are missing.
	ProviderFields() []string
	Recognize(ctx context.Context, m meta.TrackMetadata) (meta.TrackMetadata, error)
}

// Extras fetches supplementary artist material (bios, fan art,
// banners). Extras plugins run concurrently under a shared deadline.
type Extras interface {
	Name() string
	Download(ctx context.Context, m meta.TrackMetadata, sink ImageSink) (meta.TrackMetadata, error)
}

// ImageSink receives binary images fetched by extras plugins, keyed by
// identifier and image type.
type ImageSink interface {
	Put(identifier, imageType string, data []byte) error
}
