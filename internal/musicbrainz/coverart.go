package musicbrainz

import (
	"context"
	"fmt"
)

const coverArtBaseURL = "https://coverartarchive.org"

// FrontCover fetches the front cover for a release from the Cover Art
// Archive at 500px. Returns nil bytes when no cover art exists.
func (c *Client) FrontCover(ctx context.Context, releaseID string) ([]byte, error) {
	return c.FetchBinary(ctx, fmt.Sprintf("%s/release/%s/front-500", coverArtBaseURL, releaseID))
}

// ReleaseGroupFrontCover fetches the release group's front cover, used as
// a fallback when the chosen release has no art of its own.
func (c *Client) ReleaseGroupFrontCover(ctx context.Context, releaseGroupID string) ([]byte, error) {
	return c.FetchBinary(ctx, fmt.Sprintf("%s/release-group/%s/front-500", coverArtBaseURL, releaseGroupID))
}
