// Package metadata fetches catalog data (feeds, search, details, seasons)
// from a remote movie/TV metadata service.
package metadata

import (
	"context"

	"marquee/internal/media"
)

// Client is the read-only catalog interface the composition layer consumes.
//
// Any transport failure or non-success response is reported as an error
// matching apperr.ErrMetadataFetch. Results are never cached or retried.
type Client interface {
	// Trending returns the upstream trending ranking. kind may be media.All.
	Trending(ctx context.Context, kind media.Kind, window media.TimeWindow) ([]media.MediaItem, error)

	// Popular returns one page of popular titles.
	Popular(ctx context.Context, kind media.Kind, page int) ([]media.MediaItem, error)

	// TopRated returns one page of top-rated titles.
	TopRated(ctx context.Context, kind media.Kind, page int) ([]media.MediaItem, error)

	// Search returns one page of movie and TV matches. A blank query is
	// rejected without contacting the upstream service.
	Search(ctx context.Context, query string, page int) (*media.Page, error)

	// Details returns a title enriched with cast and, for TV, its seasons.
	Details(ctx context.Context, id int, kind media.Kind) (*media.MediaItem, error)

	// SeasonDetails returns the episodes of one season of a TV show.
	SeasonDetails(ctx context.Context, tvID, seasonNumber int) ([]media.Episode, error)

	// ImageURL resolves an image path fragment. Empty paths give "".
	ImageURL(path string, size media.ImageSize) string
}
