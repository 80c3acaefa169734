package catalog

import (
	"context"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"marquee/internal/media"
)

// FeedLimit caps the number of items shown per home feed.
const FeedLimit = 10

// Feed is one horizontal row of the home screen. A feed that failed to load
// has Err set and no items; the other feeds are unaffected.
type Feed struct {
	Key   string            `json:"key"`
	Title string            `json:"title"`
	Items []media.MediaItem `json:"items"`
	Err   error             `json:"-"`
	Error string            `json:"error,omitempty"`
}

// Home is the home screen.
type Home struct {
	Feeds []Feed `json:"feeds"`
}

// Failed reports whether every feed failed.
func (h *Home) Failed() bool {
	for _, f := range h.Feeds {
		if f.Err == nil {
			return false
		}
	}
	return true
}

type feedSource struct {
	key   string
	title string
	load  func(ctx context.Context) ([]media.MediaItem, error)
}

func (c *Catalog) feeds() []feedSource {
	return []feedSource{
		{"trending", "Trending Now", func(ctx context.Context) ([]media.MediaItem, error) {
			return c.meta.Trending(ctx, media.All, media.Week)
		}},
		{"popular_movies", "Popular Movies", func(ctx context.Context) ([]media.MediaItem, error) {
			return c.meta.Popular(ctx, media.Movie, 1)
		}},
		{"popular_tv", "Popular TV Shows", func(ctx context.Context) ([]media.MediaItem, error) {
			return c.meta.Popular(ctx, media.TV, 1)
		}},
		{"top_rated_movies", "Top Rated Movies", func(ctx context.Context) ([]media.MediaItem, error) {
			return c.meta.TopRated(ctx, media.Movie, 1)
		}},
		{"top_rated_tv", "Top Rated TV Shows", func(ctx context.Context) ([]media.MediaItem, error) {
			return c.meta.TopRated(ctx, media.TV, 1)
		}},
		{"trending_movies", "Trending Movies", func(ctx context.Context) ([]media.MediaItem, error) {
			return c.meta.Trending(ctx, media.Movie, media.Week)
		}},
		{"trending_tv", "Trending TV Shows", func(ctx context.Context) ([]media.MediaItem, error) {
			return c.meta.Trending(ctx, media.TV, media.Week)
		}},
	}
}

// Home loads every home feed in parallel. Each feed is truncated to
// FeedLimit items. If ctx ends before all feeds return, the results are
// discarded and ctx's error is returned.
func (c *Catalog) Home(ctx context.Context) (*Home, error) {
	sources := c.feeds()
	feeds := make([]Feed, len(sources))

	p := pool.New().WithMaxGoroutines(len(sources))
	for i, src := range sources {
		p.Go(func() {
			items, err := src.load(ctx)
			f := Feed{Key: src.key, Title: src.title}
			if err != nil {
				c.log.Warn("home feed failed", zap.String("feed", src.key), zap.Error(err))
				f.Err = err
				f.Error = err.Error()
			} else {
				if len(items) > FeedLimit {
					items = items[:FeedLimit]
				}
				f.Items = items
			}
			feeds[i] = f
		})
	}
	p.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Home{Feeds: feeds}, nil
}
