// Package catalog composes the metadata client, the watch-state store and
// the playback table into the operations behind each screen: the home feeds,
// search, the details view and the play action.
package catalog

import (
	"context"

	"go.uber.org/zap"

	"marquee/internal/media"
	"marquee/internal/metadata"
	"marquee/internal/playback"
	"marquee/internal/session"
	"marquee/internal/watchstate"
)

// WatchState is the part of the watch-state store the catalog uses.
type WatchState interface {
	AddFavorite(ctx context.Context, mediaID int, kind media.Kind, title, posterPath string) error
	RemoveFavorite(ctx context.Context, mediaID int, kind media.Kind) error
	FavoriteStatus(ctx context.Context, mediaID int, kind media.Kind) (bool, error)
	RecordWatch(ctx context.Context, ev watchstate.WatchEvent) error
}

var _ WatchState = (*watchstate.Store)(nil)

// Options configures a Catalog.
type Options struct {
	MinQueryLength int
	Entitlement    playback.Entitlement
}

// Catalog implements the screen-level operations.
type Catalog struct {
	meta     metadata.Client
	state    WatchState
	sessions session.Provider
	servers  *playback.Table
	opts     Options
	log      *zap.Logger
}

// New creates a Catalog.
func New(meta metadata.Client, state WatchState, sessions session.Provider, servers *playback.Table, opts Options, log *zap.Logger) *Catalog {
	if opts.MinQueryLength < 1 {
		opts.MinQueryLength = 2
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{
		meta:     meta,
		state:    state,
		sessions: sessions,
		servers:  servers,
		opts:     opts,
		log:      log,
	}
}

// Metadata returns the underlying metadata client.
func (c *Catalog) Metadata() metadata.Client { return c.meta }

// Servers returns the playback server table.
func (c *Catalog) Servers() *playback.Table { return c.servers }

func (c *Catalog) authenticated(ctx context.Context) bool {
	return session.IsAuthenticated(ctx, c.sessions)
}
