package catalog

import (
	"context"

	"go.uber.org/zap"

	"marquee/internal/apperr"
	"marquee/internal/media"
	"marquee/internal/playback"
	"marquee/internal/watchstate"
)

// PlayRequest selects what to play and where.
type PlayRequest struct {
	Item      media.MediaItem
	ServerKey string
	Season    int
	Episode   int
}

// PlayResult is the page to open.
type PlayResult struct {
	URL      string          `json:"url"`
	Server   playback.Server `json:"server"`
	Recorded bool            `json:"recorded"`
}

// Play resolves the player page for a title. When a user is signed in the
// title is recorded in their watch history first; a failed record is logged
// and does not stop playback.
func (c *Catalog) Play(ctx context.Context, req PlayRequest) (*PlayResult, error) {
	server, err := c.servers.Lookup(req.ServerKey)
	if err != nil {
		return nil, err
	}
	if err := c.opts.Entitlement.Check(server, c.log); err != nil {
		return nil, err
	}

	u, err := playback.BuildURL(server, req.Item.Kind, req.Item.ID, req.Season, req.Episode)
	if err != nil {
		return nil, err
	}

	res := &PlayResult{URL: u, Server: server}
	if c.state != nil && c.authenticated(ctx) {
		err := c.state.RecordWatch(ctx, watchstate.WatchEvent{
			MediaID:    req.Item.ID,
			Kind:       req.Item.Kind,
			Title:      req.Item.Title,
			PosterPath: req.Item.PosterPath,
			Season:     req.Season,
			Episode:    req.Episode,
		})
		if err != nil {
			c.log.Warn("recording watch history failed", zap.Int("media_id", req.Item.ID), zap.Error(err))
		} else {
			res.Recorded = true
		}
	}

	c.log.Info("playing",
		zap.Int("media_id", req.Item.ID),
		zap.String("kind", string(req.Item.Kind)),
		zap.String("server", server.Key))
	return res, nil
}

// ToggleFavorite adds or removes a title from the user's favorites and
// returns the new state. On failure the previous state is returned with the
// error.
func (c *Catalog) ToggleFavorite(ctx context.Context, item media.MediaItem) (bool, error) {
	if c.state == nil || !c.authenticated(ctx) {
		return false, apperr.ErrNotAuthenticated
	}

	fav, err := c.state.FavoriteStatus(ctx, item.ID, item.Kind)
	if err != nil {
		return false, err
	}

	if fav {
		if err := c.state.RemoveFavorite(ctx, item.ID, item.Kind); err != nil {
			return true, err
		}
		return false, nil
	}

	if err := c.state.AddFavorite(ctx, item.ID, item.Kind, item.Title, item.PosterPath); err != nil {
		return false, err
	}
	return true, nil
}
