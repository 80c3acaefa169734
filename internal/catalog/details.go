package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"marquee/internal/apperr"
	"marquee/internal/media"
)

// DetailsView is the state of the details screen.
type DetailsView struct {
	Item          *media.MediaItem `json:"item"`
	Authenticated bool             `json:"authenticated"`
	Favorite      bool             `json:"favorite"`
	Season        *media.Season    `json:"season,omitempty"`
	Episodes      []media.Episode  `json:"episodes,omitempty"`
}

// Seasons returns the regular seasons, skipping specials.
func (v *DetailsView) Seasons() []media.Season {
	var out []media.Season
	for _, s := range v.Item.Seasons {
		if s.Number > 0 {
			out = append(out, s)
		}
	}
	return out
}

// Details loads a title with its favorite status and, for TV, the first
// regular season's episodes. A failed episode load leaves the episode list
// empty.
func (c *Catalog) Details(ctx context.Context, id int, kind media.Kind) (*DetailsView, error) {
	item, err := c.meta.Details(ctx, id, kind)
	if err != nil {
		return nil, err
	}

	view := &DetailsView{Item: item}
	if c.state != nil && c.authenticated(ctx) {
		view.Authenticated = true
		fav, err := c.state.FavoriteStatus(ctx, item.ID, item.Kind)
		if err != nil {
			c.log.Warn("favorite status unavailable", zap.Int("media_id", item.ID), zap.Error(err))
		}
		view.Favorite = fav
	}

	if item.Kind == media.TV {
		if seasons := view.Seasons(); len(seasons) > 0 {
			s := seasons[0]
			view.Season = &s
			episodes, err := c.meta.SeasonDetails(ctx, item.ID, s.Number)
			if err != nil {
				c.log.Warn("loading episodes failed",
					zap.Int("media_id", item.ID), zap.Int("season", s.Number), zap.Error(err))
			}
			view.Episodes = episodes
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return view, nil
}

// SelectSeason switches the view to another season and loads its episodes.
func (c *Catalog) SelectSeason(ctx context.Context, view *DetailsView, number int) error {
	var season *media.Season
	for _, s := range view.Item.Seasons {
		if s.Number == number {
			season = &s
			break
		}
	}
	if season == nil {
		return apperr.NotFound(fmt.Sprintf("%s has no season %d", view.Item.Title, number))
	}

	episodes, err := c.meta.SeasonDetails(ctx, view.Item.ID, number)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	view.Season = season
	view.Episodes = episodes
	return nil
}
