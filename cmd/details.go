package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"marquee/internal/apperr"
	"marquee/internal/catalog"
	"marquee/internal/media"
	"marquee/internal/ui"
	"marquee/internal/watchstate"
)

var (
	flagSeason  int
	flagEpisode int
)

var detailsCmd = &cobra.Command{
	Use:   "details <kind/id>",
	Short: "Show a title's details, cast, seasons and episodes",
	Example: `  marquee details movie/603
  marquee details tv 1399`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, kind, err := parseRef(args)
		if err != nil {
			return err
		}
		if err := requireMetadata(); err != nil {
			return err
		}
		return withApp(func(ctx context.Context, a *app) error {
			if flagJSON {
				view, err := a.catalog.Details(ctx, id, kind)
				if err != nil {
					return err
				}
				if flagSeason > 0 {
					if err := a.catalog.SelectSeason(ctx, view, flagSeason); err != nil {
						return err
					}
				}
				return printJSON(view)
			}
			return browseDetails(ctx, a, id, kind)
		})
	},
}

var playCmd = &cobra.Command{
	Use:   "play <kind/id>",
	Short: "Open a title on a streaming server",
	Example: `  marquee play movie/603
  marquee play tv/1399 --season 1 --episode 3 --server server2`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, kind, err := parseRef(args)
		if err != nil {
			return err
		}
		if err := requireMetadata(); err != nil {
			return err
		}
		return withApp(func(ctx context.Context, a *app) error {
			item, err := a.catalog.Metadata().Details(ctx, id, kind)
			if err != nil {
				return err
			}
			return play(ctx, a, *item, cfg.DefaultServer, flagSeason, flagEpisode)
		})
	},
}

func init() {
	detailsCmd.Flags().IntVar(&flagSeason, "season", 0, "Season to show (TV)")
	playCmd.Flags().IntVar(&flagSeason, "season", 0, "Season number (TV)")
	playCmd.Flags().IntVar(&flagEpisode, "episode", 0, "Episode number (TV)")
}

// parseRef accepts "kind/id" or "kind id".
func parseRef(args []string) (int, media.Kind, error) {
	return watchstate.ParseKey(strings.Join(args, "/"))
}

// browseDetails shows a title and offers the actions of the details screen.
func browseDetails(ctx context.Context, a *app, id int, kind media.Kind) error {
	view, err := a.catalog.Details(ctx, id, kind)
	if err != nil {
		return err
	}
	if flagSeason > 0 && kind == media.TV {
		if err := a.catalog.SelectSeason(ctx, view, flagSeason); err != nil {
			return err
		}
	}

	printDetails(a, view)
	if !ui.Interactive() {
		return nil
	}

	for {
		actions := []string{"Play"}
		if view.Authenticated {
			if view.Favorite {
				actions = append(actions, "Remove from favorites")
			} else {
				actions = append(actions, "Add to favorites")
			}
		}
		if len(view.Seasons()) > 1 {
			actions = append(actions, "Change season")
		}
		actions = append(actions, "Back")

		idx, err := ui.Select(view.Item.Title, actions)
		if err != nil {
			if errors.Is(err, ui.ErrCancelled) {
				return nil
			}
			return err
		}

		switch actions[idx] {
		case "Play":
			season, episode, err := pickEpisode(view)
			if err != nil {
				if errors.Is(err, ui.ErrCancelled) {
					continue
				}
				return err
			}
			serverKey, err := pickServer(a)
			if err != nil {
				if errors.Is(err, ui.ErrCancelled) {
					continue
				}
				return err
			}
			return play(ctx, a, *view.Item, serverKey, season, episode)

		case "Add to favorites", "Remove from favorites":
			on, err := a.catalog.ToggleFavorite(ctx, *view.Item)
			if err != nil {
				fmt.Println(ui.Error(err.Error()))
				continue
			}
			view.Favorite = on
			if on {
				fmt.Println("Added to favorites.")
			} else {
				fmt.Println("Removed from favorites.")
			}

		case "Change season":
			seasons := view.Seasons()
			labels := make([]string, len(seasons))
			for i, s := range seasons {
				labels[i] = seasonLabel(s)
			}
			si, err := ui.Select("Season", labels)
			if err != nil {
				continue
			}
			if err := a.catalog.SelectSeason(ctx, view, seasons[si].Number); err != nil {
				fmt.Println(ui.Error(err.Error()))
			}

		default:
			return nil
		}
	}
}

// pickEpisode asks for an episode of the selected season. Movies and shows
// without a loaded episode list play without one.
func pickEpisode(view *catalog.DetailsView) (int, int, error) {
	if view.Item.Kind != media.TV || view.Season == nil || len(view.Episodes) == 0 {
		return 0, 0, nil
	}
	labels := make([]string, len(view.Episodes))
	for i, ep := range view.Episodes {
		labels[i] = episodeLabel(ep)
	}
	idx, err := ui.Select(view.Season.Name, labels)
	if err != nil {
		return 0, 0, err
	}
	return view.Season.Number, view.Episodes[idx].Number, nil
}

// pickServer uses --server when given, otherwise asks.
func pickServer(a *app) (string, error) {
	if flagServer != "" {
		return flagServer, nil
	}
	servers := a.servers.List()
	labels := make([]string, len(servers))
	for i, s := range servers {
		labels[i] = s.Label()
		if s.Key == a.servers.Default() {
			labels[i] += " (default)"
		}
	}
	idx, err := ui.Select("Server", labels)
	if err != nil {
		return "", err
	}
	return servers[idx].Key, nil
}

func play(ctx context.Context, a *app, item media.MediaItem, serverKey string, season, episode int) error {
	res, err := a.catalog.Play(ctx, catalog.PlayRequest{
		Item:      item,
		ServerKey: serverKey,
		Season:    season,
		Episode:   episode,
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindForbidden {
			return fmt.Errorf("%w (choose another server with --server)", err)
		}
		return err
	}

	if flagJSON {
		return printJSON(res)
	}

	if res.Server.RequiresSubscription {
		fmt.Println(ui.Dim(res.Server.Name + " requires a subscription."))
	}
	fmt.Println(ui.Dim("If the video does not load, the server may be unavailable. Try another one."))

	if !a.launcher.Available() {
		fmt.Println(res.URL)
		return nil
	}
	log.Debug("opening player page", zap.String("url", res.URL), zap.String("launcher", a.launcher.Name()))
	if err := a.launcher.Open(res.URL); err != nil {
		return fmt.Errorf("opening player: %w", err)
	}
	return nil
}

func printDetails(a *app, view *catalog.DetailsView) {
	it := view.Item
	fmt.Println(ui.Title(it.DisplayTitle()))

	var facts []string
	if it.Runtime > 0 {
		facts = append(facts, fmt.Sprintf("%d min", it.Runtime))
	}
	if it.NumberOfSeasons > 0 {
		facts = append(facts, fmt.Sprintf("%d seasons, %d episodes", it.NumberOfSeasons, it.NumberOfEpisodes))
	}
	if len(it.Genres) > 0 {
		names := make([]string, len(it.Genres))
		for i, g := range it.Genres {
			names[i] = g.Name
		}
		facts = append(facts, strings.Join(names, ", "))
	}
	if view.Favorite {
		facts = append(facts, "★ favorite")
	}
	if len(facts) > 0 {
		fmt.Println(ui.Dim(strings.Join(facts, " · ")))
	}
	if poster := a.catalog.Metadata().ImageURL(it.PosterPath, media.Large); poster != "" {
		fmt.Println(ui.Dim(poster))
	}

	if it.Overview != "" {
		fmt.Println()
		fmt.Println(it.Overview)
	}

	if len(it.Cast) > 0 {
		fmt.Println()
		fmt.Println(ui.Heading("Cast"))
		for i, c := range it.Cast {
			if i == 10 {
				break
			}
			fmt.Printf("  %s as %s\n", c.Name, c.Character)
		}
	}

	if seasons := view.Seasons(); len(seasons) > 0 {
		fmt.Println()
		fmt.Println(ui.Heading("Seasons"))
		for _, s := range seasons {
			fmt.Println("  " + seasonLabel(s))
		}
	}

	if view.Season != nil {
		fmt.Println()
		fmt.Println(ui.Heading(view.Season.Name))
		if len(view.Episodes) == 0 {
			fmt.Println(ui.Dim("  episodes unavailable"))
		}
		for _, ep := range view.Episodes {
			fmt.Println("  " + episodeLabel(ep))
		}
	}
	fmt.Println()
}

func seasonLabel(s media.Season) string {
	name := s.Name
	if name == "" {
		name = fmt.Sprintf("Season %d", s.Number)
	}
	if s.EpisodeCount > 0 {
		return fmt.Sprintf("%s (%d episodes)", name, s.EpisodeCount)
	}
	return name
}

func episodeLabel(ep media.Episode) string {
	if ep.Name != "" {
		return fmt.Sprintf("Episode %d: %s", ep.Number, ep.Name)
	}
	return fmt.Sprintf("Episode %d", ep.Number)
}
