package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"marquee/internal/media"
	"marquee/internal/ui"
)

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"favs"},
	Short:   "List your favorites",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			favs, err := a.state.ListFavorites(ctx)
			if err != nil {
				return err
			}
			if flagJSON {
				if favs == nil {
					favs = []media.Favorite{}
				}
				return printJSON(favs)
			}
			if len(favs) == 0 {
				fmt.Println("No favorites yet.")
				return nil
			}

			labels := make([]string, len(favs))
			for i, f := range favs {
				labels[i] = fmt.Sprintf("%-12s %s", fmt.Sprintf("%s/%d", f.Kind, f.MediaID), f.Title)
			}
			if !ui.Interactive() {
				for _, l := range labels {
					fmt.Println("  " + l)
				}
				return nil
			}

			idx, err := ui.Select("Favorites", labels)
			if err != nil {
				if errors.Is(err, ui.ErrCancelled) {
					return nil
				}
				return err
			}
			selected := favs[idx]
			if err := requireMetadata(); err != nil {
				return err
			}
			return browseDetails(ctx, a, selected.MediaID, selected.Kind)
		})
	},
}

var favoritesAddCmd = &cobra.Command{
	Use:   "add <kind/id>",
	Short: "Add a title to your favorites",
	Args:  cobra.RangeArgs(1, 2),
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
			if err := a.state.AddFavorite(ctx, item.ID, item.Kind, item.Title, item.PosterPath); err != nil {
				return err
			}
			fmt.Printf("Added %s to favorites.\n", item.Title)
			return nil
		})
	},
}

var favoritesRemoveCmd = &cobra.Command{
	Use:     "remove <kind/id>",
	Aliases: []string{"rm"},
	Short:   "Remove a title from your favorites",
	Args:    cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, kind, err := parseRef(args)
		if err != nil {
			return err
		}
		return withApp(func(ctx context.Context, a *app) error {
			if err := a.state.RemoveFavorite(ctx, id, kind); err != nil {
				return err
			}
			fmt.Println("Removed from favorites.")
			return nil
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Resume from watch history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			entries, err := a.state.ListWatchHistory(ctx)
			if err != nil {
				return err
			}
			if flagJSON {
				if entries == nil {
					entries = []media.WatchHistoryEntry{}
				}
				return printJSON(entries)
			}
			if len(entries) == 0 {
				fmt.Println("No history entries found.")
				return nil
			}

			labels := make([]string, len(entries))
			for i, e := range entries {
				labels[i] = fmt.Sprintf("%-12s %s  %s", fmt.Sprintf("%s/%d", e.Kind, e.MediaID),
					e.DisplayTitle(), ui.Dim(e.LastWatched.Local().Format("2006-01-02 15:04")))
			}
			if !ui.Interactive() {
				for _, l := range labels {
					fmt.Println("  " + l)
				}
				return nil
			}

			idx, err := ui.Select("History", labels)
			if err != nil {
				if errors.Is(err, ui.ErrCancelled) {
					return nil
				}
				return err
			}
			selected := entries[idx]
			if err := requireMetadata(); err != nil {
				return err
			}

			// Resume the saved episode straight away; movies go to details.
			if selected.Kind == media.TV && selected.Season != nil && selected.Episode != nil {
				ok, err := ui.Confirm(fmt.Sprintf("Resume %s?", selected.DisplayTitle()))
				if err != nil {
					return err
				}
				if ok {
					item, err := a.catalog.Metadata().Details(ctx, selected.MediaID, selected.Kind)
					if err != nil {
						return err
					}
					serverKey, err := pickServer(a)
					if err != nil {
						return err
					}
					return play(ctx, a, *item, serverKey, *selected.Season, *selected.Episode)
				}
			}
			return browseDetails(ctx, a, selected.MediaID, selected.Kind)
		})
	},
}

var historyRemoveCmd = &cobra.Command{
	Use:     "remove <kind/id>",
	Aliases: []string{"rm"},
	Short:   "Remove one title from your watch history",
	Args:    cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, kind, err := parseRef(args)
		if err != nil {
			return err
		}
		return withApp(func(ctx context.Context, a *app) error {
			if err := a.state.RemoveWatchHistoryEntry(ctx, id, kind); err != nil {
				return err
			}
			fmt.Println("Removed from history.")
			return nil
		})
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear your watch history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			if ui.Interactive() {
				ok, err := ui.Confirm("Clear all watch history?")
				if err != nil || !ok {
					return err
				}
			}
			n, err := a.state.ClearWatchHistory(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d entries.\n", n)
			return nil
		})
	},
}

func init() {
	favoritesCmd.AddCommand(favoritesAddCmd)
	favoritesCmd.AddCommand(favoritesRemoveCmd)
	historyCmd.AddCommand(historyRemoveCmd)
	historyCmd.AddCommand(historyClearCmd)
}
