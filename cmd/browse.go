package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"marquee/internal/media"
	"marquee/internal/ui"
)

var (
	flagWindow string
	flagPage   int
)

var homeCmd = &cobra.Command{
	Use:   "home",
	Short: "Show the home screen feeds",
	Args:  cobra.NoArgs,
	RunE:  homeRun,
}

func homeRun(cmd *cobra.Command, args []string) error {
	if err := requireMetadata(); err != nil {
		return err
	}
	return withApp(func(ctx context.Context, a *app) error {
		home, err := a.catalog.Home(ctx)
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(home)
		}
		if home.Failed() {
			return fmt.Errorf("could not load any feed: %w", home.Feeds[0].Err)
		}

		if !ui.Interactive() {
			for _, f := range home.Feeds {
				fmt.Println(ui.Heading(f.Title))
				if f.Err != nil {
					fmt.Println("  " + ui.Error("unavailable: "+f.Err.Error()))
					continue
				}
				printItems(f.Items)
				fmt.Println()
			}
			return nil
		}

		labels := make([]string, len(home.Feeds))
		for i, f := range home.Feeds {
			labels[i] = f.Title
			if f.Err != nil {
				labels[i] += " (unavailable)"
			}
		}
		idx, err := ui.Select("Home", labels)
		if err != nil {
			return err
		}
		feed := home.Feeds[idx]
		if feed.Err != nil {
			return feed.Err
		}
		return pickAndBrowse(ctx, a, feed.Title, feed.Items)
	})
}

var trendingCmd = &cobra.Command{
	Use:   "trending [movie|tv|all]",
	Short: "Browse trending content",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKindArg(args, media.All, true)
		if err != nil {
			return err
		}
		window := media.TimeWindow(strings.ToLower(flagWindow))
		return feedRun("Trending", func(ctx context.Context, a *app) ([]media.MediaItem, error) {
			return a.catalog.Metadata().Trending(ctx, kind, window)
		})
	},
}

var popularCmd = &cobra.Command{
	Use:   "popular [movie|tv]",
	Short: "Browse popular movies or TV shows",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKindArg(args, media.Movie, false)
		if err != nil {
			return err
		}
		return feedRun("Popular", func(ctx context.Context, a *app) ([]media.MediaItem, error) {
			return a.catalog.Metadata().Popular(ctx, kind, flagPage)
		})
	},
}

var topRatedCmd = &cobra.Command{
	Use:     "toprated [movie|tv]",
	Aliases: []string{"top-rated"},
	Short:   "Browse top-rated movies or TV shows",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKindArg(args, media.Movie, false)
		if err != nil {
			return err
		}
		return feedRun("Top Rated", func(ctx context.Context, a *app) ([]media.MediaItem, error) {
			return a.catalog.Metadata().TopRated(ctx, kind, flagPage)
		})
	},
}

func init() {
	trendingCmd.Flags().StringVarP(&flagWindow, "window", "w", "week", "Trending window: day | week")
	popularCmd.Flags().IntVarP(&flagPage, "page", "p", 1, "Result page")
	topRatedCmd.Flags().IntVarP(&flagPage, "page", "p", 1, "Result page")
	searchCmd.Flags().IntVarP(&flagPage, "page", "p", 1, "Result page")
}

func feedRun(title string, load func(ctx context.Context, a *app) ([]media.MediaItem, error)) error {
	if err := requireMetadata(); err != nil {
		return err
	}
	return withApp(func(ctx context.Context, a *app) error {
		items, err := load(ctx, a)
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(items)
		}
		if len(items) == 0 {
			fmt.Println("No content found.")
			return nil
		}
		if !ui.Interactive() {
			printItems(items)
			return nil
		}
		return pickAndBrowse(ctx, a, title, items)
	})
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search movies and TV shows",
	Args:  cobra.ArbitraryArgs,
	RunE:  searchRun,
}

func searchRun(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	if query == "" {
		var err error
		query, err = ui.Input("Search")
		if err != nil {
			return fmt.Errorf("no search query provided")
		}
	}
	if err := requireMetadata(); err != nil {
		return err
	}

	log.Debug("searching", zap.String("query", query))

	return withApp(func(ctx context.Context, a *app) error {
		page, err := a.catalog.Search(ctx, query, flagPage)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		if flagJSON {
			return printJSON(page)
		}
		if len(page.Results) == 0 {
			if len([]rune(strings.TrimSpace(query))) < cfg.MinQueryLength {
				fmt.Printf("Type at least %d characters to search.\n", cfg.MinQueryLength)
			} else {
				fmt.Println("No results found.")
			}
			return nil
		}
		if !ui.Interactive() {
			printItems(page.Results)
			if page.TotalPages > page.Page {
				fmt.Println(ui.Dim(fmt.Sprintf("page %d of %d, use --page for more", page.Page, page.TotalPages)))
			}
			return nil
		}
		return pickAndBrowse(ctx, a, "Results", page.Results)
	})
}

// pickAndBrowse lets the user choose one item and opens its details.
func pickAndBrowse(ctx context.Context, a *app, prompt string, items []media.MediaItem) error {
	labels := make([]string, len(items))
	for i, it := range items {
		labels[i] = it.DisplayTitle()
	}
	idx, err := ui.Select(prompt, labels)
	if err != nil {
		if errors.Is(err, ui.ErrCancelled) {
			return nil
		}
		return err
	}
	selected := items[idx]
	log.Debug("selected", zap.Int("id", selected.ID), zap.String("kind", string(selected.Kind)))
	return browseDetails(ctx, a, selected.ID, selected.Kind)
}

func printItems(items []media.MediaItem) {
	for _, it := range items {
		fmt.Printf("  %-12s %s\n", fmt.Sprintf("%s/%d", it.Kind, it.ID), it.DisplayTitle())
	}
}

func parseKindArg(args []string, def media.Kind, allowAll bool) (media.Kind, error) {
	if len(args) == 0 {
		return def, nil
	}
	kind, err := media.ParseKind(args[0])
	if err != nil {
		return "", err
	}
	if kind == media.All && !allowAll {
		return "", fmt.Errorf("%q is only valid for trending", args[0])
	}
	return kind, nil
}
