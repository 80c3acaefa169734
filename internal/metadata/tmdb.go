package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"marquee/internal/apperr"
	"marquee/internal/httputil"
	"marquee/internal/media"
)

// Options configures a TMDB client.
type Options struct {
	BaseURL        string // e.g. "https://api.themoviedb.org/3"
	APIKey         string
	Language       string
	ImageBaseSmall string
	ImageBaseLarge string
}

// TMDB implements Client against The Movie Database v3 API.
type TMDB struct {
	opts   Options
	client *http.Client
	log    *zap.Logger
}

// Option customizes a TMDB client.
type Option func(*TMDB)

// WithHTTPClient replaces the hardened default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(t *TMDB) { t.client = c }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(t *TMDB) { t.log = l }
}

// NewTMDB creates a new TMDB client.
func NewTMDB(opts Options, options ...Option) *TMDB {
	t := &TMDB{
		opts:   opts,
		client: httputil.NewClient(),
		log:    zap.NewNop(),
	}
	for _, o := range options {
		o(t)
	}
	return t
}

var _ Client = (*TMDB)(nil)

// Trending returns the upstream trending ranking for kind over window.
func (t *TMDB) Trending(ctx context.Context, kind media.Kind, window media.TimeWindow) ([]media.MediaItem, error) {
	if kind != media.All && !kind.Valid() {
		return nil, apperr.BadRequest(fmt.Sprintf("invalid media kind %q", kind))
	}
	if window != media.Day && window != media.Week {
		return nil, apperr.BadRequest(fmt.Sprintf("invalid time window %q", window))
	}

	var resp listResponse
	if err := t.fetch(ctx, []string{"trending", string(kind), string(window)}, nil, &resp); err != nil {
		return nil, err
	}
	return resp.items(kind), nil
}

// Popular returns one page of popular titles.
func (t *TMDB) Popular(ctx context.Context, kind media.Kind, page int) ([]media.MediaItem, error) {
	return t.list(ctx, kind, "popular", page)
}

// TopRated returns one page of top-rated titles.
func (t *TMDB) TopRated(ctx context.Context, kind media.Kind, page int) ([]media.MediaItem, error) {
	return t.list(ctx, kind, "top_rated", page)
}

func (t *TMDB) list(ctx context.Context, kind media.Kind, feed string, page int) ([]media.MediaItem, error) {
	if !kind.Valid() {
		return nil, apperr.BadRequest(fmt.Sprintf("invalid media kind %q", kind))
	}

	var resp listResponse
	if err := t.fetch(ctx, []string{string(kind), feed}, pageParams(page), &resp); err != nil {
		return nil, err
	}
	return resp.items(kind), nil
}

// Search returns one page of movie and TV matches for query.
func (t *TMDB) Search(ctx context.Context, query string, page int) (*media.Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.ErrEmptyQuery
	}

	params := pageParams(page)
	params.Set("query", query)

	var resp listResponse
	if err := t.fetch(ctx, []string{"search", "multi"}, params, &resp); err != nil {
		return nil, err
	}

	return &media.Page{
		Page:         resp.Page,
		TotalPages:   resp.TotalPages,
		TotalResults: resp.TotalResults,
		Results:      resp.items(media.All),
	}, nil
}

// Details returns a title with credits and, for TV, its season list.
func (t *TMDB) Details(ctx context.Context, id int, kind media.Kind) (*media.MediaItem, error) {
	if !kind.Valid() {
		return nil, apperr.BadRequest(fmt.Sprintf("invalid media kind %q", kind))
	}
	if id <= 0 {
		return nil, apperr.BadRequest(fmt.Sprintf("invalid media id %d", id))
	}

	params := url.Values{}
	params.Set("append_to_response", "credits")

	var raw rawItem
	if err := t.fetch(ctx, []string{string(kind), strconv.Itoa(id)}, params, &raw); err != nil {
		return nil, err
	}

	item, _ := raw.toItem(kind)
	// The details endpoint does not echo media_type; the requested kind wins.
	item.Kind = kind
	return &item, nil
}

// SeasonDetails returns the episodes of one season.
func (t *TMDB) SeasonDetails(ctx context.Context, tvID, seasonNumber int) ([]media.Episode, error) {
	if tvID <= 0 {
		return nil, apperr.BadRequest(fmt.Sprintf("invalid media id %d", tvID))
	}
	if seasonNumber < 0 {
		return nil, apperr.BadRequest(fmt.Sprintf("invalid season number %d", seasonNumber))
	}

	var resp seasonResponse
	path := []string{string(media.TV), strconv.Itoa(tvID), "season", strconv.Itoa(seasonNumber)}
	if err := t.fetch(ctx, path, nil, &resp); err != nil {
		return nil, err
	}

	episodes := make([]media.Episode, 0, len(resp.Episodes))
	for _, ep := range resp.Episodes {
		if ep.SeasonNumber == 0 {
			ep.SeasonNumber = seasonNumber
		}
		episodes = append(episodes, ep)
	}
	return episodes, nil
}

// ImageURL prefixes path with the configured base for size.
func (t *TMDB) ImageURL(path string, size media.ImageSize) string {
	if path == "" {
		return ""
	}
	base := t.opts.ImageBaseSmall
	if size == media.Large {
		base = t.opts.ImageBaseLarge
	}
	return base + path
}

// fetch issues a GET against the API and decodes the body into v. Every
// failure is folded into a single metadata error.
func (t *TMDB) fetch(ctx context.Context, path []string, params url.Values, v any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", t.opts.APIKey)
	if t.opts.Language != "" {
		params.Set("language", t.opts.Language)
	}

	u := httputil.WithQuery(httputil.BuildURL(t.opts.BaseURL, path...), params)
	t.log.Debug("fetching metadata", zap.String("url", httputil.RedactQuery(u, "api_key")))

	if err := httputil.GetJSON(ctx, t.client, u, v); err != nil {
		t.log.Warn("metadata fetch failed", zap.String("endpoint", "/"+strings.Join(path, "/")), zap.Error(err))
		return apperr.Wrap(apperr.KindMetadata, "metadata fetch failed", err)
	}
	return nil
}

func pageParams(page int) url.Values {
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	return params
}
