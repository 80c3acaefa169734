package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"marquee/internal/apperr"
	"marquee/internal/catalog"
	"marquee/internal/config"
	"marquee/internal/media"
	"marquee/internal/playback"
	"marquee/internal/session"
	"marquee/internal/store"
	"marquee/internal/watchstate"
)

type stubMeta struct {
	failFeeds bool
}

func (m stubMeta) list(kind media.Kind) ([]media.MediaItem, error) {
	if m.failFeeds {
		return nil, apperr.ErrMetadataFetch
	}
	return []media.MediaItem{{ID: 603, Kind: media.Movie, Title: "The Matrix"}, {ID: 1399, Kind: media.TV, Title: "Game of Thrones"}}, nil
}

func (m stubMeta) Trending(_ context.Context, kind media.Kind, _ media.TimeWindow) ([]media.MediaItem, error) {
	return m.list(kind)
}
func (m stubMeta) Popular(_ context.Context, kind media.Kind, _ int) ([]media.MediaItem, error) {
	return m.list(kind)
}
func (m stubMeta) TopRated(_ context.Context, kind media.Kind, _ int) ([]media.MediaItem, error) {
	return m.list(kind)
}
func (m stubMeta) Search(_ context.Context, query string, page int) (*media.Page, error) {
	return &media.Page{Page: page, TotalPages: 1, TotalResults: 1, Results: []media.MediaItem{{ID: 603, Kind: media.Movie, Title: "The Matrix"}}}, nil
}
func (m stubMeta) Details(_ context.Context, id int, kind media.Kind) (*media.MediaItem, error) {
	switch id {
	case 603:
		return &media.MediaItem{ID: 603, Kind: kind, Title: "The Matrix", PosterPath: "/m.jpg"}, nil
	case 1399:
		return &media.MediaItem{ID: 1399, Kind: kind, Title: "Game of Thrones",
			Seasons: []media.Season{{Number: 0}, {Number: 1}}}, nil
	}
	return nil, apperr.ErrMetadataFetch
}
func (m stubMeta) SeasonDetails(_ context.Context, tvID, seasonNumber int) ([]media.Episode, error) {
	return []media.Episode{{Number: 1, SeasonNumber: seasonNumber, Name: "Winter Is Coming"}}, nil
}
func (m stubMeta) ImageURL(path string, _ media.ImageSize) string { return path }

type testAPI struct {
	handler http.Handler
	token   string
}

func newTestAPI(t *testing.T, meta stubMeta, ent playback.Entitlement) *testAPI {
	t.Helper()
	log := zap.NewNop()
	db, err := store.OpenMemory(log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	accounts, err := session.NewAccounts(db, []byte("0123456789abcdef0123456789abcdef"), time.Hour, log)
	require.NoError(t, err)

	sessions := session.ContextProvider{}
	state := watchstate.New(db, sessions, log)
	cat := catalog.New(meta, state, sessions, playback.NewTable(config.DefaultServers(), "server1"),
		catalog.Options{MinQueryLength: 2, Entitlement: ent}, log)

	srv := NewServer(cat, state, accounts, log)
	return &testAPI{handler: srv.Router()}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) signIn(t *testing.T) {
	t.Helper()
	creds := map[string]string{"email": "neo@example.com", "password": "redpill"}
	rec := a.do(t, http.MethodPost, "/api/auth/signup", creds)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/api/auth/signin", creds)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tok session.Token
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tok))
	require.NotEmpty(t, tok.AccessToken)
	a.token = tok.AccessToken
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestAuthFlow(t *testing.T) {
	a := newTestAPI(t, stubMeta{}, playback.Entitlement{})

	rec := a.do(t, http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	a.signIn(t)

	rec = a.do(t, http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "neo@example.com", decode[session.Identity](t, rec).Email)

	rec = a.do(t, http.MethodPost, "/api/auth/signup", map[string]string{"email": "neo@example.com", "password": "another"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/auth/signin", map[string]string{"email": "neo@example.com", "password": "wrong!"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	a.token = "tampered"
	rec = a.do(t, http.MethodGet, "/api/home", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHomeAndSearch(t *testing.T) {
	a := newTestAPI(t, stubMeta{}, playback.Entitlement{})

	rec := a.do(t, http.MethodGet, "/api/home", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	home := decode[catalog.Home](t, rec)
	assert.Len(t, home.Feeds, 7)

	rec = a.do(t, http.MethodGet, "/api/search?q=m", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[media.Page](t, rec).Results)

	rec = a.do(t, http.MethodGet, "/api/search?q=matrix&page=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[media.Page](t, rec).Results, 1)

	rec = a.do(t, http.MethodGet, "/api/search?q=matrix&page=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHomeAllFeedsFailed(t *testing.T) {
	a := newTestAPI(t, stubMeta{failFeeds: true}, playback.Entitlement{})

	rec := a.do(t, http.MethodGet, "/api/home", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestDetailsSeasonAndServers(t *testing.T) {
	a := newTestAPI(t, stubMeta{}, playback.Entitlement{})

	rec := a.do(t, http.MethodGet, "/api/tv/1399", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[catalog.DetailsView](t, rec)
	require.NotNil(t, view.Season)
	assert.Equal(t, 1, view.Season.Number)
	assert.Len(t, view.Episodes, 1)

	rec = a.do(t, http.MethodGet, "/api/movie/42", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/tv/1399/season/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/person/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/servers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"default":"server1"`)
}

func TestPlay(t *testing.T) {
	a := newTestAPI(t, stubMeta{}, playback.Entitlement{Policy: config.EntitlementEnforce})

	rec := a.do(t, http.MethodPost, "/api/movie/603/play", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://moviesapi.club/movie/603", decode[catalog.PlayResult](t, rec).URL)

	rec = a.do(t, http.MethodPost, "/api/movie/603/play?server=vip", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	a.signIn(t)
	// Playing records history, so a safe GET is not routed.
	rec = a.do(t, http.MethodGet, "/api/tv/1399/play?server=server2&season=1&episode=2", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	rec = a.do(t, http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]media.WatchHistoryEntry](t, rec))

	rec = a.do(t, http.MethodPost, "/api/tv/1399/play?server=server2&season=1&episode=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[catalog.PlayResult](t, rec)
	assert.Equal(t, "https://vidsrc.icu/embed/tv/1399/1/2", res.URL)
	assert.True(t, res.Recorded)

	rec = a.do(t, http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	entries := decode[[]media.WatchHistoryEntry](t, rec)
	require.Len(t, entries, 1)
	assert.Equal(t, "Game of Thrones", entries[0].Title)

	rec = a.do(t, http.MethodPost, "/api/movie/603/play?season=x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFavoritesEndpoints(t *testing.T) {
	a := newTestAPI(t, stubMeta{}, playback.Entitlement{})
	fav := map[string]any{"movie_id": 603, "media_type": "movie", "title": "The Matrix", "poster_path": "/poster.jpg"}

	rec := a.do(t, http.MethodPost, "/api/favorites", fav)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	a.signIn(t)

	rec = a.do(t, http.MethodPost, "/api/favorites", fav)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/api/favorites", fav)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/favorites/movie/603", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[map[string]bool](t, rec)["favorite"])

	rec = a.do(t, http.MethodGet, "/api/favorites", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	favs := decode[[]media.Favorite](t, rec)
	require.Len(t, favs, 1)
	assert.Equal(t, 603, favs[0].MediaID)

	rec = a.do(t, http.MethodDelete, "/api/favorites/movie/603", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.do(t, http.MethodDelete, "/api/favorites/movie/603", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/favorites", nil)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/api/favorites", map[string]any{"movie_id": 1, "media_type": "movie", "title": "x", "bogus": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryEndpoints(t *testing.T) {
	a := newTestAPI(t, stubMeta{}, playback.Entitlement{})
	a.signIn(t)

	rec := a.do(t, http.MethodPost, "/api/history", map[string]any{
		"movie_id": 1399, "media_type": "tv", "title": "Game of Thrones", "season": 2, "episode": 5, "progress": 50,
	})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	rec = a.do(t, http.MethodPost, "/api/history", map[string]any{"movie_id": 603, "media_type": "movie", "title": "The Matrix"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/history", map[string]any{"movie_id": 603, "media_type": "movie", "title": "The Matrix", "progress": 150})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodDelete, "/api/history/movie/603", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/history", nil)
	entries := decode[[]media.WatchHistoryEntry](t, rec)
	require.Len(t, entries, 1)
	assert.Equal(t, "Game of Thrones S02E05 [50%]", entries[0].DisplayTitle())

	rec = a.do(t, http.MethodDelete, "/api/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"removed":1}`, rec.Body.String())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperr.ErrNotAuthenticated, http.StatusUnauthorized},
		{apperr.Forbidden("x"), http.StatusForbidden},
		{apperr.NotFound("x"), http.StatusNotFound},
		{apperr.Conflict("x"), http.StatusConflict},
		{apperr.ErrEmptyQuery, http.StatusBadRequest},
		{apperr.ErrMetadataFetch, http.StatusBadGateway},
		{assert.AnError, http.StatusInternalServerError},
		{fmt.Errorf("resolving session: %w", assert.AnError), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer  abc ", "abc"},
		{"Basic dXNlcjpw", ""},
		{"Bearer", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		assert.Equal(t, tt.want, extractToken(req), tt.header)
	}
}
