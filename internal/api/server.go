// Package api exposes the catalog and the watch-state store as a JSON HTTP
// API. Requests authenticate with a bearer session token.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"marquee/internal/apperr"
	"marquee/internal/catalog"
	"marquee/internal/media"
	"marquee/internal/session"
	"marquee/internal/watchstate"
)

// Accounts signs users up and in and verifies their tokens.
type Accounts interface {
	SignUp(ctx context.Context, email, password string) (*session.Identity, error)
	SignIn(ctx context.Context, email, password string) (*session.Token, error)
	Verify(ctx context.Context, token string) (*session.Identity, error)
}

// WatchState is the watch-state store as used by the API.
type WatchState interface {
	AddFavorite(ctx context.Context, mediaID int, kind media.Kind, title, posterPath string) error
	RemoveFavorite(ctx context.Context, mediaID int, kind media.Kind) error
	ListFavorites(ctx context.Context) ([]media.Favorite, error)
	FavoriteStatus(ctx context.Context, mediaID int, kind media.Kind) (bool, error)
	RecordWatch(ctx context.Context, ev watchstate.WatchEvent) error
	ListWatchHistory(ctx context.Context) ([]media.WatchHistoryEntry, error)
	RemoveWatchHistoryEntry(ctx context.Context, mediaID int, kind media.Kind) error
	ClearWatchHistory(ctx context.Context) (int64, error)
}

var _ WatchState = (*watchstate.Store)(nil)

// Server serves the API. Its catalog and store must resolve identity with
// session.ContextProvider so each request sees its own user.
type Server struct {
	catalog  *catalog.Catalog
	state    WatchState
	accounts Accounts
	log      *zap.Logger
}

// NewServer creates an API server.
func NewServer(cat *catalog.Catalog, state WatchState, accounts Accounts, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{catalog: cat, state: state, accounts: accounts, log: log}
}

const (
	kindPattern = "{kind:movie|tv}"
	idPattern   = "{id:[0-9]+}"
)

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)
	r.Use(s.identify)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/signup", s.signUp).Methods(http.MethodPost)
	api.HandleFunc("/auth/signin", s.signIn).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", s.requireUser(s.me)).Methods(http.MethodGet)

	api.HandleFunc("/home", s.home).Methods(http.MethodGet)
	api.HandleFunc("/search", s.search).Methods(http.MethodGet)
	api.HandleFunc("/servers", s.servers).Methods(http.MethodGet)

	api.HandleFunc("/favorites", s.requireUser(s.listFavorites)).Methods(http.MethodGet)
	api.HandleFunc("/favorites", s.requireUser(s.addFavorite)).Methods(http.MethodPost)
	api.HandleFunc("/favorites/"+kindPattern+"/"+idPattern, s.requireUser(s.favoriteStatus)).Methods(http.MethodGet)
	api.HandleFunc("/favorites/"+kindPattern+"/"+idPattern, s.requireUser(s.removeFavorite)).Methods(http.MethodDelete)

	api.HandleFunc("/history", s.requireUser(s.listHistory)).Methods(http.MethodGet)
	api.HandleFunc("/history", s.requireUser(s.recordWatch)).Methods(http.MethodPost)
	api.HandleFunc("/history", s.requireUser(s.clearHistory)).Methods(http.MethodDelete)
	api.HandleFunc("/history/"+kindPattern+"/"+idPattern, s.requireUser(s.removeHistory)).Methods(http.MethodDelete)

	api.HandleFunc("/tv/"+idPattern+"/season/{n:[0-9]+}", s.season).Methods(http.MethodGet)
	api.HandleFunc("/"+kindPattern+"/"+idPattern+"/play", s.play).Methods(http.MethodPost)
	api.HandleFunc("/"+kindPattern+"/"+idPattern, s.details).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, "not found", http.StatusNotFound)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("api listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("api shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindNotAuthenticated:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindBadRequest:
		return http.StatusBadRequest
	case apperr.KindMetadata:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		msg = "internal error"
	}
	jsonError(w, msg, status)
}
