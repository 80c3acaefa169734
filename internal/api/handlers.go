package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"marquee/internal/apperr"
	"marquee/internal/catalog"
	"marquee/internal/media"
	"marquee/internal/session"
	"marquee/internal/watchstate"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.Wrap(apperr.KindBadRequest, "invalid request body", err)
	}
	return nil
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := s.accounts.SignUp(r.Context(), body.Email, body.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, id)
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	tok, err := s.accounts.SignIn(r.Context(), body.Email, body.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tok)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	id, _ := session.FromContext(r.Context())
	writeJSON(w, http.StatusOK, id)
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	home, err := s.catalog.Home(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if home.Failed() {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, home)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			jsonError(w, "invalid page", http.StatusBadRequest)
			return
		}
		page = n
	}

	res, err := s.catalog.Search(r.Context(), r.URL.Query().Get("q"), page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) servers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"default": s.catalog.Servers().Default(),
		"servers": s.catalog.Servers().List(),
	})
}

// pathRef reads the {kind} and {id} route variables.
func pathRef(r *http.Request) (int, media.Kind) {
	vars := mux.Vars(r)
	id, _ := strconv.Atoi(vars["id"])
	kind := media.Kind(vars["kind"])
	if kind == "" {
		kind = media.TV
	}
	return id, kind
}

func (s *Server) details(w http.ResponseWriter, r *http.Request) {
	id, kind := pathRef(r)
	view, err := s.catalog.Details(r.Context(), id, kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) season(w http.ResponseWriter, r *http.Request) {
	id, _ := pathRef(r)
	n, _ := strconv.Atoi(mux.Vars(r)["n"])
	episodes, err := s.catalog.Metadata().SeasonDetails(r.Context(), id, n)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"season_number": n, "episodes": episodes})
}

func intQuery(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, apperr.BadRequest("invalid " + key)
	}
	return n, nil
}

func (s *Server) play(w http.ResponseWriter, r *http.Request) {
	id, kind := pathRef(r)
	season, err := intQuery(r, "season")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	episode, err := intQuery(r, "episode")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	item, err := s.catalog.Metadata().Details(r.Context(), id, kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.catalog.Play(r.Context(), catalog.PlayRequest{
		Item:      *item,
		ServerKey: r.URL.Query().Get("server"),
		Season:    season,
		Episode:   episode,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type favoriteBody struct {
	MediaID    int        `json:"movie_id"`
	Kind       media.Kind `json:"media_type"`
	Title      string     `json:"title"`
	PosterPath string     `json:"poster_path"`
}

func (s *Server) listFavorites(w http.ResponseWriter, r *http.Request) {
	favs, err := s.state.ListFavorites(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if favs == nil {
		favs = []media.Favorite{}
	}
	writeJSON(w, http.StatusOK, favs)
}

func (s *Server) addFavorite(w http.ResponseWriter, r *http.Request) {
	var body favoriteBody
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.MediaID <= 0 || body.Title == "" {
		jsonError(w, "movie_id and title are required", http.StatusBadRequest)
		return
	}
	if err := s.state.AddFavorite(r.Context(), body.MediaID, body.Kind, body.Title, body.PosterPath); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"favorite": true})
}

func (s *Server) favoriteStatus(w http.ResponseWriter, r *http.Request) {
	id, kind := pathRef(r)
	fav, err := s.state.FavoriteStatus(r.Context(), id, kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"favorite": fav})
}

func (s *Server) removeFavorite(w http.ResponseWriter, r *http.Request) {
	id, kind := pathRef(r)
	if err := s.state.RemoveFavorite(r.Context(), id, kind); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type watchBody struct {
	MediaID    int        `json:"movie_id"`
	Kind       media.Kind `json:"media_type"`
	Title      string     `json:"title"`
	PosterPath string     `json:"poster_path"`
	Season     int        `json:"season"`
	Episode    int        `json:"episode"`
	Progress   float64    `json:"progress"`
}

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.state.ListWatchHistory(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []media.WatchHistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) recordWatch(w http.ResponseWriter, r *http.Request) {
	var body watchBody
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.MediaID <= 0 || body.Title == "" {
		jsonError(w, "movie_id and title are required", http.StatusBadRequest)
		return
	}
	err := s.state.RecordWatch(r.Context(), watchstate.WatchEvent{
		MediaID:    body.MediaID,
		Kind:       body.Kind,
		Title:      body.Title,
		PosterPath: body.PosterPath,
		Season:     body.Season,
		Episode:    body.Episode,
		Progress:   body.Progress,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) removeHistory(w http.ResponseWriter, r *http.Request) {
	id, kind := pathRef(r)
	if err := s.state.RemoveWatchHistoryEntry(r.Context(), id, kind); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) clearHistory(w http.ResponseWriter, r *http.Request) {
	n, err := s.state.ClearWatchHistory(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"removed": n})
}
