// Package watchstate stores each signed-in user's favorites and watch
// history. Every operation is scoped to the identity returned by the
// session provider; with no identity nothing is read or written.
package watchstate

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"marquee/internal/apperr"
	"marquee/internal/media"
	"marquee/internal/session"
	"marquee/internal/store"
)

// HistoryLimit caps the number of entries ListWatchHistory returns.
const HistoryLimit = 50

// Store is the watch-state store.
type Store struct {
	db       *sql.DB
	sessions session.Provider
	log      *zap.Logger
	now      func() time.Time
}

// New creates a store over db. sessions decides who the caller is.
func New(db *sql.DB, sessions session.Provider, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, sessions: sessions, log: log, now: time.Now}
}

func (s *Store) userID(ctx context.Context) (string, error) {
	if s.sessions == nil {
		return "", apperr.ErrNotAuthenticated
	}
	id, err := s.sessions.Current(ctx)
	if err != nil {
		if apperr.IsNotAuthenticated(err) {
			return "", err
		}
		return "", fmt.Errorf("resolving session: %w", err)
	}
	if id == nil || id.UserID == "" {
		return "", apperr.ErrNotAuthenticated
	}
	return id.UserID, nil
}

func checkKind(kind media.Kind) error {
	if !kind.Valid() {
		return apperr.BadRequest(fmt.Sprintf("invalid media kind %q", kind))
	}
	return nil
}

// AddFavorite marks a title as a favorite of the current user. Adding the
// same title twice fails with a conflict.
func (s *Store) AddFavorite(ctx context.Context, mediaID int, kind media.Kind, title, posterPath string) error {
	uid, err := s.userID(ctx)
	if err != nil {
		return err
	}
	if err := checkKind(kind); err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO favorites (id, user_id, movie_id, media_type, title, poster_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), uid, mediaID, string(kind), title, posterPath, store.Millis(s.now()))
	if err != nil {
		if store.IsUniqueViolation(err) {
			return apperr.Conflict(fmt.Sprintf("%s %d is already a favorite", kind, mediaID))
		}
		return fmt.Errorf("adding favorite: %w", err)
	}

	s.log.Debug("favorite added", zap.String("user_id", uid), zap.Int("media_id", mediaID), zap.String("kind", string(kind)))
	return nil
}

// RemoveFavorite unmarks a title. Removing a title that is not a favorite
// succeeds.
func (s *Store) RemoveFavorite(ctx context.Context, mediaID int, kind media.Kind) error {
	uid, err := s.userID(ctx)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND movie_id = ? AND media_type = ?`,
		uid, mediaID, string(kind)); err != nil {
		return fmt.Errorf("removing favorite: %w", err)
	}
	return nil
}

// ListFavorites returns the current user's favorites, newest first.
func (s *Store) ListFavorites(ctx context.Context) ([]media.Favorite, error) {
	uid, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, movie_id, media_type, title, poster_path, created_at
		 FROM favorites WHERE user_id = ?
		 ORDER BY created_at DESC, rowid DESC`, uid)
	if err != nil {
		return nil, fmt.Errorf("listing favorites: %w", err)
	}
	defer rows.Close()

	var favs []media.Favorite
	for rows.Next() {
		var (
			f       media.Favorite
			kind    string
			created int64
		)
		if err := rows.Scan(&f.ID, &f.UserID, &f.MediaID, &kind, &f.Title, &f.PosterPath, &created); err != nil {
			return nil, fmt.Errorf("scanning favorite: %w", err)
		}
		f.Kind = media.Kind(kind)
		f.CreatedAt = store.FromMillis(created)
		favs = append(favs, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing favorites: %w", err)
	}
	return favs, nil
}

// FavoriteStatus reports whether a title is a favorite of the current user.
func (s *Store) FavoriteStatus(ctx context.Context, mediaID int, kind media.Kind) (bool, error) {
	uid, err := s.userID(ctx)
	if err != nil {
		return false, err
	}

	var n int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM favorites WHERE user_id = ? AND movie_id = ? AND media_type = ?`,
		uid, mediaID, string(kind)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking favorite: %w", err)
	}
	return n > 0, nil
}

// IsFavorite is FavoriteStatus with every failure reported as false.
func (s *Store) IsFavorite(ctx context.Context, mediaID int, kind media.Kind) bool {
	ok, err := s.FavoriteStatus(ctx, mediaID, kind)
	if err != nil {
		if !apperr.IsNotAuthenticated(err) {
			s.log.Warn("favorite status unavailable", zap.Int("media_id", mediaID), zap.Error(err))
		}
		return false
	}
	return ok
}

// WatchEvent describes one playback start. Season and Episode are ignored
// for movies and when not positive.
type WatchEvent struct {
	MediaID    int
	Kind       media.Kind
	Title      string
	PosterPath string
	Season     int
	Episode    int
	Progress   float64
}

// RecordWatch creates or refreshes the history entry for a title. The first
// write keeps its title, poster and creation time; later writes replace the
// position and bump last_watched, which never moves backwards.
func (s *Store) RecordWatch(ctx context.Context, ev WatchEvent) error {
	uid, err := s.userID(ctx)
	if err != nil {
		return err
	}
	if err := checkKind(ev.Kind); err != nil {
		return err
	}
	if ev.Progress < 0 || ev.Progress > 100 {
		return apperr.BadRequest(fmt.Sprintf("progress %.1f out of range 0-100", ev.Progress))
	}

	var season, episode sql.NullInt64
	if ev.Kind == media.TV {
		if ev.Season > 0 {
			season = sql.NullInt64{Int64: int64(ev.Season), Valid: true}
		}
		if ev.Episode > 0 {
			episode = sql.NullInt64{Int64: int64(ev.Episode), Valid: true}
		}
	}

	now := store.Millis(s.now())
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO watch_history
		   (id, user_id, movie_id, media_type, title, poster_path, season, episode, progress, last_watched, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, movie_id, media_type) DO UPDATE SET
		   season       = excluded.season,
		   episode      = excluded.episode,
		   progress     = excluded.progress,
		   last_watched = MAX(excluded.last_watched, watch_history.last_watched + 1)`,
		uuid.NewString(), uid, ev.MediaID, string(ev.Kind), ev.Title, ev.PosterPath,
		season, episode, ev.Progress, now, now)
	if err != nil {
		return fmt.Errorf("recording watch: %w", err)
	}

	s.log.Debug("watch recorded",
		zap.String("user_id", uid),
		zap.Int("media_id", ev.MediaID),
		zap.String("kind", string(ev.Kind)),
		zap.Int("season", ev.Season),
		zap.Int("episode", ev.Episode))
	return nil
}

// ListWatchHistory returns up to HistoryLimit entries, most recently watched
// first.
func (s *Store) ListWatchHistory(ctx context.Context) ([]media.WatchHistoryEntry, error) {
	uid, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, movie_id, media_type, title, poster_path, season, episode, progress, last_watched, created_at
		 FROM watch_history WHERE user_id = ?
		 ORDER BY last_watched DESC, rowid DESC
		 LIMIT ?`, uid, HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("listing watch history: %w", err)
	}
	defer rows.Close()

	var entries []media.WatchHistoryEntry
	for rows.Next() {
		var (
			e                media.WatchHistoryEntry
			kind             string
			season, episode  sql.NullInt64
			watched, created int64
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.MediaID, &kind, &e.Title, &e.PosterPath,
			&season, &episode, &e.Progress, &watched, &created); err != nil {
			return nil, fmt.Errorf("scanning watch history: %w", err)
		}
		e.Kind = media.Kind(kind)
		e.Season = intPtr(season)
		e.Episode = intPtr(episode)
		e.LastWatched = store.FromMillis(watched)
		e.CreatedAt = store.FromMillis(created)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing watch history: %w", err)
	}
	return entries, nil
}

// RemoveWatchHistoryEntry deletes one entry. A missing entry is not an error.
func (s *Store) RemoveWatchHistoryEntry(ctx context.Context, mediaID int, kind media.Kind) error {
	uid, err := s.userID(ctx)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM watch_history WHERE user_id = ? AND movie_id = ? AND media_type = ?`,
		uid, mediaID, string(kind)); err != nil {
		return fmt.Errorf("removing watch history entry: %w", err)
	}
	return nil
}

// ClearWatchHistory deletes all of the current user's history and returns how
// many entries were removed.
func (s *Store) ClearWatchHistory(ctx context.Context) (int64, error) {
	uid, err := s.userID(ctx)
	if err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM watch_history WHERE user_id = ?`, uid)
	if err != nil {
		return 0, fmt.Errorf("clearing watch history: %w", err)
	}
	n, _ := res.RowsAffected()
	s.log.Info("watch history cleared", zap.String("user_id", uid), zap.Int64("removed", n))
	return n, nil
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

// ParseKey splits a "kind/id" reference such as "tv/1399".
func ParseKey(s string) (int, media.Kind, error) {
	kindPart, idPart, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return 0, "", apperr.BadRequest(fmt.Sprintf("invalid reference %q (want kind/id)", s))
	}
	kind, err := media.ParseKind(kindPart)
	if err != nil || !kind.Valid() {
		return 0, "", apperr.BadRequest(fmt.Sprintf("invalid reference %q (want kind/id)", s))
	}
	id, err := strconv.Atoi(idPart)
	if err != nil || id <= 0 {
		return 0, "", apperr.BadRequest(fmt.Sprintf("invalid reference %q (want kind/id)", s))
	}
	return id, kind, nil
}
