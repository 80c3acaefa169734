// Package media defines shared types for the marquee application.
package media

import (
	"fmt"
	"strings"
	"time"
)

// Kind represents whether content is a movie or TV show.
type Kind string

const (
	Movie Kind = "movie"
	TV    Kind = "tv"
	// All is only meaningful for trending feeds.
	All Kind = "all"
)

func (k Kind) String() string { return string(k) }

// ParseKind accepts the user-facing spellings of a media kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie", "movies", "film":
		return Movie, nil
	case "tv", "shows", "show", "series":
		return TV, nil
	case "all":
		return All, nil
	default:
		return "", fmt.Errorf("unknown media kind %q (valid: movie, tv)", s)
	}
}

// Valid reports whether k names a concrete media kind.
func (k Kind) Valid() bool { return k == Movie || k == TV }

// TimeWindow is the trending aggregation window.
type TimeWindow string

const (
	Day  TimeWindow = "day"
	Week TimeWindow = "week"
)

// ImageSize selects one of the two configured image base URLs.
type ImageSize string

const (
	Small ImageSize = "small"
	Large ImageSize = "large"
)

// Genre is a metadata genre tag.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CastMember is a credited performer.
type CastMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path,omitempty"`
}

// MediaItem is a movie or TV show as returned by the metadata API.
type MediaItem struct {
	ID               int          `json:"id"`
	Kind             Kind         `json:"media_type"`
	Title            string       `json:"title"`
	Overview         string       `json:"overview"`
	PosterPath       string       `json:"poster_path,omitempty"`
	BackdropPath     string       `json:"backdrop_path,omitempty"`
	VoteAverage      float64      `json:"vote_average"`
	ReleaseDate      string       `json:"release_date,omitempty"`
	Runtime          int          `json:"runtime,omitempty"`
	NumberOfSeasons  int          `json:"number_of_seasons,omitempty"`
	NumberOfEpisodes int          `json:"number_of_episodes,omitempty"`
	Genres           []Genre      `json:"genres,omitempty"`
	Cast             []CastMember `json:"cast,omitempty"`
	Seasons          []Season     `json:"seasons,omitempty"`
}

// Year returns the four digit release year, or "" when unknown.
func (m MediaItem) Year() string {
	if len(m.ReleaseDate) >= 4 {
		return m.ReleaseDate[:4]
	}
	return ""
}

// DisplayTitle formats an item for list selection.
func (m MediaItem) DisplayTitle() string {
	label := "Movie"
	if m.Kind == TV {
		label = "TV"
	}
	s := fmt.Sprintf("[%s] %s", label, m.Title)
	if y := m.Year(); y != "" {
		s += fmt.Sprintf(" (%s)", y)
	}
	if m.VoteAverage > 0 {
		s += fmt.Sprintf(" ★ %.1f", m.VoteAverage)
	}
	return s
}

// Season represents a TV show season. Number 0 is reserved for specials.
type Season struct {
	ID           int    `json:"id"`
	Number       int    `json:"season_number"`
	Name         string `json:"name"`
	EpisodeCount int    `json:"episode_count"`
	AirDate      string `json:"air_date,omitempty"`
	Overview     string `json:"overview,omitempty"`
	PosterPath   string `json:"poster_path,omitempty"`
}

// Episode represents a TV show episode.
type Episode struct {
	ID           int    `json:"id"`
	Number       int    `json:"episode_number"`
	SeasonNumber int    `json:"season_number"`
	Name         string `json:"name"`
	Overview     string `json:"overview,omitempty"`
	AirDate      string `json:"air_date,omitempty"`
	StillPath    string `json:"still_path,omitempty"`
	Runtime      int    `json:"runtime,omitempty"`
}

// Page is one page of search results.
type Page struct {
	Page         int         `json:"page"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
	Results      []MediaItem `json:"results"`
}

// Favorite is a title the user marked, keyed by (user, media id, kind).
type Favorite struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	MediaID    int       `json:"movie_id"`
	Kind       Kind      `json:"media_type"`
	Title      string    `json:"title"`
	PosterPath string    `json:"poster_path,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// WatchHistoryEntry represents a single entry in the watch history.
// Season and Episode are only set for TV.
type WatchHistoryEntry struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	MediaID     int       `json:"movie_id"`
	Kind        Kind      `json:"media_type"`
	Title       string    `json:"title"`
	PosterPath  string    `json:"poster_path,omitempty"`
	Season      *int      `json:"season,omitempty"`
	Episode     *int      `json:"episode,omitempty"`
	Progress    float64   `json:"progress"`
	LastWatched time.Time `json:"last_watched"`
	CreatedAt   time.Time `json:"created_at"`
}

// DisplayTitle formats a history entry for list selection.
func (e WatchHistoryEntry) DisplayTitle() string {
	display := e.Title
	if e.Kind == TV && e.Season != nil && e.Episode != nil {
		display = fmt.Sprintf("%s S%02dE%02d", e.Title, *e.Season, *e.Episode)
	}
	if e.Progress > 0 {
		display += fmt.Sprintf(" [%.0f%%]", e.Progress)
	}
	return display
}
