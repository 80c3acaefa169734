package metadata

import "marquee/internal/media"

// listResponse is the paged envelope shared by trending, popular, top-rated
// and search endpoints.
type listResponse struct {
	Page         int       `json:"page"`
	TotalPages   int       `json:"total_pages"`
	TotalResults int       `json:"total_results"`
	Results      []rawItem `json:"results"`
}

type seasonResponse struct {
	Episodes []media.Episode `json:"episodes"`
}

// rawItem mirrors the TMDB movie/tv JSON. Movies use title/release_date,
// shows use name/first_air_date.
type rawItem struct {
	ID               int            `json:"id"`
	MediaType        string         `json:"media_type"`
	Title            string         `json:"title"`
	Name             string         `json:"name"`
	Overview         string         `json:"overview"`
	PosterPath       string         `json:"poster_path"`
	BackdropPath     string         `json:"backdrop_path"`
	VoteAverage      float64        `json:"vote_average"`
	ReleaseDate      string         `json:"release_date"`
	FirstAirDate     string         `json:"first_air_date"`
	GenreIDs         []int          `json:"genre_ids"`
	Genres           []media.Genre  `json:"genres"`
	Runtime          int            `json:"runtime"`
	NumberOfSeasons  int            `json:"number_of_seasons"`
	NumberOfEpisodes int            `json:"number_of_episodes"`
	Seasons          []media.Season `json:"seasons"`
	Credits          *struct {
		Cast []media.CastMember `json:"cast"`
	} `json:"credits"`
}

func (r listResponse) items(requested media.Kind) []media.MediaItem {
	items := make([]media.MediaItem, 0, len(r.Results))
	for _, raw := range r.Results {
		if item, ok := raw.toItem(requested); ok {
			items = append(items, item)
		}
	}
	return items
}

// toItem normalizes a raw record. It reports false for records that are
// neither movies nor TV shows (search/multi also returns people).
func (r rawItem) toItem(requested media.Kind) (media.MediaItem, bool) {
	kind, ok := r.resolveKind(requested)
	if !ok {
		return media.MediaItem{}, false
	}

	item := media.MediaItem{
		ID:               r.ID,
		Kind:             kind,
		Title:            r.Title,
		Overview:         r.Overview,
		PosterPath:       r.PosterPath,
		BackdropPath:     r.BackdropPath,
		VoteAverage:      r.VoteAverage,
		ReleaseDate:      r.ReleaseDate,
		Runtime:          r.Runtime,
		NumberOfSeasons:  r.NumberOfSeasons,
		NumberOfEpisodes: r.NumberOfEpisodes,
		Genres:           r.Genres,
		Seasons:          r.Seasons,
	}
	if item.Title == "" {
		item.Title = r.Name
	}
	if item.Title == "" {
		item.Title = "Unknown"
	}
	if item.ReleaseDate == "" {
		item.ReleaseDate = r.FirstAirDate
	}
	if r.Credits != nil {
		item.Cast = r.Credits.Cast
	}
	return item, true
}

func (r rawItem) resolveKind(requested media.Kind) (media.Kind, bool) {
	switch r.MediaType {
	case "movie":
		return media.Movie, true
	case "tv":
		return media.TV, true
	case "":
	default:
		return "", false
	}
	if requested.Valid() {
		return requested, true
	}
	if r.Title != "" {
		return media.Movie, true
	}
	return media.TV, true
}
