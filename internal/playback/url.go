package playback

import (
	"fmt"
	"strings"

	"marquee/internal/apperr"
	"marquee/internal/httputil"
	"marquee/internal/media"
)

// BuildURL returns the player page for a title on s.
//
// Movies resolve to base+moviePath+id. A TV show resolves to
// base+tvPath+id/season/episode when both are positive, otherwise to the
// show page base+tvPath+id.
func BuildURL(s Server, kind media.Kind, mediaID, season, episode int) (string, error) {
	if mediaID <= 0 {
		return "", apperr.BadRequest(fmt.Sprintf("invalid media id %d", mediaID))
	}

	base := strings.TrimRight(s.BaseURL, "/")
	var u string
	switch kind {
	case media.Movie:
		u = fmt.Sprintf("%s%s%d", base, ensureSlashes(s.MoviePath), mediaID)
	case media.TV:
		u = fmt.Sprintf("%s%s%d", base, ensureSlashes(s.TVPath), mediaID)
		if season > 0 && episode > 0 {
			u += fmt.Sprintf("/%d/%d", season, episode)
		}
	default:
		return "", apperr.BadRequest(fmt.Sprintf("invalid media kind %q", kind))
	}

	if err := httputil.ValidateURL(u); err != nil {
		return "", fmt.Errorf("server %s: %w", s.Key, err)
	}
	return u, nil
}

func ensureSlashes(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}
