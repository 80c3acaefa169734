// Package playback turns a title into a third-party player page URL and
// opens it. Servers come from a static table keyed by identifier.
package playback

import (
	"fmt"
	"sort"
	"strings"

	"marquee/internal/apperr"
	"marquee/internal/config"
)

// Server is one video-hosting site.
type Server struct {
	Key                  string   `json:"key"`
	Name                 string   `json:"name"`
	BaseURL              string   `json:"base_url"`
	MoviePath            string   `json:"movie_path"`
	TVPath               string   `json:"tv_path"`
	SeriesSupported      bool     `json:"series_supported"`
	RequiresSubscription bool     `json:"requires_subscription"`
	Features             []string `json:"features,omitempty"`
}

// Label formats a server for list selection.
func (s Server) Label() string {
	label := s.Name
	if s.RequiresSubscription {
		label += " (subscription)"
	}
	if len(s.Features) > 0 {
		label += " [" + strings.Join(s.Features, ", ") + "]"
	}
	return label
}

// Table is the set of known servers.
type Table struct {
	servers  map[string]Server
	fallback string
}

// NewTable builds a table from configured servers. defaultKey is used when
// Lookup is given an empty key.
func NewTable(servers map[string]config.Server, defaultKey string) *Table {
	t := &Table{servers: make(map[string]Server, len(servers)), fallback: strings.ToLower(defaultKey)}
	for key, s := range servers {
		key = strings.ToLower(key)
		name := s.Name
		if name == "" {
			name = key
		}
		t.servers[key] = Server{
			Key:                  key,
			Name:                 name,
			BaseURL:              s.BaseURL,
			MoviePath:            s.MoviePath,
			TVPath:               s.TVPath,
			SeriesSupported:      s.SeriesSupported,
			RequiresSubscription: s.RequiresSubscription,
			Features:             s.Features,
		}
	}
	return t
}

// Lookup returns the server with the given key.
func (t *Table) Lookup(key string) (Server, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		key = t.fallback
	}
	s, ok := t.servers[key]
	if !ok {
		return Server{}, apperr.NotFound(fmt.Sprintf("unknown server %q", key))
	}
	return s, nil
}

// Default returns the default server key.
func (t *Table) Default() string { return t.fallback }

// List returns every server ordered by key.
func (t *Table) List() []Server {
	out := make([]Server, 0, len(t.servers))
	for _, s := range t.servers {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
