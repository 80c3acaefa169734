package cmd

import (
	"testing"

	"marquee/internal/media"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		args    []string
		id      int
		kind    media.Kind
		wantErr bool
	}{
		{[]string{"movie/603"}, 603, media.Movie, false},
		{[]string{"tv", "1399"}, 1399, media.TV, false},
		{[]string{"603"}, 0, "", true},
		{[]string{"person", "1"}, 0, "", true},
	}

	for _, tt := range tests {
		id, kind, err := parseRef(tt.args)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseRef(%v) expected error", tt.args)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseRef(%v) error: %v", tt.args, err)
			continue
		}
		if id != tt.id || kind != tt.kind {
			t.Errorf("parseRef(%v) = %d, %s; want %d, %s", tt.args, id, kind, tt.id, tt.kind)
		}
	}
}

func TestParseKindArg(t *testing.T) {
	kind, err := parseKindArg(nil, media.Movie, false)
	if err != nil || kind != media.Movie {
		t.Errorf("default = %q, %v", kind, err)
	}

	kind, err = parseKindArg([]string{"shows"}, media.Movie, false)
	if err != nil || kind != media.TV {
		t.Errorf("shows = %q, %v", kind, err)
	}

	if _, err := parseKindArg([]string{"all"}, media.Movie, false); err == nil {
		t.Error("all should be rejected outside trending")
	}

	kind, err = parseKindArg([]string{"all"}, media.All, true)
	if err != nil || kind != media.All {
		t.Errorf("all = %q, %v", kind, err)
	}
}

func TestLabels(t *testing.T) {
	if got := seasonLabel(media.Season{Number: 2, EpisodeCount: 10}); got != "Season 2 (10 episodes)" {
		t.Errorf("seasonLabel = %q", got)
	}
	if got := seasonLabel(media.Season{Number: 1, Name: "Book One"}); got != "Book One" {
		t.Errorf("seasonLabel = %q", got)
	}
	if got := episodeLabel(media.Episode{Number: 3, Name: "Lord Snow"}); got != "Episode 3: Lord Snow" {
		t.Errorf("episodeLabel = %q", got)
	}
	if got := episodeLabel(media.Episode{Number: 4}); got != "Episode 4" {
		t.Errorf("episodeLabel = %q", got)
	}
}
