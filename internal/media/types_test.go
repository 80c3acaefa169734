package media

import "testing"

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"movie", Movie, false},
		{"Movies", Movie, false},
		{"tv", TV, false},
		{"series", TV, false},
		{"all", All, false},
		{"person", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDisplayTitle(t *testing.T) {
	m := MediaItem{Title: "The Matrix", Kind: Movie, ReleaseDate: "1999-03-30", VoteAverage: 8.2}
	if got := m.DisplayTitle(); got != "[Movie] The Matrix (1999) ★ 8.2" {
		t.Errorf("movie display = %q", got)
	}

	show := MediaItem{Title: "Dark", Kind: TV}
	if got := show.DisplayTitle(); got != "[TV] Dark" {
		t.Errorf("tv display = %q", got)
	}
}

func TestHistoryDisplayTitle(t *testing.T) {
	season, episode := 2, 5
	entries := []struct {
		entry WatchHistoryEntry
		want  string
	}{
		{WatchHistoryEntry{Title: "Movie A", Kind: Movie, Progress: 50}, "Movie A [50%]"},
		{WatchHistoryEntry{Title: "Show B", Kind: TV, Season: &season, Episode: &episode}, "Show B S02E05"},
		{WatchHistoryEntry{Title: "Show C", Kind: TV}, "Show C"},
	}
	for _, tt := range entries {
		if got := tt.entry.DisplayTitle(); got != tt.want {
			t.Errorf("DisplayTitle() = %q, want %q", got, tt.want)
		}
	}
}
