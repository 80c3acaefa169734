package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestSelectPlain(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr error
	}{
		{"first", "1\n", 0, nil},
		{"last", "3\n", 2, nil},
		{"retry after junk", "x\n9\n2\n", 1, nil},
		{"quit", "q\n", -1, ErrCancelled},
		{"eof", "", -1, ErrCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := selectPlain(strings.NewReader(tt.input), &out, "Pick", []string{"a", "b", "c"})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
			if !strings.Contains(out.String(), "  2) b") {
				t.Errorf("menu not printed: %q", out.String())
			}
		})
	}
}

func TestInputPlain(t *testing.T) {
	got, err := inputPlain(strings.NewReader("  the matrix \n"), &bytes.Buffer{}, "Search")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "the matrix" {
		t.Errorf("got %q", got)
	}

	if _, err := inputPlain(strings.NewReader("\n"), &bytes.Buffer{}, "Search"); err == nil {
		t.Error("expected error for empty input")
	}

	got, err = inputPlain(strings.NewReader("no newline"), &bytes.Buffer{}, "Search")
	if err != nil || got != "no newline" {
		t.Errorf("got %q, %v", got, err)
	}
}

func TestSelectModelKeys(t *testing.T) {
	m := newSelectModel("Pick", []string{"a", "b", "c"})

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	sm := next.(selectModel)
	if sm.chosen != 1 {
		t.Errorf("chosen = %d, want 1", sm.chosen)
	}
	if cmd == nil {
		t.Error("expected quit command")
	}

	next, _ = newSelectModel("Pick", []string{"a"}).Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !next.(selectModel).cancelled {
		t.Error("esc should cancel")
	}
}

func TestInputModel(t *testing.T) {
	var m tea.Model = newInputModel("Search", false)
	for _, r := range "dune" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	im := m.(inputModel)
	if im.cancelled {
		t.Fatal("unexpected cancel")
	}
	if im.input.Value() != "dune" {
		t.Errorf("value = %q, want dune", im.input.Value())
	}
	if !strings.Contains(im.View(), "Search") {
		t.Error("view missing prompt")
	}
}
