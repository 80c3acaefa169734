// Package ui provides the interactive selectors used by the CLI. On a
// terminal they run as small bubbletea programs; otherwise they fall back to
// numbered prompts on plain stdin/stderr.
package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// ErrCancelled is returned when the user backs out of a prompt.
var ErrCancelled = errors.New("selection cancelled")

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Interactive reports whether both stdin and stdout are terminals.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// Select presents items and returns the chosen index.
func Select(prompt string, items []string) (int, error) {
	if len(items) == 0 {
		return -1, fmt.Errorf("no items to select from")
	}
	if !Interactive() {
		return selectPlain(os.Stdin, os.Stderr, prompt, items)
	}

	final, err := tea.NewProgram(newSelectModel(prompt, items), tea.WithAltScreen(), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return -1, fmt.Errorf("running selector: %w", err)
	}
	m := final.(selectModel)
	if m.cancelled || m.chosen < 0 {
		return -1, ErrCancelled
	}
	return m.chosen, nil
}

// Confirm asks a yes/no question.
func Confirm(prompt string) (bool, error) {
	idx, err := Select(prompt, []string{"Yes", "No"})
	if err != nil {
		return false, err
	}
	return idx == 0, nil
}

// Input prompts for a line of free text.
func Input(prompt string) (string, error) {
	if !Interactive() {
		return inputPlain(os.Stdin, os.Stderr, prompt)
	}

	final, err := tea.NewProgram(newInputModel(prompt, false), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return "", fmt.Errorf("running prompt: %w", err)
	}
	m := final.(inputModel)
	if m.cancelled {
		return "", ErrCancelled
	}
	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		return "", fmt.Errorf("no input provided")
	}
	return value, nil
}

// Password prompts for a secret without echoing it.
func Password(prompt string) (string, error) {
	if !Interactive() {
		return inputPlain(os.Stdin, os.Stderr, prompt)
	}

	final, err := tea.NewProgram(newInputModel(prompt, true), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return "", fmt.Errorf("running prompt: %w", err)
	}
	m := final.(inputModel)
	if m.cancelled {
		return "", ErrCancelled
	}
	return m.input.Value(), nil
}

// Title renders a heading.
func Title(s string) string { return titleStyle.Render(s) }

// Heading renders a section heading.
func Heading(s string) string { return headingStyle.Render(s) }

// Dim renders secondary text.
func Dim(s string) string { return dimStyle.Render(s) }

// Error renders an error message.
func Error(s string) string { return errorStyle.Render(s) }

func selectPlain(r io.Reader, w io.Writer, prompt string, items []string) (int, error) {
	fmt.Fprintln(w, prompt)
	for i, item := range items {
		fmt.Fprintf(w, "%3d) %s\n", i+1, item)
	}

	sc := bufio.NewScanner(r)
	for {
		fmt.Fprint(w, "> ")
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return -1, fmt.Errorf("reading selection: %w", err)
			}
			return -1, ErrCancelled
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" || line == "q" {
			return -1, ErrCancelled
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(items) {
			fmt.Fprintf(w, "enter a number between 1 and %d\n", len(items))
			continue
		}
		return n - 1, nil
	}
}

func inputPlain(r io.Reader, w io.Writer, prompt string) (string, error) {
	fmt.Fprintf(w, "%s: ", prompt)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("no input provided")
	}
	return line, nil
}
