package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type entry struct {
	index int
	label string
}

func (e entry) Title() string       { return e.label }
func (e entry) Description() string { return "" }
func (e entry) FilterValue() string { return e.label }

type selectModel struct {
	list      list.Model
	chosen    int
	cancelled bool
}

func newSelectModel(prompt string, items []string) selectModel {
	entries := make([]list.Item, len(items))
	for i, s := range items {
		entries[i] = entry{index: i, label: s}
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	l := list.New(entries, delegate, 80, 20)
	l.Title = prompt
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(len(items) > 10)
	l.SetFilteringEnabled(true)

	return selectModel{list: l, chosen: -1}
}

func (m selectModel) Init() tea.Cmd { return nil }

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			if e, ok := m.list.SelectedItem().(entry); ok {
				m.chosen = e.index
			}
			return m, tea.Quit
		case "esc", "q", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m selectModel) View() string {
	return m.list.View()
}

type inputModel struct {
	prompt    string
	input     textinput.Model
	cancelled bool
}

func newInputModel(prompt string, secret bool) inputModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 256
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	ti.Focus()
	return inputModel{prompt: prompt, input: ti}
}

func (m inputModel) Init() tea.Cmd { return textinput.Blink }

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	return titleStyle.Render(m.prompt) + "\n" + m.input.View() + "\n" + dimStyle.Render("enter to confirm, esc to cancel")
}
