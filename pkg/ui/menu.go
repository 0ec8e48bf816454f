package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dlnilsson/repro-wizard/pkg/menu"
)

type menuSelectModel struct {
	title    string
	choices  []menu.Item
	cursor   int
	selected *menu.Item
	done     bool
}

// ErrNoSelection is returned when the picker is closed without a choice.
var ErrNoSelection = errors.New("no menu entry selected")

// SelectMenuItem shows the entries under title and returns the chosen one.
func SelectMenuItem(title string, choices []menu.Item) (menu.Item, error) {
	if len(choices) == 0 {
		return menu.Item{}, errors.New("no models available for selection")
	}
	m := menuSelectModel{title: title, choices: choices}
	p := tea.NewProgram(m, tea.WithOutput(getTerminalOutput()))
	final, err := p.Run()
	if err != nil {
		return menu.Item{}, err
	}
	selected := final.(menuSelectModel).selected
	if selected == nil {
		return menu.Item{}, ErrNoSelection
	}
	return *selected, nil
}

func (m menuSelectModel) Init() tea.Cmd {
	return nil
}

func (m menuSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.done = true
			return m, tea.Quit
		case "enter":
			choice := m.choices[m.cursor]
			m.selected = &choice
			m.done = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.choices)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m menuSelectModel) View() string {
	if m.done {
		return "\r\033[2K"
	}
	var b strings.Builder
	b.WriteString("\n" + titleStyle.Render(m.title) + "\n\n")
	for i, choice := range m.choices {
		cursor := " "
		line := choice.Title
		if m.cursor == i {
			cursor = accentStyle.Render(">")
			line = accentStyle.Render(line)
		}
		b.WriteString(fmt.Sprintf(" %s %s\n", cursor, line))
	}
	b.WriteString(mutedStyle.Render("\nEnter to select, q/esc to cancel.") + "\n")
	return b.String()
}
