package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case ReloadErrorMsg:
		m.reloadErr = ""
		if msg.Err != nil {
			m.reloadErr = msg.Err.Error()
		}
		return m, nil

	case CatalogEventMsg:
		m.refresh()
		return m, waitForEvent(m.events)
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.catalog.UnWatch(m.events)
		m.events = nil
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.stories)-1 {
			m.cursor++
		}
	}

	return m, nil
}

// refresh reloads stories, keeping the selection on the same story name when
// it still exists.
func (m *Model) refresh() {
	var current string
	if story, ok := m.Selected(); ok {
		current = story.Name
	}

	m.meta = m.catalog.Meta()
	m.stories = m.catalog.All()

	m.cursor = 0
	for i, story := range m.stories {
		if story.Name == current {
			m.cursor = i
			break
		}
	}
}
