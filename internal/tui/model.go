// Package tui is an interactive terminal browser for the story catalog.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/conneroisu/buttonbook/internal/catalog"
)

// MinWidth is the narrowest terminal the browser will draw into.
const MinWidth = 40

// CatalogEventMsg wraps a catalog change so the list can refresh.
type CatalogEventMsg struct {
	Event catalog.Event
}

// ReloadErrorMsg reports the outcome of a stories file reload. A nil Err
// clears the previous failure.
type ReloadErrorMsg struct {
	Err error
}

// Model contains the Bubbletea state for the story browser.
type Model struct {
	catalog *catalog.Catalog
	events  <-chan catalog.Event
	meta    catalog.Meta
	stories []catalog.Story
	cursor  int

	reloadErr string

	keys keyMap
	help help.Model

	width    int
	height   int
	quitting bool
}

// NewModel builds a browser over cat and subscribes to its changes.
func NewModel(cat *catalog.Catalog) Model {
	return Model{
		catalog: cat,
		events:  cat.Watch(),
		meta:    cat.Meta(),
		stories: cat.All(),
		keys:    defaultKeyMap(),
		help:    help.New(),
	}
}

// Init waits for the first catalog event.
func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

// Selected returns the highlighted story, if any.
func (m Model) Selected() (catalog.Story, bool) {
	if m.cursor < 0 || m.cursor >= len(m.stories) {
		return catalog.Story{}, false
	}
	return m.stories[m.cursor], true
}

// Quitting reports whether the user asked to leave.
func (m Model) Quitting() bool {
	return m.quitting
}

func waitForEvent(events <-chan catalog.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return CatalogEventMsg{Event: event}
	}
}
