package tui

import (
	"fmt"
	"strings"

	"github.com/conneroisu/buttonbook/internal/renderer"
)

// View renders the story list and the selected button.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width > 0 && m.width < MinWidth {
		return errorStyle.Render(fmt.Sprintf("Terminal too small (%d columns). Minimum width: %d", m.width, MinWidth))
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(m.meta.Title))
	b.WriteString("\n\n")

	if m.reloadErr != "" {
		b.WriteString(errorStyle.Render("Reload failed: " + m.reloadErr))
		b.WriteString("\n\n")
	}

	if len(m.stories) == 0 {
		b.WriteString(mutedStyle.Render("No stories"))
		b.WriteString("\n\n")
		b.WriteString(m.help.View(m.keys))
		return b.String()
	}

	for i, story := range m.stories {
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + story.Name))
		} else {
			b.WriteString(itemStyle.Render("  " + story.Name))
		}
		b.WriteString("\n")
	}

	story, _ := m.Selected()
	b.WriteString(canvasStyle.Render(renderer.ANSI(story, m.width)))
	b.WriteString("\n")

	if story.Description != "" {
		b.WriteString(mutedStyle.Render(story.Description))
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render(story.Args.Style().CSS()))
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}
