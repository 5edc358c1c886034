package renderer

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/buttonbook/internal/catalog"
	"github.com/conneroisu/buttonbook/pkg/button"
)

func TestHTML(t *testing.T) {
	for _, story := range catalog.DefaultStories() {
		t.Run(story.Name, func(t *testing.T) {
			out, err := HTML(context.Background(), story)
			require.NoError(t, err)
			assert.Contains(t, out, story.Args.Text)
			assert.Contains(t, out, "background-color: "+button.StyleFor(story.Args.Variant).Background)
		})
	}
}

func TestPageHTML(t *testing.T) {
	stories := catalog.DefaultStories()
	data := PageData{
		Meta:      catalog.DefaultMeta(""),
		Stories:   stories,
		Selected:  stories[1],
		HotReload: true,
	}

	out, err := PageHTML(context.Background(), data)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, `<a href="/story/primary" class="active">Primary</a>`)
	assert.Contains(t, out, `<a href="/story/default">Default</a>`)
	assert.Contains(t, out, "I am the primary story button</button>")
	assert.Contains(t, out, `<option value="primary" selected>primary</option>`)
	assert.Contains(t, out, `<td>background-color</td><td>#FFEFD5</td>`)
	assert.Contains(t, out, `new WebSocket`)
	assert.NotContains(t, out, `id="reload-error"`)
}

func TestPageHTMLWithoutReloadAndWithError(t *testing.T) {
	story := catalog.Story{Name: "Odd", Args: button.Props{Text: "<b>x</b>", Variant: "ghost"}}
	data := PageData{
		Meta:        catalog.DefaultMeta(""),
		Stories:     []catalog.Story{story},
		Selected:    story,
		ReloadError: "stories.yml: title is required",
	}

	out, err := PageHTML(context.Background(), data)
	require.NoError(t, err)

	assert.NotContains(t, out, "new WebSocket")
	assert.Contains(t, out, `id="reload-error">stories.yml: title is required`)
	assert.NotContains(t, out, "<b>x</b>")
	assert.Contains(t, out, `<option value="ghost" selected>ghost</option>`)
	assert.Contains(t, out, `<td>background-color</td><td>#2e8b57</td>`)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrShortWrite }

func TestPagePropagatesWriteErrors(t *testing.T) {
	stories := catalog.DefaultStories()
	err := Page(PageData{Meta: catalog.DefaultMeta(""), Stories: stories, Selected: stories[0]}).
		Render(context.Background(), failingWriter{})
	assert.ErrorIs(t, err, io.ErrShortWrite)
}

func TestANSIGeometry(t *testing.T) {
	story := catalog.Story{Name: "Default", Args: button.Props{Text: "Click me"}}
	out := ANSI(story, 0)

	assert.Contains(t, out, "Click me")
	assert.Equal(t, 3, lipgloss.Height(out), "one padding row above and below")
	assert.Equal(t, len("Click me")+6, lipgloss.Width(out), "three padding cells each side")
}

func TestANSIEmptyText(t *testing.T) {
	out := ANSI(catalog.Story{Name: "Empty", Args: button.Props{Variant: button.VariantPrimary}}, 0)
	assert.Equal(t, 3, lipgloss.Height(out))
	assert.Equal(t, 6, lipgloss.Width(out))
}

func TestANSIBackgroundColours(t *testing.T) {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.TrueColor)

	tests := []struct {
		variant button.Variant
		seq     string
	}{
		{button.VariantDefault, "48;2;46;139;87"},
		{button.VariantPrimary, "48;2;255;239;213"},
		{button.VariantSecondary, "48;2;250;128;114"},
		{"unknown", "48;2;46;139;87"},
	}

	for _, tt := range tests {
		t.Run(tt.variant.String(), func(t *testing.T) {
			out := ANSIWith(r, catalog.Story{Args: button.Props{Text: "x", Variant: tt.variant}}, 0)
			assert.Contains(t, out, tt.seq)
		})
	}
}

func TestANSITrueColourLines(t *testing.T) {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.TrueColor)

	story := catalog.Story{Name: "Secondary", Args: button.Props{Text: "Click me", Variant: button.VariantSecondary}}
	out := ANSIWith(r, story, 0)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "\x1b[48;2;250;128;114;38;2;0;0;0m"), "line %q", line)
		assert.True(t, strings.HasSuffix(line, "\x1b[m"), "line %q", line)
	}
	assert.Equal(t, len("Click me")+6, lipgloss.Width(out))
	assert.Contains(t, lines[1], "Click me")
}

func TestANSITrueColourMaxWidth(t *testing.T) {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.TrueColor)

	out := ANSIWith(r, catalog.Story{Args: button.Props{Text: strings.Repeat("x", 40)}}, 12)
	assert.LessOrEqual(t, lipgloss.Width(out), 12)
	assert.Contains(t, out, "48;2;46;139;87")
}
