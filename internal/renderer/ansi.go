package renderer

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/conneroisu/buttonbook/internal/catalog"
	"github.com/conneroisu/buttonbook/pkg/button"
)

// Approximate size of a terminal cell, used to scale pixel padding.
const (
	cellWidthPx  = 8
	cellHeightPx = 18
)

// labelColor matches the browser's default button text colour.
const labelColor = "#000000"

// blockStyle is the swatch geometry without colours.
func blockStyle(r *lipgloss.Renderer, props button.Props) lipgloss.Style {
	style := props.Style()
	return r.NewStyle().
		Padding(cells(style.PaddingY, cellHeightPx), cells(style.PaddingX, cellWidthPx))
}

// TerminalStyle converts the button style into a lipgloss style rendered by r.
// A nil renderer uses lipgloss' default renderer.
func TerminalStyle(r *lipgloss.Renderer, props button.Props) lipgloss.Style {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}

	return blockStyle(r, props).
		Background(lipgloss.Color(props.Style().Background)).
		Foreground(lipgloss.Color(labelColor))
}

func cells(px, cellPx int) int {
	n := px / cellPx
	if n < 1 {
		return 1
	}
	return n
}

// ANSI renders the story as a terminal swatch. A positive maxWidth truncates
// long labels.
func ANSI(story catalog.Story, maxWidth int) string {
	return ANSIWith(nil, story, maxWidth)
}

// ANSIWith is ANSI using a specific lipgloss renderer. On true-colour
// terminals the palette bytes are written as-is; other profiles get lipgloss'
// nearest colour.
func ANSIWith(r *lipgloss.Renderer, story catalog.Story, maxWidth int) string {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}

	if r.ColorProfile() != termenv.TrueColor {
		style := TerminalStyle(r, story.Args)
		if maxWidth > 0 {
			style = style.MaxWidth(maxWidth)
		}
		return style.Render(story.Args.Text)
	}

	style := blockStyle(r, story.Args)
	if maxWidth > 0 {
		style = style.MaxWidth(maxWidth)
	}
	return paint(style.Render(story.Args.Text), story.Args.Style().Background)
}

// paint wraps every line of block in an exact 24-bit SGR sequence.
func paint(block, background string) string {
	sgr := ansi.Style{}.
		BackgroundColor(hexColor(background)).
		ForegroundColor(hexColor(labelColor))

	lines := strings.Split(block, "\n")
	for i, line := range lines {
		lines[i] = sgr.Styled(line)
	}
	return strings.Join(lines, "\n")
}

// hexColor parses "#RRGGBB". Palette colours are constants, so a malformed
// value is a programming error and renders black.
func hexColor(hex string) ansi.TrueColor {
	v, err := strconv.ParseUint(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil {
		return 0
	}
	return ansi.TrueColor(v)
}
