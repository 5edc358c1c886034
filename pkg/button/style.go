package button

import (
	"fmt"
	"strings"
)

// Colours used by the palette.
const (
	ColorDefault   = "#2e8b57" // sea green
	ColorPrimary   = "#FFEFD5" // papaya whip
	ColorSecondary = "#FA8072" // salmon
)

// Fixed geometry shared by every variant.
const (
	BorderRadius = 16
	PaddingY     = 18
	PaddingX     = 24
)

// palette maps recognised variants to their background colour. Lookups that
// miss fall back to defaultBackground.
var palette = map[Variant]string{
	VariantPrimary:   ColorPrimary,
	VariantSecondary: ColorSecondary,
}

const defaultBackground = ColorDefault

// Style is the resolved visual description of a button.
type Style struct {
	Background   string
	Border       string
	Cursor       string
	BorderRadius int
	PaddingY     int
	PaddingX     int
}

// StyleFor resolves the style for a variant.
func StyleFor(v Variant) Style {
	bg, ok := palette[v]
	if !ok {
		bg = defaultBackground
	}

	return Style{
		Background:   bg,
		Border:       "none",
		Cursor:       "pointer",
		BorderRadius: BorderRadius,
		PaddingY:     PaddingY,
		PaddingX:     PaddingX,
	}
}

// Declarations returns the CSS declarations in render order.
func (s Style) Declarations() [][2]string {
	return [][2]string{
		{"background-color", s.Background},
		{"border", s.Border},
		{"cursor", s.Cursor},
		{"border-radius", fmt.Sprintf("%dpx", s.BorderRadius)},
		{"padding", fmt.Sprintf("%dpx %dpx", s.PaddingY, s.PaddingX)},
	}
}

// CSS returns the style as an inline declaration list.
func (s Style) CSS() string {
	decls := s.Declarations()
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d[0]+": "+d[1])
	}
	return strings.Join(parts, "; ")
}
