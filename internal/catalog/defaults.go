package catalog

import "github.com/conneroisu/buttonbook/pkg/button"

// DefaultTitle is the catalog title used when none is configured.
const DefaultTitle = "Button"

// DefaultMeta describes the button's editable args.
func DefaultMeta(title string) Meta {
	if title == "" {
		title = DefaultTitle
	}

	options := make([]string, 0, len(button.Variants()))
	for _, v := range button.Variants() {
		options = append(options, string(v))
	}

	return Meta{
		Title:     title,
		Component: "Button",
		ArgTypes: []ArgType{
			{Name: "text", Control: ControlText, Description: "Label rendered inside the button"},
			{Name: "variant", Control: ControlSelect, Options: options, Description: "Visual style; empty means default"},
		},
		Parameters: Parameters{ControlsExpanded: true},
	}
}

// DefaultStories returns the built-in Default, Primary and Secondary stories.
func DefaultStories() []Story {
	return []Story{
		{
			Name:        "Default",
			Description: "Base style with no variant",
			Args:        button.Props{Text: "I am the default story button"},
		},
		{
			Name:        "Primary",
			Description: "Primary variant",
			Args:        button.Props{Text: "I am the primary story button", Variant: button.VariantPrimary},
		},
		{
			Name:        "Secondary",
			Description: "Secondary variant",
			Args:        button.Props{Text: "I am the secondary story button", Variant: button.VariantSecondary},
		},
	}
}

// NewDefault returns a catalog populated with the built-in stories.
func NewDefault(title string) *Catalog {
	c := New(DefaultMeta(title))
	for _, s := range DefaultStories() {
		_ = c.Register(s)
	}
	return c
}
