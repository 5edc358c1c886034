// Package button provides a styled templ button with two colour variants.
//
// The component is stateless: the rendered markup is a pure function of
// Props, and any variant tag outside Variants() renders with the default
// sea-green background rather than failing.
//
//	btn := button.Button(button.Props{Text: "Save", Variant: button.VariantPrimary})
//	err := btn.Render(ctx, w)
package button

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Props configures a button. Text is rendered verbatim (HTML-escaped) and may
// be empty.
type Props struct {
	Text    string  `json:"text" yaml:"text"`
	Variant Variant `json:"variant,omitempty" yaml:"variant,omitempty"`
}

// Style resolves the props' style.
func (p Props) Style() Style {
	return StyleFor(p.Variant)
}

// Button returns a templ component rendering props as a <button> element.
func Button(props Props) templ.Component {
	css := props.Style().CSS()
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<button type="button" style="`); err != nil {
			return err
		}
		if _, err := io.WriteString(w, templ.EscapeString(css)); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `">`); err != nil {
			return err
		}
		if _, err := io.WriteString(w, templ.EscapeString(props.Text)); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</button>`)
		return err
	})
}
