//go:build property
// +build property

package button

import (
	"bytes"
	"context"
	"html"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func renderString(props Props) (string, error) {
	var buf bytes.Buffer
	err := Button(props).Render(context.Background(), &buf)
	return buf.String(), err
}

// TestButtonProperties checks the styling and label rules over generated input.
func TestButtonProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("unrecognised variants render the default background", prop.ForAll(
		func(tag string) bool {
			v := Variant(tag)
			if v == VariantPrimary || v == VariantSecondary {
				return true
			}
			return StyleFor(v).Background == ColorDefault
		},
		gen.AnyString(),
	))

	properties.Property("primary background is independent of text", prop.ForAll(
		func(text string) bool {
			out, err := renderString(Props{Text: text, Variant: VariantPrimary})
			return err == nil && strings.Contains(out, "background-color: "+ColorPrimary)
		},
		gen.AnyString(),
	))

	properties.Property("secondary background is independent of text", prop.ForAll(
		func(text string) bool {
			out, err := renderString(Props{Text: text, Variant: VariantSecondary})
			return err == nil && strings.Contains(out, "background-color: "+ColorSecondary)
		},
		gen.AnyString(),
	))

	properties.Property("label round-trips through escaping", prop.ForAll(
		func(text string, tag string) bool {
			out, err := renderString(Props{Text: text, Variant: Variant(tag)})
			if err != nil {
				return false
			}
			start := strings.Index(out, `">`)
			end := strings.LastIndex(out, "</button>")
			if start < 0 || end < start {
				return false
			}
			return html.UnescapeString(out[start+2:end]) == text
		},
		gen.AnyString(),
		gen.OneConstOf("", "primary", "secondary", "tertiary"),
	))

	properties.Property("rendering is deterministic", prop.ForAll(
		func(text string, tag string) bool {
			props := Props{Text: text, Variant: Variant(tag)}
			a, errA := renderString(props)
			b, errB := renderString(props)
			return errA == nil && errB == nil && a == b
		},
		gen.AnyString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
