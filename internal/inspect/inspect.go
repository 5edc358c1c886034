// Package inspect reads rendered button markup back into structured form and
// checks it against the props that produced it.
package inspect

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/conneroisu/buttonbook/internal/catalog"
	"github.com/conneroisu/buttonbook/internal/errors"
	"github.com/conneroisu/buttonbook/internal/renderer"
	"github.com/conneroisu/buttonbook/pkg/button"
)

// Rendered is what a browser would see of the first button in a document.
type Rendered struct {
	Label        string
	Type         string
	Background   string
	Declarations map[string]string
}

// Inspect parses markup and extracts the first <button> element.
func Inspect(markup string) (*Rendered, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeMalformedMarkup, "parsing markup").
			WithContext("cause", err.Error())
	}

	node := findButton(doc)
	if node == nil {
		return nil, errors.NewValidationError(errors.ErrCodeMalformedMarkup, "no <button> element found")
	}

	r := &Rendered{
		Label:        textContent(node),
		Declarations: map[string]string{},
	}
	for _, attr := range node.Attr {
		switch attr.Key {
		case "type":
			r.Type = attr.Val
		case "style":
			r.Declarations = ParseStyle(attr.Val)
		}
	}
	r.Background = r.Declarations["background-color"]

	return r, nil
}

func findButton(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Button {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findButton(c); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// parsedText applies the HTML parser's text normalisation: CR and CRLF become
// LF and NUL is dropped from body text.
func parsedText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\x00", "")
}

// ParseStyle splits an inline style attribute into lower-cased properties.
func ParseStyle(style string) map[string]string {
	decls := make(map[string]string)
	for _, part := range strings.Split(style, ";") {
		prop, val, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		if prop == "" {
			continue
		}
		decls[prop] = strings.TrimSpace(val)
	}
	return decls
}

// Check compares a rendered button with the style and label props ask for.
func Check(story catalog.Story, r *Rendered) error {
	want := button.StyleFor(story.Args.Variant)

	if want := parsedText(story.Args.Text); r.Label != want {
		return errors.NewContractError(story.Name,
			fmt.Sprintf("label %q, want %q", r.Label, want))
	}

	for _, d := range want.Declarations() {
		if got := r.Declarations[d[0]]; !strings.EqualFold(got, d[1]) {
			return errors.NewContractError(story.Name,
				fmt.Sprintf("%s %q, want %q", d[0], got, d[1])).
				WithContext("variant", story.Args.Variant.String())
		}
	}

	return nil
}

// Verify renders a story and checks the result.
func Verify(ctx context.Context, story catalog.Story) error {
	markup, err := renderer.HTML(ctx, story)
	if err != nil {
		return err
	}

	r, err := Inspect(markup)
	if err != nil {
		return errors.NewRenderError(errors.ErrCodeMalformedMarkup, "inspecting rendered story", err).WithStory(story.Name)
	}

	return Check(story, r)
}

// VerifyAll verifies every story and collects the failures.
func VerifyAll(ctx context.Context, stories []catalog.Story) *errors.ErrorCollector {
	collector := errors.NewErrorCollector()
	for _, story := range stories {
		collector.Add(Verify(ctx, story))
	}
	return collector
}
