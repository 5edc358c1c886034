// Package renderer turns catalog stories into HTML fragments, full preview
// pages and terminal swatches.
package renderer

import (
	"bytes"
	"context"

	"github.com/conneroisu/buttonbook/internal/catalog"
	"github.com/conneroisu/buttonbook/internal/errors"
	"github.com/conneroisu/buttonbook/pkg/button"
)

// HTML renders the story's button fragment.
func HTML(ctx context.Context, story catalog.Story) (string, error) {
	var buf bytes.Buffer
	if err := button.Button(story.Args).Render(ctx, &buf); err != nil {
		return "", errors.NewRenderError(errors.ErrCodeRenderFailed, "rendering story", err).WithStory(story.Name)
	}
	return buf.String(), nil
}

// PageHTML renders a full preview page to a string.
func PageHTML(ctx context.Context, data PageData) (string, error) {
	var buf bytes.Buffer
	if err := Page(data).Render(ctx, &buf); err != nil {
		return "", errors.NewRenderError(errors.ErrCodeRenderFailed, "rendering page", err).WithStory(data.Selected.Name)
	}
	return buf.String(), nil
}
