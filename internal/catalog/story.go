// Package catalog holds the named example configurations ("stories") that the
// preview server, terminal browser and contract checker display.
//
// A catalog only knows the button's public Props; it never inspects how the
// button renders.
package catalog

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/conneroisu/buttonbook/internal/errors"
	"github.com/conneroisu/buttonbook/pkg/button"
)

// ControlType names the editor a catalog UI shows for an arg.
type ControlType string

const (
	ControlText   ControlType = "text"
	ControlSelect ControlType = "select"
)

// ArgType describes one editable arg of the component.
type ArgType struct {
	Name        string      `json:"name" yaml:"name"`
	Control     ControlType `json:"control" yaml:"control"`
	Options     []string    `json:"options,omitempty" yaml:"options,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
}

// Parameters carries display options for the catalog UI.
type Parameters struct {
	ControlsExpanded bool `json:"controls_expanded" yaml:"controls_expanded"`
}

// Meta describes the component a catalog documents.
type Meta struct {
	Title      string     `json:"title" yaml:"title"`
	Component  string     `json:"component" yaml:"component"`
	ArgTypes   []ArgType  `json:"arg_types" yaml:"arg_types"`
	Parameters Parameters `json:"parameters" yaml:"parameters"`
}

// Story is a named button configuration.
type Story struct {
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Args        button.Props `json:"args" yaml:"args"`
}

// ID returns the URL-friendly identifier of the story.
func (s Story) ID() string {
	return StoryID(s.Name)
}

// WithOverrides returns a copy of the story with control values applied.
// Nil pointers leave the corresponding arg untouched.
func (s Story) WithOverrides(text, variant *string) Story {
	out := s
	if text != nil {
		out.Args.Text = *text
	}
	if variant != nil {
		out.Args.Variant = button.Variant(*variant)
	}
	return out
}

// StoryID lowercases a story name and joins words with dashes.
func StoryID(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

// DisplayName derives a story name from a variant tag.
func DisplayName(v button.Variant) string {
	if v == button.VariantDefault {
		return "Default"
	}
	return cases.Title(language.English).String(strings.TrimSpace(string(v)))
}

var storyNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 _-]*$`)

// ValidateName checks that a story name is safe to use in routes and file
// names.
func ValidateName(name string) error {
	if name == "" {
		return errors.ErrInvalidStoryName(name, "story name is empty")
	}
	if len(name) > 64 {
		return errors.ErrInvalidStoryName(name, "story name is longer than 64 characters")
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return errors.ErrInvalidStoryName(name, "story name contains path characters")
	}
	if !storyNamePattern.MatchString(name) {
		return errors.ErrInvalidStoryName(name, "story name contains invalid characters")
	}
	return nil
}
