package catalog

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/buttonbook/internal/config"
	"github.com/conneroisu/buttonbook/internal/errors"
	"github.com/conneroisu/buttonbook/pkg/button"
)

// File is the on-disk layout of a stories file.
//
//	title: Button
//	stories:
//	  - name: Primary
//	    args:
//	      text: I am the primary story button
//	      variant: primary
type File struct {
	Title   string      `yaml:"title" validate:"required"`
	Stories []FileStory `yaml:"stories" validate:"required,min=1,dive"`
}

// FileStory is one story entry. An empty name is derived from the variant.
type FileStory struct {
	Name        string   `yaml:"name,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Args        FileArgs `yaml:"args"`
}

// FileArgs mirrors button.Props. Text must be present but may be empty; the
// variant is deliberately left unchecked so unknown tags render as default.
type FileArgs struct {
	Text    *string `yaml:"text" validate:"required"`
	Variant string  `yaml:"variant,omitempty"`
}

// Parse decodes and validates a stories document.
func Parse(data []byte) (Meta, []Story, error) {
	var file File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return Meta{}, nil, errors.NewValidationError(errors.ErrCodeStoriesInvalid, "decoding stories").
			WithContext("cause", err.Error())
	}

	if err := config.Validator().Struct(&file); err != nil {
		return Meta{}, nil, errors.NewValidationError(errors.ErrCodeStoriesInvalid, describeValidation(err))
	}

	stories := make([]Story, 0, len(file.Stories))
	seen := make(map[string]string, len(file.Stories))
	for i, fs := range file.Stories {
		variant := button.Variant(fs.Args.Variant)
		name := strings.TrimSpace(fs.Name)
		if name == "" {
			name = DisplayName(variant)
		}
		if err := ValidateName(name); err != nil {
			return Meta{}, nil, fmt.Errorf("stories[%d]: %w", i, err)
		}
		id := StoryID(name)
		if prev, ok := seen[id]; ok {
			return Meta{}, nil, errors.NewValidationError(errors.ErrCodeDuplicateStory,
				fmt.Sprintf("stories[%d]: story %q duplicates %q (id %q)", i, name, prev, id)).WithStory(name)
		}
		seen[id] = name

		stories = append(stories, Story{
			Name:        name,
			Description: fs.Description,
			Args: button.Props{
				Text:    *fs.Args.Text,
				Variant: variant,
			},
		})
	}

	return DefaultMeta(file.Title), stories, nil
}

func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

// LoadFile reads a stories file from disk.
func LoadFile(path string) (Meta, []Story, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Meta{}, nil, errors.NewIOError(errors.ErrCodeFileNotFound, "reading stories file "+path, err)
	}
	return Parse(data)
}

// Reload replaces the catalog contents with the stories in path. The catalog
// is left untouched when the file is invalid.
func (c *Catalog) Reload(path string) error {
	meta, stories, err := LoadFile(path)
	if err != nil {
		return err
	}
	c.Replace(meta, stories)
	return nil
}

// Marshal encodes the catalog in the stories file layout.
func (c *Catalog) Marshal() ([]byte, error) {
	stories := c.All()
	file := File{
		Title:   c.Meta().Title,
		Stories: make([]FileStory, 0, len(stories)),
	}
	for _, s := range stories {
		text := s.Args.Text
		file.Stories = append(file.Stories, FileStory{
			Name:        s.Name,
			Description: s.Description,
			Args:        FileArgs{Text: &text, Variant: string(s.Args.Variant)},
		})
	}
	return yaml.Marshal(&file)
}
