package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conneroisu/buttonbook/internal/catalog"
	"github.com/conneroisu/buttonbook/internal/renderer"
)

var renderFormat string

var renderCmd = &cobra.Command{
	Use:     "render <story>",
	Aliases: []string{"r"},
	Short:   "Render a story as HTML or as a terminal swatch",
	Long: `Render one story. The story is matched by name or by id.

Examples:
  buttonbook render Primary                      # HTML fragment
  buttonbook render primary -f ansi              # Terminal swatch
  buttonbook render Default --text Hi --variant secondary`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "html", "Output format (html, ansi)")
	renderCmd.Flags().String("text", "", "Override the story's text arg")
	renderCmd.Flags().String("variant", "", "Override the story's variant arg")

	AddFlagValidation(renderCmd, "format", choiceValidator("html", "ansi"))
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	story, err := cat.Lookup(args[0])
	if err != nil {
		return err
	}

	var text, variant *string
	if cmd.Flags().Changed("text") {
		v, _ := cmd.Flags().GetString("text")
		text = &v
	}
	if cmd.Flags().Changed("variant") {
		v, _ := cmd.Flags().GetString("variant")
		variant = &v
	}

	return writeRender(cmd.Context(), cmd.OutOrStdout(), story.WithOverrides(text, variant), renderFormat)
}

func writeRender(ctx context.Context, w io.Writer, story catalog.Story, format string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var out string
	switch format {
	case "ansi":
		out = renderer.ANSI(story, 0)
	case "html", "":
		html, err := renderer.HTML(ctx, story)
		if err != nil {
			return err
		}
		out = html
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}

	_, err := fmt.Fprintln(w, out)
	return err
}
