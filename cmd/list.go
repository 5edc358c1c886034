package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/buttonbook/internal/catalog"
)

var listFormat string

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l"},
	Short:   "List all stories",
	Long: `List the catalog's stories with their args and computed background.

Examples:
  buttonbook list                  # Table
  buttonbook list -f json          # JSON
  buttonbook list -s stories.yml -f yaml`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "Output format (table, json, yaml)")
	AddFlagValidation(listCmd, "format", choiceValidator("table", "json", "yaml"))
}

// listItem is one story in list output.
type listItem struct {
	ID          string `json:"id"                    yaml:"id"`
	Name        string `json:"name"                  yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Text        string `json:"text"                  yaml:"text"`
	Variant     string `json:"variant"               yaml:"variant"`
	Background  string `json:"background"            yaml:"background"`
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	return writeList(cmd.OutOrStdout(), cat.All(), listFormat)
}

func writeList(w io.Writer, stories []catalog.Story, format string) error {
	if len(stories) == 0 {
		_, err := fmt.Fprintln(w, "No stories found.")
		return err
	}

	items := make([]listItem, 0, len(stories))
	for _, s := range stories {
		items = append(items, listItem{
			ID:          s.ID(),
			Name:        s.Name,
			Description: s.Description,
			Text:        s.Args.Text,
			Variant:     s.Args.Variant.String(),
			Background:  s.Args.Style().Background,
		})
	}

	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(items); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		return writeListTable(w, items)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeListTable(w io.Writer, items []listItem) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tVARIANT\tBACKGROUND\tTEXT")
	fmt.Fprintln(tw, "----\t-------\t----------\t----")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", item.Name, item.Variant, item.Background, item.Text)
	}
	return tw.Flush()
}
