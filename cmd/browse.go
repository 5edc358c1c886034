package cmd

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/conneroisu/buttonbook/internal/catalog"
	"github.com/conneroisu/buttonbook/internal/config"
	"github.com/conneroisu/buttonbook/internal/logging"
	"github.com/conneroisu/buttonbook/internal/tui"
	"github.com/conneroisu/buttonbook/internal/watcher"
)

var browseCmd = &cobra.Command{
	Use:     "browse",
	Aliases: []string{"b"},
	Short:   "Browse stories in the terminal",
	Long: `Open an interactive story browser. Use up/down or k/j to move and q to
quit. With a stories file and hot reload enabled, edits to the file appear
immediately.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	program := tea.NewProgram(tui.NewModel(cat), tea.WithAltScreen(), tea.WithContext(ctx))

	if cfg.Development.HotReload && cfg.Catalog.StoriesFile != "" {
		fw, err := watchStories(ctx, cfg, cat, program.Send)
		if err != nil {
			logger.Warn(ctx, err, "Live reload disabled", "stories_file", cfg.Catalog.StoriesFile)
		} else {
			defer fw.Stop()
		}
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("story browser failed: %w", err)
	}

	return nil
}

// watchStories reloads cat whenever the stories file changes and reports each
// outcome through send as a tui.ReloadErrorMsg. Invalid edits keep the
// previous stories. The watcher logs nothing since the browser owns the
// terminal.
func watchStories(ctx context.Context, cfg *config.Config, cat *catalog.Catalog, send func(tea.Msg)) (*watcher.FileWatcher, error) {
	fw, err := watcher.NewFileWatcher(300*time.Millisecond, logging.NewNopLogger())
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	fw.AddFilter(watcher.YAMLFilter)
	fw.AddHandler(func(events []watcher.ChangeEvent) error {
		send(tui.ReloadErrorMsg{Err: cat.Reload(cfg.Catalog.StoriesFile)})
		return nil
	})

	if err := fw.AddFile(cfg.Catalog.StoriesFile); err != nil {
		_ = fw.Stop()
		return nil, err
	}

	if err := fw.Start(ctx); err != nil {
		_ = fw.Stop()
		return nil, err
	}

	return fw, nil
}
