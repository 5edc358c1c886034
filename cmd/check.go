package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conneroisu/buttonbook/internal/catalog"
	"github.com/conneroisu/buttonbook/internal/errors"
	"github.com/conneroisu/buttonbook/internal/inspect"
	"github.com/conneroisu/buttonbook/internal/logging"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify every story's rendered button against its args",
	Long: `Render each story, parse the HTML and check that the label equals the
text arg and the style matches the variant's palette entry. Exits non-zero
when any story fails.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return checkStories(ctx, cmd.OutOrStdout(), logger, cat.All())
}

func checkStories(ctx context.Context, w io.Writer, logger logging.Logger, stories []catalog.Story) error {
	op := logging.StartOperation(logger, "check")

	collector := inspect.VerifyAll(ctx, stories)
	handler := errors.NewErrorHandler(logger)

	failed := 0
	for _, story := range stories {
		failures := collector.ForStory(story.Name)
		if len(failures) == 0 {
			fmt.Fprintf(w, "ok    %s\n", story.Name)
			continue
		}
		failed++
		for _, failure := range failures {
			fmt.Fprintf(w, "FAIL  %s: %v\n", story.Name, failure)
			handler.Handle(ctx, failure)
		}
	}

	if err := collector.Err(); err != nil {
		op.EndWithError(ctx, err)
		return fmt.Errorf("%d of %d stories failed: %w", max(failed, 1), len(stories), err)
	}

	op.End(ctx)
	fmt.Fprintf(w, "%d stories passed\n", len(stories))
	return nil
}
