package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/buttonbook/internal/config"
	"github.com/conneroisu/buttonbook/internal/server"
)

const shutdownTimeout = 5 * time.Second

var serveNoReload bool

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Start the story preview server with live reload",
	Long: `Start the story preview server.

Each story has a page with the rendered button, its args as editable controls
and the computed style. When a stories file is used, editing it reloads every
open page.

Examples:
  buttonbook serve                         # Built-in stories on localhost:6006
  buttonbook serve -p 8080                 # Different port
  buttonbook serve -s stories.yml          # Stories from a file, with live reload
  buttonbook serve -s stories.yml --no-reload`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", config.DefaultPort, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().BoolVar(&serveNoReload, "no-reload", false, "Disable live reload")

	AddFlagValidation(serveCmd, "port", ValidatePort)

	SetViperBindings(serveCmd, map[string]string{
		"server.port": "port",
		"server.host": "host",
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if serveNoReload {
		cfg.Development.HotReload = false
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, cat, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %d stories at http://%s\n", cat.Count(), cfg.Address())

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server on port %d: %w", cfg.Server.Port, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	return <-errCh
}
