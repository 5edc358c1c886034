// Package server serves the story catalog over HTTP with live reload.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/conneroisu/buttonbook/internal/catalog"
	"github.com/conneroisu/buttonbook/internal/config"
	herrors "github.com/conneroisu/buttonbook/internal/errors"
	"github.com/conneroisu/buttonbook/internal/logging"
	"github.com/conneroisu/buttonbook/internal/watcher"
	"github.com/conneroisu/buttonbook/internal/websocket"
)

const debounceDelay = 300 * time.Millisecond

// PreviewServer serves stories with live reload capability
type PreviewServer struct {
	config       *config.Config
	catalog      *catalog.Catalog
	logger       logging.Logger
	errorHandler *herrors.ErrorHandler
	wsManager    *websocket.WebSocketManager
	watcher      *watcher.FileWatcher

	httpServer  *http.Server
	serverMutex sync.RWMutex

	reloadMutex sync.RWMutex
	reloadError string

	shutdownOnce sync.Once
}

// New creates a preview server for the given catalog
func New(cfg *config.Config, cat *catalog.Catalog, logger logging.Logger) (*PreviewServer, error) {
	if cfg == nil {
		return nil, herrors.NewConfigError(herrors.ErrCodeConfigInvalid, "server config is nil", nil)
	}
	if cat == nil {
		return nil, herrors.NewInternalError("catalog is nil", nil)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.WithComponent("server")

	s := &PreviewServer{
		config:       cfg,
		catalog:      cat,
		logger:       logger,
		errorHandler: herrors.NewErrorHandler(logger),
	}
	s.wsManager = websocket.NewWebSocketManager(websocket.OriginValidatorFunc(s.isAllowedOrigin), logger)

	if s.watchesStories() {
		fw, err := watcher.NewFileWatcher(debounceDelay, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create file watcher: %w", err)
		}
		s.watcher = fw
	}

	return s, nil
}

func (s *PreviewServer) watchesStories() bool {
	return s.config.Development.HotReload && s.config.Catalog.StoriesFile != ""
}

// Handler returns the routed handler wrapped in middleware
func (s *PreviewServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /story/{name}", s.handleStory)
	mux.HandleFunc("GET /render/{name}", s.handleRender)
	mux.HandleFunc("GET /api/stories", s.handleStories)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ws", s.wsManager.HandleWebSocket)

	return s.addMiddleware(mux)
}

// Start starts the file watcher and blocks serving HTTP until the server is
// shut down.
func (s *PreviewServer) Start(ctx context.Context) error {
	if s.watcher != nil {
		if err := s.setupFileWatcher(ctx); err != nil {
			s.logger.Warn(ctx, err, "Live reload disabled", "stories_file", s.config.Catalog.StoriesFile)
		}
	}

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	s.logger.Info(ctx, "Preview server listening",
		"url", "http://"+server.Addr,
		"stories", s.catalog.Count(),
		"hot_reload", s.watcher != nil)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

func (s *PreviewServer) setupFileWatcher(ctx context.Context) error {
	s.watcher.AddFilter(watcher.YAMLFilter)
	s.watcher.AddHandler(s.handleStoriesChange)

	if err := s.watcher.AddFile(s.config.Catalog.StoriesFile); err != nil {
		return fmt.Errorf("watching stories file: %w", err)
	}

	return s.watcher.Start(ctx)
}

// handleStoriesChange reloads the catalog and tells every open page to
// refresh. A broken file keeps the previous stories and shows an overlay.
func (s *PreviewServer) handleStoriesChange(events []watcher.ChangeEvent) error {
	ctx := context.Background()
	path := s.config.Catalog.StoriesFile

	for _, event := range events {
		s.logger.Debug(ctx, "Stories file changed", "path", event.Path, "event", event.Type.String())
	}

	if err := s.catalog.Reload(path); err != nil {
		s.setReloadError(err.Error())
		s.errorHandler.Handle(ctx, err)
		s.wsManager.BroadcastMessage(websocket.UpdateMessage{
			Type:    websocket.MessageError,
			Target:  path,
			Content: err.Error(),
		})
		return nil
	}

	s.setReloadError("")
	s.logger.Info(ctx, "Stories reloaded", "path", path, "stories", s.catalog.Count())
	s.wsManager.BroadcastMessage(websocket.UpdateMessage{
		Type:   websocket.MessageReload,
		Target: path,
	})

	return nil
}

func (s *PreviewServer) setReloadError(msg string) {
	s.reloadMutex.Lock()
	s.reloadError = msg
	s.reloadMutex.Unlock()
}

func (s *PreviewServer) lastReloadError() string {
	s.reloadMutex.RLock()
	defer s.reloadMutex.RUnlock()
	return s.reloadError
}

// isAllowedOrigin accepts configured origins, the server's own address, and
// anything in development.
func (s *PreviewServer) isAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}

	for _, allowed := range s.config.Server.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}

	if origin == "http://"+s.config.Address() {
		return true
	}

	return s.config.Server.Environment == "development"
}

// Shutdown gracefully shuts down the server and cleans up resources
func (s *PreviewServer) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "Shutting down server")

		if s.watcher != nil {
			if err := s.watcher.Stop(); err != nil {
				s.logger.Warn(ctx, err, "Failed to stop file watcher")
			}
		}

		if err := s.wsManager.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, err, "Failed to shut down websocket manager")
		}

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()

		if server != nil {
			if err := server.Shutdown(ctx); err != nil {
				shutdownErr = fmt.Errorf("server shutdown: %w", err)
			}
		}
	})

	return shutdownErr
}
