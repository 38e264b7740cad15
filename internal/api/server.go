// Package api wires the HTTP surface: search, download, history, room
// websocket attach, and audio serving.
package api

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/soundroom/soundroom/internal/config"
	"github.com/soundroom/soundroom/internal/download"
	"github.com/soundroom/soundroom/internal/history"
	"github.com/soundroom/soundroom/internal/provider/dab"
	"github.com/soundroom/soundroom/internal/room"
	"github.com/soundroom/soundroom/internal/search"
)

// Server handles HTTP requests for the Soundroom API.
type Server struct {
	echo   *echo.Echo
	db     *sql.DB
	hub    *room.Hub
	logger zerolog.Logger
	cfg    *config.Config

	// Services
	store           *room.Store
	searchService   *search.Service
	downloadService *download.Service
	historyService  *history.Service
}

// NewServer creates a new API server instance.
func NewServer(db *sql.DB, hub *room.Hub, cfg *config.Config, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:   e,
		db:     db,
		hub:    hub,
		logger: logger,
		cfg:    cfg,
	}

	// One concrete provider today; both capability interfaces are
	// satisfied by the same client.
	providerClient := dab.NewClient(cfg.Provider, logger)

	s.store = room.NewStore(cfg.Audio.Root, logger)
	s.searchService = search.NewService(providerClient, logger)
	s.historyService = history.NewService(db, logger)

	s.downloadService = download.NewService(providerClient, s.store, *cfg, logger)
	s.downloadService.SetNotifier(hub)
	s.downloadService.SetHistory(s.historyService)

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Store returns the room file store.
func (s *Server) Store() *room.Store {
	return s.store
}

// History returns the download history service.
func (s *Server) History() *history.Service {
	return s.historyService
}

// Echo returns the underlying echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Start begins listening on the given address.
func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// healthCheck handles GET /health.
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
