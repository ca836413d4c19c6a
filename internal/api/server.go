// Package api exposes the HTTP surface: the JSON search endpoints, the
// WebSocket entry point for interactive sessions, and the embedded
// frontend.
package api

import (
	"context"
	"database/sql"
	"io/fs"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/telesearch/telesearch/internal/config"
	"github.com/telesearch/telesearch/internal/history"
	"github.com/telesearch/telesearch/internal/session"
	"github.com/telesearch/telesearch/internal/tele"
	"github.com/telesearch/telesearch/internal/tmdb"
)

// Server handles HTTP requests for the TeleSearch API.
type Server struct {
	echo   *echo.Echo
	db     *sql.DB
	logger zerolog.Logger
	cfg    *config.Config

	// Services
	teleClient     *tele.Client
	tmdbClient     *tmdb.Client
	historyService *history.Service
	sessionManager *session.Manager
	searcher       *recordingSearcher
}

// NewServer creates a new API server instance.
func NewServer(db *sql.DB, cfg *config.Config, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:   e,
		db:     db,
		logger: logger,
		cfg:    cfg,
	}

	s.teleClient = tele.NewClient(cfg.Search, logger)
	s.tmdbClient = tmdb.NewClient(cfg.TMDB, logger)
	s.historyService = history.NewService(db, cfg.History.RetentionDays, logger)

	// Every search, stateless or session-driven, goes through the
	// recording searcher so history captures both paths.
	s.searcher = newRecordingSearcher(s.teleClient, s.historyService, logger)

	s.sessionManager = session.NewManager(
		s.searcher,
		s.tmdbClient,
		cfg.Download.BaseURL,
		s.teleClient.PageSize(),
		s.tmdbClient.PosterURL,
		logger,
	)

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Request ID
	s.echo.Use(middleware.RequestID())

	// CORS
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// Request logging
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Info().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))

	// Gzip compression
	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			// Skip compression for WebSocket
			return c.Request().Header.Get("Upgrade") == "websocket"
		},
	}))
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", s.healthCheck)

	// Interactive sessions
	s.echo.GET("/ws", s.sessionManager.HandleWebSocket)

	// API v1 group
	api := s.echo.Group("/api/v1")

	// Stateless search routes (shareable URLs, scripting)
	api.GET("/search", s.search)
	api.GET("/suggest", s.suggest)
	api.GET("/stream/classify", s.classifyStream)

	// History routes
	historyHandlers := history.NewHandlers(s.historyService)
	historyHandlers.RegisterRoutes(api.Group("/history"))
}

// RegisterFrontend serves the embedded web UI with an index.html
// fallback so client-side routes resolve on refresh.
func (s *Server) RegisterFrontend(distFS fs.FS) {
	fileServer := http.FileServer(http.FS(distFS))

	s.echo.GET("/*", func(c echo.Context) error {
		path := c.Request().URL.Path

		if strings.HasPrefix(path, "/api/") || path == "/ws" {
			return echo.ErrNotFound
		}

		if path != "/" {
			cleanPath := strings.TrimPrefix(path, "/")
			if file, err := distFS.Open(cleanPath); err == nil {
				file.Close()
				fileServer.ServeHTTP(c.Response(), c.Request())
				return nil
			}
		}

		indexFile, err := distFS.Open("index.html")
		if err != nil {
			return echo.ErrNotFound
		}
		defer indexFile.Close()

		return c.Stream(http.StatusOK, "text/html; charset=utf-8", indexFile)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// HistoryService returns the history service, for wiring scheduled
// cleanup.
func (s *Server) HistoryService() *history.Service {
	return s.historyService
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
