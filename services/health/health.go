// Package health serves the liveness endpoint and Prometheus metrics.
package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"sjsage522/partwatch/logger"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StateFunc reports the poll scheduler state
type StateFunc func() string

// Server is the liveness HTTP server
type Server struct {
	echo    *echo.Echo
	addr    string
	state   StateFunc
	started time.Time
	log     *logger.Logger
}

// NewServer creates a liveness server listening on port
func NewServer(port int, state StateFunc) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		addr:    fmt.Sprintf(":%d", port),
		state:   state,
		started: time.Now(),
		log:     logger.ForHealth(),
	}

	e.GET("/", s.root)
	e.HEAD("/", s.root)
	e.GET("/healthz", s.healthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return s
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) root(c echo.Context) error {
	return c.String(http.StatusOK, "Bot is running")
}

func (s *Server) healthz(c echo.Context) error {
	state := "unknown"
	if s.state != nil {
		state = s.state()
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"state":  state,
		"uptime": time.Since(s.started).Truncate(time.Second).String(),
	})
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.addr).Msg("Starting liveness server")
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("liveness server: %w", err)
	}
	return nil
}

// Shutdown stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
