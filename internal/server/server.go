// Package server provides the HTTP server and Echo setup for the assistant API.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	errx "github.com/pollenai/assistant/internal/core/error"
	logx "github.com/pollenai/assistant/pkg/logger"
)

// Server is the HTTP server (Echo) with registered handlers.
type Server struct {
	echo *echo.Echo
	addr string
}

// Handler registers routes on the Echo instance.
type Handler interface {
	Register(e *echo.Echo)
}

// NewServer builds the Echo server with recovery, request logging and the
// given handlers. Errors carrying an application Kind map to their HTTP
// status; everything else becomes a 500 with a generic body.
func NewServer(addr string, handlers ...Handler) *Server {
	if addr == "" {
		addr = ":8080"
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logx.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", c.RealIP()).
				Msg("request")
			return nil
		},
	}))
	e.HTTPErrorHandler = errorHandler

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	for _, h := range handlers {
		if h != nil {
			h.Register(e)
		}
	}

	return &Server{echo: e, addr: addr}
}

// Start starts the HTTP server (blocks until shutdown).
func (s *Server) Start() error {
	return s.echo.Start(s.addr)
}

// Stop gracefully shuts down the server using the given context.
func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// errorHandler is the top-level catch-all: any error escaping a handler is
// translated into a JSON error body so raw stack traces never reach callers.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "internal server error"

	var appErr *errx.Error
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
		status = appErr.Status
		message = appErr.Message
		if message == "" {
			message = appErr.Error()
		}
	case errors.As(err, &httpErr):
		status = httpErr.Code
		if m, ok := httpErr.Message.(string); ok {
			message = m
		}
	}

	if status >= http.StatusInternalServerError {
		logx.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("request failed")
	} else {
		logx.Warn().Err(err).Str("uri", c.Request().RequestURI).Msg("request rejected")
	}

	if err := c.JSON(status, map[string]string{"error": message}); err != nil {
		logx.Error().Err(err).Msg("failed to write error response")
	}
}
