// Package server exposes assessments over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rustyeddy/fxrisk/pkg/logger"
	"github.com/rustyeddy/fxrisk/pkg/metrics"
)

// Config holds server settings.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server wraps an echo instance.
type Server struct {
	echo *echo.Echo
	cfg  Config
	log  *logger.Logger
}

// New builds the server. m may be nil, in which case /metrics is not
// mounted.
func New(h *Handler, cfg Config, log *logger.Logger, m *metrics.Recorder) *Server {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout

	e.Use(middleware.Recover())
	e.Use(requestLogging(log, m))

	h.RegisterRoutes(e)
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})))
	}

	return &Server{echo: e, cfg: cfg, log: log}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", logger.String("addr", s.cfg.Addr))
		if err := s.echo.Start(s.cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	s.log.Info("http server stopped")
	return nil
}

// Echo returns the underlying echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// requestLogging logs every request and records it in m. The route label
// is echo's templated path to keep cardinality low.
func requestLogging(log *logger.Logger, m *metrics.Recorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "/metrics" {
				return nil
			}
			status := c.Response().Status
			elapsed := time.Since(start)
			if m != nil {
				m.ObserveHTTP(route, c.Request().Method, status, elapsed)
			}

			fields := []logger.Field{
				logger.String("method", c.Request().Method),
				logger.String("route", route),
				logger.Int("status", status),
				logger.Duration("duration", elapsed),
			}
			if status >= 500 {
				log.Error("http request failed", fields...)
			} else {
				log.Debug("http request", fields...)
			}
			return nil
		}
	}
}
