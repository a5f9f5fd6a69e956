package httpserver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Start blocks serving requests until Shutdown is called, after which it
// returns http.ErrServerClosed.
func (s *Server) Start() error {
	s.LogMetricsInitialization()

	addr := fmt.Sprintf("%s:%s", s.config.Host, s.config.Port)
	fields := logrus.Fields{
		"addr":            addr,
		"env":             s.config.Environment,
		"debug_endpoints": s.config.DebugEndpoints,
	}

	if s.config.TLSCertFile != "" && s.config.TLSKeyFile != "" {
		s.applyTimeouts(s.echo.TLSServer)
		s.logger.WithFields(fields).Info("Starting HTTPS server")
		return s.echo.StartTLS(addr, s.config.TLSCertFile, s.config.TLSKeyFile)
	}

	if s.config.Environment == "production" {
		s.logger.Warn("Running in HTTP mode - TLS is expected to terminate at the platform proxy")
	}
	s.applyTimeouts(s.echo.Server)
	s.logger.WithFields(fields).Info("Starting HTTP server")
	return s.echo.Start(addr)
}

func (s *Server) applyTimeouts(srv *http.Server) {
	srv.ReadTimeout = s.config.ReadTimeout
	srv.ReadHeaderTimeout = s.config.ReadTimeout
	srv.WriteTimeout = s.config.WriteTimeout
	srv.IdleTimeout = s.config.IdleTimeout
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
