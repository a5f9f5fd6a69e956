package httpserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
)

const healthProbeTimeout = 2 * time.Second

// healthCheck probes every dependency in parallel and reports 503 when any fails.
func (s *Server) healthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthProbeTimeout)
	defer cancel()

	var (
		mu   sync.Mutex
		g    errgroup.Group
		deps = make(map[string]string, len(s.healthCheckers))
	)
	overall := "healthy"
	for _, hc := range s.healthCheckers {
		if hc == nil {
			continue
		}
		hc := hc
		g.Go(func() error {
			status := "healthy"
			if err := hc.Check(ctx); err != nil {
				status = "unhealthy"
				if s.logger != nil {
					s.logger.WithField("dependency", hc.Name()).WithError(err).Warn("health probe failed")
				}
			}
			mu.Lock()
			deps[hc.Name()] = status
			if status != "healthy" {
				overall = "degraded"
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	code := http.StatusOK
	if overall != "healthy" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, map[string]any{
		"status":       overall,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"version":      "1.0.0",
		"service":      "ai-career-assistant",
		"dependencies": deps,
	})
}
