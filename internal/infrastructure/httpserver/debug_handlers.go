package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/ai-career-assistant/internal/core/domain/reset"
)

// debugTokens sweeps expired tokens and then reports what is left in the store.
func (s *Server) debugTokens(c echo.Context) error {
	ctx := c.Request().Context()

	cleaned, err := s.resetTokens.CleanupExpired(ctx)
	if err != nil {
		return s.debugError(err, "failed to clean up reset tokens")
	}
	tokens, err := s.resetTokens.List(ctx)
	if err != nil {
		return s.debugError(err, "failed to list reset tokens")
	}
	count, err := s.resetTokens.Count(ctx)
	if err != nil {
		return s.debugError(err, "failed to count reset tokens")
	}

	return c.JSON(http.StatusOK, reset.DebugSnapshot{
		TokenCount:      count,
		TokensCleanedUp: cleaned,
		Tokens:          tokens,
	})
}

func (s *Server) debugError(err error, msg string) error {
	if s.logger != nil {
		s.logger.WithError(err).Error("debug: " + msg)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, msg)
}
