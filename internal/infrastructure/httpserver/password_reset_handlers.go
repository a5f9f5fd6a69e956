package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/ai-career-assistant/internal/core/domain/reset"
	"github.com/avatarctic/ai-career-assistant/internal/utils"
)

// forgotPassword answers every well-formed request with the same body so callers
// cannot tell whether an account exists.
func (s *Server) forgotPassword(c echo.Context) error {
	var req reset.ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	req.Email = utils.NormalizeEmail(req.Email)
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, reset.ErrInvalidEmail.Error())
	}

	if err := s.passwordResetSvc.RequestReset(c.Request().Context(), &req, requestMeta(c)); err != nil {
		return s.resetError(c, err)
	}

	return c.JSON(http.StatusOK, reset.Response{Success: true, Message: reset.GenericRequestMessage})
}

func (s *Server) resetPassword(c echo.Context) error {
	var req reset.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := s.passwordResetSvc.ConfirmReset(c.Request().Context(), &req, requestMeta(c)); err != nil {
		return s.resetError(c, err)
	}

	return c.JSON(http.StatusOK, reset.Response{Success: true, Message: reset.CompletedMessage})
}

func (s *Server) resetError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, reset.ErrInvalidEmail),
		errors.Is(err, reset.ErrMissingFields),
		errors.Is(err, reset.ErrInvalidOrExpiredToken):
		return echo.NewHTTPError(http.StatusBadRequest, unwrapSentinel(err))
	case errors.Is(err, reset.ErrInvalidPassword):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, reset.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, reset.ErrUserNotFound.Error())
	default:
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"path": c.Path(), "ip": c.RealIP()}).WithError(err).Error("password reset: internal error")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

// unwrapSentinel keeps infrastructure detail out of client messages.
func unwrapSentinel(err error) string {
	for _, sentinel := range []error{reset.ErrInvalidEmail, reset.ErrMissingFields, reset.ErrInvalidOrExpiredToken} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
