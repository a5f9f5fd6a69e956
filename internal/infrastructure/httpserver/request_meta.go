package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/avatarctic/ai-career-assistant/internal/core/domain/reset"
)

func requestMeta(c echo.Context) reset.RequestMeta {
	return reset.RequestMeta{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}
