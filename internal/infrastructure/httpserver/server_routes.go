package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint())

	api := s.echo.Group("/api/v1")
	auth := api.Group("/auth")
	auth.POST("/forgot-password", s.forgotPassword, s.middleware.RateLimit.Handler())
	auth.POST("/reset-password", s.resetPassword)

	if s.config.DebugEndpoints {
		debug := api.Group("/debug", s.middleware.DebugAuth.RequireAdmin())
		debug.GET("/tokens", s.debugTokens)
		if s.logger != nil {
			s.logger.WithField("guarded", s.config.DebugJWTSecret != "").Warn("debug endpoints enabled")
		}
	}
}
