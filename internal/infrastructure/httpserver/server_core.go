package httpserver

import (
	"net"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/ai-career-assistant/internal/core/ports"
	customMiddleware "github.com/avatarctic/ai-career-assistant/internal/infrastructure/httpserver/middleware"
)

type ServerConfig struct {
	Host           string
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	TLSCertFile    string
	TLSKeyFile     string
	AllowedOrigins []string
	Environment    string
	// DebugEndpoints registers GET /api/v1/debug/tokens.
	DebugEndpoints bool
	DebugJWTSecret string
	// TrustedProxies are the only peers allowed to name the client in X-Forwarded-For.
	TrustedProxies []*net.IPNet
}

type ServerDeps struct {
	PasswordResetService ports.PasswordResetService
	ResetTokens          ports.ResetTokenRepository
	// RateLimiterService is optional; forgot-password is unlimited without it.
	RateLimiterService ports.RateLimiterService
	HealthCheckers     []ports.HealthChecker
}

type Server struct {
	echo             *echo.Echo
	config           *ServerConfig
	logger           *logrus.Logger
	passwordResetSvc ports.PasswordResetService
	resetTokens      ports.ResetTokenRepository
	middleware       *customMiddleware.MiddlewareCollection
	healthCheckers   []ports.HealthChecker
}

func NewServer(serverConfig *ServerConfig, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.IPExtractor = clientIPExtractor(serverConfig.TrustedProxies)
	e.Validator = NewRequestValidator()

	server := &Server{
		echo:             e,
		config:           serverConfig,
		logger:           logger,
		passwordResetSvc: deps.PasswordResetService,
		resetTokens:      deps.ResetTokens,
		healthCheckers:   deps.HealthCheckers,
		middleware: customMiddleware.NewMiddlewareCollection(
			deps.RateLimiterService,
			logger,
			serverConfig.DebugJWTSecret,
			GetRequestsTotal(),
			GetRequestDuration(),
			unobservedRoutes,
		),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// clientIPExtractor resolves the address used for per-client rate limiting.
// Forwarding headers are ignored unless the peer is a configured proxy.
func clientIPExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, r := range trusted {
		opts = append(opts, echo.TrustIPRange(r))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}
