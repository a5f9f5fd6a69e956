package httpserver

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "The total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Reset endpoints do a bcrypt hash and a few store round trips, so the
	// interesting range sits between 10ms and a couple of seconds.
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "The HTTP request latencies in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration)
}

func GetRequestsTotal() *prometheus.CounterVec {
	return requestsTotal
}

func GetRequestDuration() *prometheus.HistogramVec {
	return requestDuration
}

// unobservedRoutes are excluded from the HTTP metrics.
var unobservedRoutes = []string{"/metrics", "/health"}

// LogMetricsInitialization lists the exported series once at startup.
func (s *Server) LogMetricsInitialization() {
	if s.logger == nil {
		return
	}
	s.logger.WithFields(logrus.Fields{
		"endpoint": "/metrics",
		"series": []string{
			"http_requests_total",
			"http_request_duration_seconds",
			"password_reset_requests_total",
			"password_reset_emails_total",
		},
		"unobserved_routes": unobservedRoutes,
	}).Info("Prometheus metrics registered")
}

func (s *Server) metricsEndpoint() echo.HandlerFunc {
	opts := promhttp.HandlerOpts{}
	if s.logger != nil {
		opts.ErrorLog = s.logger
	}
	return echo.WrapHandler(promhttp.HandlerFor(prometheus.DefaultGatherer, opts))
}
