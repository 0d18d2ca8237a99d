package portalapi

import (
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/alrashid-edu/portal/core/session"
)

var (
	metricsOnce sync.Once

	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "portal_http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	sessionEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_session_events_total",
			Help: "Session store writes, by event.",
		},
		[]string{"event"},
	)
)

func registerMetrics() {
	metricsOnce.Do(func() {
		prometheus.MustRegister(httpInFlight, httpRequestsTotal, httpRequestDuration, sessionEvents)
	})
}

func metricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			httpInFlight.Inc()
			start := time.Now()

			err := next(ctx)
			if err != nil {
				ctx.Error(err)
			}

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(ctx.Response().Status)
			method := ctx.Request().Method
			path := ctx.Path() // route template, not the raw URL

			httpInFlight.Dec()
			httpRequestsTotal.WithLabelValues(method, path, status).Inc()
			httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
			return nil
		}
	}
}

// observeSessionChange feeds the watched credential store into the session
// counter.
func observeSessionChange(_ session.Session, loggedIn bool) {
	event := "logout"
	if loggedIn {
		event = "login"
	}
	sessionEvents.WithLabelValues(event).Inc()
}
