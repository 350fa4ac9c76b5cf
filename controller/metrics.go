package controller

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pym_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pym_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	notesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pym_notes_created_total",
			Help: "Total number of notes created",
		},
		[]string{"kind"}, // note, reply
	)
)

// RequestCounter tracks request totals per endpoint. It backs the internal
// metrics endpoint; Prometheus metrics are collected separately. The mutex
// protects the counts against concurrent handlers.
type RequestCounter struct {
	mu         sync.Mutex
	total      int64
	byEndpoint map[string]int64
}

func NewRequestCounter() *RequestCounter {
	return &RequestCounter{byEndpoint: map[string]int64{}}
}

// Increment bumps the total and the per-endpoint count, returning the new
// total.
func (rc *RequestCounter) Increment(endpoint string) int64 {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.total++
	rc.byEndpoint[endpoint]++
	return rc.total
}

// Stats returns the current totals. The map is a copy.
func (rc *RequestCounter) Stats() (int64, map[string]int64) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	per := make(map[string]int64, len(rc.byEndpoint))
	for k, v := range rc.byEndpoint {
		per[k] = v
	}
	return rc.total, per
}

func (ctrl *controller) metricsInit(e *echo.Echo) {
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/api/metrics/internal", ctrl.internalMetrics)
}

func (ctrl *controller) internalMetrics(c echo.Context) error {
	total, per := ctrl.requests.Stats()
	return c.JSON(http.StatusOK, map[string]any{
		"total_requests": total,
		"endpoints":      per,
	})
}

// metricsMiddleware records every request under its route pattern, keeping
// label cardinality bounded.
func (ctrl *controller) metricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		path := c.Path()
		if path == "" {
			path = c.Request().URL.Path
		}
		if path == "/metrics" {
			return err
		}
		method := c.Request().Method
		status := strconv.Itoa(c.Response().Status)

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		ctrl.requests.Increment(path)
		return err
	}
}
