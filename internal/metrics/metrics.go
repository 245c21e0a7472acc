// Package metrics defines the service Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kiul"

var (
	// RequestsTotal counts HTTP requests by route.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration observes HTTP request latency by route.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "route"},
	)

	// AssistantStreamsTotal counts relay streams by outcome.
	AssistantStreamsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assistant",
			Name:      "streams_total",
			Help:      "Assistant relay streams by outcome",
		},
		[]string{"transport", "outcome"},
	)

	// AssistantChunksTotal counts forwarded token fragments.
	AssistantChunksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assistant",
			Name:      "chunks_total",
			Help:      "Token fragments forwarded to callers",
		},
	)

	// AssistantFirstChunkSeconds observes time to first forwarded fragment.
	AssistantFirstChunkSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "assistant",
			Name:      "first_chunk_seconds",
			Help:      "Time from request to first forwarded fragment",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	// EscalationsTotal counts conversations flagged by the escalation check.
	EscalationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assistant",
			Name:      "escalations_total",
			Help:      "Conversations whose latest user turn matched a risk phrase",
		},
	)

	// EmailsTotal counts email route outcomes by delivery mode.
	EmailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "email",
			Name:      "sends_total",
			Help:      "Email sends by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	// SearchSkippedCategoriesTotal counts unreadable category folders.
	SearchSkippedCategoriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "skipped_categories_total",
			Help:      "Category folders skipped because they could not be read",
		},
		[]string{"category"},
	)
)

// Stream outcomes.
const (
	OutcomeCompleted     = "completed"
	OutcomeUpstreamError = "upstream_error"
	OutcomeStreamError   = "stream_error"
	OutcomeCanceled      = "canceled"
)

// Middleware records request count and latency per route.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if !c.Response().Committed {
					status = http.StatusInternalServerError
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			RequestsTotal.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			RequestDuration.WithLabelValues(c.Request().Method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
