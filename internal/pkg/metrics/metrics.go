package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// admin moderation actions applied, by entity and action
	ModerationActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "celumarket_moderation_actions_total",
			Help: "Total moderation actions applied",
		},
		[]string{"entity", "action"},
	)

	// emails handed to a sender, by transport and outcome
	EmailsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "celumarket_emails_total",
			Help: "Total transactional emails processed",
		},
		[]string{"transport", "result"},
	)

	// background jobs finished, by type and final status
	JobsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "celumarket_jobs_total",
			Help: "Total background jobs processed",
		},
		[]string{"type", "status"},
	)

	// listing views flushed from Redis to the database
	ViewsFlushed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "celumarket_listing_views_flushed_total",
			Help: "Total listing views persisted",
		},
	)

	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "celumarket_http_requests_total",
			Help: "Total API requests received",
		},
		[]string{"route", "method", "status"},
	)

	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "celumarket_http_request_duration_seconds",
			Help:    "Histogram of request latencies",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

func init() {
	prometheus.MustRegister(
		ModerationActions,
		EmailsSent,
		JobsProcessed,
		ViewsFlushed,
		RequestCount,
		RequestLatency,
	)
}

// Middleware records request count and latency per matched route.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		RequestCount.WithLabelValues(route, c.Method(), strconv.Itoa(status)).Inc()
		RequestLatency.WithLabelValues(route, c.Method()).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
