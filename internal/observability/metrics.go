package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fire outcomes recorded per check fire.
const (
	FireOutcomeNotified      = "notified"
	FireOutcomeSuppressed    = "suppressed"
	FireOutcomeEntityMissing = "entity_missing"
	FireOutcomeDropped       = "dropped"
)

// Metrics stores Prometheus collectors used by the API and scheduling flows.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	checksScheduled     *prometheus.CounterVec
	checksCanceled      prometheus.Counter
	checkFires          *prometheus.CounterVec
	notificationsTotal  *prometheus.CounterVec
	pushFailuresTotal   prometheus.Counter
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "status_engine",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "status_engine",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		checksScheduled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "status_engine",
				Name:      "checks_scheduled_total",
				Help:      "Total number of status checks registered, including replacements.",
			},
			[]string{"category"},
		),
		checksCanceled: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "status_engine",
				Name:      "checks_canceled_total",
				Help:      "Total number of pending status checks canceled on entity deletion.",
			},
		),
		checkFires: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "status_engine",
				Name:      "check_fires_total",
				Help:      "Total number of check fires grouped by category and outcome.",
			},
			[]string{"category", "outcome"},
		),
		notificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "status_engine",
				Name:      "notifications_created_total",
				Help:      "Total number of notifications persisted after a confirmed condition.",
			},
			[]string{"category"},
		),
		pushFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "status_engine",
				Name:      "push_failures_total",
				Help:      "Total number of best-effort live push deliveries that failed.",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.checksScheduled,
		m.checksCanceled,
		m.checkFires,
		m.notificationsTotal,
		m.pushFailuresTotal,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncCheckScheduled(category string) {
	if m == nil {
		return
	}
	m.checksScheduled.WithLabelValues(normalizeLabel(category)).Inc()
}

func (m *Metrics) AddChecksCanceled(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.checksCanceled.Add(float64(n))
}

func (m *Metrics) IncCheckFire(category, outcome string) {
	if m == nil {
		return
	}
	m.checkFires.WithLabelValues(normalizeLabel(category), normalizeLabel(outcome)).Inc()
}

func (m *Metrics) IncNotificationCreated(category string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(normalizeLabel(category)).Inc()
}

func (m *Metrics) IncPushFailure() {
	if m == nil {
		return
	}
	m.pushFailuresTotal.Inc()
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func normalizeLabel(v string) string {
	normalized := strings.ToLower(strings.TrimSpace(v))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
