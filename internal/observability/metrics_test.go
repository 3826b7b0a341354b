package observability

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCheckCollectors(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()

	metrics.IncCheckScheduled("Milestone-Completion-Overdue")
	metrics.IncCheckFire("milestone-completion-overdue", FireOutcomeNotified)
	metrics.IncCheckFire("milestone-completion-overdue", FireOutcomeSuppressed)
	metrics.IncNotificationCreated("milestone-completion-overdue")
	metrics.AddChecksCanceled(3)
	metrics.AddChecksCanceled(0)
	metrics.IncPushFailure()

	if got := testutil.ToFloat64(metrics.checksScheduled.WithLabelValues("milestone-completion-overdue")); got != 1 {
		t.Fatalf("checks_scheduled_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.checkFires.WithLabelValues("milestone-completion-overdue", FireOutcomeNotified)); got != 1 {
		t.Fatalf("check_fires_total{notified} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.checkFires.WithLabelValues("milestone-completion-overdue", FireOutcomeSuppressed)); got != 1 {
		t.Fatalf("check_fires_total{suppressed} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.checksCanceled); got != 3 {
		t.Fatalf("checks_canceled_total = %v, want 3", got)
	}
	if got := testutil.ToFloat64(metrics.notificationsTotal.WithLabelValues("milestone-completion-overdue")); got != 1 {
		t.Fatalf("notifications_created_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.pushFailuresTotal); got != 1 {
		t.Fatalf("push_failures_total = %v, want 1", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	t.Parallel()

	var metrics *Metrics
	metrics.IncCheckScheduled("x")
	metrics.IncCheckFire("x", FireOutcomeDropped)
	metrics.IncNotificationCreated("x")
	metrics.AddChecksCanceled(5)
	metrics.IncPushFailure()
}

func TestMetricsHTTPMiddlewareRecordsRequest(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()
	app := fiber.New()
	app.Use(metrics.HTTPMiddleware())
	app.Get("/livez", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/livez", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	if got := testutil.ToFloat64(metrics.httpRequestsTotal.WithLabelValues("GET", "/livez", "200")); got != 1 {
		t.Fatalf("http_requests_total = %v, want 1", got)
	}
}

func TestMetricsHTTPMiddlewareRecordsErrorStatus(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()
	app := fiber.New()
	app.Use(metrics.HTTPMiddleware())
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	req := httptest.NewRequest("GET", "/boom", nil)
	_, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}

	if got := testutil.ToFloat64(metrics.httpRequestsTotal.WithLabelValues("GET", "/boom", "500")); got != 1 {
		t.Fatalf("http_requests_total = %v, want 1", got)
	}
}
