package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	HTTPRequestsTotal      metric.Int64Counter
	BackendRequestDuration metric.Float64Histogram
	AuthRequestsTotal      metric.Int64Counter
	CartOpsTotal           metric.Int64Counter
	CheckoutRequestsTotal  metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments once, using the
// meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("shopfront")
		var err error
		m := &AppMetrics{}

		m.HTTPRequestsTotal, err = meter.Int64Counter(
			"http_requests_total",
			metric.WithDescription("Total number of HTTP requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_requests_total: %v", err)
		}

		m.BackendRequestDuration, err = meter.Float64Histogram(
			"backend_request_duration_seconds",
			metric.WithDescription("Duration of calls to the commerce backend in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create backend_request_duration_seconds: %v", err)
		}

		m.AuthRequestsTotal, err = meter.Int64Counter(
			"auth_requests_total",
			metric.WithDescription("Total number of login/register/logout requests"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create auth_requests_total: %v", err)
		}

		m.CartOpsTotal, err = meter.Int64Counter(
			"cart_ops_total",
			metric.WithDescription("Total number of cart add/remove operations"),
			metric.WithUnit("{operation}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create cart_ops_total: %v", err)
		}

		m.CheckoutRequestsTotal, err = meter.Int64Counter(
			"checkout_requests_total",
			metric.WithDescription("Total number of checkout attempts"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create checkout_requests_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the initialized metrics, or nil before InitAppMetrics runs
// (callers must tolerate nil so tests can skip observability setup).
func Get() *AppMetrics {
	return appMetrics
}
