package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/verustcode/valreport/pkg/logger"
)

// MeterName is the meter name for valreport instruments
const MeterName = "github.com/verustcode/valreport"

// Metrics holds all application instruments
type Metrics struct {
	GenerationsTotal   metric.Int64Counter
	GenerationDuration metric.Float64Histogram
	ActiveGenerations  metric.Int64UpDownCounter
	PagesTotal         metric.Int64Counter
	SafeBreaksTotal    metric.Int64Counter
	ImagesDropped      metric.Int64Counter

	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	BackendCallsTotal metric.Int64Counter
}

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// GetMetrics returns the global metrics, creating instruments on first use
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		var err error
		globalMetrics, err = initMetrics()
		if err != nil {
			logger.Error("Failed to initialize metrics", zap.Error(err))
			globalMetrics = &Metrics{}
		}
	})
	return globalMetrics
}

func initMetrics() (*Metrics, error) {
	meter := otel.Meter(MeterName)
	m := &Metrics{}
	var err error

	if m.GenerationsTotal, err = meter.Int64Counter(
		"valreport_generations_total",
		metric.WithDescription("Report generations by format and status"),
		metric.WithUnit("{generation}"),
	); err != nil {
		return nil, err
	}

	if m.GenerationDuration, err = meter.Float64Histogram(
		"valreport_generation_duration_seconds",
		metric.WithDescription("End-to-end report generation time"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 20, 30, 60, 120),
	); err != nil {
		return nil, err
	}

	if m.ActiveGenerations, err = meter.Int64UpDownCounter(
		"valreport_active_generations",
		metric.WithDescription("Generations currently in progress"),
		metric.WithUnit("{generation}"),
	); err != nil {
		return nil, err
	}

	if m.PagesTotal, err = meter.Int64Counter(
		"valreport_pages_total",
		metric.WithDescription("Physical PDF pages produced"),
		metric.WithUnit("{page}"),
	); err != nil {
		return nil, err
	}

	if m.SafeBreaksTotal, err = meter.Int64Counter(
		"valreport_page_breaks_total",
		metric.WithDescription("Page breaks by kind (safe or fallback)"),
		metric.WithUnit("{break}"),
	); err != nil {
		return nil, err
	}

	if m.ImagesDropped, err = meter.Int64Counter(
		"valreport_images_dropped_total",
		metric.WithDescription("Images omitted because they were invalid or could not be fetched"),
		metric.WithUnit("{image}"),
	); err != nil {
		return nil, err
	}

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"valreport_http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"valreport_http_request_duration_seconds",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30),
	); err != nil {
		return nil, err
	}

	if m.BackendCallsTotal, err = meter.Int64Counter(
		"valreport_backend_calls_total",
		metric.WithDescription("Calls to the valuation backend API"),
		metric.WithUnit("{call}"),
	); err != nil {
		return nil, err
	}

	logger.Info("Metrics initialized successfully")
	return m, nil
}

// RecordGenerationStarted marks a generation as in progress
func (m *Metrics) RecordGenerationStarted(ctx context.Context, format string) {
	if m.ActiveGenerations != nil {
		m.ActiveGenerations.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format)))
	}
}

// RecordGenerationCompleted records the outcome of a generation
func (m *Metrics) RecordGenerationCompleted(ctx context.Context, format, status string, durationSeconds float64, pages int) {
	attrs := metric.WithAttributes(
		attribute.String("format", format),
		attribute.String("status", status),
	)
	if m.ActiveGenerations != nil {
		m.ActiveGenerations.Add(ctx, -1, metric.WithAttributes(attribute.String("format", format)))
	}
	if m.GenerationsTotal != nil {
		m.GenerationsTotal.Add(ctx, 1, attrs)
	}
	if m.GenerationDuration != nil {
		m.GenerationDuration.Record(ctx, durationSeconds, attrs)
	}
	if pages > 0 && m.PagesTotal != nil {
		m.PagesTotal.Add(ctx, int64(pages))
	}
}

// RecordPageBreaks records how many seams were cut at a detected border versus the fallback boundary
func (m *Metrics) RecordPageBreaks(ctx context.Context, safe, fallback int) {
	if m.SafeBreaksTotal == nil {
		return
	}
	if safe > 0 {
		m.SafeBreaksTotal.Add(ctx, int64(safe), metric.WithAttributes(attribute.String("kind", "safe")))
	}
	if fallback > 0 {
		m.SafeBreaksTotal.Add(ctx, int64(fallback), metric.WithAttributes(attribute.String("kind", "fallback")))
	}
}

// RecordImagesDropped records images omitted from a collection
func (m *Metrics) RecordImagesDropped(ctx context.Context, collection, reason string, count int) {
	if m.ImagesDropped == nil || count <= 0 {
		return
	}
	m.ImagesDropped.Add(ctx, int64(count),
		metric.WithAttributes(
			attribute.String("collection", collection),
			attribute.String("reason", reason),
		),
	)
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, durationSeconds float64) {
	if m.HTTPRequestsTotal != nil {
		m.HTTPRequestsTotal.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("method", method),
				attribute.String("path", path),
				attribute.Int("status_code", statusCode),
			),
		)
	}
	if m.HTTPRequestDuration != nil {
		m.HTTPRequestDuration.Record(ctx, durationSeconds,
			metric.WithAttributes(
				attribute.String("method", method),
				attribute.String("path", path),
			),
		)
	}
}

// RecordBackendCall records a call to the valuation backend
func (m *Metrics) RecordBackendCall(ctx context.Context, operation string, success bool) {
	if m.BackendCallsTotal == nil {
		return
	}
	m.BackendCallsTotal.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.Bool("success", success),
		),
	)
}
