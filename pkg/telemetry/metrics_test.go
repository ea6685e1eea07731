package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetMetrics(t *testing.T) {
	m := GetMetrics()
	assert.NotNil(t, m)
	assert.Same(t, m, GetMetrics())
}

func TestMetricsRecorders(t *testing.T) {
	m := GetMetrics()
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordGenerationStarted(ctx, "pdf")
		m.RecordGenerationCompleted(ctx, "pdf", "completed", 3.2, 14)
		m.RecordGenerationCompleted(ctx, "html", "failed", 0.1, 0)
		m.RecordPageBreaks(ctx, 9, 2)
		m.RecordImagesDropped(ctx, "propertyImages", "fetch_failed", 2)
		m.RecordHTTPRequest(ctx, "POST", "/api/v1/reports/pdf", 200, 2.5)
		m.RecordBackendCall(ctx, "get", true)
	})
}

func TestMetricsNilSafe(t *testing.T) {
	empty := &Metrics{}
	ctx := context.Background()

	assert.NotPanics(t, func() {
		empty.RecordGenerationStarted(ctx, "pdf")
		empty.RecordGenerationCompleted(ctx, "pdf", "completed", 1, 1)
		empty.RecordPageBreaks(ctx, 1, 1)
		empty.RecordImagesDropped(ctx, "locationImages", "invalid", 1)
		empty.RecordHTTPRequest(ctx, "GET", "/health", 200, 0.001)
		empty.RecordBackendCall(ctx, "approve", false)
	})
}
