package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer name for valreport spans
const TracerName = "github.com/verustcode/valreport"

// Tracer returns the global tracer
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// StartSpan starts a span; the caller must End it.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// SpanFromContext returns the current span, or a no-op span.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// SetSpanError records err on the span and marks it failed
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanOK marks the span successful
func SetSpanOK(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// AddSpanEvent adds an event with optional attributes
func AddSpanEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// Attribute keys used on generation spans
var (
	AttrGenerationID = attribute.Key("generation.id")
	AttrRecordID     = attribute.Key("record.id")
	AttrFormat       = attribute.Key("report.format")
	AttrPageCount    = attribute.Key("report.pages")
	AttrBlockCount   = attribute.Key("report.blocks")
	AttrImageCount   = attribute.Key("report.images")
	AttrBackendOp    = attribute.Key("backend.operation")
)

// WithGenerationAttributes returns span start options describing a generation
func WithGenerationAttributes(generationID, recordID, format string) trace.SpanStartOption {
	return trace.WithAttributes(
		AttrGenerationID.String(generationID),
		AttrRecordID.String(recordID),
		AttrFormat.String(format),
	)
}
