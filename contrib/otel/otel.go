// Package otel bridges latitude-go telemetry to OpenTelemetry tracing.
//
// Hook implements core.TelemetryHook and records one client span per
// gateway request, carrying the operation, project, document path, and
// token usage as attributes:
//
//	hook := otel.NewHook()
//	client := core.NewClient(gw, core.WithTelemetry(hook))
//
// Spans are created when the request completes, using the start and
// end timestamps the SDK reports, so the hook holds no per-request
// state and is safe for concurrent use.
package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/petal-labs/latitude-go/core"
)

// tracerName identifies this instrumentation library.
const tracerName = "github.com/petal-labs/latitude-go/contrib/otel"

// Hook records gateway requests as OpenTelemetry spans.
type Hook struct {
	tracer trace.Tracer
}

// Option configures a Hook.
type Option func(*Hook)

// WithTracerProvider sets the provider spans are created from.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(h *Hook) {
		if tp != nil {
			h.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewHook creates a Hook using the global tracer provider unless
// overridden with WithTracerProvider.
func NewHook(opts ...Option) *Hook {
	h := &Hook{
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// OnRequestStart implements core.TelemetryHook. The span is created at
// request end with an explicit start timestamp, so nothing happens here.
func (h *Hook) OnRequestStart(core.RequestStartEvent) {}

// OnRequestEnd implements core.TelemetryHook.
func (h *Hook) OnRequestEnd(e core.RequestEndEvent) {
	attrs := []attribute.KeyValue{
		attribute.String("latitude.operation", string(e.Operation)),
	}
	if e.Project != 0 {
		attrs = append(attrs, attribute.Int64("latitude.project", int64(e.Project)))
	}
	if e.Path != "" {
		attrs = append(attrs, attribute.String("latitude.document.path", e.Path))
	}
	if e.Usage.TotalTokens > 0 {
		attrs = append(attrs,
			attribute.Int64("gen_ai.usage.input_tokens", int64(e.Usage.PromptTokens)),
			attribute.Int64("gen_ai.usage.output_tokens", int64(e.Usage.CompletionTokens)),
		)
	}

	_, span := h.tracer.Start(context.Background(), "latitude."+string(e.Operation),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithTimestamp(e.Start),
		trace.WithAttributes(attrs...),
	)
	if e.Err != nil {
		span.RecordError(e.Err)
		span.SetStatus(codes.Error, e.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(e.End))
}

// Compile-time check that Hook implements core.TelemetryHook.
var _ core.TelemetryHook = (*Hook)(nil)
