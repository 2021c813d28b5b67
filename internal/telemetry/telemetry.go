// Package telemetry wraps the OpenTelemetry tracer used to follow an
// assessment run step by step.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/agbru/winsatrun/internal/errors"
)

// InstrumentationName identifies spans emitted by winsatrun.
const InstrumentationName = "github.com/agbru/winsatrun"

// Span names of an orchestrator run.
const (
	SpanRun        = "assessment.run"
	SpanInitialize = "environment.initialize"
	SpanAcquire    = "service.acquire_handle"
	SpanCreateSink = "sink.create"
	SpanInitiate   = "assessment.initiate"
	SpanWait       = "assessment.wait"
	SpanTeardown   = "environment.teardown"
	SpanQuery      = "service.query_assessment"
	SpanQueryRun   = "assessment.query"
)

// Tracer starts step spans.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer returns a Tracer backed by tp, or by the global provider when tp
// is nil.
func NewTracer(tp trace.TracerProvider) *Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Tracer{tracer: tp.Tracer(InstrumentationName)}
}

// Start opens a span named name as a child of any span in ctx.
func (t *Tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// End closes span, recording err and its status code when non-nil.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if code, ok := apperrors.CodeOf(err); ok {
			span.SetAttributes(attribute.String("winsat.code", code.String()))
		}
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
