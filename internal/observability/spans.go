package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span names emitted by dataset builds.
const (
	SpanBuild = "dataset.build"
	SpanEntry = "dataset.entry"
)

// Attribute keys on dataset spans.
const (
	AttrProvider = attribute.Key("ephemref.provider")
	AttrEntries  = attribute.Key("ephemref.entries")
	AttrBodies   = attribute.Key("ephemref.bodies")
	AttrWorkers  = attribute.Key("ephemref.workers")
	AttrMoment   = attribute.Key("ephemref.moment")
	AttrJulianUT = attribute.Key("ephemref.jd_ut")
	AttrBody     = attribute.Key("ephemref.body")
	AttrOutcome  = attribute.Key("ephemref.outcome")
	AttrRecords  = attribute.Key("ephemref.records")
	AttrFailures = attribute.Key("ephemref.failures")
)

// The tracer is looked up per span so InitTracing may run after packages load.
func tracer() trace.Tracer { return otel.Tracer(TracerName) }

// StartBuild opens the span covering one dataset build.
func StartBuild(ctx context.Context, provider string, entries, bodies, workers int) (context.Context, trace.Span) {
	return tracer().Start(ctx, SpanBuild, trace.WithAttributes(
		AttrProvider.String(provider),
		AttrEntries.Int(entries),
		AttrBodies.Int(bodies),
		AttrWorkers.Int(workers),
	))
}

// StartEntry opens the child span for one moment.
func StartEntry(ctx context.Context, description string, jdUT float64) (context.Context, trace.Span) {
	return tracer().Start(ctx, SpanEntry, trace.WithAttributes(
		AttrMoment.String(description),
		AttrJulianUT.Float64(jdUT),
	))
}

// BodyFailed adds a span event for a body whose query failed.
func BodyFailed(span trace.Span, body string, err error) {
	span.AddEvent("body.failed", trace.WithAttributes(
		AttrBody.String(body),
		AttrOutcome.String(OutcomeOf(err)),
		attribute.String("error", err.Error()),
	))
}

// HousesFailed adds a span event for a house system that could not be built.
func HousesFailed(span trace.Span, err error) {
	span.AddEvent("houses.failed", trace.WithAttributes(
		AttrOutcome.String(OutcomeOf(err)),
		attribute.String("error", err.Error()),
	))
}

// FinishBuild records build totals. Any failure marks the span as errored.
func FinishBuild(span trace.Span, records, failures int) {
	span.SetAttributes(AttrRecords.Int(records))
	FinishEntry(span, failures)
}

// FinishEntry records the failure count of a span.
func FinishEntry(span trace.Span, failures int) {
	span.SetAttributes(AttrFailures.Int(failures))
	if failures > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d failures", failures))
	}
}
