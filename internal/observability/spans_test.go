package observability

import (
	"context"
	"fmt"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/signalsfoundry/ephemref/core"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)))
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })
	return sr
}

func attrs(s sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range s.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestBuildAndEntrySpans(t *testing.T) {
	sr := recordSpans(t)

	ctx, build := StartBuild(context.Background(), "meeus-vsop87", 2, 3, 4)
	_, entry := StartEntry(ctx, "Einstein", 2407422.951389)
	BodyFailed(entry, "Pluto", fmt.Errorf("%w: Pluto", core.ErrUnsupportedBody))
	HousesFailed(entry, core.ErrUndefinedHouseSystem)
	FinishEntry(entry, 2)
	entry.End()
	FinishBuild(build, 1, 0)
	build.End()

	spans := sr.Ended()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	e, b := spans[0], spans[1]
	if e.Name() != SpanEntry || b.Name() != SpanBuild {
		t.Fatalf("span names %q, %q", e.Name(), b.Name())
	}
	if e.Parent().SpanID() != b.SpanContext().SpanID() {
		t.Fatalf("entry span is not a child of the build span")
	}

	ba := attrs(b)
	if ba[AttrProvider].AsString() != "meeus-vsop87" || ba[AttrEntries].AsInt64() != 2 ||
		ba[AttrWorkers].AsInt64() != 4 || ba[AttrRecords].AsInt64() != 1 {
		t.Fatalf("build attributes %v", ba)
	}
	if b.Status().Code == codes.Error {
		t.Fatalf("a build without failures must not be marked errored")
	}

	ea := attrs(e)
	if ea[AttrMoment].AsString() != "Einstein" || ea[AttrFailures].AsInt64() != 2 {
		t.Fatalf("entry attributes %v", ea)
	}
	if e.Status().Code != codes.Error {
		t.Fatalf("entry status %v, want error", e.Status())
	}
	events := e.Events()
	if len(events) != 2 || events[0].Name != "body.failed" || events[1].Name != "houses.failed" {
		t.Fatalf("entry events %v", events)
	}
	for _, kv := range events[0].Attributes {
		if kv.Key == AttrOutcome && kv.Value.AsString() != OutcomeUnsupported {
			t.Fatalf("body outcome %q", kv.Value.AsString())
		}
	}
}
