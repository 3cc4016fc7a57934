package tracing

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestInitTracingNoEndpoint(t *testing.T) {
	t.Setenv("OTLP_ENDPOINT", "")

	ctx := context.Background()
	shutdown, err := InitTracing(ctx, "test-version", Options{})
	if err != nil {
		t.Fatalf("InitTracing failed: %v", err)
	}
	defer shutdown(ctx)

	ctx, span := StartSpan(ctx, "noop-span")
	if span.SpanContext().IsValid() {
		t.Error("expected a no-op span without an endpoint")
	}

	// helpers must tolerate non-recording spans
	RecordError(ctx, errors.New("boom"))
	SetStatus(ctx, codes.Error, "boom")
	AddEvent(ctx, "event")
	SetAttributes(ctx, attribute.String("k", "v"))
	span.End()
}

func TestHelpersRecordOnSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	old := Tracer
	Tracer = tp.Tracer(TracerName)
	defer func() { Tracer = old }()

	ctx, span := StartSpan(context.Background(), "estimate",
		trace.WithAttributes(TripAttributes("van", "diesel", "europe", 120, 3)...))
	SetAttributes(ctx, attribute.Int(AttrSegments, 4))
	AddEvent(ctx, "resolved")
	RecordError(ctx, errors.New("no match"))
	SetStatus(ctx, codes.Error, "no match")
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	s := ended[0]
	if s.Name() != "estimate" {
		t.Errorf("span name = %s", s.Name())
	}
	if s.Status().Code != codes.Error {
		t.Errorf("status = %v", s.Status().Code)
	}
	if len(s.Events()) != 2 {
		t.Errorf("expected event and error event, got %d", len(s.Events()))
	}

	found := false
	for _, kv := range s.Attributes() {
		if string(kv.Key) == AttrSegments && kv.Value.AsInt64() == 4 {
			found = true
		}
	}
	if !found {
		t.Error("segments attribute missing")
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{0, "AlwaysOnSampler"},
		{1, "AlwaysOnSampler"},
		{0.25, "ParentBased{root:TraceIDRatioBased{0.25}"},
	}
	for _, tt := range tests {
		got := sampler(tt.ratio).Description()
		if len(got) < len(tt.want) || got[:len(tt.want)] != tt.want {
			t.Errorf("sampler(%v) = %q, want prefix %q", tt.ratio, got, tt.want)
		}
	}
}

func TestAttributeHelpers(t *testing.T) {
	if n := len(MCPToolAttributes("calculate_emissions", StatusSuccess, 12, 300)); n != 4 {
		t.Errorf("MCPToolAttributes returned %d attributes", n)
	}
	if n := len(TripAttributes("van", "diesel", "europe", 1, 1)); n != 5 {
		t.Errorf("TripAttributes returned %d attributes", n)
	}
}
