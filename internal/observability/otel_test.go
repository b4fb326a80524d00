package observability

import (
	"context"
	"errors"
	"testing"
)

func TestOtelHeaders(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-api-key=abc, bad, empty=,k=v")
	got := otelHeaders()
	if len(got) != 2 || got["x-api-key"] != "abc" || got["k"] != "v" {
		t.Fatalf("otelHeaders: got=%v", got)
	}
}

func TestOtelSampleRatioClamp(t *testing.T) {
	t.Setenv("OTEL_SAMPLER_RATIO", "4")
	if got := otelSampleRatio(); got != 1 {
		t.Fatalf("otelSampleRatio: want=1 got=%v", got)
	}
	t.Setenv("OTEL_SAMPLER_RATIO", "-1")
	if got := otelSampleRatio(); got != 0 {
		t.Fatalf("otelSampleRatio: want=0 got=%v", got)
	}
}

func TestStartSpanNoProvider(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "test.span")
	if ctx == nil || span == nil {
		t.Fatalf("StartSpan: want ctx and span")
	}
	EndSpan(span, errors.New("boom"))
	EndSpan(nil, nil)
}
