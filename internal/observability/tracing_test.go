package observability

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"review-dashboard/internal/config"
)

// useRecorder installs an in-memory provider for the test and restores the
// previous global provider afterwards.
func useRecorder(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	prev := otel.GetTracerProvider()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

func TestStartSpan_Recorded(t *testing.T) {
	exporter := useRecorder(t)

	_, span := StartSpan(context.Background(), "analytics.load", attribute.String("file", "reviews.csv"))
	EndSpan(span, nil)

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(spans))
	}
	if spans[0].Name != "analytics.load" {
		t.Errorf("span name = %q", spans[0].Name)
	}
	if spans[0].Status.Code == codes.Error {
		t.Error("span without error should not have error status")
	}
}

func TestEndSpan_RecordsError(t *testing.T) {
	exporter := useRecorder(t)

	_, span := StartSpan(context.Background(), "analytics.load")
	EndSpan(span, errors.New("bad row"))

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(spans))
	}
	if spans[0].Status.Code != codes.Error || spans[0].Status.Description != "bad row" {
		t.Errorf("status = %+v", spans[0].Status)
	}
	if len(spans[0].Events) == 0 {
		t.Error("error should be recorded as a span event")
	}
}

func TestInitTracing_Stdout(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	shutdown, err := InitTracing(config.TracingConfig{Exporter: ExporterStdout, SampleRatio: 1},
		&buf, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("InitTracing() error = %v", err)
	}

	_, span := StartSpan(context.Background(), "GET /api/summary")
	EndSpan(span, nil)

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error = %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"Name":"GET /api/summary"`)) {
		t.Errorf("exported spans missing, got %s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte(ServiceName)) {
		t.Error("exported span should carry the service resource")
	}
}

func TestInitTracing_None(t *testing.T) {
	prev := otel.GetTracerProvider()

	shutdown, err := InitTracing(config.TracingConfig{Exporter: ExporterNone},
		io.Discard, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("InitTracing() error = %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown error = %v", err)
	}
	if otel.GetTracerProvider() != prev {
		t.Error("exporter none should not replace the global provider")
	}
}

func TestInitTracing_Unsupported(t *testing.T) {
	_, err := InitTracing(config.TracingConfig{Exporter: "jaeger"},
		io.Discard, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err == nil {
		t.Error("unsupported exporter should fail")
	}
}
