package observability

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracingConfigFromEnv(t *testing.T) {
	t.Setenv("MARCO_TRACING_ENABLED", "TRUE")
	t.Setenv("MARCO_TRACING_EXPORTER", "OTLP")
	t.Setenv("MARCO_TRACING_SAMPLE_RATIO", "0.25")
	t.Setenv("MARCO_OTLP_ENDPOINT", "collector:4317")

	cfg := TracingConfigFromEnv()
	if !cfg.Enabled || cfg.Exporter != "otlp" || cfg.SampleRatio != 0.25 || cfg.Endpoint != "collector:4317" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.ServiceName != "marco-simulator" {
		t.Fatalf("ServiceName = %q, want default", cfg.ServiceName)
	}
}

func TestTracingConfigIgnoresBadRatio(t *testing.T) {
	t.Setenv("MARCO_TRACING_SAMPLE_RATIO", "7")
	if got := TracingConfigFromEnv().SampleRatio; got != 1 {
		t.Fatalf("SampleRatio = %v, want 1", got)
	}
}

func TestInitTracingDisabledIsNoop(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), TracingConfig{}, nil)
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestInitTracingRejectsUnknownExporter(t *testing.T) {
	_, err := InitTracing(context.Background(), TracingConfig{Enabled: true, Exporter: "carrier-pigeon", SampleRatio: 1}, nil)
	if err == nil {
		t.Fatalf("expected an error for an unknown exporter")
	}
}

func TestStartRunSpanSetsRunID(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, span := StartRunSpan(context.Background(), "simulation.run", "abc123", attribute.Int("walkers", 2))
	span.End()

	ended := rec.Ended()
	if len(ended) != 1 || ended[0].Name() != "simulation.run" {
		t.Fatalf("unexpected spans %v", ended)
	}
	found := 0
	for _, kv := range ended[0].Attributes() {
		if (kv.Key == "run_id" && kv.Value.AsString() == "abc123") || (kv.Key == "walkers" && kv.Value.AsInt64() == 2) {
			found++
		}
	}
	if found != 2 {
		t.Fatalf("span attributes = %v", ended[0].Attributes())
	}
}

func TestTracingConfigServiceVersion(t *testing.T) {
	t.Setenv("MARCO_SERVICE_VERSION", "v1.4.0")
	if got := TracingConfigFromEnv().ServiceVersion; got != "v1.4.0" {
		t.Fatalf("ServiceVersion = %q, want v1.4.0", got)
	}

	t.Setenv("MARCO_SERVICE_VERSION", "")
	if got := TracingConfigFromEnv().ServiceVersion; got == "" {
		t.Fatalf("ServiceVersion should fall back to the build version")
	}
}

func TestNewResourceDescribesService(t *testing.T) {
	res, err := newResource(context.Background(), TracingConfig{ServiceName: "marco-test", ServiceVersion: "v0.3.1"})
	if err != nil {
		t.Fatalf("newResource: %v", err)
	}
	want := map[attribute.Key]string{
		"service.name":         "marco-test",
		"service.namespace":    "simulation",
		"service.version":      "v0.3.1",
	}
	got := map[attribute.Key]string{}
	for _, kv := range res.Attributes() {
		got[kv.Key] = kv.Value.Emit()
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("resource %s = %q, want %q (all: %v)", k, got[k], v, got)
		}
	}
	if got["telemetry.sdk.language"] != "go" {
		t.Fatalf("resource lacks SDK attributes: %v", got)
	}
}
