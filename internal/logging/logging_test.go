package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewJSONLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "json", Output: &buf})

	log.Debug(context.Background(), "step", Int("walker", 2), Float64("time", 1.5), Err(errors.New("boom")))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "step" || rec["walker"] != float64(2) || rec["time"] != 1.5 || rec["error"] != "boom" {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf})

	log.Info(context.Background(), "hidden")
	log.Warn(context.Background(), "shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestWithRunLoggerReusesRunID(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Format: "json", Output: &buf})

	ctx, id := EnsureRunID(context.Background())
	if id == "" {
		t.Fatalf("expected a generated run id")
	}
	ctx2, log := WithRunLogger(ctx, base)
	if got := RunIDFromContext(ctx2); got != id {
		t.Fatalf("run id = %q, want %q", got, id)
	}

	log.Info(ctx2, "run started")
	if !strings.Contains(buf.String(), `"run_id":"`+id+`"`) {
		t.Fatalf("log line missing run_id: %q", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	if LoggerFromContext(context.Background()) != nil {
		t.Fatalf("expected nil logger on a bare context")
	}
	ctx := ContextWithLogger(context.Background(), nil)
	if LoggerFromContext(ctx) == nil {
		t.Fatalf("nil logger should be replaced by a noop logger")
	}
	Noop().With(String("k", "v")).Error(ctx, "dropped")
}
