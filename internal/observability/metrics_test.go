package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestRunCollectorRecordsRunLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewRunCollector(reg)
	if err != nil {
		t.Fatalf("NewRunCollector: %v", err)
	}

	collector.RunStarted(3)
	collector.ObserveStage("points")
	collector.AddPoints(42)
	collector.ObserveStep(0.5)
	collector.ObserveStep(1.7)
	collector.DeliveryFailed("point")
	collector.ObserveStage("end")
	collector.RunFinished(150 * time.Millisecond)

	if got := testutil.ToFloat64(collector.RunsStarted); got != 1 {
		t.Fatalf("simulation_runs_started_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.RunsCompleted); got != 1 {
		t.Fatalf("simulation_runs_completed_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.Walkers); got != 3 {
		t.Fatalf("simulation_walkers = %v, want 3", got)
	}
	if got := testutil.ToFloat64(collector.PointsEmitted); got != 42 {
		t.Fatalf("simulation_points_emitted_total = %v, want 42", got)
	}
	if got := testutil.ToFloat64(collector.IntegrationSteps); got != 2 {
		t.Fatalf("simulation_integration_steps_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.RunProgress); got != 1 {
		t.Fatalf("simulation_run_progress_ratio = %v, want clamped 1", got)
	}
	if got := testutil.ToFloat64(collector.StageTransitions.WithLabelValues("points")); got != 1 {
		t.Fatalf("stage transitions for points = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.DeliveryFailures.WithLabelValues("point")); got != 1 {
		t.Fatalf("delivery failures = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "simulation_run_duration_seconds", nil); count != 1 {
		t.Fatalf("simulation_run_duration_seconds sample_count = %d, want 1", count)
	}
}

func TestRunCollectorReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewRunCollector(reg)
	if err != nil {
		t.Fatalf("first NewRunCollector: %v", err)
	}
	second, err := NewRunCollector(reg)
	if err != nil {
		t.Fatalf("second NewRunCollector: %v", err)
	}

	first.AddPoints(1)
	second.AddPoints(1)
	if got := testutil.ToFloat64(first.PointsEmitted); got != 2 {
		t.Fatalf("shared counter = %v, want 2", got)
	}
}

func TestNilRunCollectorIsSafe(t *testing.T) {
	var c *RunCollector
	c.RunStarted(1)
	c.ObserveStage("end")
	c.AddPoints(1)
	c.DeliveryFailed("stage")
	c.ObserveStep(0.1)
	c.ObserveRender(time.Millisecond)
	c.RunFinished(time.Second)
	if c.Gatherer() != nil {
		t.Fatalf("nil collector should have no gatherer")
	}
}

func TestMetricsHandlerExposesRunMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewRunCollector(reg)
	if err != nil {
		t.Fatalf("NewRunCollector: %v", err)
	}
	collector.RunStarted(7)
	collector.ObserveStage("plots")
	collector.ObserveRender(20 * time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"simulation_runs_started_total",
		"simulation_walkers 7",
		`simulation_stage_transitions_total{stage="plots"} 1`,
		"simulation_render_duration_seconds",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
