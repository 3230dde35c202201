package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RunCollector bundles Prometheus metrics describing simulation runs and
// exposes them over HTTP.
type RunCollector struct {
	gatherer prometheus.Gatherer

	RunsStarted      prometheus.Counter
	RunsCompleted    prometheus.Counter
	StageTransitions *prometheus.CounterVec
	PointsEmitted    prometheus.Counter
	DeliveryFailures *prometheus.CounterVec
	IntegrationSteps prometheus.Counter
	RunDuration      prometheus.Histogram
	RenderDuration   prometheus.Histogram
	Walkers          prometheus.Gauge
	RunProgress      prometheus.Gauge
}

// NewRunCollector registers simulation metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewRunCollector(reg prometheus.Registerer) (*RunCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	started, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simulation_runs_started_total",
		Help: "Total number of simulation runs started.",
	}), "simulation_runs_started_total")
	if err != nil {
		return nil, err
	}
	completed, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simulation_runs_completed_total",
		Help: "Total number of simulation runs that reached the End stage.",
	}), "simulation_runs_completed_total")
	if err != nil {
		return nil, err
	}

	stages := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "simulation_stage_transitions_total",
		Help: "Stage transitions emitted by simulation runs, labeled by stage.",
	}, []string{"stage"})
	stages, err = registerCounterVec(reg, stages, "simulation_stage_transitions_total")
	if err != nil {
		return nil, err
	}

	points, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simulation_points_emitted_total",
		Help: "Trajectory points produced across all walkers.",
	}), "simulation_points_emitted_total")
	if err != nil {
		return nil, err
	}

	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "simulation_event_delivery_failures_total",
		Help: "Progress events that could not be delivered because the consumer hung up, labeled by event kind.",
	}, []string{"kind"})
	failures, err = registerCounterVec(reg, failures, "simulation_event_delivery_failures_total")
	if err != nil {
		return nil, err
	}

	steps, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simulation_integration_steps_total",
		Help: "Fixed timesteps integrated across all runs.",
	}), "simulation_integration_steps_total")
	if err != nil {
		return nil, err
	}

	runDuration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "simulation_run_duration_seconds",
		Help:    "Wall-clock duration of complete simulation runs.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}), "simulation_run_duration_seconds")
	if err != nil {
		return nil, err
	}
	renderDuration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "simulation_render_duration_seconds",
		Help:    "Wall-clock duration of the image rendering stage.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}), "simulation_render_duration_seconds")
	if err != nil {
		return nil, err
	}

	walkers, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "simulation_walkers",
		Help: "Number of walkers in the most recent run.",
	}), "simulation_walkers")
	if err != nil {
		return nil, err
	}
	progress, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "simulation_run_progress_ratio",
		Help: "Fraction of simulated time covered by the current run.",
	}), "simulation_run_progress_ratio")
	if err != nil {
		return nil, err
	}

	return &RunCollector{
		gatherer:         gatherer,
		RunsStarted:      started,
		RunsCompleted:    completed,
		StageTransitions: stages,
		PointsEmitted:    points,
		DeliveryFailures: failures,
		IntegrationSteps: steps,
		RunDuration:      runDuration,
		RenderDuration:   renderDuration,
		Walkers:          walkers,
		RunProgress:      progress,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *RunCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Handler exposes a ready-to-use /metrics handler.
func (c *RunCollector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// RunStarted records the start of a run with the given number of walkers.
func (c *RunCollector) RunStarted(walkers int) {
	if c == nil {
		return
	}
	if c.RunsStarted != nil {
		c.RunsStarted.Inc()
	}
	if c.Walkers != nil {
		c.Walkers.Set(float64(walkers))
	}
	if c.RunProgress != nil {
		c.RunProgress.Set(0)
	}
}

// RunFinished records a completed run and its duration.
func (c *RunCollector) RunFinished(d time.Duration) {
	if c == nil {
		return
	}
	if c.RunsCompleted != nil {
		c.RunsCompleted.Inc()
	}
	if c.RunDuration != nil {
		c.RunDuration.Observe(d.Seconds())
	}
}

// ObserveStage counts a stage transition. The label is the stage name.
func (c *RunCollector) ObserveStage(stage string) {
	if c == nil || c.StageTransitions == nil {
		return
	}
	c.StageTransitions.WithLabelValues(stage).Inc()
}

// AddPoints counts produced trajectory points.
func (c *RunCollector) AddPoints(n int) {
	if c == nil || c.PointsEmitted == nil {
		return
	}
	c.PointsEmitted.Add(float64(n))
}

// DeliveryFailed counts an event dropped because the consumer hung up.
func (c *RunCollector) DeliveryFailed(kind string) {
	if c == nil || c.DeliveryFailures == nil {
		return
	}
	c.DeliveryFailures.WithLabelValues(kind).Inc()
}

// ObserveStep counts one integration step and updates run progress, clamped
// to [0, 1].
func (c *RunCollector) ObserveStep(progress float64) {
	if c == nil {
		return
	}
	if c.IntegrationSteps != nil {
		c.IntegrationSteps.Inc()
	}
	if c.RunProgress != nil {
		c.RunProgress.Set(min(max(progress, 0), 1))
	}
}

// ObserveRender records the duration of the rendering stage.
func (c *RunCollector) ObserveRender(d time.Duration) {
	if c == nil || c.RenderDuration == nil {
		return
	}
	c.RenderDuration.Observe(d.Seconds())
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
