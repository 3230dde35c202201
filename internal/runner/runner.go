// Package runner executes simulation runs on a background goroutine and
// streams their progress to a polling consumer.
package runner

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/signalsfoundry/marco-simulator/core"
	"github.com/signalsfoundry/marco-simulator/internal/logging"
	"github.com/signalsfoundry/marco-simulator/internal/observability"
	"github.com/signalsfoundry/marco-simulator/internal/progress"
	"github.com/signalsfoundry/marco-simulator/model"
	"github.com/signalsfoundry/marco-simulator/timectrl"
)

// ErrRunInProgress is returned by Start while the previous run is still
// producing events.
var ErrRunInProgress = errors.New("simulation run already in progress")

// ImageRenderer draws the complete set of walker trajectories once a run has
// produced all of its points. It owns projection, styling and output.
type ImageRenderer interface {
	Render(ctx context.Context, paths []model.WalkerPath) error
}

// Controller starts simulation runs, one at a time.
type Controller struct {
	log      logging.Logger
	metrics  *observability.RunCollector
	renderer ImageRenderer

	running atomic.Bool
}

// Option customises a Controller.
type Option func(*Controller)

// WithLogger sets the base logger; runs log through it with a run_id field.
func WithLogger(l logging.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMetrics records run metrics on the given collector.
func WithMetrics(m *observability.RunCollector) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithImageRenderer sets the collaborator invoked during the Plots stage.
func WithImageRenderer(r ImageRenderer) Option {
	return func(c *Controller) { c.renderer = r }
}

// NewController constructs a Controller.
func NewController(opts ...Option) *Controller {
	c := &Controller{log: logging.Noop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Running reports whether a run is currently producing events.
func (c *Controller) Running() bool { return c.running.Load() }

// Start snapshots cfg and launches a run on its own goroutine. The returned
// Run is already in the Start stage. ctx only carries logging and tracing
// values; the run always proceeds to completion.
func (c *Controller) Start(ctx context.Context, cfg model.SimulationConfig) (*Run, error) {
	if !c.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, log := logging.WithRunLogger(context.WithoutCancel(ctx), c.log)
	ctx = logging.ContextWithLogger(ctx, log)

	run := newRun(logging.RunIDFromContext(ctx), cfg)
	if err := run.tracker.Begin(); err != nil {
		c.running.Store(false)
		return nil, err
	}

	log.Info(ctx, "simulation run started",
		logging.Int("walkers", max(cfg.VelocitiesCount, 1)),
		logging.Float64("simulation_time_s", cfg.SimulationTime),
		logging.Float64("timestep_s", cfg.Timestep),
		logging.Any("velocity_range_mps", [2]float64{cfg.MarcoMinVelocity, cfg.MarcoMaxVelocity}),
		logging.Bool("generate_image", cfg.GenerateImage),
	)
	go c.execute(ctx, run, log)
	return run, nil
}

func (c *Controller) execute(ctx context.Context, run *Run, log logging.Logger) {
	defer close(run.done)

	cfg := run.cfg
	started := time.Now()

	steps := 0
	engine := core.NewSimulationEngine(cfg, core.WithTickListener(func(clock timectrl.SimClock) {
		steps = clock.Steps()
		c.metrics.ObserveStep(clock.Elapsed())
	}))
	walkers := engine.Walkers()

	ctx, span := observability.StartRunSpan(ctx, "simulation.run", run.ID,
		attribute.Int("walkers", len(walkers)),
		attribute.Float64("simulation_time_s", cfg.SimulationTime),
		attribute.Float64("timestep_s", cfg.Timestep),
		attribute.Int("points_to_show", cfg.PointsToShow),
		attribute.Int("planned_steps", engine.PlannedSteps()),
	)
	defer span.End()

	c.metrics.RunStarted(len(walkers))
	d := &delivery{events: run.outbox, log: log, metrics: c.metrics}

	d.stage(ctx, model.StagePoints)

	var paths []model.WalkerPath
	if cfg.GenerateImage {
		paths = walkers
	}
	emitted := 0
	for i, p := range engine.Points() {
		emitted++
		if paths != nil {
			paths[i].Points = append(paths[i].Points, p)
		}
		d.point(ctx, i, p)
	}
	c.metrics.AddPoints(emitted)
	span.SetAttributes(attribute.Int("points_emitted", emitted), attribute.Int("integration_steps", steps))

	if cfg.GenerateImage {
		d.stage(ctx, model.StagePlots)
		if err := c.render(ctx, run.ID, paths, log); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "image rendering failed")
		}
	}

	elapsed := time.Since(started)
	c.metrics.RunFinished(elapsed)
	log.Info(ctx, "simulation run finished",
		logging.Int("points", emitted),
		logging.Int("delivery_failures", d.failures),
		logging.Float64("duration_s", elapsed.Seconds()),
	)

	// The controller is idle from End onwards.
	c.running.Store(false)
	d.stage(ctx, model.StageEnd)
}

func (c *Controller) render(ctx context.Context, runID string, paths []model.WalkerPath, log logging.Logger) error {
	if c.renderer == nil {
		log.Info(ctx, "no image renderer configured; skipping plots")
		return nil
	}
	ctx, span := observability.StartRunSpan(ctx, "simulation.render", runID, attribute.Int("walkers", len(paths)))
	defer span.End()

	started := time.Now()
	err := c.renderer.Render(ctx, paths)
	c.metrics.ObserveRender(time.Since(started))
	if err != nil {
		log.Error(ctx, "image rendering failed", logging.Err(err))
		return err
	}
	return nil
}

// delivery sends events for one run, logging and counting failures without
// ever aborting the run.
type delivery struct {
	events   progress.Sender
	log      logging.Logger
	metrics  *observability.RunCollector
	failures int
}

func (d *delivery) stage(ctx context.Context, stage model.CalculationStage) {
	d.metrics.ObserveStage(stage.Name())
	if err := d.events.Send(progress.StageChanged(stage)); err != nil {
		d.failed(ctx, "stage", err, logging.String("stage", stage.Name()))
	}
}

func (d *delivery) point(ctx context.Context, walker int, p model.TrajectoryPoint) {
	if err := d.events.Send(progress.PointProduced(walker, p)); err != nil {
		d.failed(ctx, "point", err, logging.Int("walker", walker), logging.Float64("time_s", p.Time))
	}
}

func (d *delivery) failed(ctx context.Context, kind string, err error, fields ...logging.Field) {
	d.failures++
	d.metrics.DeliveryFailed(kind)
	fields = append(fields, logging.String("kind", kind), logging.Err(err))
	if d.failures == 1 {
		d.log.Warn(ctx, "progress event not delivered; continuing run", fields...)
		return
	}
	d.log.Debug(ctx, "progress event not delivered", fields...)
}
