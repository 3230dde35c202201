package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/signalsfoundry/marco-simulator/internal/config"
	"github.com/signalsfoundry/marco-simulator/internal/logging"
	"github.com/signalsfoundry/marco-simulator/internal/observability"
	"github.com/signalsfoundry/marco-simulator/internal/progress"
	"github.com/signalsfoundry/marco-simulator/internal/render"
	"github.com/signalsfoundry/marco-simulator/internal/runner"
	"github.com/signalsfoundry/marco-simulator/model"
)

type options struct {
	configPath  string
	metricsAddr string
	poll        time.Duration
	colour      bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "path to a settings file (yaml, json or toml); empty uses defaults")
	flag.StringVar(&opts.metricsAddr, "metrics-addr", "", "HTTP address for Prometheus /metrics; empty disables")
	flag.DurationVar(&opts.poll, "poll", 100*time.Millisecond, "how often progress is drained and printed")
	flag.BoolVar(&opts.colour, "colour", false, "colour plot series by walker")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdown, log)

	var collector *observability.RunCollector
	if opts.metricsAddr != "" {
		collector, err = observability.NewRunCollector(nil)
		if err != nil {
			log.Error(ctx, "failed to initialise metrics collector", logging.Err(err))
			os.Exit(1)
		}
		metricsSrv := serveMetrics(opts.metricsAddr, collector, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsSrv.Shutdown(shutdownCtx)
		}()
	}

	if err := run(ctx, opts, os.Stdout, log, collector); err != nil {
		log.Error(ctx, "simulation failed", logging.Err(err))
		os.Exit(1)
	}
}

// run loads settings, executes one simulation and prints its progress to out
// until the End stage arrives. Cancelling ctx hangs up on the run.
func run(ctx context.Context, opts options, out io.Writer, log logging.Logger, collector *observability.RunCollector) error {
	settings, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	cfg := settings.SimulationConfig()
	// The plotter writes from the run goroutine.
	out = &lockedWriter{w: out}

	controllerOpts := []runner.Option{runner.WithLogger(log), runner.WithMetrics(collector)}
	if cfg.GenerateImage {
		plotter := render.NewPlotter(out,
			render.WithSize(settings.Image.Width, settings.Image.Height),
			render.WithColour(opts.colour),
		)
		controllerOpts = append(controllerOpts, runner.WithImageRenderer(plotter))
	}

	r, err := runner.NewController(controllerOpts...).Start(ctx, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s (%d walkers, %.0f s at %.3g s steps)\n",
		r.Tracker().Stage(), max(cfg.VelocitiesCount, 1), cfg.SimulationTime, cfg.Timestep)

	poll := opts.poll
	if poll <= 0 {
		poll = 100 * time.Millisecond
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Warn(ctx, "interrupted; discarding pending progress", logging.Int("pending", r.Pending()))
			r.Close()
			return ctx.Err()
		case <-ticker.C:
		case <-r.Done():
		}

		events, err := r.Poll()
		if err != nil {
			return err
		}
		report(out, r.Tracker(), events)
		if r.Tracker().Finished() {
			break
		}
	}
	summarise(out, cfg, r.Tracker())
	return nil
}

// report prints stage changes as they arrive and a point count for every poll
// that produced points.
func report(out io.Writer, tr *progress.Tracker, events []progress.Event) {
	points := 0
	for _, ev := range events {
		switch ev.Kind {
		case progress.KindStageChanged:
			if points > 0 {
				fmt.Fprintf(out, "  %d points\n", tr.PointCount())
				points = 0
			}
			fmt.Fprintln(out, ev.Stage)
		case progress.KindPointProduced:
			points++
		}
	}
	if points > 0 {
		fmt.Fprintf(out, "  %d points\n", tr.PointCount())
	}
}

func summarise(out io.Writer, cfg model.SimulationConfig, tr *progress.Tracker) {
	for _, p := range tr.Paths() {
		if len(p.Points) == 0 {
			continue
		}
		last := p.Points[len(p.Points)-1]
		fmt.Fprintf(out, "walker %d at %.2f m/s %s: %d points, ended at %s after %.0f s\n",
			p.Index, cfg.Velocity(p.Index), p.Colour.Hex(), len(p.Points), formatLatLon(last), last.Time)
	}
}

func formatLatLon(p model.TrajectoryPoint) string {
	return fmt.Sprintf("(%.3f, %.3f)", p.Latitude, p.Longitude)
}

func serveMetrics(addr string, collector *observability.RunCollector, log logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
