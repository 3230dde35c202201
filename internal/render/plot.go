// Package render draws finished walker trajectories as terminal charts.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/guptarohit/asciigraph"

	"github.com/signalsfoundry/marco-simulator/internal/logging"
	"github.com/signalsfoundry/marco-simulator/model"
)

// ErrNoPoints is returned when none of the paths holds a trajectory point.
var ErrNoPoints = errors.New("render: no trajectory points to plot")

const (
	defaultWidth  = 100
	defaultHeight = 20
)

// Plotter writes latitude-vs-time and longitude-vs-time charts, one series
// per walker, to an io.Writer.
type Plotter struct {
	out    io.Writer
	width  int
	height int
	colour bool
}

// PlotterOption customises a Plotter.
type PlotterOption func(*Plotter)

// WithSize sets the chart area in terminal cells. Non-positive values keep
// the defaults.
func WithSize(width, height int) PlotterOption {
	return func(p *Plotter) {
		if width > 0 {
			p.width = width
		}
		if height > 0 {
			p.height = height
		}
	}
}

// WithColour draws each series in the ANSI colour closest to its walker's
// colour.
func WithColour(enabled bool) PlotterOption {
	return func(p *Plotter) { p.colour = enabled }
}

// NewPlotter returns a Plotter writing to out.
func NewPlotter(out io.Writer, opts ...PlotterOption) *Plotter {
	p := &Plotter{out: out, width: defaultWidth, height: defaultHeight}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Render implements runner.ImageRenderer.
func (p *Plotter) Render(ctx context.Context, paths []model.WalkerPath) error {
	var (
		lats, lons [][]float64
		legends    []string
		colours    []asciigraph.AnsiColor
		end        float64
	)
	for _, path := range paths {
		if len(path.Points) == 0 {
			continue
		}
		lat := make([]float64, len(path.Points))
		lon := make([]float64, len(path.Points))
		for i, pt := range path.Points {
			lat[i] = pt.Latitude
			lon[i] = pt.Longitude
		}
		lats = append(lats, lat)
		lons = append(lons, lon)
		legends = append(legends, fmt.Sprintf("%.2f m/s", path.Velocity))
		colours = append(colours, ansiColour(path.Colour))
		end = max(end, path.Points[len(path.Points)-1].Time)
	}
	if len(lats) == 0 {
		return ErrNoPoints
	}

	charts := []struct {
		series  [][]float64
		caption string
	}{
		{lats, fmt.Sprintf("latitude (deg) over %.0f s", end)},
		{lons, fmt.Sprintf("longitude (deg) over %.0f s", end)},
	}
	for _, c := range charts {
		if err := ctx.Err(); err != nil {
			return err
		}
		opts := []asciigraph.Option{
			asciigraph.Width(p.width),
			asciigraph.Height(p.height),
			asciigraph.Precision(1),
			asciigraph.Caption(c.caption),
		}
		// Legends only make sense once there is more than one line to tell apart.
		if len(c.series) > 1 {
			opts = append(opts, asciigraph.SeriesLegends(legends...))
		}
		if p.colour {
			opts = append(opts, asciigraph.SeriesColors(colours...))
		}
		if _, err := fmt.Fprintf(p.out, "%s\n\n", asciigraph.PlotMany(c.series, opts...)); err != nil {
			return fmt.Errorf("render: write chart: %w", err)
		}
	}
	if log := logging.LoggerFromContext(ctx); log != nil {
		log.Debug(ctx, "plots written", logging.Int("walkers", len(lats)), logging.Float64("end_time_s", end))
	}
	return nil
}

// ansiColour maps c onto the 6x6x6 cube of the xterm 256-colour palette.
func ansiColour(c model.Colour) asciigraph.AnsiColor {
	level := func(v uint8) int { return (int(v)*5 + 127) / 255 }
	return asciigraph.AnsiColor(16 + 36*level(c.R) + 6*level(c.G) + level(c.B))
}
