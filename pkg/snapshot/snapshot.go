// Package snapshot exports dashboard charts as static SVG or PNG images.
package snapshot

import (
	"fmt"
	"io"
	"math"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	dashboard "github.com/goliatone/go-wastedash/components/dashboard"
)

// Format is an image encoding.
type Format string

const (
	SVG Format = "svg"
	PNG Format = "png"
)

// ParseFormat accepts "svg" or "png" in any case.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case SVG, "":
		return SVG, nil
	case PNG:
		return PNG, nil
	default:
		return "", goerrors.New(fmt.Sprintf("snapshot: unknown format %q", value), goerrors.CategoryBadInput).
			WithTextCode("UNKNOWN_FORMAT")
	}
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string { return "." + string(f) }

func (f Format) provider() chart.RendererProvider {
	if f == PNG {
		return chart.PNG
	}
	return chart.SVG
}

// Options sizes the image in pixels.
type Options struct {
	Width  int
	Height int
}

const (
	DefaultWidth  = 800
	DefaultHeight = 480
)

func (o Options) normalized() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

// Export draws cfg to w. Line series over a bar chart are not drawn; go-chart
// has no mixed bar and line chart.
func Export(cfg dashboard.ChartConfig, format Format, w io.Writer, opts Options) error {
	if err := cfg.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "snapshot: invalid chart")
	}
	opts = opts.normalized()
	rp := format.provider()
	switch cfg.Kind {
	case dashboard.ChartDonut:
		values, err := sliceValues(cfg)
		if err != nil {
			return err
		}
		return chart.DonutChart{Title: cfg.Title, Width: opts.Width, Height: opts.Height, Values: values}.Render(rp, w)
	case dashboard.ChartPie:
		values, err := sliceValues(cfg)
		if err != nil {
			return err
		}
		return chart.PieChart{Title: cfg.Title, Width: opts.Width, Height: opts.Height, Values: values}.Render(rp, w)
	case dashboard.ChartBar:
		bars, err := stackedBars(cfg)
		if err != nil {
			return err
		}
		return chart.StackedBarChart{
			Title:  cfg.Title,
			Width:  opts.Width,
			Height: opts.Height,
			Bars:   bars,
		}.Render(rp, w)
	default:
		graph, err := lineChart(cfg, opts)
		if err != nil {
			return err
		}
		return graph.Render(rp, w)
	}
}

func degenerate(cfg dashboard.ChartConfig, reason string) error {
	return goerrors.New(fmt.Sprintf("snapshot: %s chart %q has nothing to draw: %s", cfg.Kind, cfg.Title, reason), dashboard.CategoryDegenerateData).
		WithTextCode("DEGENERATE_DATA").
		WithMetadata(map[string]any{"kind": string(cfg.Kind), "title": cfg.Title})
}

func sliceValues(cfg dashboard.ChartConfig) ([]chart.Value, error) {
	values := make([]chart.Value, 0, len(cfg.Slices))
	for _, s := range cfg.Slices {
		if s.Value <= 0 {
			continue
		}
		values = append(values, chart.Value{Label: s.Name, Value: s.Value, Style: fill(s.Color)})
	}
	if len(values) == 0 {
		return nil, degenerate(cfg, "every slice is zero")
	}
	return values, nil
}

// stackedBars turns every bar series into one segment per axis label.
// go-chart draws each stack as shares of its own total, so the image shows
// composition rather than absolute height.
func stackedBars(cfg dashboard.ChartConfig) ([]chart.StackedBar, error) {
	bars := make([]chart.StackedBar, len(cfg.XAxis))
	drawable := false
	for i, label := range cfg.XAxis {
		bars[i].Name = label
		for _, s := range cfg.Series {
			if s.Type != dashboard.SeriesBar || s.Values[i] <= 0 {
				continue
			}
			bars[i].Values = append(bars[i].Values, chart.Value{Label: s.Name, Value: s.Values[i], Style: fill(s.Color)})
			drawable = true
		}
	}
	if !drawable {
		return nil, degenerate(cfg, "no positive bar values")
	}
	return bars, nil
}

func lineChart(cfg dashboard.ChartConfig, opts Options) (chart.Chart, error) {
	if len(cfg.XAxis) < 2 {
		return chart.Chart{}, degenerate(cfg, "a line needs at least two periods")
	}
	if len(cfg.Series) == 0 {
		return chart.Chart{}, degenerate(cfg, "no series")
	}
	xs := make([]float64, len(cfg.XAxis))
	ticks := make([]chart.Tick, len(cfg.XAxis))
	for i, label := range cfg.XAxis {
		xs[i] = float64(i)
		ticks[i] = chart.Tick{Value: float64(i), Label: label}
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	series := make([]chart.Series, 0, len(cfg.Series))
	for _, s := range cfg.Series {
		for _, v := range s.Values {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
		style := chart.Style{StrokeWidth: 2}
		if s.Color != "" {
			style.StrokeColor = drawing.ParseColor(s.Color)
		}
		if s.Area {
			style.FillColor = style.StrokeColor.WithAlpha(64)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: append([]float64(nil), s.Values...),
			Style:   style,
		})
	}
	if cfg.YAxis.Min != nil {
		lo = *cfg.YAxis.Min
	}
	if cfg.YAxis.Max != nil {
		hi = *cfg.YAxis.Max
	}
	if hi <= lo {
		hi = lo + 1
	}
	graph := chart.Chart{
		Title:  cfg.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis:  chart.XAxis{Ticks: ticks},
		YAxis:  chart.YAxis{Name: cfg.YAxis.Name, Range: &chart.ContinuousRange{Min: lo, Max: hi}},
		Series: series,
	}
	if cfg.Legend {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}
	return graph, nil
}

func fill(color string) chart.Style {
	if color == "" {
		return chart.Style{}
	}
	c := drawing.ParseColor(color)
	return chart.Style{FillColor: c, StrokeColor: c}
}
