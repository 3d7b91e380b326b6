package dashboard

import (
	"fmt"
	"math"
)

// ViewKind names a chart view a dashboard binds to a container.
type ViewKind string

const (
	// ViewBreakdown is a donut of the latest record's categories.
	ViewBreakdown ViewKind = "breakdown"
	// ViewShareTrend is a line of the numerator's share per period.
	ViewShareTrend ViewKind = "share_trend"
	// ViewStacked is a stacked bar per category with an optional aggregate line.
	ViewStacked ViewKind = "stacked"
	// ViewMultiLine is one line per category with an optional aggregate line.
	ViewMultiLine ViewKind = "multi_line"
	// ViewComposition is a pie of the focused period, the latest by default.
	ViewComposition ViewKind = "composition"
)

const (
	shareAxisFloor = 60
	stackName      = "total"
)

// ViewInput is everything a view builder may read. Builders are pure.
type ViewInput struct {
	Entity        Entity
	Mode          ViewMode
	Schema        CategorySchema
	ShowAggregate bool
	FocusPeriod   string
}

// ViewBuilder derives a chart configuration for the selected entity.
type ViewBuilder func(in ViewInput) (ChartConfig, error)

func defaultViewBuilders() map[ViewKind]ViewBuilder {
	return map[ViewKind]ViewBuilder{
		ViewBreakdown:   buildBreakdownView,
		ViewShareTrend:  buildShareTrendView,
		ViewStacked:     buildStackedView,
		ViewMultiLine:   buildMultiLineView,
		ViewComposition: buildCompositionView,
	}
}

func buildBreakdownView(in ViewInput) (ChartConfig, error) {
	cfg := ChartConfig{
		Kind:   ChartDonut,
		Title:  in.Entity.Name,
		Legend: true,
		Slices: categorySlices(in.Schema, LatestBreakdown(in.Entity, in.Mode)),
	}
	if rec, ok := LatestRecord(in.Entity, in.Mode); ok {
		cfg.Subtitle = rec.Period
	}
	return cfg, nil
}

func buildShareTrendView(in ViewInput) (ChartConfig, error) {
	if in.Schema.Numerator == "" {
		return ChartConfig{}, fmt.Errorf("dashboard: share trend view needs a numerator category")
	}
	points := PercentageOverTime(in.Entity, in.Schema.Numerator, in.Mode)
	periods := make([]string, len(points))
	values := make([]float64, len(points))
	var peak float64
	for i, p := range points {
		periods[i] = p.Period
		values[i] = RoundPercent(p.Value)
		peak = math.Max(peak, p.Value)
	}
	label := in.Schema.Numerator
	color := ""
	if c, ok := in.Schema.Category(in.Schema.Numerator); ok {
		label, color = c.Label, c.Color
	}
	return ChartConfig{
		Kind:    ChartLine,
		Title:   label + " share",
		XAxis:   periods,
		Tooltip: "axis",
		YAxis: AxisConfig{
			Min:    floatPtr(0),
			Max:    floatPtr(shareAxisMax(peak)),
			Suffix: "%",
		},
		Series: []SeriesConfig{{
			Name:   label,
			Type:   SeriesLine,
			Values: values,
			Color:  color,
			Smooth: true,
			Area:   true,
			Width:  3,
		}},
	}, nil
}

// shareAxisMax keeps the y axis at 60% or more, rounded up to a multiple of ten.
func shareAxisMax(peak float64) float64 {
	return math.Max(shareAxisFloor, math.Ceil(peak/10)*10)
}

func buildStackedView(in ViewInput) (ChartConfig, error) {
	keys := in.Schema.Keys()
	series := StackedSeriesByCategory(in.Entity, keys, in.Mode)
	cfg := ChartConfig{
		Kind:    ChartBar,
		Title:   in.Entity.Name,
		XAxis:   Periods(in.Entity, in.Mode),
		YAxis:   AxisConfig{Name: in.Schema.Unit},
		Legend:  true,
		Tooltip: "axis",
	}
	for _, c := range in.Schema.Categories {
		cfg.Series = append(cfg.Series, SeriesConfig{
			Name:   c.Label,
			Type:   SeriesBar,
			Stack:  stackName,
			Values: series[c.Key],
			Color:  c.Color,
		})
	}
	if in.ShowAggregate {
		cfg.Series = append(cfg.Series, aggregateSeries(in))
	}
	return cfg, nil
}

func buildMultiLineView(in ViewInput) (ChartConfig, error) {
	keys := in.Schema.Keys()
	series := StackedSeriesByCategory(in.Entity, keys, in.Mode)
	cfg := ChartConfig{
		Kind:     ChartLine,
		Title:    in.Entity.Name,
		Subtitle: in.Mode.String(),
		XAxis:    Periods(in.Entity, in.Mode),
		YAxis:    AxisConfig{Name: in.Schema.Unit},
		Legend:   true,
		Tooltip:  "axis",
	}
	for _, c := range in.Schema.Categories {
		cfg.Series = append(cfg.Series, SeriesConfig{
			Name:   c.Label,
			Type:   SeriesLine,
			Values: series[c.Key],
			Color:  c.Color,
			Smooth: true,
		})
	}
	if in.ShowAggregate {
		cfg.Series = append(cfg.Series, aggregateSeries(in))
	}
	return cfg, nil
}

func buildCompositionView(in ViewInput) (ChartConfig, error) {
	period := in.FocusPeriod
	if period == "" {
		rec, ok := LatestRecord(in.Entity, in.Mode)
		if !ok {
			return ChartConfig{Kind: ChartPie, Title: in.Entity.Name, Legend: true}, nil
		}
		period = rec.Period
	}
	values, ok := SliceAt(in.Entity, in.Mode, period)
	if !ok {
		return ChartConfig{}, unknownSelection("period", period)
	}
	return ChartConfig{
		Kind:     ChartPie,
		Title:    in.Entity.Name,
		Subtitle: period,
		Legend:   true,
		Slices:   categorySlices(in.Schema, values),
	}, nil
}

func aggregateSeries(in ViewInput) SeriesConfig {
	return SeriesConfig{
		Name:   in.Schema.aggregateLabel(),
		Type:   SeriesLine,
		Values: AggregateTotals(in.Entity, in.Mode),
		Color:  "#EFF4F7",
		Width:  3,
	}
}

func categorySlices(schema CategorySchema, values map[string]float64) []SliceConfig {
	slices := make([]SliceConfig, 0, len(schema.Categories))
	for _, c := range schema.Categories {
		slices = append(slices, SliceConfig{Name: c.Label, Value: values[c.Key], Color: c.Color})
	}
	return slices
}
