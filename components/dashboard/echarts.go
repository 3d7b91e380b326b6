package dashboard

import (
	"fmt"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/render"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/shopspring/decimal"
)

const (
	defaultChartWidth  = "100%"
	defaultChartHeight = "360px"
)

// ChartSnippet is the rendered output of one chart: the container element,
// the init script and the bare option JSON used for live updates.
type ChartSnippet struct {
	Element string `json:"element"`
	Script  string `json:"script"`
	Option  string `json:"option"`
}

type snippetRenderer interface {
	RenderSnippet() render.ChartSnippet
}

// chartLook carries the presentation settings that are not part of a ChartConfig.
type chartLook struct {
	ChartID    string
	Width      string
	Height     string
	Theme      string
	AssetsHost string
	Text       string
	Muted      string
	Background string
}

func lookFromTheme(theme *ThemeSelection) chartLook {
	theme = normalizeTheme(theme)
	return chartLook{
		Width:      defaultChartWidth,
		Height:     defaultChartHeight,
		Theme:      theme.ChartTheme,
		Text:       theme.TextColor,
		Muted:      theme.MutedColor,
		Background: theme.Background,
	}
}

func renderEChart(cfg ChartConfig, look chartLook) (ChartSnippet, error) {
	if err := cfg.Validate(); err != nil {
		return ChartSnippet{}, err
	}
	var chart snippetRenderer
	switch cfg.Kind {
	case ChartDonut, ChartPie:
		chart = buildPieChart(cfg, look)
	case ChartLine:
		chart = buildLineChart(cfg, look)
	case ChartBar:
		chart = buildBarChart(cfg, look)
	default:
		return ChartSnippet{}, fmt.Errorf("dashboard: unsupported chart kind %q", cfg.Kind)
	}
	return toSnippet(chart.RenderSnippet()), nil
}

// jsonEscaper rewrites the characters that could close the surrounding script
// element. They only occur inside JSON strings, where the escapes decode back
// to the original label.
var jsonEscaper = strings.NewReplacer("<", `\u003c`, ">", `\u003e`, "&", `\u0026`)

func toSnippet(s render.ChartSnippet) ChartSnippet {
	return ChartSnippet{
		Element: s.Element,
		Script:  escapeOptionLiteral(s.Script),
		Option:  jsonEscaper.Replace(strings.TrimSuffix(strings.TrimSpace(s.Option), ";")),
	}
}

// escapeOptionLiteral escapes the option object literal assigned in the init
// script. The literal is a single line.
func escapeOptionLiteral(script string) string {
	const marker = "let option_"
	start := strings.Index(script, marker)
	if start < 0 {
		return script
	}
	assign := strings.Index(script[start:], " = ")
	if assign < 0 {
		return script
	}
	from := start + assign + len(" = ")
	to := strings.IndexByte(script[from:], '\n')
	if to < 0 {
		to = len(script) - from
	}
	return script[:from] + jsonEscaper.Replace(script[from:from+to]) + script[from+to:]
}

func buildPieChart(cfg ChartConfig, look chartLook) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(globalChartOptions(cfg, look)...)
	radius := any("65%")
	if cfg.Kind == ChartDonut {
		radius = []string{"60%", "78%"}
	}
	pie.AddSeries(cfg.Title, toPieData(cfg.Slices),
		charts.WithPieChartOpts(opts.PieChart{
			Radius: radius,
			Center: []string{"50%", "50%"},
		}),
		charts.WithLabelOpts(opts.Label{
			Show:  opts.Bool(true),
			Color: look.Text,
		}),
		charts.WithItemStyleOpts(opts.ItemStyle{
			BorderColor: "rgba(0,0,0,0.4)",
			BorderWidth: 2,
		}),
	)
	return pie
}

func buildLineChart(cfg ChartConfig, look chartLook) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(append(globalChartOptions(cfg, look), axisOptions(cfg, look)...)...)
	line.SetXAxis(cfg.XAxis)
	for _, s := range cfg.Series {
		line.AddSeries(s.Name, toLineData(s.Values), lineSeriesOptions(s)...)
	}
	return line
}

func buildBarChart(cfg ChartConfig, look chartLook) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(append(globalChartOptions(cfg, look), axisOptions(cfg, look)...)...)
	bar.SetXAxis(cfg.XAxis)
	var overlay *charts.Line
	for _, s := range cfg.Series {
		if s.Type == SeriesLine {
			if overlay == nil {
				overlay = charts.NewLine()
				overlay.SetXAxis(cfg.XAxis)
			}
			overlay.AddSeries(s.Name, toLineData(s.Values), lineSeriesOptions(s)...)
			continue
		}
		bar.AddSeries(s.Name, toBarData(s.Values), barSeriesOptions(s)...)
	}
	if overlay != nil {
		bar.Overlap(overlay)
	}
	return bar
}

func globalChartOptions(cfg ChartConfig, look chartLook) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		ChartID:         look.ChartID,
		Theme:           look.Theme,
		Width:           orDefault(look.Width, defaultChartWidth),
		Height:          orDefault(look.Height, defaultChartHeight),
		BackgroundColor: look.Background,
	}
	if look.AssetsHost != "" {
		initOpts.AssetsHost = look.AssetsHost
	}
	trigger := cfg.Tooltip
	if trigger == "" {
		trigger = "item"
	}
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(initOpts),
		charts.WithTitleOpts(opts.Title{
			Title:         cfg.Title,
			Subtitle:      cfg.Subtitle,
			TitleStyle:    &opts.TextStyle{Color: look.Text},
			SubtitleStyle: &opts.TextStyle{Color: look.Text},
		}),
		charts.WithLegendOpts(opts.Legend{
			Show:          opts.Bool(cfg.Legend),
			Bottom:        "0",
			TextStyle:     &opts.TextStyle{Color: look.Text},
			InactiveColor: "#666",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: trigger}),
	}
}

func axisOptions(cfg ChartConfig, look chartLook) []charts.GlobalOpts {
	yLabel := &opts.AxisLabel{Color: look.Text}
	if cfg.YAxis.Suffix != "" {
		yLabel.Formatter = types.FuncStr("{value}" + cfg.YAxis.Suffix)
	}
	yAxis := opts.YAxis{
		Name:      cfg.YAxis.Name,
		Type:      "value",
		AxisLabel: yLabel,
		SplitLine: &opts.SplitLine{
			Show:      opts.Bool(true),
			LineStyle: &opts.LineStyle{Color: look.Muted},
		},
	}
	if cfg.YAxis.Min != nil {
		yAxis.Min = *cfg.YAxis.Min
	}
	if cfg.YAxis.Max != nil {
		yAxis.Max = *cfg.YAxis.Max
	}
	return []charts.GlobalOpts{
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Color: look.Text},
		}),
		charts.WithYAxisOpts(yAxis),
		charts.WithGridOpts(opts.Grid{
			Left:         "5%",
			Right:        "5%",
			Top:          "18%",
			Bottom:       "12%",
			ContainLabel: opts.Bool(true),
		}),
	}
}

func lineSeriesOptions(s SeriesConfig) []charts.SeriesOpts {
	width := s.Width
	if width == 0 {
		width = 2
	}
	out := []charts.SeriesOpts{
		charts.WithLineChartOpts(opts.LineChart{
			Smooth: opts.Bool(s.Smooth),
			Symbol: "circle",
			Stack:  s.Stack,
		}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: s.Color, Width: width}),
	}
	if s.Color != "" {
		out = append(out, charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}))
	}
	if s.Area {
		out = append(out, charts.WithAreaStyleOpts(opts.AreaStyle{Color: s.Color, Opacity: opts.Float(0.15)}))
	}
	return out
}

func barSeriesOptions(s SeriesConfig) []charts.SeriesOpts {
	out := []charts.SeriesOpts{
		charts.WithBarChartOpts(opts.BarChart{Stack: s.Stack}),
	}
	if s.Color != "" {
		out = append(out, charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}))
	}
	return out
}

func toBarData(values []float64) []opts.BarData {
	data := make([]opts.BarData, len(values))
	for i, v := range values {
		data[i] = opts.BarData{Value: v}
	}
	return data
}

func toLineData(values []float64) []opts.LineData {
	data := make([]opts.LineData, len(values))
	for i, v := range values {
		data[i] = opts.LineData{Value: v}
	}
	return data
}

// toPieData labels every slice with its share rounded to one decimal; the
// built-in {d} placeholder would show two.
func toPieData(slices []SliceConfig) []opts.PieData {
	total := decimal.Zero
	for _, slice := range slices {
		total = total.Add(decimal.NewFromFloat(slice.Value))
	}
	data := make([]opts.PieData, len(slices))
	for i, slice := range slices {
		name := slice.Name
		if name == "" {
			name = fmt.Sprintf("Slice %d", i+1)
		}
		share := FormatPercent(0)
		if !total.IsZero() {
			share = FormatPercent(decimal.NewFromFloat(slice.Value).Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64())
		}
		data[i] = opts.PieData{
			Name:    name,
			Value:   slice.Value,
			Label:   &opts.Label{Formatter: types.FuncStr("{b}\n" + share)},
			Tooltip: &opts.Tooltip{Formatter: types.FuncStr("{b}: {c} (" + share + ")")},
		}
		if slice.Color != "" {
			data[i].ItemStyle = &opts.ItemStyle{Color: slice.Color}
		}
	}
	return data
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
