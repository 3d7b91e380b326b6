package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func donutConfig(recycled float64) ChartConfig {
	return ChartConfig{
		Kind:  ChartDonut,
		Title: "Germany",
		Slices: []SliceConfig{
			{Name: "Landfilled", Value: 35},
			{Name: "Burned", Value: 580},
			{Name: "Recycled", Value: recycled},
		},
		Tooltip: "item",
	}
}

func lineConfig() ChartConfig {
	return ChartConfig{
		Kind:  ChartLine,
		XAxis: []string{"2015", "2020"},
		YAxis: AxisConfig{Min: floatPtr(0), Max: floatPtr(60), Suffix: "%"},
		Series: []SeriesConfig{
			{Name: "Recycled", Type: SeriesLine, Values: []float64{48, 51.4}, Smooth: true, Area: true},
		},
	}
}

func TestNewChartRendererBindsContainer(t *testing.T) {
	surface := NewSurface("countries-breakdown")

	r, err := NewChartRenderer(surface, "countries-breakdown")
	require.NoError(t, err)
	assert.Equal(t, "countries-breakdown", r.Container())
	assert.Equal(t, "countries_breakdown", r.State().ChartID)

	_, err = NewChartRenderer(surface, "countries-breakdown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already bound")

	_, err = NewChartRenderer(surface, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")

	_, err = NewChartRenderer(nil, "x")
	assert.ErrorIs(t, err, errMissingSurface)
}

func TestChartRendererRenderIsIdempotent(t *testing.T) {
	r, err := NewChartRenderer(NewSurface("chart"), "chart")
	require.NoError(t, err)

	require.NoError(t, r.Render(donutConfig(650)))
	first := r.Option()
	require.NoError(t, r.Render(donutConfig(650)))

	assert.Equal(t, first, r.Option())
	assert.Equal(t, 2, r.Renders())
	assert.Contains(t, first, "Recycled")
	assert.Contains(t, r.Snippet().Element, `id="chart"`)
	assert.Contains(t, r.Snippet().Script, "echarts.init")
}

func TestChartRendererReplacesPreviousConfig(t *testing.T) {
	r, err := NewChartRenderer(NewSurface("chart"), "chart")
	require.NoError(t, err)

	require.NoError(t, r.Render(donutConfig(650)))
	require.NoError(t, r.Render(lineConfig()))

	cfg, ok := r.Config()
	require.True(t, ok)
	assert.Equal(t, ChartLine, cfg.Kind)
	assert.Empty(t, cfg.Slices)
	assert.NotContains(t, r.Option(), "Landfilled")
	assert.Contains(t, r.Option(), "2015")
}

func TestChartRendererRenderDoesNotRetainCallerSlices(t *testing.T) {
	r, err := NewChartRenderer(NewSurface("chart"), "chart")
	require.NoError(t, err)
	cfg := lineConfig()
	require.NoError(t, r.Render(cfg))

	cfg.Series[0].Values[1] = 99
	stored, _ := r.Config()
	assert.Equal(t, 51.4, stored.Series[0].Values[1])
}

func TestChartRendererRejectsInvalidConfig(t *testing.T) {
	r, err := NewChartRenderer(NewSurface("chart"), "chart")
	require.NoError(t, err)
	require.NoError(t, r.Render(donutConfig(650)))
	before := r.Option()

	err = r.Render(ChartConfig{Kind: ChartLine, XAxis: []string{"a"}, Series: []SeriesConfig{{Name: "x", Type: SeriesLine}}})
	require.Error(t, err)
	assert.Equal(t, before, r.Option())
	assert.Equal(t, 1, r.Renders())
}

func TestChartRendererResize(t *testing.T) {
	r, err := NewChartRenderer(NewSurface("chart"), "chart", WithRendererSize("600px", "300px"))
	require.NoError(t, err)

	require.NoError(t, r.Resize("800px", ""))
	w, h := r.Size()
	assert.Equal(t, "800px", w)
	assert.Equal(t, "300px", h)
	_, ok := r.Config()
	assert.False(t, ok)

	require.NoError(t, r.Render(donutConfig(650)))
	option := r.Option()
	require.NoError(t, r.Resize("400px", "200px"))
	assert.Contains(t, r.Snippet().Element, "width:400px")
	assert.Equal(t, option, r.Option())
	assert.Equal(t, 1, r.Renders())
}

func TestChartRendererPlaceholder(t *testing.T) {
	r, err := NewChartRenderer(NewSurface("chart"), "chart")
	require.NoError(t, err)
	require.NoError(t, r.Render(donutConfig(650)))

	r.ShowPlaceholder(PlaceholderDataNotFound)

	assert.Equal(t, PlaceholderDataNotFound, r.Placeholder())
	assert.Empty(t, r.Option())
	_, ok := r.Config()
	assert.False(t, ok)

	require.NoError(t, r.Render(donutConfig(650)))
	assert.Empty(t, r.Placeholder())
}

func TestChartRendererUsesCache(t *testing.T) {
	cache := NewChartCache(time.Minute)
	r, err := NewChartRenderer(NewSurface("chart"), "chart", WithRenderCache(cache), WithRendererTheme(DefaultTheme()))
	require.NoError(t, err)

	require.NoError(t, r.Render(donutConfig(650)))
	require.NoError(t, r.Render(donutConfig(650)))
	assert.Equal(t, 1, cache.Len())

	require.NoError(t, r.Render(donutConfig(640)))
	assert.Equal(t, 2, cache.Len())
}

func TestChartID(t *testing.T) {
	assert.Equal(t, "stations_lines", chartID("stations-lines"))
	assert.Equal(t, "c_2024_chart", chartID("2024-chart"))
	assert.Equal(t, "chart", chartID(""))
}

func TestChartRendererFractionalAggregateIsIdempotent(t *testing.T) {
	r, err := NewChartRenderer(NewSurface("chart"), "chart")
	require.NoError(t, err)

	in := ViewInput{
		Entity: Entity{ID: "lukang", Name: "Lukang", Records: []Record{
			{Period: "2023", Values: map[string]float64{"paper": 0.1, "plastic": 0.2, "metal": 0.3}},
			{Period: "2024", Values: map[string]float64{"paper": 194.5, "plastic": 3.7, "metal": 0.3}},
		}},
		Schema: CategorySchema{Categories: []Category{
			{Key: "paper", Label: "Paper"},
			{Key: "plastic", Label: "Plastic"},
			{Key: "metal", Label: "Metal"},
		}},
		ShowAggregate: true,
	}
	cfg, err := buildStackedView(in)
	require.NoError(t, err)
	require.NoError(t, r.Render(cfg))
	first := r.Option()

	for i := 0; i < 100; i++ {
		cfg, err := buildStackedView(in)
		require.NoError(t, err)
		require.NoError(t, r.Render(cfg))
		require.Equal(t, first, r.Option())
	}
}
