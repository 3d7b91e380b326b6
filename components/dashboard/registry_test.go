package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDefaults(t *testing.T) {
	reg := NewRegistry()

	assert.Equal(t, []ViewKind{ViewBreakdown, ViewComposition, ViewMultiLine, ViewShareTrend, ViewStacked}, reg.Views())
	assert.Contains(t, reg.Schemes(), "demo")

	source, err := reg.OpenSource("demo:countries")
	require.NoError(t, err)
	entities, err := source.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, entities, 4)
}

func TestRegistryUnknownSources(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.OpenSource("demo:nope")
	assert.Error(t, err)

	_, err = reg.OpenSource("ftp://example.com/data.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"ftp"`)
}

func TestRegistryCustomViewAndSource(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterView("table", buildBreakdownView))
	require.NoError(t, reg.RegisterSource("Static", func(string) (DataSource, error) {
		return NewStaticSource(countryEntities()...)
	}))

	_, ok := reg.View("table")
	assert.True(t, ok)
	source, err := reg.OpenSource("static:anything")
	require.NoError(t, err)
	entities, err := source.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, entities, 3)

	assert.Error(t, reg.RegisterView("", buildBreakdownView))
	assert.Error(t, reg.RegisterView("x", nil))
	assert.Error(t, reg.RegisterSource(" ", openDemoSource))
	assert.Error(t, reg.RegisterSource("x", nil))
}

func TestSourceScheme(t *testing.T) {
	cases := map[string]string{
		"demo:places":                "demo",
		"HTTPS://example.com/a.json": "https",
		"data/places.json":           "file",
		"file:data/places.json":      "file",
		`C:\data\places.json`:        "file",
		"":                           "file",
	}
	for ref, want := range cases {
		assert.Equal(t, want, sourceScheme(ref), ref)
	}
}
