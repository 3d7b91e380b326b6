package dashboard

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoDatasetsLoad(t *testing.T) {
	names := DemoDatasets()
	assert.Equal(t, []string{"countries", "facilities", "places", "stations"}, names)

	for _, name := range names {
		entities, err := DemoSource(name).Load(context.Background())
		require.NoError(t, err, name)
		assert.NotEmpty(t, entities, name)
	}
}

func TestDemoCountriesGermany(t *testing.T) {
	entities, err := DemoSource("countries").Load(context.Background())
	require.NoError(t, err)

	var ger Entity
	for _, e := range entities {
		if e.ID == "ger" {
			ger = e
		}
	}
	require.Equal(t, "Germany", ger.Name)
	latest, ok := LatestRecord(ger, LongTerm)
	require.True(t, ok)
	assert.Equal(t, "2020", latest.Period)
	assert.Equal(t, "51.4%", FormatPercent(Share(latest.Values, "recycled")))
	require.NotNil(t, latest.PerCapita)
	assert.Equal(t, "0.57 kg", FormatPerCapita(*latest.PerCapita))
}

func TestDemoPlacesSwapLatLon(t *testing.T) {
	entities, err := DemoSource("places").Load(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, entities)

	for _, e := range entities {
		require.NotNil(t, e.Coord, e.ID)
		assert.Greater(t, e.Coord.Lon(), 100.0, e.ID)
		assert.Less(t, e.Coord.Lat(), 30.0, e.ID)
		assert.Len(t, e.Monthly, 12, e.ID)
	}
}

func TestDemoSourceUnknownName(t *testing.T) {
	_, err := DemoSource("nope").Load(context.Background())
	require.Error(t, err)
	assert.True(t, IsDataUnavailable(err))
}

func TestStaticSourceReturnsCopies(t *testing.T) {
	source, err := NewStaticSource(countryEntities()...)
	require.NoError(t, err)

	first, err := source.Load(context.Background())
	require.NoError(t, err)
	first[0].Records[0].Values["recycled"] = -1

	second, err := source.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 420.0, second[0].Records[0].Values["recycled"])
}

func TestStaticSourceHonoursContext(t *testing.T) {
	source, err := NewStaticSource(countryEntities()...)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = source.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReaderSourceWrapsFailures(t *testing.T) {
	failing := ReaderSource{Name: "remote", Open: func(context.Context) (io.ReadCloser, error) {
		return nil, errors.New("dial tcp: refused")
	}}
	_, err := failing.Load(context.Background())
	require.Error(t, err)
	assert.True(t, IsDataUnavailable(err))

	malformed := ReaderSource{Name: "bad", Validator: defaultDatasetValidator, Open: func(context.Context) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(`{"not": "an array"}`)), nil
	}}
	_, err = malformed.Load(context.Background())
	require.Error(t, err)
	assert.True(t, IsDataUnavailable(err))

	_, err = ReaderSource{Name: "none"}.Load(context.Background())
	assert.True(t, IsDataUnavailable(err))
}

func TestSourceFunc(t *testing.T) {
	called := false
	source := SourceFunc(func(context.Context) ([]Entity, error) {
		called = true
		return nil, nil
	})
	_, err := source.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, called)
}
