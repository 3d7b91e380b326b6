package dashboard

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartCacheStoresEntry(t *testing.T) {
	cache := NewChartCache(time.Minute)
	calls := 0
	render := func() (ChartSnippet, error) {
		calls++
		return ChartSnippet{Option: `{"series":[]}`}, nil
	}

	val1, err := cache.GetOrRender("key", render)
	require.NoError(t, err)
	val2, err := cache.GetOrRender("key", render)
	require.NoError(t, err)

	assert.Equal(t, `{"series":[]}`, val1.Option)
	assert.Equal(t, val1, val2)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, cache.Len())
}

func TestChartCacheExpires(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := NewChartCache(time.Second)
	cache.now = func() time.Time { return now }
	calls := 0
	render := func() (ChartSnippet, error) {
		calls++
		return ChartSnippet{Option: "fresh"}, nil
	}

	_, err := cache.GetOrRender("key", render)
	require.NoError(t, err)
	now = now.Add(2 * time.Second)
	_, err = cache.GetOrRender("key", render)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestChartCachePrune(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := NewChartCache(time.Second)
	cache.now = func() time.Time { return now }
	for _, key := range []string{"a", "b"} {
		_, err := cache.GetOrRender(key, func() (ChartSnippet, error) { return ChartSnippet{}, nil })
		require.NoError(t, err)
	}
	require.Equal(t, 2, cache.Len())

	now = now.Add(time.Minute)
	cache.Prune()
	assert.Equal(t, 0, cache.Len())
}

func TestChartCacheDoesNotStoreErrors(t *testing.T) {
	cache := NewChartCache(time.Minute)
	_, err := cache.GetOrRender("key", func() (ChartSnippet, error) { return ChartSnippet{}, errors.New("boom") })
	require.Error(t, err)
	assert.Equal(t, 0, cache.Len())
}

func TestChartCacheDisabledWithoutTTL(t *testing.T) {
	cache := NewChartCache(0)
	calls := 0
	render := func() (ChartSnippet, error) {
		calls++
		return ChartSnippet{}, nil
	}
	_, _ = cache.GetOrRender("key", render)
	_, _ = cache.GetOrRender("key", render)
	assert.Equal(t, 2, calls)
}
