package datafeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/goliatone/go-wastedash/components/dashboard"
)

const stationsJSON = `[
  {"name": "Keelung", "coord": [121.74, 25.13], "records": [
    {"period": "2023", "values": {"general": 120, "recycle": 80}},
    {"period": "2024", "values": {"general": 110, "recycle": 95}}
  ]},
  {"id": "hsinchu", "records": [
    {"period": "2024", "values": {"general": 70, "recycle": 60}}
  ]}
]`

func TestHTTPSourceLoad(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Fatalf("expected auth header, got %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(stationsJSON))
	}))
	t.Cleanup(server.Close)

	source, err := NewHTTPSource(HTTPConfig{URL: server.URL, APIKey: "secret"})
	require.NoError(t, err)
	entities, err := source.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, "keelung", entities[0].ID)
	assert.Equal(t, "Hsinchu", entities[1].Name)
}

func TestHTTPSourceRevalidatesWithETag(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(stationsJSON))
	}))
	t.Cleanup(server.Close)

	source, err := NewHTTPSource(HTTPConfig{URL: server.URL})
	require.NoError(t, err)
	first, err := source.Load(context.Background())
	require.NoError(t, err)
	second, err := source.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, first, second)

	second[0].Name = "changed"
	third, err := source.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Keelung", third[0].Name)
}

func TestHTTPSourceFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "maintenance", http.StatusServiceUnavailable)
		},
		"malformed": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"not": "a list"}`))
		},
		"schema": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"id": "x", "records": [{"period": "2024", "values": {"general": -1}}]}]`))
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(handler)
			t.Cleanup(server.Close)
			source, err := NewHTTPSource(HTTPConfig{URL: server.URL})
			require.NoError(t, err)
			_, err = source.Load(context.Background())
			require.Error(t, err)
			assert.True(t, dashboard.IsDataUnavailable(err), "expected data unavailable, got %v", err)
		})
	}
}

func TestHTTPSourceRejectsOversizedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chunk := []byte(strings.Repeat(" ", 1024))
		for range 64 {
			if _, err := w.Write(chunk); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)

	source, err := NewHTTPSource(HTTPConfig{URL: server.URL, MaxBytes: 4096})
	require.NoError(t, err)
	_, err = source.Load(context.Background())
	require.Error(t, err)
	assert.True(t, dashboard.IsDataUnavailable(err), "expected data unavailable, got %v", err)
	assert.Contains(t, err.Error(), "exceeds 4096 bytes")
}

func TestHTTPSourceAcceptsBodyAtLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(stationsJSON))
	}))
	t.Cleanup(server.Close)

	source, err := NewHTTPSource(HTTPConfig{URL: server.URL, MaxBytes: int64(len(stationsJSON))})
	require.NoError(t, err)
	entities, err := source.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, entities, 2)
}

func TestNewHTTPSourceRequiresURL(t *testing.T) {
	_, err := NewHTTPSource(HTTPConfig{})
	assert.Error(t, err)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.json")
	require.NoError(t, os.WriteFile(path, []byte(stationsJSON), 0o644))

	entities, err := NewFileSource(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, entities, 2)

	_, err = NewFileSource(filepath.Join(t.TempDir(), "missing.json")).Load(context.Background())
	assert.True(t, dashboard.IsDataUnavailable(err))
}

func TestMockSource(t *testing.T) {
	mock, err := NewMockSource(dashboard.Entity{Name: "Changhua"})
	require.NoError(t, err)
	entities, err := mock.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "changhua", entities[0].ID)

	mock.Fail(errors.New("upstream down"))
	_, err = mock.Load(context.Background())
	assert.True(t, dashboard.IsDataUnavailable(err))

	require.NoError(t, mock.Set())
	entities, err = mock.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entities)
	assert.Equal(t, 3, mock.Calls())
}

func TestRegistryOpensFileAndHTTPSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stations.json")
	require.NoError(t, os.WriteFile(path, []byte(stationsJSON), 0o644))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(stationsJSON))
	}))
	t.Cleanup(server.Close)

	reg := dashboard.NewRegistry()
	assert.Subset(t, reg.Schemes(), []string{"demo", "file", "http", "https"})

	for _, ref := range []string{"file:" + path, path, server.URL} {
		source, err := reg.OpenSource(ref)
		require.NoError(t, err, ref)
		entities, err := source.Load(context.Background())
		require.NoError(t, err, ref)
		assert.Len(t, entities, 2, ref)
	}
}
