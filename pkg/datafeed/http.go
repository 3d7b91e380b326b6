package datafeed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	dashboard "github.com/goliatone/go-wastedash/components/dashboard"
)

// DefaultMaxBytes caps a dataset response body when HTTPConfig.MaxBytes is
// zero.
const DefaultMaxBytes int64 = 8 << 20

// HTTPConfig configures an HTTP dataset source.
type HTTPConfig struct {
	URL        string
	APIKey     string
	HTTPClient *http.Client
	// MaxBytes bounds the response body. Larger bodies fail as data
	// unavailable. Zero uses DefaultMaxBytes.
	MaxBytes int64
	// Validator checks the payload before decoding. Nil uses the dataset schema.
	Validator dashboard.DatasetValidator
}

// HTTPSource fetches a JSON dataset from a remote endpoint. Responses carrying
// an ETag are revalidated with If-None-Match; a 304 serves the cached decode.
type HTTPSource struct {
	url       string
	apiKey    string
	client    *http.Client
	validator dashboard.DatasetValidator
	maxBytes  int64

	mu       sync.Mutex
	etag     string
	entities []dashboard.Entity
}

// NewHTTPSource builds a source for cfg.URL.
func NewHTTPSource(cfg HTTPConfig) (*HTTPSource, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("datafeed: url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	validator := cfg.Validator
	if validator == nil {
		validator = dashboard.DefaultDatasetValidator()
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &HTTPSource{
		url:       cfg.URL,
		apiKey:    cfg.APIKey,
		client:    httpClient,
		validator: validator,
		maxBytes:  maxBytes,
	}, nil
}

// Load performs one GET. Every failure is reported as data unavailable.
func (s *HTTPSource) Load(ctx context.Context) ([]dashboard.Entity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, dashboard.DataUnavailable(fmt.Errorf("datafeed: build request: %w", err), s.url)
	}
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	s.mu.Lock()
	etag := s.etag
	s.mu.Unlock()
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, dashboard.DataUnavailable(fmt.Errorf("datafeed: http request: %w", err), s.url)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, s.maxBytes+1)); err != nil {
		return nil, dashboard.DataUnavailable(fmt.Errorf("datafeed: read response: %w", err), s.url)
	}
	if int64(buf.Len()) > s.maxBytes {
		return nil, dashboard.DataUnavailable(fmt.Errorf("datafeed: response exceeds %d bytes", s.maxBytes), s.url)
	}
	if resp.StatusCode == http.StatusNotModified {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.entities != nil {
			return cloneEntities(s.entities)
		}
		return nil, dashboard.DataUnavailable(fmt.Errorf("datafeed: not modified without cached dataset"), s.url)
	}
	if resp.StatusCode >= 300 {
		return nil, dashboard.DataUnavailable(fmt.Errorf("datafeed: remote error %d: %s", resp.StatusCode, buf.String()), s.url)
	}

	entities, err := dashboard.LoadDataset(buf.Bytes(), s.url, s.validator)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.etag = resp.Header.Get("ETag")
	s.entities = entities
	s.mu.Unlock()
	return cloneEntities(entities)
}

func cloneEntities(entities []dashboard.Entity) ([]dashboard.Entity, error) {
	static, err := dashboard.NewStaticSource(entities...)
	if err != nil {
		return nil, err
	}
	return static.Load(context.Background())
}
