package datafeed

import (
	"context"
	"sync"

	dashboard "github.com/goliatone/go-wastedash/components/dashboard"
)

// MockSource serves in-memory entities for tests or local demos. Swapping the
// data or injecting an error between loads simulates a changing upstream.
type MockSource struct {
	mu     sync.RWMutex
	static *dashboard.StaticSource
	err    error
	calls  int
}

// NewMockSource builds a mock from fixtures.
func NewMockSource(entities ...dashboard.Entity) (*MockSource, error) {
	m := &MockSource{}
	if err := m.Set(entities...); err != nil {
		return nil, err
	}
	return m, nil
}

// Set replaces the served entities and clears any injected error.
func (m *MockSource) Set(entities ...dashboard.Entity) error {
	static, err := dashboard.NewStaticSource(entities...)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.static = static
	m.err = nil
	return nil
}

// Fail makes subsequent loads return err.
func (m *MockSource) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many loads ran.
func (m *MockSource) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

func (m *MockSource) Load(ctx context.Context) ([]dashboard.Entity, error) {
	m.mu.Lock()
	m.calls++
	static, err := m.static, m.err
	m.mu.Unlock()
	if err != nil {
		return nil, dashboard.DataUnavailable(err, "mock")
	}
	if static == nil {
		return nil, nil
	}
	return static.Load(ctx)
}
