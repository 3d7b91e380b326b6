package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func countryRecord(period string, landfilled, burned, recycled, perCapita float64) Record {
	return Record{
		Period:    period,
		Values:    map[string]float64{"landfilled": landfilled, "burned": burned, "recycled": recycled},
		PerCapita: ptr(perCapita),
	}
}

func countryEntities() []Entity {
	return []Entity{
		{
			ID: "taiwan", Name: "Taiwan", Coord: &Coord{121.0, 23.7},
			Records: []Record{
				countryRecord("2015", 210, 480, 420, 0.43),
				countryRecord("2020", 170, 470, 500, 0.4),
			},
		},
		{
			ID: "ger", Name: "Germany", Coord: &Coord{10.4, 51.1},
			Records: []Record{
				countryRecord("2015", 60, 600, 610, 0.6),
				countryRecord("2020", 35, 580, 650, 0.57),
			},
		},
		{
			ID: "hnd", Name: "Honduras", Coord: &Coord{-86.2, 15.2},
			Records: []Record{
				countryRecord("2020", 340, 60, 25, 0.8),
			},
		},
	}
}

func countrySchema() CategorySchema {
	return CategorySchema{
		Numerator: "recycled",
		Categories: []Category{
			{Key: "landfilled", Label: "Landfilled"},
			{Key: "burned", Label: "Burned"},
			{Key: "recycled", Label: "Recycled"},
		},
	}
}

// placeEntity has both yearly and monthly records.
func placeEntity() Entity {
	return Entity{
		ID: "changhua", Name: "Changhua", Coord: &Coord{120.54, 24.08},
		Records: []Record{
			{Period: "2023", Values: map[string]float64{"general": 900, "recycle": 1300, "food": 360}},
			{Period: "2024", Values: map[string]float64{"general": 967.2, "recycle": 1395, "food": 372}, Total: ptr(2734.2)},
		},
		Monthly: []Record{
			{Period: "Jan", Values: map[string]float64{"general": 93, "recycle": 89.9, "food": 34.1}},
			{Period: "Feb", Values: map[string]float64{"general": 80, "recycle": 95, "food": 30}},
			{Period: "Mar", Values: map[string]float64{"general": 85, "recycle": 101, "food": 31}},
		},
	}
}

func placeSchema() CategorySchema {
	return CategorySchema{
		Numerator:      "recycle",
		AggregateLabel: "Total",
		Categories: []Category{
			{Key: "general", Label: "General waste"},
			{Key: "recycle", Label: "Recycling"},
			{Key: "food", Label: "Food waste"},
		},
	}
}

// switchableSource returns the configured entities or error and counts loads.
type switchableSource struct {
	mu       sync.Mutex
	entities []Entity
	err      error
	loads    int
	block    chan struct{}
	started  chan struct{}
}

func (s *switchableSource) Load(ctx context.Context) ([]Entity, error) {
	s.mu.Lock()
	s.loads++
	block, started := s.block, s.started
	entities, err := s.entities, s.err
	s.mu.Unlock()
	if started != nil {
		close(started)
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return append([]Entity(nil), entities...), nil
}

func (s *switchableSource) set(entities []Entity, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities, s.err = entities, err
}

var errSourceDown = errors.New("connection refused")

// recordingHook collects published events.
type recordingHook struct {
	mu     sync.Mutex
	events []DashboardEvent
}

func (h *recordingHook) DashboardUpdated(_ context.Context, event DashboardEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *recordingHook) names() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.events))
	for i, e := range h.events {
		out[i] = e.Event
	}
	return out
}

// recordingTelemetry collects telemetry event names.
type recordingTelemetry struct {
	mu     sync.Mutex
	events []string
}

func (t *recordingTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, event)
}

func newCountryDashboard(t *testing.T, source DataSource, mutate ...func(*DashboardConfig)) *Dashboard {
	t.Helper()
	cfg := DashboardConfig{
		ID:            "countries",
		Title:         "Recycling around the world",
		Caption:       "Recycling rate",
		Source:        source,
		Schema:        countrySchema(),
		Charts:        []ChartBinding{{Container: "countries-breakdown", View: ViewBreakdown}, {Container: "countries-trend", View: ViewShareTrend}},
		ListContainer: "countries-list",
		MapContainer:  "countries-map",
		Surface:       NewSurface("countries-breakdown", "countries-trend", "countries-list", "countries-map"),
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	d, err := NewDashboard(cfg)
	require.NoError(t, err)
	return d
}
