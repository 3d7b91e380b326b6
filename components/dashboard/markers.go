package dashboard

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultMapName = "world"

// geoMapAliases maps manifest map names to the keys registered by go-echarts.
var geoMapAliases = map[string]string{
	"taiwan": "台湾",
	"china":  "china",
	"world":  "world",
}

// Marker is one entity placed on the map.
type Marker struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Lon    float64 `json:"lon"`
	Lat    float64 `json:"lat"`
	Active bool    `json:"active"`
}

// MarkerLayerOptions configures a marker layer.
type MarkerLayerOptions struct {
	Map    string
	Theme  *ThemeSelection
	Width  string
	Height string
	// AssetsHost overrides where ECharts and the map scripts are loaded from.
	AssetsHost string
}

// MarkerLayer renders one marker per entity on a geo chart and forwards
// marker clicks to the selection store.
type MarkerLayer struct {
	mu        sync.RWMutex
	container string
	store     *SelectionStore
	mapName   string
	look      chartLook
	markers   []Marker
	index     map[string]int
	active    string
}

// NewMarkerLayer binds a marker layer to container.
func NewMarkerLayer(surface *Surface, container string, store *SelectionStore, options MarkerLayerOptions) (*MarkerLayer, error) {
	container = strings.TrimSpace(container)
	if store == nil {
		return nil, fmt.Errorf("dashboard: marker layer %s needs a selection store", container)
	}
	if err := surface.bind(container, "markers"); err != nil {
		return nil, err
	}
	look := lookFromTheme(options.Theme)
	look.ChartID = chartID(container)
	look.Width = orDefault(options.Width, look.Width)
	look.Height = orDefault(options.Height, "480px")
	look.AssetsHost = options.AssetsHost
	return &MarkerLayer{
		container: container,
		store:     store,
		mapName:   orDefault(strings.ToLower(strings.TrimSpace(options.Map)), defaultMapName),
		look:      look,
		index:     map[string]int{},
	}, nil
}

// Sync rebuilds the markers from entities. Every entity needs a coordinate.
func (l *MarkerLayer) Sync(entities []Entity) error {
	markers := make([]Marker, 0, len(entities))
	index := make(map[string]int, len(entities))
	for _, e := range entities {
		if e.Coord == nil {
			return fmt.Errorf("dashboard: entity %s has no coordinate for map %s", e.ID, l.container)
		}
		index[e.ID] = len(markers)
		markers = append(markers, Marker{ID: e.ID, Name: e.Name, Lon: e.Coord.Lon(), Lat: e.Coord.Lat()})
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.markers = markers
	l.index = index
	l.active = ""
	return nil
}

// Click selects the marker's entity. Unknown markers return false.
func (l *MarkerLayer) Click(id string) bool {
	l.mu.RLock()
	_, ok := l.index[id]
	l.mu.RUnlock()
	if !ok {
		return false
	}
	return l.store.Select(id)
}

// SetActive clears the previous active marker and marks id. An empty or
// unknown id leaves no marker active.
func (l *MarkerLayer) SetActive(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if idx, ok := l.index[l.active]; ok {
		l.markers[idx].Active = false
	}
	l.active = ""
	if idx, ok := l.index[id]; ok {
		l.markers[idx].Active = true
		l.active = id
	}
}

// Active returns the active marker id.
func (l *MarkerLayer) Active() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// Markers returns a copy of the markers in entity order.
func (l *MarkerLayer) Markers() []Marker {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Marker(nil), l.markers...)
}

// Container returns the bound container name.
func (l *MarkerLayer) Container() string { return l.container }

// MapName returns the geo map the markers are drawn on.
func (l *MarkerLayer) MapName() string { return l.mapName }

// Render draws the markers: every entity as a scatter point and the active
// entity as an effect scatter point on top.
func (l *MarkerLayer) Render() (ChartSnippet, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.markers) == 0 {
		return ChartSnippet{}, nil
	}
	geo := charts.NewGeo()
	initOpts := opts.Initialization{
		ChartID:         l.look.ChartID,
		Theme:           l.look.Theme,
		Width:           l.look.Width,
		Height:          l.look.Height,
		BackgroundColor: l.look.Background,
	}
	if l.look.AssetsHost != "" {
		initOpts.AssetsHost = l.look.AssetsHost
	}
	geo.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts),
		charts.WithGeoComponentOpts(opts.GeoComponent{
			Map:       geoMapKey(l.mapName),
			ItemStyle: &opts.ItemStyle{Color: "#0d4b4f", BorderColor: l.look.Muted},
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	)

	all := make([]opts.GeoData, 0, len(l.markers))
	var active []opts.GeoData
	for _, m := range l.markers {
		point := opts.GeoData{Name: m.Name, Value: []any{m.Lon, m.Lat, m.ID}}
		all = append(all, point)
		if m.Active {
			active = append(active, point)
		}
	}
	geo.AddSeries("entities", types.ChartScatter, all,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#A6D536"}),
	)
	geo.AddSeries("active", types.ChartEffectScatter, active,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#E6C24A"}),
	)
	return toSnippet(geo.RenderSnippet()), nil
}

func geoMapKey(name string) string {
	if key, ok := geoMapAliases[name]; ok {
		return key
	}
	return name
}
