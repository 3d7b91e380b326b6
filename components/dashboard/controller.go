package dashboard

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/sirupsen/logrus"
)

const (
	// PlaceholderDataNotFound is shown on every chart of a dashboard whose fetch failed.
	PlaceholderDataNotFound = "Data not found"
	// PlaceholderNoSelection is shown when a refresh dropped the selected entity.
	PlaceholderNoSelection = "No selection"
	// PlaceholderRenderFailed is shown on a chart whose view could not be built.
	PlaceholderRenderFailed = "Chart unavailable"
)

// ChartBinding binds a view to a surface container.
type ChartBinding struct {
	Container string   `json:"container" yaml:"container"`
	View      ViewKind `json:"view" yaml:"view"`
	Height    string   `json:"height,omitempty" yaml:"height,omitempty"`
}

// DashboardConfig parametrizes one dashboard instance.
type DashboardConfig struct {
	ID      string
	Title   string
	Caption string
	Source  DataSource
	Schema  CategorySchema
	Charts  []ChartBinding

	ListContainer string
	MapContainer  string
	MapName       string
	// InitialEntity is selected when data first arrives. Empty selects the first entity.
	InitialEntity string
	// ViewModes enables the long-term/one-year toggle.
	ViewModes     bool
	ShowAggregate bool
	Locale        string

	Surface    *Surface
	Registry   *Registry
	Theme      *ThemeSelection
	Cache      RenderCache
	AssetsHost string
	Telemetry  Telemetry
	Logger     logrus.FieldLogger
	Hook       RefreshHook
}

type boundChart struct {
	binding  ChartBinding
	build    ViewBuilder
	renderer *ChartRenderer
}

// Dashboard runs the load, select, derive and render cycle for one data set.
// Event methods are serialized; the fetch itself runs outside the event lock
// and at most one fetch runs at a time.
type Dashboard struct {
	id        string
	title     string
	caption   string
	source    DataSource
	schema    CategorySchema
	viewModes bool
	aggregate bool
	initial   string

	store   *SelectionStore
	list    *ListPanel
	markers *MarkerLayer
	charts  []boundChart

	telemetry Telemetry
	logger    logrus.FieldLogger
	hook      RefreshHook

	fetchMu sync.Mutex
	mu      sync.Mutex

	state         LoadState
	lastErr       error
	showAggregate bool
	focus         string
	header        Header
	mapSnippet    ChartSnippet
	loadedAt      time.Time

	// set by the selection subscriber during an event
	rendered  bool
	renderErr error
}

// NewDashboard binds renderers, list and map to the surface and subscribes
// the render pipeline to a fresh selection store.
func NewDashboard(cfg DashboardConfig) (*Dashboard, error) {
	id := strings.TrimSpace(cfg.ID)
	if id == "" {
		return nil, errMissingDashboard
	}
	if cfg.Source == nil {
		return nil, fmt.Errorf("dashboard %s: %w", id, errMissingSource)
	}
	if cfg.Surface == nil {
		return nil, fmt.Errorf("dashboard %s: %w", id, errMissingSurface)
	}
	if err := cfg.Schema.Validate(); err != nil {
		return nil, fmt.Errorf("dashboard %s: %w", id, err)
	}
	if len(cfg.Charts) == 0 {
		return nil, fmt.Errorf("dashboard %s: at least one chart binding is required", id)
	}
	registry := cfg.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	theme := normalizeTheme(cfg.Theme)
	logger := normalizeLogger(cfg.Logger).WithField("dashboard", id)
	hook := cfg.Hook
	if hook == nil {
		hook = noopRefreshHook{}
	}

	d := &Dashboard{
		id:            id,
		title:         orDefault(cfg.Title, id),
		caption:       cfg.Caption,
		source:        cfg.Source,
		schema:        cfg.Schema.Localized(cfg.Locale).withDefaults(theme.Palette),
		viewModes:     cfg.ViewModes,
		initial:       strings.TrimSpace(cfg.InitialEntity),
		store:         NewSelectionStore(logger),
		telemetry:     normalizeTelemetry(cfg.Telemetry),
		logger:        logger,
		hook:          hook,
		state:         StateUnloaded,
		showAggregate: cfg.ShowAggregate,
	}

	for _, binding := range cfg.Charts {
		build, ok := registry.View(binding.View)
		if !ok {
			return nil, fmt.Errorf("dashboard %s: unknown view %q for container %s", id, binding.View, binding.Container)
		}
		renderer, err := NewChartRenderer(cfg.Surface, binding.Container,
			WithRendererTheme(theme),
			WithRendererAssetsHost(cfg.AssetsHost),
			WithRendererSize("", binding.Height),
			WithRenderCache(cfg.Cache),
		)
		if err != nil {
			return nil, fmt.Errorf("dashboard %s: %w", id, err)
		}
		d.charts = append(d.charts, boundChart{binding: binding, build: build, renderer: renderer})
		if binding.View == ViewStacked || binding.View == ViewMultiLine {
			d.aggregate = true
		}
	}
	if cfg.ListContainer != "" {
		list, err := NewListPanel(cfg.Surface, cfg.ListContainer, d.store)
		if err != nil {
			return nil, fmt.Errorf("dashboard %s: %w", id, err)
		}
		d.list = list
	}
	if cfg.MapContainer != "" {
		markers, err := NewMarkerLayer(cfg.Surface, cfg.MapContainer, d.store, MarkerLayerOptions{
			Map:        cfg.MapName,
			Theme:      theme,
			AssetsHost: cfg.AssetsHost,
		})
		if err != nil {
			return nil, fmt.Errorf("dashboard %s: %w", id, err)
		}
		d.markers = markers
	}
	d.store.Subscribe(d.onSelectionChange)
	return d, nil
}

// ID returns the dashboard id.
func (d *Dashboard) ID() string { return d.id }

// Title returns the dashboard title.
func (d *Dashboard) Title() string { return d.title }

// Store exposes the selection store for read access.
func (d *Dashboard) Store() *SelectionStore { return d.store }

// List returns the list panel or nil.
func (d *Dashboard) List() *ListPanel { return d.list }

// Markers returns the marker layer or nil.
func (d *Dashboard) Markers() *MarkerLayer { return d.markers }

// Renderers returns the chart renderers in binding order.
func (d *Dashboard) Renderers() []*ChartRenderer {
	out := make([]*ChartRenderer, len(d.charts))
	for i, c := range d.charts {
		out[i] = c.renderer
	}
	return out
}

// Renderer finds the renderer bound to container.
func (d *Dashboard) Renderer(container string) (*ChartRenderer, bool) {
	for _, c := range d.charts {
		if c.renderer.Container() == container {
			return c.renderer, true
		}
	}
	return nil, false
}

// Load fetches the data set and auto-selects the initial entity.
func (d *Dashboard) Load(ctx context.Context) error {
	return d.fetch(ctx, "load")
}

// Refresh re-fetches the data set. The selection survives when its id is
// still present; otherwise the dashboard returns to the no-selection state.
func (d *Dashboard) Refresh(ctx context.Context) error {
	return d.fetch(ctx, "refresh")
}

func (d *Dashboard) fetch(ctx context.Context, event string) error {
	if !d.fetchMu.TryLock() {
		return ErrFetchInProgress
	}
	defer d.fetchMu.Unlock()

	started := time.Now()
	entities, err := d.source.Load(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.beginEvent()

	// The marker rebuild clears the active marker, so it must not be visible
	// to readers before the selection is restored below.
	if err == nil && d.markers != nil {
		err = d.markers.Sync(entities)
	}
	if err != nil {
		err = DataUnavailable(err, d.id)
		d.state = StateFailed
		d.lastErr = err
		d.showPlaceholders(PlaceholderDataNotFound)
		d.logger.WithError(err).Warn("dashboard: data unavailable")
		d.publish(ctx, event+"_failed", map[string]any{"error": err.Error()})
		return err
	}

	previous := d.store.CurrentID()
	if d.list != nil {
		d.list.Sync(entities)
	}
	retained := d.store.Load(entities)
	d.state = StateLoaded
	d.lastErr = nil
	d.focus = ""
	d.loadedAt = time.Now()

	switch {
	case retained:
		d.store.Select(previous)
	case previous != "":
		d.render()
	case len(entities) > 0:
		d.store.Select(d.initialEntity(entities))
	default:
		d.render()
	}
	d.publish(ctx, event, map[string]any{
		"entities":    len(entities),
		"retained":    retained,
		"duration_ms": time.Since(started).Milliseconds(),
	})
	return d.renderErr
}

func (d *Dashboard) initialEntity(entities []Entity) string {
	if d.initial != "" {
		if idx := slices.IndexFunc(entities, func(e Entity) bool { return e.ID == d.initial }); idx >= 0 {
			return d.initial
		}
		d.logger.WithField("initial_entity", d.initial).Warn("dashboard: initial entity not in data set, selecting first")
	}
	return entities[0].ID
}

// ClickListRow handles a click on a list row.
func (d *Dashboard) ClickListRow(ctx context.Context, id string) error {
	return d.event(ctx, "select", func() error {
		if d.list == nil {
			return containerError("dashboard has no list panel", d.id)
		}
		if !d.list.Click(id) {
			return unknownSelection("entity", id)
		}
		return nil
	})
}

// ClickMarker handles a click on a map marker.
func (d *Dashboard) ClickMarker(ctx context.Context, id string) error {
	return d.event(ctx, "select", func() error {
		if d.markers == nil {
			return containerError("dashboard has no map", d.id)
		}
		if !d.markers.Click(id) {
			return unknownSelection("entity", id)
		}
		return nil
	})
}

// Select routes a selection through the list panel, or the map when the
// dashboard has no list.
func (d *Dashboard) Select(ctx context.Context, id string) error {
	if d.list != nil {
		return d.ClickListRow(ctx, id)
	}
	return d.ClickMarker(ctx, id)
}

// ToggleViewMode flips the view mode. Without a selection it is a no-op.
func (d *Dashboard) ToggleViewMode(ctx context.Context) error {
	return d.event(ctx, "view_mode", func() error {
		if err := d.requireViewModes(); err != nil {
			return err
		}
		d.store.ToggleViewMode()
		return nil
	})
}

// SetViewMode sets the view mode. Without a selection it is a no-op.
func (d *Dashboard) SetViewMode(ctx context.Context, mode ViewMode) error {
	return d.event(ctx, "view_mode", func() error {
		if err := d.requireViewModes(); err != nil {
			return err
		}
		d.store.SetViewMode(mode)
		return nil
	})
}

func (d *Dashboard) requireViewModes() error {
	if d.viewModes {
		return nil
	}
	return goerrors.New(fmt.Sprintf("dashboard: %s has no view mode toggle", d.id), goerrors.CategoryBadInput).
		WithTextCode("VIEW_MODES_DISABLED")
}

// SetShowAggregate reads the "show aggregate" checkbox and re-renders.
func (d *Dashboard) SetShowAggregate(ctx context.Context, show bool) error {
	return d.event(ctx, "aggregate", func() error {
		d.showAggregate = show
		if d.store.CurrentID() != "" {
			d.render()
		}
		return nil
	})
}

// FocusPeriod points the composition view at period. An empty period returns
// to the latest record.
func (d *Dashboard) FocusPeriod(ctx context.Context, period string) error {
	return d.event(ctx, "focus", func() error {
		entity, ok := d.store.Current()
		if !ok {
			return nil
		}
		period = strings.TrimSpace(period)
		if period != "" && !slices.Contains(Periods(entity, d.store.ViewMode()), period) {
			return unknownSelection("period", period)
		}
		d.focus = period
		d.render()
		return nil
	})
}

// Resize redraws every chart with new container dimensions.
func (d *Dashboard) Resize(ctx context.Context, width, height string) error {
	return d.event(ctx, "resize", func() error {
		var errs []error
		for _, c := range d.charts {
			if err := c.renderer.Resize(width, height); err != nil {
				errs = append(errs, err)
			}
		}
		d.rendered = true
		return errors.Join(errs...)
	})
}

// event runs fn under the event lock and publishes when it rendered.
func (d *Dashboard) event(ctx context.Context, name string, fn func() error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.beginEvent()
	if err := fn(); err != nil {
		return err
	}
	if !d.rendered {
		return nil
	}
	d.publish(ctx, name, nil)
	return d.renderErr
}

func (d *Dashboard) beginEvent() {
	d.rendered = false
	d.renderErr = nil
}

// onSelectionChange is the store's single subscriber. It runs with d.mu held
// because every store mutation happens inside an event.
func (d *Dashboard) onSelectionChange(change SelectionChange) {
	if change.EntityChanged() || change.Reason == ReasonViewMode {
		d.focus = ""
	}
	d.render()
}

func (d *Dashboard) render() {
	d.rendered = true
	entity, ok := d.store.Current()
	if !ok {
		d.setActive("")
		d.header = Header{Title: d.title, Subtitle: d.caption}
		d.showPlaceholders(PlaceholderNoSelection)
		d.renderMap()
		return
	}
	d.setActive(entity.ID)
	mode := d.store.ViewMode()
	in := ViewInput{
		Entity:        entity,
		Mode:          mode,
		Schema:        d.schema,
		ShowAggregate: d.showAggregate,
		FocusPeriod:   d.focus,
	}
	var errs []error
	for _, c := range d.charts {
		cfg, err := c.build(in)
		if err == nil {
			err = c.renderer.Render(cfg)
		}
		if err != nil {
			c.renderer.ShowPlaceholder(PlaceholderRenderFailed)
			errs = append(errs, fmt.Errorf("dashboard %s: view %s: %w", d.id, c.binding.View, err))
		}
	}
	d.header = buildHeader(entity, mode, d.schema, d.caption, d.viewModes)
	if err := d.renderMap(); err != nil {
		errs = append(errs, err)
	}
	d.renderErr = errors.Join(errs...)
	if d.renderErr != nil {
		d.logger.WithError(d.renderErr).Warn("dashboard: render failed")
	}
}

func (d *Dashboard) setActive(id string) {
	if d.list != nil {
		d.list.SetActive(id)
	}
	if d.markers != nil {
		d.markers.SetActive(id)
	}
}

func (d *Dashboard) renderMap() error {
	if d.markers == nil {
		return nil
	}
	snippet, err := d.markers.Render()
	if err != nil {
		return fmt.Errorf("dashboard %s: map: %w", d.id, err)
	}
	d.mapSnippet = snippet
	return nil
}

func (d *Dashboard) showPlaceholders(message string) {
	for _, c := range d.charts {
		c.renderer.ShowPlaceholder(message)
	}
}

func (d *Dashboard) publish(ctx context.Context, name string, payload map[string]any) {
	event := DashboardEvent{
		Dashboard: d.id,
		Event:     name,
		State:     d.state,
		Selected:  d.store.CurrentID(),
		Mode:      d.store.ViewMode(),
		Charts:    map[string]string{},
		At:        time.Now().UTC(),
	}
	if d.lastErr != nil {
		event.Error = d.lastErr.Error()
	}
	for _, c := range d.charts {
		if option := c.renderer.Option(); option != "" {
			event.Charts[c.renderer.Container()] = option
		}
	}
	if d.markers != nil && d.mapSnippet.Option != "" {
		event.Charts[d.markers.Container()] = d.mapSnippet.Option
	}
	if err := d.hook.DashboardUpdated(ctx, event); err != nil {
		d.logger.WithError(err).WithField("event", name).Warn("dashboard: refresh hook failed")
	}
	if payload == nil {
		payload = map[string]any{}
	}
	payload["dashboard"] = d.id
	payload["selected"] = event.Selected
	payload["mode"] = event.Mode.String()
	d.telemetry.Record(ctx, "dashboard."+name, payload)
}

// DashboardState is a read-only snapshot of one dashboard.
type DashboardState struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	State     LoadState `json:"state"`
	Error     string    `json:"error,omitempty"`
	Selected  string    `json:"selected,omitempty"`
	Mode      ViewMode  `json:"mode"`
	ViewModes bool      `json:"view_modes"`
	// AggregateToggle reports whether a chart reacts to the show-aggregate checkbox.
	AggregateToggle bool         `json:"aggregate_toggle"`
	ShowAggregate   bool         `json:"show_aggregate"`
	FocusPeriod     string       `json:"focus_period,omitempty"`
	Header          Header       `json:"header"`
	Rows            []ListRow    `json:"rows,omitempty"`
	Markers         []Marker     `json:"markers,omitempty"`
	MapContainer    string       `json:"map_container,omitempty"`
	Map             ChartSnippet `json:"-"`
	Charts          []ChartState `json:"charts"`
	LoadedAt        time.Time    `json:"loaded_at,omitempty"`
}

// State returns a snapshot of the dashboard.
func (d *Dashboard) State() DashboardState {
	d.mu.Lock()
	defer d.mu.Unlock()
	state := DashboardState{
		ID:              d.id,
		Title:           d.title,
		State:           d.state,
		Selected:        d.store.CurrentID(),
		Mode:            d.store.ViewMode(),
		ViewModes:       d.viewModes,
		AggregateToggle: d.aggregate,
		ShowAggregate:   d.showAggregate,
		FocusPeriod:     d.focus,
		Header:          d.header,
		Map:             d.mapSnippet,
		LoadedAt:        d.loadedAt,
	}
	if d.lastErr != nil {
		state.Error = d.lastErr.Error()
	}
	if d.list != nil {
		state.Rows = d.list.Rows()
	}
	if d.markers != nil {
		state.Markers = d.markers.Markers()
		state.MapContainer = d.markers.Container()
	}
	for _, c := range d.charts {
		state.Charts = append(state.Charts, c.renderer.State())
	}
	return state
}
