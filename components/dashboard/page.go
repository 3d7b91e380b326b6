package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// PageOptions configures a page built from a manifest.
type PageOptions struct {
	Registry   *Registry
	Theme      *ThemeSelection
	Cache      RenderCache
	AssetsHost string
	// Locale overrides the manifest locale for category labels.
	Locale    string
	Telemetry Telemetry
	Logger    logrus.FieldLogger
	Hook      RefreshHook
	Renderer  Renderer
	Template  string
}

// Page is one viewer's set of dashboards sharing a rendering surface. Each
// dashboard loads and fails independently.
type Page struct {
	title      string
	locale     string
	theme      *ThemeSelection
	assetsHost string
	surface    *Surface
	dashboards []*Dashboard
	index      map[string]*Dashboard
	maps       []string
	renderer   Renderer
	template   string
	logger     logrus.FieldLogger
}

// NewPage builds every dashboard of doc on a fresh surface.
func NewPage(doc *ManifestDocument, opts PageOptions) (*Page, error) {
	if doc == nil {
		return nil, fmt.Errorf("dashboard: manifest document is nil")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	registry := opts.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	theme := opts.Theme
	if theme == nil {
		theme = doc.Theme
	}
	theme = normalizeTheme(theme)
	locale := opts.Locale
	if locale == "" {
		locale = doc.Locale
	}
	assetsHost := opts.AssetsHost
	if assetsHost == "" {
		assetsHost = EChartsAssetsHost()
	}
	cache := opts.Cache
	if cache == nil {
		cache = NewChartCache(DefaultChartCacheTTL)
	}

	surface := NewSurface()
	for _, entry := range doc.Dashboards {
		for _, name := range entry.Containers() {
			surface.AddContainer(name)
		}
	}

	page := &Page{
		title:      orDefault(doc.Title, "Dashboards"),
		locale:     locale,
		theme:      theme,
		assetsHost: assetsHost,
		surface:    surface,
		index:      map[string]*Dashboard{},
		renderer:   opts.Renderer,
		template:   orDefault(opts.Template, DefaultPageTemplate),
		logger:     normalizeLogger(opts.Logger),
	}
	for _, entry := range doc.Dashboards {
		source, err := registry.OpenSource(entry.Source)
		if err != nil {
			return nil, fmt.Errorf("dashboard %s: %w", entry.ID, err)
		}
		d, err := NewDashboard(DashboardConfig{
			ID:            entry.ID,
			Title:         entry.Title,
			Caption:       entry.Caption,
			Source:        source,
			Schema:        entry.Schema(),
			Charts:        entry.Charts,
			ListContainer: entry.List,
			MapContainer:  entry.Map,
			MapName:       entry.MapName,
			InitialEntity: entry.InitialEntity,
			ViewModes:     entry.ViewModes,
			ShowAggregate: entry.ShowAggregate,
			Locale:        locale,
			Surface:       surface,
			Registry:      registry,
			Theme:         theme,
			Cache:         cache,
			AssetsHost:    assetsHost,
			Telemetry:     opts.Telemetry,
			Logger:        opts.Logger,
			Hook:          opts.Hook,
		})
		if err != nil {
			return nil, err
		}
		page.dashboards = append(page.dashboards, d)
		page.index[d.ID()] = d
		if d.Markers() != nil {
			page.maps = append(page.maps, d.Markers().MapName())
		}
	}
	return page, nil
}

// Title returns the page title.
func (p *Page) Title() string { return p.title }

// Surface returns the shared rendering surface.
func (p *Page) Surface() *Surface { return p.surface }

// Dashboards returns the dashboards in manifest order.
func (p *Page) Dashboards() []*Dashboard {
	return append([]*Dashboard(nil), p.dashboards...)
}

// Dashboard finds a dashboard by id.
func (p *Page) Dashboard(id string) (*Dashboard, error) {
	d, ok := p.index[id]
	if !ok {
		return nil, unknownSelection("dashboard", id)
	}
	return d, nil
}

// Load loads every dashboard concurrently. A failing dashboard shows its
// placeholders; the others load normally. The joined errors are returned.
func (p *Page) Load(ctx context.Context) error {
	return p.each(ctx, (*Dashboard).Load)
}

// Refresh re-fetches every dashboard.
func (p *Page) Refresh(ctx context.Context) error {
	return p.each(ctx, (*Dashboard).Refresh)
}

func (p *Page) each(ctx context.Context, fn func(*Dashboard, context.Context) error) error {
	errs := make([]error, len(p.dashboards))
	var wg sync.WaitGroup
	for i, d := range p.dashboards {
		wg.Add(1)
		go func(i int, d *Dashboard) {
			defer wg.Done()
			errs[i] = fn(d, ctx)
		}(i, d)
	}
	wg.Wait()
	err := errors.Join(errs...)
	if err != nil {
		p.logger.WithError(err).Warn("dashboard: page loaded with errors")
	}
	return err
}

// PageState is a read-only snapshot of every dashboard on the page.
type PageState struct {
	Title      string           `json:"title"`
	Locale     string           `json:"locale,omitempty"`
	Theme      string           `json:"theme"`
	Dashboards []DashboardState `json:"dashboards"`
}

// State returns a snapshot of the page.
func (p *Page) State() PageState {
	state := PageState{Title: p.title, Locale: p.locale, Theme: p.theme.Name}
	for _, d := range p.dashboards {
		state.Dashboards = append(state.Dashboards, d.State())
	}
	return state
}

// Render writes the HTML page through the template renderer.
func (p *Page) Render(ctx context.Context, out io.Writer) error {
	if p.renderer == nil {
		return fmt.Errorf("dashboard: page has no template renderer")
	}
	if _, err := p.renderer.Render(p.template, p.templateData(), out); err != nil {
		return fmt.Errorf("dashboard: render page: %w", err)
	}
	return nil
}

func (p *Page) templateData() map[string]any {
	state := p.State()
	dashboards := make([]map[string]any, 0, len(state.Dashboards))
	for _, d := range state.Dashboards {
		charts := make([]map[string]any, 0, len(d.Charts))
		for _, c := range d.Charts {
			charts = append(charts, map[string]any{
				"container":   c.Container,
				"chart_id":    c.ChartID,
				"element":     c.Element,
				"script":      c.Script,
				"placeholder": c.Placeholder,
			})
		}
		kpis := make([]map[string]any, 0, len(d.Header.KPIs))
		for _, k := range d.Header.KPIs {
			kpis = append(kpis, map[string]any{"label": k.Label, "value": k.Value})
		}
		rows := make([]map[string]any, 0, len(d.Rows))
		for _, r := range d.Rows {
			rows = append(rows, map[string]any{"id": r.ID, "name": r.Name, "note": r.Note, "active": r.Active})
		}
		dashboards = append(dashboards, map[string]any{
			"id":             d.ID,
			"title":          d.Title,
			"state":          string(d.State),
			"error":          d.Error,
			"selected":       d.Selected,
			"mode":           d.Mode.String(),
			"view_modes":     d.ViewModes,
			"show_aggregate": d.ShowAggregate,
			"aggregate":      d.AggregateToggle,
			"header": map[string]any{
				"title":          d.Header.Title,
				"subtitle":       d.Header.Subtitle,
				"toggle_caption": d.Header.ToggleCaption,
				"kpis":           kpis,
			},
			"rows":          rows,
			"map_container": d.MapContainer,
			"map_chart_id":  chartID(d.MapContainer),
			"map_element":   d.Map.Element,
			"map_script":    d.Map.Script,
			"charts":        charts,
		})
	}
	return map[string]any{
		"title":      p.title,
		"locale":     p.locale,
		"theme":      p.theme.Name,
		"css":        p.theme.CSSVariablesInline(),
		"assets":     pageAssets(p.assetsHost, p.theme.ChartTheme, p.maps),
		"dashboards": dashboards,
	}
}
