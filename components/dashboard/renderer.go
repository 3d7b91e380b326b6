package dashboard

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ettle/strcase"
)

// ChartRenderer owns the chart drawn into one surface container.
type ChartRenderer struct {
	mu          sync.RWMutex
	container   string
	look        chartLook
	cache       RenderCache
	config      *ChartConfig
	snippet     ChartSnippet
	placeholder string
	renders     int
	resizes     int
}

// ChartRendererOption customizes renderer behavior.
type ChartRendererOption func(*ChartRenderer)

// WithRenderCache injects a render cache. Pass nil to disable caching.
func WithRenderCache(cache RenderCache) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.cache = cache
	}
}

// WithRendererTheme applies the chart theme and colors of a theme selection.
func WithRendererTheme(theme *ThemeSelection) ChartRendererOption {
	return func(r *ChartRenderer) {
		look := lookFromTheme(theme)
		look.ChartID = r.look.ChartID
		look.Width, look.Height = r.look.Width, r.look.Height
		look.AssetsHost = r.look.AssetsHost
		r.look = look
	}
}

// WithRendererAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithRendererAssetsHost(host string) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.look.AssetsHost = host
	}
}

// WithRendererSize sets the initial container dimensions (CSS sizes).
func WithRendererSize(width, height string) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.look.Width = orDefault(width, r.look.Width)
		r.look.Height = orDefault(height, r.look.Height)
	}
}

// NewChartRenderer binds a renderer to container. The container must already
// exist in the surface and must not be bound to another renderer.
func NewChartRenderer(surface *Surface, container string, opts ...ChartRendererOption) (*ChartRenderer, error) {
	container = strings.TrimSpace(container)
	if err := surface.bind(container, "chart"); err != nil {
		return nil, err
	}
	look := lookFromTheme(nil)
	look.ChartID = chartID(container)
	r := &ChartRenderer{
		container: container,
		look:      look,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Render replaces the current configuration with cfg and redraws.
func (r *ChartRenderer) Render(cfg ChartConfig) error {
	cfg = cfg.Clone()
	r.mu.Lock()
	defer r.mu.Unlock()
	snippet, err := r.draw(cfg, r.look)
	if err != nil {
		return fmt.Errorf("dashboard: render %s: %w", r.container, err)
	}
	r.config = &cfg
	r.snippet = snippet
	r.placeholder = ""
	r.renders++
	return nil
}

// Resize changes the container dimensions and redraws the stored configuration.
func (r *ChartRenderer) Resize(width, height string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	look := r.look
	look.Width = orDefault(width, look.Width)
	look.Height = orDefault(height, look.Height)
	if r.config != nil {
		snippet, err := r.draw(*r.config, look)
		if err != nil {
			return fmt.Errorf("dashboard: resize %s: %w", r.container, err)
		}
		r.snippet = snippet
	}
	r.look = look
	r.resizes++
	return nil
}

// ShowPlaceholder drops the chart and shows message in its place.
func (r *ChartRenderer) ShowPlaceholder(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config = nil
	r.snippet = ChartSnippet{}
	r.placeholder = message
}

func (r *ChartRenderer) draw(cfg ChartConfig, look chartLook) (ChartSnippet, error) {
	build := func() (ChartSnippet, error) { return renderEChart(cfg, look) }
	if r.cache == nil {
		return build()
	}
	key := fmt.Sprintf("%s:%s:%s:%s:%s", r.container, look.Width, look.Height, look.Theme, cfg.Hash())
	return r.cache.GetOrRender(key, build)
}

// Container returns the bound container name.
func (r *ChartRenderer) Container() string { return r.container }

// Config returns the last rendered configuration.
func (r *ChartRenderer) Config() (ChartConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.config == nil {
		return ChartConfig{}, false
	}
	return r.config.Clone(), true
}

// Snippet returns the rendered chart.
func (r *ChartRenderer) Snippet() ChartSnippet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snippet
}

// Option returns the ECharts option JSON of the rendered chart.
func (r *ChartRenderer) Option() string {
	return r.Snippet().Option
}

// Placeholder returns the placeholder message, "" while a chart is shown.
func (r *ChartRenderer) Placeholder() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.placeholder
}

// Renders counts Render calls that succeeded.
func (r *ChartRenderer) Renders() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.renders
}

// Size returns the current container dimensions.
func (r *ChartRenderer) Size() (width, height string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.look.Width, r.look.Height
}

// State returns a serializable snapshot of the renderer.
func (r *ChartRenderer) State() ChartState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return ChartState{
		Container:   r.container,
		ChartID:     r.look.ChartID,
		Option:      r.snippet.Option,
		Element:     r.snippet.Element,
		Script:      r.snippet.Script,
		Placeholder: r.placeholder,
		Renders:     r.renders,
		Width:       r.look.Width,
		Height:      r.look.Height,
	}
}

// ChartState is the externally visible state of one chart.
type ChartState struct {
	Container   string `json:"container"`
	ChartID     string `json:"chart_id"`
	Option      string `json:"option,omitempty"`
	Element     string `json:"-"`
	Script      string `json:"-"`
	Placeholder string `json:"placeholder,omitempty"`
	Renders     int    `json:"renders"`
	Width       string `json:"width"`
	Height      string `json:"height"`
}

// chartID turns a container name into a JavaScript-safe identifier.
func chartID(container string) string {
	id := strcase.ToSnake(container)
	if id == "" {
		return "chart"
	}
	if id[0] >= '0' && id[0] <= '9' {
		return "c_" + id
	}
	return id
}
