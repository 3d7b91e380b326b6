package dashboard

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
)

// RegistryHook lets packages register views and data sources during init().
type RegistryHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []RegistryHook
)

// RegisterRegistryHook registers a hook executed against new registries.
func RegisterRegistryHook(h RegistryHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// SourceOpener turns a manifest source reference into a data source.
type SourceOpener func(ref string) (DataSource, error)

// Registry resolves view kinds to builders and source schemes to openers.
type Registry struct {
	mu      sync.RWMutex
	views   map[ViewKind]ViewBuilder
	sources map[string]SourceOpener
}

// NewRegistry builds a registry with the built-in views and the demo source,
// then applies global hooks.
func NewRegistry() *Registry {
	reg := &Registry{
		views:   map[ViewKind]ViewBuilder{},
		sources: map[string]SourceOpener{},
	}
	reg.registerDefaults()
	_ = reg.ApplyHooks()
	return reg
}

func (r *Registry) registerDefaults() {
	for kind, builder := range defaultViewBuilders() {
		_ = r.RegisterView(kind, builder)
	}
	_ = r.RegisterSource("demo", openDemoSource)
}

// ApplyHooks executes registered hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// RegisterView stores a view builder, replacing any previous one for kind.
func (r *Registry) RegisterView(kind ViewKind, builder ViewBuilder) error {
	if kind == "" {
		return fmt.Errorf("dashboard: view kind is required")
	}
	if builder == nil {
		return fmt.Errorf("dashboard: view builder for %s cannot be nil", kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views[kind] = builder
	return nil
}

// View fetches a view builder.
func (r *Registry) View(kind ViewKind) (ViewBuilder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	builder, ok := r.views[kind]
	return builder, ok
}

// Views lists registered view kinds in lexical order.
func (r *Registry) Views() []ViewKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]ViewKind, 0, len(r.views))
	for kind := range r.views {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	return kinds
}

// RegisterSource associates a reference scheme ("demo", "file", "https") with an opener.
func (r *Registry) RegisterSource(scheme string, opener SourceOpener) error {
	scheme = strings.ToLower(strings.TrimSpace(scheme))
	if scheme == "" {
		return fmt.Errorf("dashboard: source scheme is required")
	}
	if opener == nil {
		return fmt.Errorf("dashboard: source opener for %s cannot be nil", scheme)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[scheme] = opener
	return nil
}

// Schemes lists registered source schemes.
func (r *Registry) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.sources))
	for scheme := range r.sources {
		out = append(out, scheme)
	}
	sort.Strings(out)
	return out
}

// OpenSource resolves ref. References look like "demo:countries",
// "file:data/places.json" or "https://example.com/stations.json"; a bare path
// uses the "file" scheme.
func (r *Registry) OpenSource(ref string) (DataSource, error) {
	scheme := sourceScheme(ref)
	r.mu.RLock()
	opener, ok := r.sources[scheme]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("dashboard: no source registered for scheme %q (ref %s)", scheme, ref)
	}
	return opener(ref)
}

func sourceScheme(ref string) string {
	ref = strings.TrimSpace(ref)
	idx := strings.Index(ref, ":")
	// single letters are windows drive names
	if idx <= 1 {
		return "file"
	}
	return strings.ToLower(ref[:idx])
}

func openDemoSource(ref string) (DataSource, error) {
	name := strings.TrimPrefix(strings.TrimSpace(ref), "demo:")
	if !slices.Contains(DemoDatasets(), name) {
		return nil, fmt.Errorf("dashboard: unknown demo dataset %q (have %s)", name, strings.Join(DemoDatasets(), ", "))
	}
	return DemoSource(name), nil
}
