package dashboard

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultSessionIdle is how long an untouched session is kept.
const DefaultSessionIdle = 30 * time.Minute

// PageFactory builds the page for a new session.
type PageFactory func(ctx context.Context, session string) (*Page, error)

// Options configures the dashboard Service. Every collaborator is provided via
// interface so applications can swap implementations.
type Options struct {
	// Manifest describes the dashboards of every page. Nil uses the embedded default.
	Manifest    *ManifestDocument
	PageFactory PageFactory
	Sessions    SessionStore
	Registry    *Registry
	Theme       *ThemeSelection
	Cache       RenderCache
	AssetsHost  string
	Locale      string
	Renderer    Renderer
	RefreshHook RefreshHook
	Telemetry   Telemetry
	Logger      logrus.FieldLogger
	SessionIdle time.Duration
}

// Service owns viewer sessions and routes user events to their dashboards.
type Service struct {
	opts Options
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	if opts.Sessions == nil {
		opts.Sessions = NewInMemorySessionStore()
	}
	if opts.Cache == nil {
		opts.Cache = NewChartCache(DefaultChartCacheTTL)
	}
	if opts.SessionIdle <= 0 {
		opts.SessionIdle = DefaultSessionIdle
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	opts.Logger = normalizeLogger(opts.Logger)
	if opts.Renderer == nil {
		renderer, err := NewTemplateRenderer()
		if err != nil {
			opts.Logger.WithError(err).Warn("dashboard: embedded page template unavailable")
		} else {
			opts.Renderer = renderer
		}
	}
	s := &Service{opts: opts}
	if s.opts.PageFactory == nil {
		s.opts.PageFactory = s.manifestPage
	}
	return s
}

func (s *Service) manifestPage(_ context.Context, session string) (*Page, error) {
	doc := s.opts.Manifest
	if doc == nil {
		var err error
		if doc, err = DefaultManifest(); err != nil {
			return nil, err
		}
	}
	return NewPage(doc, PageOptions{
		Registry:   s.opts.Registry,
		Theme:      s.opts.Theme,
		Cache:      s.opts.Cache,
		AssetsHost: s.opts.AssetsHost,
		Locale:     s.opts.Locale,
		Telemetry:  s.opts.Telemetry,
		Logger:     s.opts.Logger.WithField("session", session),
		Hook:       sessionHook(session, s.opts.RefreshHook),
		Renderer:   s.opts.Renderer,
	})
}

// sessionHook stamps events with the session id before forwarding them.
func sessionHook(session string, next RefreshHook) RefreshHook {
	return RefreshHookFunc(func(ctx context.Context, event DashboardEvent) error {
		event.Session = session
		return next.DashboardUpdated(ctx, event)
	})
}

// OpenSession builds and loads a page for a new viewer. Dashboards that fail
// to load keep their placeholders; the session is opened regardless.
func (s *Service) OpenSession(ctx context.Context) (string, error) {
	id := newSessionID()
	page, err := s.opts.PageFactory(ctx, id)
	if err != nil {
		return "", err
	}
	if err := page.Load(ctx); err != nil {
		s.opts.Logger.WithError(err).WithField("session", id).Warn("dashboard: session opened with failed dashboards")
	}
	if err := s.opts.Sessions.Put(ctx, &Session{ID: id, Page: page}); err != nil {
		return "", err
	}
	s.opts.Telemetry.Record(ctx, "dashboard.session.open", map[string]any{
		"session":    id,
		"dashboards": len(page.Dashboards()),
	})
	return id, nil
}

// EnsureSession returns the session's page, opening a new session when id is
// empty or unknown.
func (s *Service) EnsureSession(ctx context.Context, id string) (string, *Page, error) {
	if id != "" {
		if session, ok := s.opts.Sessions.Get(ctx, id); ok {
			return session.ID, session.Page, nil
		}
	}
	id, err := s.OpenSession(ctx)
	if err != nil {
		return "", nil, err
	}
	page, err := s.Page(ctx, id)
	return id, page, err
}

// CloseSession drops a session.
func (s *Service) CloseSession(ctx context.Context, id string) {
	s.opts.Sessions.Delete(ctx, id)
	s.opts.Telemetry.Record(ctx, "dashboard.session.close", map[string]any{"session": id})
}

// PruneSessions drops idle sessions.
func (s *Service) PruneSessions(ctx context.Context) int {
	dropped := s.opts.Sessions.Prune(ctx, s.opts.SessionIdle)
	if dropped > 0 {
		s.opts.Logger.WithField("dropped", dropped).Debug("dashboard: pruned idle sessions")
	}
	return dropped
}

// Page returns the session's page.
func (s *Service) Page(ctx context.Context, session string) (*Page, error) {
	found, ok := s.opts.Sessions.Get(ctx, session)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return found.Page, nil
}

func (s *Service) dashboard(ctx context.Context, session, id string) (*Dashboard, error) {
	page, err := s.Page(ctx, session)
	if err != nil {
		return nil, err
	}
	return page.Dashboard(id)
}

// SelectEntity selects an entity the way a list-row or marker click does.
func (s *Service) SelectEntity(ctx context.Context, session, dashboardID, entityID string) error {
	d, err := s.dashboard(ctx, session, dashboardID)
	if err != nil {
		return err
	}
	return d.Select(ctx, entityID)
}

// SetViewMode sets a dashboard's view mode.
func (s *Service) SetViewMode(ctx context.Context, session, dashboardID string, mode ViewMode) error {
	d, err := s.dashboard(ctx, session, dashboardID)
	if err != nil {
		return err
	}
	return d.SetViewMode(ctx, mode)
}

// ToggleViewMode flips a dashboard's view mode.
func (s *Service) ToggleViewMode(ctx context.Context, session, dashboardID string) error {
	d, err := s.dashboard(ctx, session, dashboardID)
	if err != nil {
		return err
	}
	return d.ToggleViewMode(ctx)
}

// SetShowAggregate toggles the aggregate line.
func (s *Service) SetShowAggregate(ctx context.Context, session, dashboardID string, show bool) error {
	d, err := s.dashboard(ctx, session, dashboardID)
	if err != nil {
		return err
	}
	return d.SetShowAggregate(ctx, show)
}

// FocusPeriod points the composition view at period.
func (s *Service) FocusPeriod(ctx context.Context, session, dashboardID, period string) error {
	d, err := s.dashboard(ctx, session, dashboardID)
	if err != nil {
		return err
	}
	return d.FocusPeriod(ctx, period)
}

// Refresh re-fetches one dashboard, or every dashboard of the page when
// dashboardID is empty.
func (s *Service) Refresh(ctx context.Context, session, dashboardID string) error {
	if dashboardID == "" {
		page, err := s.Page(ctx, session)
		if err != nil {
			return err
		}
		return page.Refresh(ctx)
	}
	d, err := s.dashboard(ctx, session, dashboardID)
	if err != nil {
		return err
	}
	return d.Refresh(ctx)
}

// Resize redraws the charts of one dashboard, or of every dashboard when
// dashboardID is empty.
func (s *Service) Resize(ctx context.Context, session, dashboardID, width, height string) error {
	page, err := s.Page(ctx, session)
	if err != nil {
		return err
	}
	targets := page.Dashboards()
	if dashboardID != "" {
		d, err := page.Dashboard(dashboardID)
		if err != nil {
			return err
		}
		targets = []*Dashboard{d}
	}
	for _, d := range targets {
		if err := d.Resize(ctx, width, height); err != nil {
			return err
		}
	}
	return nil
}

// DashboardState returns one dashboard's snapshot.
func (s *Service) DashboardState(ctx context.Context, session, dashboardID string) (DashboardState, error) {
	d, err := s.dashboard(ctx, session, dashboardID)
	if err != nil {
		return DashboardState{}, err
	}
	return d.State(), nil
}

// PageState returns the snapshot of every dashboard of the session.
func (s *Service) PageState(ctx context.Context, session string) (PageState, error) {
	page, err := s.Page(ctx, session)
	if err != nil {
		return PageState{}, err
	}
	return page.State(), nil
}

// RenderPage writes the session's HTML page.
func (s *Service) RenderPage(ctx context.Context, session string, out io.Writer) error {
	page, err := s.Page(ctx, session)
	if err != nil {
		return err
	}
	return page.Render(ctx, out)
}
