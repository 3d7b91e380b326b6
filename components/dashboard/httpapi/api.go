package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	gocommand "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-wastedash/components/dashboard"
	"github.com/goliatone/go-wastedash/components/dashboard/commands"
	"github.com/goliatone/go-wastedash/components/dashboard/queries"
)

// PageService opens sessions and renders their pages.
type PageService interface {
	EnsureSession(ctx context.Context, id string) (string, *dashboard.Page, error)
	RenderPage(ctx context.Context, session string, out io.Writer) error
}

// Streamer serves dashboard events to browsers.
type Streamer interface {
	ServeWebSocket(w http.ResponseWriter, r *http.Request)
	ServeSSE(w http.ResponseWriter, r *http.Request)
}

// Handlers exposes HTTP endpoints backed by shared commands and queries.
type Handlers struct {
	Pages     PageService
	Select    gocommand.Commander[commands.SelectEntityInput]
	ViewMode  gocommand.Commander[commands.SetViewModeInput]
	Aggregate gocommand.Commander[commands.SetAggregateInput]
	Focus     gocommand.Commander[commands.FocusPeriodInput]
	Refresh   gocommand.Commander[commands.RefreshDataInput]
	Resize    gocommand.Commander[commands.ResizeChartsInput]
	Dashboard gocommand.Querier[queries.DashboardStateInput, dashboard.DashboardState]
	Page      gocommand.Querier[queries.PageStateInput, dashboard.PageState]
	Stream    Streamer

	// SessionIdle sets the session cookie lifetime.
	SessionIdle time.Duration
}

// NewHandlers wires every endpoint to the service.
func NewHandlers(service *dashboard.Service, stream Streamer, telemetry dashboard.Telemetry) *Handlers {
	return &Handlers{
		Pages:       service,
		Select:      commands.NewSelectEntityCommand(service, telemetry),
		ViewMode:    commands.NewSetViewModeCommand(service, telemetry),
		Aggregate:   commands.NewSetAggregateCommand(service, telemetry),
		Focus:       commands.NewFocusPeriodCommand(service, telemetry),
		Refresh:     commands.NewRefreshDataCommand(service, telemetry),
		Resize:      commands.NewResizeChartsCommand(service),
		Dashboard:   queries.NewDashboardStateQuery(service),
		Page:        queries.NewPageStateQuery(service),
		Stream:      stream,
		SessionIdle: dashboard.DefaultSessionIdle,
	}
}

// Routes registers the endpoints on a ServeMux.
func (h *Handlers) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.HandlePage)
	mux.HandleFunc("GET /api/state", h.HandlePageState)
	mux.HandleFunc("POST /api/refresh", h.HandleRefreshPage)
	mux.HandleFunc("GET /api/dashboards/{id}", h.HandleDashboardState)
	mux.HandleFunc("POST /api/dashboards/{id}/select", h.HandleSelect)
	mux.HandleFunc("POST /api/dashboards/{id}/view-mode", h.HandleViewMode)
	mux.HandleFunc("POST /api/dashboards/{id}/aggregate", h.HandleAggregate)
	mux.HandleFunc("POST /api/dashboards/{id}/focus", h.HandleFocus)
	mux.HandleFunc("POST /api/dashboards/{id}/refresh", h.HandleRefresh)
	mux.HandleFunc("POST /api/dashboards/{id}/resize", h.HandleResize)
	if h.Stream != nil {
		mux.HandleFunc("GET /ws", withSessionQuery(h.Stream.ServeWebSocket))
		mux.HandleFunc("GET /events", withSessionQuery(h.Stream.ServeSSE))
	}
	return mux
}

// HandlePage renders the dashboards page, opening a session for new viewers.
func (h *Handlers) HandlePage(w http.ResponseWriter, r *http.Request) {
	id, _, err := h.Pages.EnsureSession(r.Context(), SessionFromRequest(r))
	if err != nil {
		writeError(w, err)
		return
	}
	http.SetCookie(w, SessionCookieFor(id, h.SessionIdle))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.Pages.RenderPage(r.Context(), id, w); err != nil {
		writeError(w, err)
	}
}

func (h *Handlers) HandlePageState(w http.ResponseWriter, r *http.Request) {
	state, err := h.Page.Query(r.Context(), queries.PageStateInput{Session: SessionFromRequest(r)})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handlers) HandleDashboardState(w http.ResponseWriter, r *http.Request) {
	h.respondState(w, r, target(r))
}

func (h *Handlers) HandleSelect(w http.ResponseWriter, r *http.Request) {
	var payload commands.SelectEntityInput
	h.execute(w, r, &payload, &payload.Target, func(ctx context.Context) error {
		return h.Select.Execute(ctx, payload)
	})
}

func (h *Handlers) HandleViewMode(w http.ResponseWriter, r *http.Request) {
	var payload commands.SetViewModeInput
	h.execute(w, r, &payload, &payload.Target, func(ctx context.Context) error {
		return h.ViewMode.Execute(ctx, payload)
	})
}

func (h *Handlers) HandleAggregate(w http.ResponseWriter, r *http.Request) {
	var payload commands.SetAggregateInput
	h.execute(w, r, &payload, &payload.Target, func(ctx context.Context) error {
		return h.Aggregate.Execute(ctx, payload)
	})
}

func (h *Handlers) HandleFocus(w http.ResponseWriter, r *http.Request) {
	var payload commands.FocusPeriodInput
	h.execute(w, r, &payload, &payload.Target, func(ctx context.Context) error {
		return h.Focus.Execute(ctx, payload)
	})
}

func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var payload commands.RefreshDataInput
	h.execute(w, r, &payload, &payload.Target, func(ctx context.Context) error {
		return h.Refresh.Execute(ctx, payload)
	})
}

func (h *Handlers) HandleResize(w http.ResponseWriter, r *http.Request) {
	var payload commands.ResizeChartsInput
	h.execute(w, r, &payload, &payload.Target, func(ctx context.Context) error {
		return h.Resize.Execute(ctx, payload)
	})
}

// HandleRefreshPage re-fetches every dashboard of the session.
func (h *Handlers) HandleRefreshPage(w http.ResponseWriter, r *http.Request) {
	input := commands.RefreshDataInput{Target: commands.Target{Session: SessionFromRequest(r)}}
	if err := h.Refresh.Execute(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// execute decodes the optional JSON body into payload, pins the target to
// the request, runs fn and answers with the dashboard's new state.
func (h *Handlers) execute(w http.ResponseWriter, r *http.Request, payload any, t *commands.Target, fn func(context.Context) error) {
	if err := decodeBody(r, payload); err != nil {
		writeError(w, err)
		return
	}
	*t = target(r)
	if err := fn(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	h.respondState(w, r, *t)
}

func (h *Handlers) respondState(w http.ResponseWriter, r *http.Request, t commands.Target) {
	if h.Dashboard == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	state, err := h.Dashboard.Query(r.Context(), queries.DashboardStateInput{Session: t.Session, Dashboard: t.Dashboard})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func target(r *http.Request) commands.Target {
	return commands.Target{Session: SessionFromRequest(r), Dashboard: r.PathValue("id")}
}

func decodeBody(r *http.Request, payload any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil && !errors.Is(err, io.EOF) {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body").WithTextCode("INVALID_BODY")
	}
	return nil
}

// withSessionQuery copies the header or cookie session into the query
// string, where the stream handlers read it.
func withSessionQuery(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get(SessionQuery) == "" {
			if id := SessionFromRequest(r); id != "" {
				q.Set(SessionQuery, id)
				r.URL.RawQuery = q.Encode()
			}
		}
		next(w, r)
	}
}
