package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	gocommand "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-wastedash/components/dashboard"
	"github.com/goliatone/go-wastedash/components/dashboard/commands"
	"github.com/goliatone/go-wastedash/components/dashboard/httpapi"
	"github.com/goliatone/go-wastedash/components/dashboard/queries"
)

// Config wires go-router with the dashboard service, commands and hooks.
type Config[T any] struct {
	Router    router.Router[T]
	Service   *dashboard.Service
	Broadcast *dashboard.BroadcastHook
	Telemetry dashboard.Telemetry
	BasePath  string
	// AssetsDir serves a local go-echarts-assets copy under Routes.Assets.
	AssetsDir   string
	SessionIdle time.Duration
	Routes      RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML      string
	State     string
	Refresh   string
	Dashboard string
	WebSocket string
	Assets    string
}

// Register mounts dashboard routes (HTML, JSON, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Service == nil {
		return errors.New("gorouter: service is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	if cfg.SessionIdle <= 0 {
		cfg.SessionIdle = dashboard.DefaultSessionIdle
	}
	h := &handlers{
		service:     cfg.Service,
		state:       queries.NewDashboardStateQuery(cfg.Service),
		pageQuery:   queries.NewPageStateQuery(cfg.Service),
		refresh:     commands.NewRefreshDataCommand(cfg.Service, cfg.Telemetry),
		sessionIdle: cfg.SessionIdle,
	}

	group := cfg.Router
	if cfg.BasePath != "" {
		group = cfg.Router.Group(cfg.BasePath)
	}
	if cfg.AssetsDir != "" {
		group.Static(strings.TrimSuffix(routes.Assets, "/"), cfg.AssetsDir, router.Static{MaxAge: 86400})
	}
	group.Get(routes.HTML, router.WrapHandler(h.renderPage))
	group.Get(routes.State, router.WrapHandler(h.pageState))
	group.Post(routes.Refresh, router.WrapHandler(h.refreshPage))
	group.Get(routes.Dashboard, router.WrapHandler(h.dashboardState))

	dash := routes.Dashboard
	group.Post(dash+"/select", dashboardAction[commands.SelectEntityInput](h, commands.NewSelectEntityCommand(cfg.Service, cfg.Telemetry),
		func(in *commands.SelectEntityInput) *commands.Target { return &in.Target }))
	group.Post(dash+"/view-mode", dashboardAction[commands.SetViewModeInput](h, commands.NewSetViewModeCommand(cfg.Service, cfg.Telemetry),
		func(in *commands.SetViewModeInput) *commands.Target { return &in.Target }))
	group.Post(dash+"/aggregate", dashboardAction[commands.SetAggregateInput](h, commands.NewSetAggregateCommand(cfg.Service, cfg.Telemetry),
		func(in *commands.SetAggregateInput) *commands.Target { return &in.Target }))
	group.Post(dash+"/focus", dashboardAction[commands.FocusPeriodInput](h, commands.NewFocusPeriodCommand(cfg.Service, cfg.Telemetry),
		func(in *commands.FocusPeriodInput) *commands.Target { return &in.Target }))
	group.Post(dash+"/refresh", dashboardAction[commands.RefreshDataInput](h, h.refresh,
		func(in *commands.RefreshDataInput) *commands.Target { return &in.Target }))
	group.Post(dash+"/resize", dashboardAction[commands.ResizeChartsInput](h, commands.NewResizeChartsCommand(cfg.Service),
		func(in *commands.ResizeChartsInput) *commands.Target { return &in.Target }))

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}
	return nil
}

type handlers struct {
	service     *dashboard.Service
	state       *queries.DashboardStateQuery
	pageQuery   *queries.PageStateQuery
	refresh     *commands.RefreshDataCommand
	sessionIdle time.Duration
}

func (h *handlers) renderPage(ctx router.Context) error {
	id, _, err := h.service.EnsureSession(ctx.Context(), sessionID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}
	ctx.Cookie(&router.Cookie{
		Name:     httpapi.SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.sessionIdle / time.Second),
		SameSite: router.CookieSameSiteLaxMode,
	})
	var buf bytes.Buffer
	if err := h.service.RenderPage(ctx.Context(), id, &buf); err != nil {
		return respondError(ctx, err)
	}
	ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
	return ctx.Send(buf.Bytes())
}

func (h *handlers) pageState(ctx router.Context) error {
	state, err := h.pageQuery.Query(ctx.Context(), queries.PageStateInput{Session: sessionID(ctx)})
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, state)
}

func (h *handlers) dashboardState(ctx router.Context) error {
	state, err := h.state.Query(ctx.Context(), queries.DashboardStateInput{
		Session:   sessionID(ctx),
		Dashboard: ctx.Param("id"),
	})
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, state)
}

func (h *handlers) refreshPage(ctx router.Context) error {
	input := commands.RefreshDataInput{Target: commands.Target{Session: sessionID(ctx)}}
	if err := h.refresh.Execute(ctx.Context(), input); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
}

// dashboardAction decodes the optional body, pins the target to the route and
// session, runs the command and answers with the dashboard's new state.
func dashboardAction[T any](h *handlers, cmd gocommand.Commander[T], target func(*T) *commands.Target) router.HandlerFunc {
	return router.WrapHandler(func(ctx router.Context) error {
		var payload T
		if body := ctx.Body(); len(body) > 0 {
			if err := json.Unmarshal(body, &payload); err != nil {
				return respondError(ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body").WithTextCode("INVALID_BODY"))
			}
		}
		t := target(&payload)
		*t = commands.Target{Session: sessionID(ctx), Dashboard: ctx.Param("id")}
		if err := cmd.Execute(ctx.Context(), payload); err != nil {
			return respondError(ctx, err)
		}
		return h.dashboardState(ctx)
	})
}

func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe(sessionID(ws))
		defer cancel()

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := ws.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-closed:
				return nil
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func sessionID(ctx router.Context) string {
	if id := ctx.Header(httpapi.SessionHeader); id != "" {
		return id
	}
	if id := ctx.Cookies(httpapi.SessionCookie); id != "" {
		return id
	}
	return ctx.Query(httpapi.SessionQuery)
}

func respondError(ctx router.Context, err error) error {
	return ctx.JSON(httpapi.StatusCode(err), httpapi.ErrorResponse(err))
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/"
	}
	if routes.State == "" {
		routes.State = "/api/state"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/api/refresh"
	}
	if routes.Dashboard == "" {
		routes.Dashboard = "/api/dashboards/:id"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/ws"
	}
	if routes.Assets == "" {
		routes.Assets = dashboard.DefaultEChartsAssetsPath
	}
	return routes
}
