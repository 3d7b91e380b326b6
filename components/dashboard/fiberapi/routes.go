package fiberapi

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	gocommand "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	"github.com/valyala/fasthttp"

	"github.com/goliatone/go-wastedash/components/dashboard"
	"github.com/goliatone/go-wastedash/components/dashboard/commands"
	"github.com/goliatone/go-wastedash/components/dashboard/httpapi"
	"github.com/goliatone/go-wastedash/components/dashboard/queries"
)

// Config wires a fiber router with the dashboard service, commands and hooks.
type Config struct {
	Router    fiber.Router
	Service   *dashboard.Service
	Broadcast *dashboard.BroadcastHook
	Telemetry dashboard.Telemetry
	BasePath  string
	// AssetsDir serves a local go-echarts-assets copy under Routes.Assets.
	AssetsDir   string
	SessionIdle time.Duration
	Heartbeat   time.Duration
	Routes      RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML      string
	State     string
	Refresh   string
	Dashboard string
	WebSocket string
	Events    string
	Assets    string
}

// Register mounts dashboard routes (HTML, JSON, WebSocket, SSE) on a fiber router.
func Register(cfg Config) error {
	if cfg.Router == nil {
		return errors.New("fiberapi: router is required")
	}
	if cfg.Service == nil {
		return errors.New("fiberapi: service is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	if cfg.SessionIdle <= 0 {
		cfg.SessionIdle = dashboard.DefaultSessionIdle
	}
	if cfg.Heartbeat <= 0 {
		cfg.Heartbeat = 15 * time.Second
	}
	h := &handlers{
		service:     cfg.Service,
		state:       queries.NewDashboardStateQuery(cfg.Service),
		pageQuery:   queries.NewPageStateQuery(cfg.Service),
		refresh:     commands.NewRefreshDataCommand(cfg.Service, cfg.Telemetry),
		sessionIdle: cfg.SessionIdle,
	}

	group := cfg.Router.Group(cfg.BasePath)
	if cfg.AssetsDir != "" {
		group.Static(routes.Assets, cfg.AssetsDir, fiber.Static{MaxAge: 86400})
	}
	group.Get(routes.HTML, h.renderPage)
	group.Get(routes.State, h.pageState)
	group.Post(routes.Refresh, h.refreshPage)
	group.Get(routes.Dashboard, h.dashboardState)

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
		registerEvents(group, cfg.Broadcast, routes.Events, cfg.Heartbeat)
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

func (h *handlers) renderPage(c *fiber.Ctx) error {
	id, _, err := h.service.EnsureSession(c.UserContext(), sessionID(c))
	if err != nil {
		return respondError(c, err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     httpapi.SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.sessionIdle / time.Second),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	var buf bytes.Buffer
	if err := h.service.RenderPage(c.UserContext(), id, &buf); err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}

func (h *handlers) pageState(c *fiber.Ctx) error {
	state, err := h.pageQuery.Query(c.UserContext(), queries.PageStateInput{Session: sessionID(c)})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(state)
}

func (h *handlers) dashboardState(c *fiber.Ctx) error {
	state, err := h.state.Query(c.UserContext(), queries.DashboardStateInput{
		Session:   sessionID(c),
		Dashboard: c.Params("id"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(state)
}

func (h *handlers) refreshPage(c *fiber.Ctx) error {
	input := commands.RefreshDataInput{Target: commands.Target{Session: sessionID(c)}}
	if err := h.refresh.Execute(c.UserContext(), input); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusAccepted)
}

// dashboardAction decodes the optional body, pins the target to the route and
// session, runs the command and answers with the dashboard's new state.
func dashboardAction[T any](h *handlers, cmd gocommand.Commander[T], target func(*T) *commands.Target) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var payload T
		if body := c.Body(); len(body) > 0 {
			if err := json.Unmarshal(body, &payload); err != nil {
				return respondError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body").WithTextCode("INVALID_BODY"))
			}
		}
		t := target(&payload)
		*t = commands.Target{Session: sessionID(c), Dashboard: c.Params("id")}
		if err := cmd.Execute(c.UserContext(), payload); err != nil {
			return respondError(c, err)
		}
		return h.dashboardState(c)
	}
}

func registerWebSocket(r fiber.Router, hook *dashboard.BroadcastHook, path string) {
	r.Get(path, func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		c.Locals("session", sessionID(c))
		return c.Next()
	}, websocket.New(func(conn *websocket.Conn) {
		session, _ := conn.Locals("session").(string)
		events, cancel := hook.Subscribe(session)
		defer cancel()

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-closed:
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				if err := conn.WriteJSON(event); err != nil {
					return
				}
			}
		}
	}))
}

func registerEvents(r fiber.Router, hook *dashboard.BroadcastHook, path string, heartbeat time.Duration) {
	r.Get(path, func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "text/event-stream")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		c.Set(fiber.HeaderConnection, "keep-alive")
		events, cancel := hook.Subscribe(sessionID(c))

		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			defer cancel()
			ticker := time.NewTicker(heartbeat)
			defer ticker.Stop()
			if err := w.Flush(); err != nil {
				return
			}
			for {
				select {
				case <-ticker.C:
					fmt.Fprint(w, ": ping\n\n")
				case event, ok := <-events:
					if !ok {
						return
					}
					payload, err := json.Marshal(event)
					if err != nil {
						continue
					}
					fmt.Fprintf(w, "data: %s\n\n", payload)
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}))
		return nil
	})
}

func sessionID(c *fiber.Ctx) string {
	if id := c.Get(httpapi.SessionHeader); id != "" {
		return id
	}
	if id := c.Cookies(httpapi.SessionCookie); id != "" {
		return id
	}
	return c.Query(httpapi.SessionQuery)
}

func respondError(c *fiber.Ctx, err error) error {
	return c.Status(httpapi.StatusCode(err)).JSON(httpapi.ErrorResponse(err))
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
	if routes.Events == "" {
		routes.Events = "/events"
	}
	if routes.Assets == "" {
		routes.Assets = dashboard.DefaultEChartsAssetsPath
	}
	return routes
}
