package gorouter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	router "github.com/goliatone/go-router"
	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-wastedash/components/dashboard"
	"github.com/goliatone/go-wastedash/components/dashboard/httpapi"
)

type testServer struct {
	handler http.Handler
	service *dashboard.Service
	hook    *dashboard.BroadcastHook
	session string
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	renderer, err := dashboard.NewTemplateRenderer()
	require.NoError(t, err)
	hook := dashboard.NewBroadcastHook()
	service := dashboard.NewService(dashboard.Options{Renderer: renderer, RefreshHook: hook})
	session, err := service.OpenSession(context.Background())
	require.NoError(t, err)

	server := router.NewHTTPServer()
	require.NoError(t, mount(server.Router(), service, hook))
	return testServer{handler: server.WrappedRouter(), service: service, hook: hook, session: session}
}

func mount[T any](r router.Router[T], service *dashboard.Service, hook *dashboard.BroadcastHook) error {
	return Register(Config[T]{Router: r, Service: service, Broadcast: hook})
}

func (s testServer) do(t *testing.T, method, path, session, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(httpapi.SessionHeader, session)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec.Result()
}

func TestRegisterRequiresRouterAndService(t *testing.T) {
	assert.Error(t, Register(Config[struct{}]{}))
	server := router.NewHTTPServer()
	assert.Error(t, mount(server.Router(), nil, nil))
}

func TestPageRouteOpensSession(t *testing.T) {
	s := newTestServer(t)
	res := s.do(t, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "text/html")

	var cookie *http.Cookie
	for _, c := range res.Cookies() {
		if c.Name == httpapi.SessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)

	body, _ := io.ReadAll(res.Body)
	assert.Contains(t, string(body), `data-dashboard="facilities"`)
}

func TestSelectAndStateRoutes(t *testing.T) {
	s := newTestServer(t)
	res := s.do(t, http.MethodPost, "/api/dashboards/countries/select", s.session, `{"entity":"ger"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var state dashboard.DashboardState
	require.NoError(t, json.NewDecoder(res.Body).Decode(&state))
	assert.Equal(t, "ger", state.Selected)

	res = s.do(t, http.MethodGet, "/api/state", s.session, "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var page dashboard.PageState
	require.NoError(t, json.NewDecoder(res.Body).Decode(&page))
	require.Len(t, page.Dashboards, 4)
	assert.Equal(t, "ger", page.Dashboards[0].Selected)
}

func TestActionRoutes(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res := s.do(t, http.MethodPost, "/api/dashboards/places/view-mode", s.session, `{"mode":"one_year"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	state, err := s.service.DashboardState(ctx, s.session, "places")
	require.NoError(t, err)
	assert.Equal(t, dashboard.OneYear, state.Mode)

	res = s.do(t, http.MethodPost, "/api/dashboards/places/aggregate", s.session, `{"show":true}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	state, err = s.service.DashboardState(ctx, s.session, "places")
	require.NoError(t, err)
	assert.True(t, state.ShowAggregate)

	res = s.do(t, http.MethodPost, "/api/dashboards/places/resize", s.session, `{"width":"480px"}`)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res = s.do(t, http.MethodPost, "/api/refresh", s.session, "")
	assert.Equal(t, http.StatusAccepted, res.StatusCode)
}

func TestActionErrors(t *testing.T) {
	s := newTestServer(t)
	cases := []struct {
		name    string
		method  string
		path    string
		session string
		body    string
		status  int
	}{
		{"unknown entity", http.MethodPost, "/api/dashboards/countries/select", s.session, `{"entity":"atlantis"}`, http.StatusNotFound},
		{"unknown dashboard", http.MethodGet, "/api/dashboards/moon", s.session, "", http.StatusNotFound},
		{"invalid body", http.MethodPost, "/api/dashboards/countries/select", s.session, `{`, http.StatusBadRequest},
		{"missing session", http.MethodPost, "/api/dashboards/countries/select", "", `{"entity":"ger"}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := s.do(t, tc.method, tc.path, tc.session, tc.body)
			assert.Equal(t, tc.status, res.StatusCode)
		})
	}
}

func TestWebSocketStreamsSessionEvents(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.handler)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?session=" + s.session
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return s.hook.Subscribers() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, s.service.SelectEntity(context.Background(), s.session, "countries", "hnd"))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event dashboard.DashboardEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, s.session, event.Session)
	assert.Equal(t, "countries", event.Dashboard)
	assert.Equal(t, "hnd", event.Selected)
}

func TestWebSocketRouteRejectsPlainRequests(t *testing.T) {
	s := newTestServer(t)
	res := s.do(t, http.MethodGet, "/ws", "", "")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
