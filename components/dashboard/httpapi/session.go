package httpapi

import (
	"net/http"
	"time"
)

const (
	// SessionHeader carries the viewer session on API calls.
	SessionHeader = "X-Wastedash-Session"
	// SessionCookie carries the viewer session for page loads and streams.
	SessionCookie = "wastedash_session"
	// SessionQuery is the query parameter streams read the session from.
	SessionQuery = "session"
)

// SessionFromRequest returns the session id from the header, the cookie or
// the query string, in that order.
func SessionFromRequest(r *http.Request) string {
	if id := r.Header.Get(SessionHeader); id != "" {
		return id
	}
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return r.URL.Query().Get(SessionQuery)
}

// SessionCookieFor builds the cookie that pins a browser to its session.
func SessionCookieFor(id string, idle time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(idle / time.Second),
		SameSite: http.SameSiteLaxMode,
	}
}
