package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/printwatch/fleet-console/internal/api/view"
	"github.com/printwatch/fleet-console/internal/core/domain"
	"github.com/printwatch/fleet-console/internal/core/ports"
	"github.com/printwatch/fleet-console/internal/core/session"
)

// Context keys set by the Session middleware for downstream handlers.
const (
	ContextSessionID = "session_id"
	ContextUser      = "user"
	ContextToken     = "token"
)

// Session is the route guard for protected screens. Per request it evaluates
// the session state machine:
//
//	checking        → session not ready: render the loading placeholder,
//	                  which refreshes until resolution completes
//	unauthenticated → ready, no user: redirect to the login screen
//	authenticated   → ready, user present: inject identity and continue
//
// It keeps no state of its own; transitions are driven entirely by the
// session store.
func Session(store ports.SessionStore, codec *session.CookieCodec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid, ok := ReadSessionID(c, codec)
			if !ok {
				return c.Redirect(http.StatusSeeOther, "/login")
			}

			sess := store.Get(c.Request().Context(), sid)
			switch {
			case !sess.Ready:
				return c.Render(http.StatusOK, "checking", &view.Data{
					Title:     "Loading",
					RefreshTo: c.Request().URL.RequestURI(),
				})
			case sess.User == nil:
				return c.Redirect(http.StatusSeeOther, "/login")
			}

			c.Set(ContextSessionID, sid)
			c.Set(ContextUser, sess.User)
			c.Set(ContextToken, sess.Token)
			return next(c)
		}
	}
}

// CurrentUser extracts the identity injected by the Session middleware.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(ContextUser).(*domain.User)
	return user, ok && user != nil
}

// Token extracts the bearer token injected by the Session middleware.
func Token(c echo.Context) string {
	token, _ := c.Get(ContextToken).(string)
	return token
}

// SessionID extracts the session ID injected by the Session middleware.
func SessionID(c echo.Context) string {
	sid, _ := c.Get(ContextSessionID).(string)
	return sid
}
