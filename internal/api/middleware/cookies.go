package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/printwatch/fleet-console/internal/core/session"
)

// ReadSessionID returns the verified session ID from the request cookie.
// A missing, malformed, or tampered cookie reads as no session.
func ReadSessionID(c echo.Context, codec *session.CookieCodec) (string, bool) {
	cookie, err := c.Cookie(session.CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	sid, err := codec.Decode(cookie.Value)
	if err != nil {
		return "", false
	}
	return sid, true
}

// WriteSessionCookie signs the session ID and sets it on the response.
func WriteSessionCookie(c echo.Context, codec *session.CookieCodec, sid string) error {
	value, err := codec.Encode(sid)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     session.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(codec.TTL() / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearSessionCookie expires the session cookie on the response.
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
