package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/printwatch/fleet-console/internal/api/view"
	"github.com/printwatch/fleet-console/internal/core/domain"
)

// NewHTTPErrorHandler returns the backstop error handler. Screen controllers
// catch their own failures and render inline banners, so anything arriving
// here is either an echo routing error or an unexpected bug; both render the
// generic error screen without leaking internals.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		rerr := c.Render(code, "error", &view.Data{
			Title: "Error",
			Error: msg,
		})
		if rerr != nil {
			// Rendering itself failed; fall back to plain text.
			_ = c.String(code, msg)
		}
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from the router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, domain.ErrSessionExpired):
		return http.StatusUnauthorized, "Your session has expired. Please log in again."
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "You do not have permission to view this page."
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, domain.ErrSelfDelete):
		return http.StatusConflict, "You cannot delete your own account."
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "Something went wrong. Please try again."
}
