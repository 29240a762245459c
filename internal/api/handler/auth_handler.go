package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/printwatch/fleet-console/internal/api/metrics"
	"github.com/printwatch/fleet-console/internal/api/middleware"
	"github.com/printwatch/fleet-console/internal/api/view"
	"github.com/printwatch/fleet-console/internal/core/ports"
	"github.com/printwatch/fleet-console/internal/core/session"
)

// AuthHandler serves the login and logout flows and the forgot-password
// screen. Login success never jumps straight to the dashboard: it hands the
// token to the session store and redirects, and the route guard lets the
// dashboard through only once the identity resolution has completed.
type AuthHandler struct {
	fleet  ports.FleetClient
	store  ports.SessionStore
	codec  *session.CookieCodec
	logger zerolog.Logger
}

func NewAuthHandler(fleet ports.FleetClient, store ports.SessionStore, codec *session.CookieCodec, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{fleet: fleet, store: store, codec: codec, logger: logger}
}

type loginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

type forgotPasswordForm struct {
	Email string `form:"email" validate:"required,email"`
}

// LoginPage renders the login screen. A browser that is already
// authenticated is sent to the dashboard; one whose session check is still
// in flight sees the loading placeholder until it settles.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	if sid, ok := middleware.ReadSessionID(c, h.codec); ok {
		sess := h.store.Get(c.Request().Context(), sid)
		if !sess.Ready {
			return c.Render(http.StatusOK, "checking", &view.Data{
				Title:     "Loading",
				RefreshTo: "/login",
			})
		}
		if sess.Authenticated() {
			return c.Redirect(http.StatusSeeOther, "/dashboard")
		}
	}
	return h.renderLogin(c, http.StatusOK, "", "")
}

// Login handles the credential submission.
func (h *AuthHandler) Login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return h.renderLogin(c, http.StatusBadRequest, "Invalid form submission.", "")
	}
	if err := c.Validate(&form); err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return h.renderLogin(c, http.StatusBadRequest, err.Error(), form.Email)
	}

	result, err := h.fleet.Login(c.Request().Context(), ports.Credentials{
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		h.logger.Info().Str("email", form.Email).Msg("login rejected")
		return h.renderLogin(c, http.StatusUnauthorized, err.Error(), form.Email)
	}

	// Reuse the browser's session ID when it already has one so the old
	// record is superseded instead of orphaned.
	sid, ok := middleware.ReadSessionID(c, h.codec)
	if !ok {
		sid = session.NewID()
	}
	if err := middleware.WriteSessionCookie(c, h.codec, sid); err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		h.logger.Error().Err(err).Msg("sign session cookie")
		return h.renderLogin(c, http.StatusInternalServerError, "Login failed", form.Email)
	}

	h.store.Login(c.Request().Context(), sid, result.Token)
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Logout ends the session and returns to the login screen.
func (h *AuthHandler) Logout(c echo.Context) error {
	if sid, ok := middleware.ReadSessionID(c, h.codec); ok {
		h.store.Logout(c.Request().Context(), sid)
	}
	middleware.ClearSessionCookie(c)
	return c.Redirect(http.StatusSeeOther, "/login")
}

// ForgotPasswordPage renders the reset-request screen.
func (h *AuthHandler) ForgotPasswordPage(c echo.Context) error {
	return c.Render(http.StatusOK, "forgot_password", &view.Data{
		Title: "Reset Password",
		Form:  map[string]string{},
	})
}

// ForgotPassword submits the reset request and shows the server's
// confirmation text. The text is the same whether or not the account exists.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var form forgotPasswordForm
	if err := c.Bind(&form); err != nil {
		return c.Render(http.StatusOK, "forgot_password", &view.Data{
			Title: "Reset Password",
			Error: "Invalid form submission.",
			Form:  map[string]string{},
		})
	}
	if err := c.Validate(&form); err != nil {
		return c.Render(http.StatusOK, "forgot_password", &view.Data{
			Title: "Reset Password",
			Error: err.Error(),
			Form:  map[string]string{"email": form.Email},
		})
	}

	message, err := h.fleet.ForgotPassword(c.Request().Context(), form.Email)
	if err != nil {
		return c.Render(http.StatusOK, "forgot_password", &view.Data{
			Title: "Reset Password",
			Error: err.Error(),
			Form:  map[string]string{"email": form.Email},
		})
	}
	if message == "" {
		message = "Password reset link sent to your email (if account exists)."
	}
	// Clear the email field on success, matching a fresh form.
	return c.Render(http.StatusOK, "forgot_password", &view.Data{
		Title:   "Reset Password",
		Message: message,
		Form:    map[string]string{},
	})
}

func (h *AuthHandler) renderLogin(c echo.Context, status int, errMsg, email string) error {
	return c.Render(status, "login", &view.Data{
		Title: "Login",
		Error: errMsg,
		Form:  map[string]string{"email": email},
	})
}
