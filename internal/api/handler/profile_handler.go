package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/printwatch/fleet-console/internal/api/middleware"
	"github.com/printwatch/fleet-console/internal/api/view"
	"github.com/printwatch/fleet-console/internal/core/domain"
	"github.com/printwatch/fleet-console/internal/core/ports"
)

// minPasswordLength is the console-side password policy, checked before any
// network call.
const minPasswordLength = 8

// ProfileHandler serves the profile screen and the password-change flow. A
// successful password change forces a logout so the user re-authenticates
// with the new credential.
type ProfileHandler struct {
	fleet  ports.FleetClient
	store  ports.SessionStore
	logger zerolog.Logger
}

func NewProfileHandler(fleet ports.FleetClient, store ports.SessionStore, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{fleet: fleet, store: store, logger: logger}
}

type changePasswordForm struct {
	CurrentPassword    string `form:"currentPassword" validate:"required"`
	NewPassword        string `form:"newPassword" validate:"required"`
	ConfirmNewPassword string `form:"confirmNewPassword" validate:"required"`
}

// Profile renders the caller's own account record, fetched fresh from the
// fleet API rather than trusting the session copy.
func (h *ProfileHandler) Profile(c echo.Context) error {
	user, _ := middleware.CurrentUser(c)

	profile, err := h.fleet.Profile(c.Request().Context(), middleware.Token(c))
	if err != nil {
		h.logger.Error().Err(err).Msg("load profile")
		return c.Render(http.StatusOK, "profile", &view.Data{
			Title: "My Profile",
			User:  user,
			Error: "Failed to load user profile. Please try again.",
		})
	}

	return c.Render(http.StatusOK, "profile", &view.Data{
		Title:   "My Profile",
		User:    user,
		Profile: profile,
	})
}

// ChangePasswordPage renders the password-change form.
func (h *ProfileHandler) ChangePasswordPage(c echo.Context) error {
	user, _ := middleware.CurrentUser(c)
	return c.Render(http.StatusOK, "change_password", &view.Data{
		Title: "Change Password",
		User:  user,
	})
}

// ChangePassword validates and submits the password change. Mismatched or
// too-short passwords are rejected before the fleet API is contacted.
func (h *ProfileHandler) ChangePassword(c echo.Context) error {
	user, _ := middleware.CurrentUser(c)

	var form changePasswordForm
	if err := c.Bind(&form); err != nil {
		return h.renderForm(c, user, "Invalid form submission.")
	}
	if err := c.Validate(&form); err != nil {
		return h.renderForm(c, user, err.Error())
	}
	if form.NewPassword != form.ConfirmNewPassword {
		return h.renderForm(c, user, "New password and confirmation do not match.")
	}
	if len(form.NewPassword) < minPasswordLength {
		return h.renderForm(c, user, "New password must be at least 8 characters long.")
	}

	err := h.fleet.ChangePassword(c.Request().Context(), middleware.Token(c), user.ID, ports.ChangePasswordInput{
		CurrentPassword: form.CurrentPassword,
		NewPassword:     form.NewPassword,
	})
	if err != nil {
		return h.renderForm(c, user, err.Error())
	}

	// Force re-authentication with the new credential.
	h.store.Logout(c.Request().Context(), middleware.SessionID(c))
	middleware.ClearSessionCookie(c)
	h.logger.Info().Int64("user_id", user.ID).Msg("password changed, session ended")

	return c.Render(http.StatusOK, "password_changed", &view.Data{
		Title:     "Password Changed",
		Message:   "Password changed successfully! You will be redirected to login.",
		RefreshTo: "/login",
	})
}

func (h *ProfileHandler) renderForm(c echo.Context, user *domain.User, errMsg string) error {
	return c.Render(http.StatusOK, "change_password", &view.Data{
		Title: "Change Password",
		User:  user,
		Error: errMsg,
	})
}
