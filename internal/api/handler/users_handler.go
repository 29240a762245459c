package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/printwatch/fleet-console/internal/api/middleware"
	"github.com/printwatch/fleet-console/internal/api/view"
	"github.com/printwatch/fleet-console/internal/core/domain"
	"github.com/printwatch/fleet-console/internal/core/ports"
)

// UsersHandler serves the user-management screen. Viewing requires ADMIN or
// TECHNICIAN (enforced by the RBAC middleware); every mutation additionally
// requires ADMIN and is checked here because the list screen and the
// mutations share a route group.
//
// All mutations are fire-and-refetch: the handler forwards the change to the
// fleet API and redirects back to the freshly-loaded list.
type UsersHandler struct {
	fleet  ports.FleetClient
	logger zerolog.Logger
}

func NewUsersHandler(fleet ports.FleetClient, logger zerolog.Logger) *UsersHandler {
	return &UsersHandler{fleet: fleet, logger: logger}
}

type createUserForm struct {
	FullName string `form:"fullName" validate:"required"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
	Role     string `form:"role" validate:"required,oneof=ADMIN TECHNICIAN VIEWER"`
}

type updateUserForm struct {
	FullName string `form:"fullName" validate:"required"`
	Email    string `form:"email" validate:"required,email"`
	Role     string `form:"role" validate:"omitempty,oneof=ADMIN TECHNICIAN VIEWER"`
}

// List renders the user table.
func (h *UsersHandler) List(c echo.Context) error {
	user, _ := middleware.CurrentUser(c)

	users, err := h.fleet.ListUsers(c.Request().Context(), middleware.Token(c))
	if err != nil {
		h.logger.Error().Err(err).Msg("list users")
		return c.Render(http.StatusOK, "users", &view.Data{
			Title: "Users",
			User:  user,
			Error: "Failed to load users. Please ensure you have the necessary permissions.",
		})
	}

	return c.Render(http.StatusOK, "users", &view.Data{
		Title: "Users",
		User:  user,
		Users: users,
	})
}

// NewPage renders the account-creation form. ADMIN only.
func (h *UsersHandler) NewPage(c echo.Context) error {
	user, _ := middleware.CurrentUser(c)
	if !canManage(user) {
		return renderDenied(c, user)
	}
	return c.Render(http.StatusOK, "user_new", &view.Data{
		Title: "Add User",
		User:  user,
		Form:  map[string]string{"role": string(domain.RoleViewer)},
	})
}

// Create submits a new account to the fleet API. ADMIN only.
func (h *UsersHandler) Create(c echo.Context) error {
	user, _ := middleware.CurrentUser(c)
	if !canManage(user) {
		return renderDenied(c, user)
	}

	var form createUserForm
	if err := c.Bind(&form); err != nil {
		return h.renderNew(c, user, "Invalid form submission.", form)
	}
	if err := c.Validate(&form); err != nil {
		return h.renderNew(c, user, err.Error(), form)
	}

	_, err := h.fleet.CreateUser(c.Request().Context(), middleware.Token(c), ports.CreateUserInput{
		FullName: form.FullName,
		Email:    form.Email,
		Password: form.Password,
		Role:     domain.Role(form.Role),
	})
	if err != nil {
		return h.renderNew(c, user, err.Error(), form)
	}

	h.logger.Info().Str("email", form.Email).Str("role", form.Role).Msg("user created")
	return c.Redirect(http.StatusSeeOther, "/users")
}

// EditPage renders the edit form for one account. ADMIN only. Editing your
// own record disables the role field; the original role is resubmitted
// regardless of what the form says.
func (h *UsersHandler) EditPage(c echo.Context) error {
	user, _ := middleware.CurrentUser(c)
	if !canManage(user) {
		return renderDenied(c, user)
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	target, err := h.findUser(c, id)
	if err != nil {
		return c.Render(http.StatusOK, "users", &view.Data{
			Title: "Users",
			User:  user,
			Error: err.Error(),
		})
	}

	return c.Render(http.StatusOK, "user_edit", &view.Data{
		Title:    "Edit User",
		User:     user,
		EditUser: target,
		Form: map[string]string{
			"fullName": target.FullName,
			"email":    target.Email,
			"role":     string(target.Role),
		},
	})
}

// Update submits the edited account. ADMIN only.
func (h *UsersHandler) Update(c echo.Context) error {
	user, _ := middleware.CurrentUser(c)
	if !canManage(user) {
		return renderDenied(c, user)
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var form updateUserForm
	if err := c.Bind(&form); err != nil {
		return h.renderEdit(c, user, id, "Invalid form submission.", form)
	}
	if err := c.Validate(&form); err != nil {
		return h.renderEdit(c, user, id, err.Error(), form)
	}

	role := domain.Role(form.Role)
	if id == user.ID {
		// Self-edit always submits the original role, no matter what the
		// (disabled) form control claimed.
		role = user.Role
	} else if !role.Valid() {
		return h.renderEdit(c, user, id, "role must be one of: ADMIN TECHNICIAN VIEWER", form)
	}

	_, err = h.fleet.UpdateUser(c.Request().Context(), middleware.Token(c), id, ports.UpdateUserInput{
		FullName: form.FullName,
		Email:    form.Email,
		Role:     role,
	})
	if err != nil {
		return h.renderEdit(c, user, id, err.Error(), form)
	}

	h.logger.Info().Int64("user_id", id).Msg("user updated")
	return c.Redirect(http.StatusSeeOther, "/users")
}

// Delete removes an account. ADMIN only; deleting your own account is always
// blocked console-side.
func (h *UsersHandler) Delete(c echo.Context) error {
	user, _ := middleware.CurrentUser(c)
	if !canManage(user) {
		return renderDenied(c, user)
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	if id == user.ID {
		users, _ := h.fleet.ListUsers(c.Request().Context(), middleware.Token(c))
		return c.Render(http.StatusOK, "users", &view.Data{
			Title: "Users",
			User:  user,
			Users: users,
			Error: "You cannot delete your own account.",
		})
	}

	if err := h.fleet.DeleteUser(c.Request().Context(), middleware.Token(c), id); err != nil {
		users, _ := h.fleet.ListUsers(c.Request().Context(), middleware.Token(c))
		return c.Render(http.StatusOK, "users", &view.Data{
			Title: "Users",
			User:  user,
			Users: users,
			Error: err.Error(),
		})
	}

	h.logger.Info().Int64("user_id", id).Msg("user deleted")
	return c.Redirect(http.StatusSeeOther, "/users")
}

// findUser locates one account in the current page of the user list; the
// fleet API offers no single-user fetch for admins.
func (h *UsersHandler) findUser(c echo.Context, id int64) (*domain.User, error) {
	users, err := h.fleet.ListUsers(c.Request().Context(), middleware.Token(c))
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (h *UsersHandler) renderNew(c echo.Context, user *domain.User, errMsg string, form createUserForm) error {
	return c.Render(http.StatusOK, "user_new", &view.Data{
		Title: "Add User",
		User:  user,
		Error: errMsg,
		Form: map[string]string{
			"fullName": form.FullName,
			"email":    form.Email,
			"role":     form.Role,
		},
	})
}

func (h *UsersHandler) renderEdit(c echo.Context, user *domain.User, id int64, errMsg string, form updateUserForm) error {
	target, err := h.findUser(c, id)
	if err != nil {
		target = &domain.User{ID: id, FullName: form.FullName, Email: form.Email, Role: domain.Role(form.Role)}
	}
	return c.Render(http.StatusOK, "user_edit", &view.Data{
		Title:    "Edit User",
		User:     user,
		EditUser: target,
		Error:    errMsg,
		Form: map[string]string{
			"fullName": form.FullName,
			"email":    form.Email,
			"role":     form.Role,
		},
	})
}

func canManage(user *domain.User) bool {
	return user != nil && user.Role.CanManageUsers()
}

// renderDenied shows the access-denied screen for non-admins reaching a
// mutating route.
func renderDenied(c echo.Context, user *domain.User) error {
	return c.Render(http.StatusForbidden, "denied", &view.Data{
		Title: "Access Denied",
		User:  user,
	})
}
