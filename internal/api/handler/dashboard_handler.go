package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/printwatch/fleet-console/internal/api/middleware"
	"github.com/printwatch/fleet-console/internal/api/view"
)

// DashboardHandler serves the landing screen after login.
type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// Dashboard greets the user; the template shows the user-management link to
// admins and an informational note to everyone else.
func (h *DashboardHandler) Dashboard(c echo.Context) error {
	user, _ := middleware.CurrentUser(c)
	return c.Render(http.StatusOK, "dashboard", &view.Data{
		Title: "Dashboard",
		User:  user,
	})
}
