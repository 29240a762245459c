package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/printwatch/fleet-console/internal/api/view"
	"github.com/printwatch/fleet-console/internal/core/domain"
)

// RBAC enforces role-based access to a screen. Users outside the allowed set
// see the access-denied screen with a way back; they never see the content.
// Must run after Session.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return c.Redirect(http.StatusSeeOther, "/login")
			}
			if _, ok := allowed[user.Role]; !ok {
				return c.Render(http.StatusForbidden, "denied", &view.Data{
					Title: "Access Denied",
					User:  user,
				})
			}
			return next(c)
		}
	}
}
