package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/printwatch/fleet-console/internal/api/handler"
	"github.com/printwatch/fleet-console/internal/api/middleware"
	"github.com/printwatch/fleet-console/internal/api/view"
	"github.com/printwatch/fleet-console/internal/core/domain"
	"github.com/printwatch/fleet-console/internal/core/ports"
	"github.com/printwatch/fleet-console/internal/core/session"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(fleet ports.FleetClient, store ports.SessionStore, codec *session.CookieCodec, rdb *redis.Client, log zerolog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true

	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, err
	}
	e.Renderer = renderer
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("fleet_console"))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(fleet, store, codec, log)
	dashboardHandler := handler.NewDashboardHandler()
	usersHandler := handler.NewUsersHandler(fleet, log)
	profileHandler := handler.NewProfileHandler(fleet, store, log)

	guard := middleware.Session(store, codec)

	// --- Public screens ---
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusSeeOther, "/dashboard")
	})
	e.GET("/login", authHandler.LoginPage)
	e.POST("/login", authHandler.Login)
	e.POST("/logout", authHandler.Logout)
	e.GET("/forgot-password", authHandler.ForgotPasswordPage)
	e.POST("/forgot-password", authHandler.ForgotPassword)

	// --- Authenticated screens ---
	app := e.Group("", guard)
	app.GET("/dashboard", dashboardHandler.Dashboard)
	app.GET("/profile", profileHandler.Profile)
	app.GET("/profile/password", profileHandler.ChangePasswordPage)
	app.POST("/profile/password", profileHandler.ChangePassword)

	// User management: ADMIN and TECHNICIAN may view; mutations are
	// additionally gated to ADMIN inside the handler.
	users := e.Group("/users", guard, middleware.RBAC(domain.RoleAdmin, domain.RoleTechnician))
	users.GET("", usersHandler.List)
	users.GET("/new", usersHandler.NewPage)
	users.POST("", usersHandler.Create)
	users.GET("/:id/edit", usersHandler.EditPage)
	users.POST("/:id", usersHandler.Update)
	users.POST("/:id/delete", usersHandler.Delete)

	// --- Operational endpoints ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e, nil
}
