package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/fieldsales/visit-tracker/internal/api/handler"
	"github.com/fieldsales/visit-tracker/internal/api/middleware"
	"github.com/fieldsales/visit-tracker/internal/core/access"
	"github.com/fieldsales/visit-tracker/internal/core/ports"
)

// RouterDeps carries everything NewRouter wires into routes.
type RouterDeps struct {
	Log         zerolog.Logger
	JWTSecret   string
	AuthService ports.AuthService
	RoleService ports.RoleService
	Registry    *access.Registry
	AdminModes  ports.AdminModeStore
	Readiness   map[string]handler.Check
	// Metrics receives the HTTP metrics and backs /metrics. Nil means the
	// default Prometheus registry, where the access metrics live.
	Metrics *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Metrics != nil {
		registerer, gatherer = deps.Metrics, deps.Metrics
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "visit_tracker",
		Registerer: registerer,
	}))

	authMiddleware := middleware.Auth(deps.JWTSecret)
	sessionMiddleware := middleware.Session(deps.Registry, deps.AdminModes, deps.Log)

	// --- Public ---
	pageHandler := handler.NewPageHandler()
	e.GET("/", pageHandler.Home)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Readiness, 3*time.Second)
	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout, authMiddleware)

	// --- Session-scoped API ---
	sessionHandler := handler.NewSessionHandler()
	adminModeHandler := handler.NewAdminModeHandler()
	navigationHandler := handler.NewNavigationHandler(handler.Pages)

	v1 := e.Group("/v1", authMiddleware, sessionMiddleware)
	v1.GET("/me", sessionHandler.Me)
	v1.POST("/me/refresh", sessionHandler.Refresh)
	v1.GET("/me/admin-mode", adminModeHandler.Get)
	v1.PUT("/me/admin-mode", adminModeHandler.Set)
	v1.POST("/me/admin-mode/toggle", adminModeHandler.Toggle)
	v1.GET("/navigation", navigationHandler.List)

	roleHandler := handler.NewRoleHandler(deps.RoleService)
	admin := v1.Group("/admin", middleware.RequireCapability(access.CapManageData))
	admin.GET("/roles", roleHandler.List)
	admin.PUT("/users/:id/role", roleHandler.Assign)

	// --- Pages ---
	app := e.Group("/app", authMiddleware, sessionMiddleware)
	for _, p := range handler.Pages {
		app.GET("/"+p.Slug, pageHandler.Show(p), middleware.ProtectedRoute(p.Required))
	}

	return e
}
