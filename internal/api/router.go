package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/emipaz/gestortareas/docs"
	"github.com/emipaz/gestortareas/internal/api/handler"
	"github.com/emipaz/gestortareas/internal/api/middleware"
	"github.com/emipaz/gestortareas/internal/api/token"
	"github.com/emipaz/gestortareas/internal/core/domain"
	"github.com/emipaz/gestortareas/internal/core/ports"
)

// Deps carries everything the router wires into handlers. Mongo and Redis
// are optional: a nil Mongo skips its readiness check (file-backed store),
// a nil Limiter disables login throttling.
type Deps struct {
	Service   ports.TaskService
	Tokens    *token.Issuer
	JWTSecret string
	Limiter   handler.LoginLimiter
	Mongo     *mongo.Database
	Redis     *redis.Client
	Logger    zerolog.Logger
	// Metrics overrides the global prometheus registry. Leave nil in
	// production; tests inject a fresh registry so building several routers
	// does not double-register the HTTP collectors.
	Metrics *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	registerer := prometheus.Registerer(prometheus.DefaultRegisterer)
	gatherer := prometheus.Gatherer(prometheus.DefaultGatherer)
	if deps.Metrics != nil {
		registerer = deps.Metrics
		gatherer = deps.Metrics
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "gestortareas",
		Subsystem:  "http",
		Registerer: registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Service, deps.Tokens, deps.Limiter, deps.Logger)
	userHandler := handler.NewUserHandler(deps.Service)
	taskHandler := handler.NewTaskHandler(deps.Service)

	// --- Auth routes (public) ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/password", authHandler.SetupPassword)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Authenticated API ---
	// RequireRole keeps obviously unauthorized calls off the service; the
	// service re-checks every mutation against the permission matrix.
	v1 := e.Group("/v1", middleware.Auth(deps.JWTSecret))

	adminOnly := middleware.RequireRole(domain.RoleAdmin)
	supervisorOrAdmin := middleware.RequireRole(domain.RoleSupervisor, domain.RoleAdmin)

	v1.GET("/users", userHandler.List)
	v1.POST("/users", userHandler.Create, adminOnly)
	v1.POST("/users/:name/password/reset", userHandler.ResetPassword, adminOnly)
	v1.GET("/users/:name/tasks", userHandler.Tasks)

	v1.GET("/tasks", taskHandler.List)
	v1.POST("/tasks", taskHandler.Create, supervisorOrAdmin)
	v1.GET("/tasks/:name", taskHandler.Get)
	v1.POST("/tasks/:name/assignees", taskHandler.Assign, supervisorOrAdmin)
	v1.POST("/tasks/:name/comments", taskHandler.Comment)
	v1.POST("/tasks/:name/finish", taskHandler.Finish)
	v1.DELETE("/tasks/:name", taskHandler.Delete)

	v1.GET("/archive", taskHandler.Archive)
	v1.GET("/statistics", taskHandler.Statistics)

	return e
}
