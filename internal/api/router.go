package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/checkin-system/users-api/docs"
	"github.com/checkin-system/users-api/internal/api/handler"
	"github.com/checkin-system/users-api/internal/api/middleware"
	"github.com/checkin-system/users-api/internal/core/ports"
	"github.com/checkin-system/users-api/internal/infrastructure/http/handlers"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Log      zerolog.Logger
	Auth     ports.AuthService
	Users    ports.UserService
	CheckIns ports.CheckInService
	// Health lists the dependencies checked by /health/ready.
	Health map[string]handlers.Pinger
	// Registry receives the HTTP metrics. A fresh registry is used when nil.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	registry := d.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "checkin",
		Subsystem:  "http",
		Registerer: registry,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Handlers ---
	userHandler := handler.NewUserHandler(d.Users)
	authHandler := handler.NewAuthHandler(d.Auth, d.Log)
	checkInHandler := handler.NewCheckInHandler(d.CheckIns)

	requireToken := middleware.Auth(d.Auth)
	selfOrStaff := middleware.SelfOrStaff("id")

	// --- Accounts ---
	e.POST("/users", userHandler.Create)
	e.GET("/users", userHandler.List, requireToken, middleware.RequireStaff())
	e.GET("/users/:id", userHandler.Get, requireToken, selfOrStaff)
	e.PUT("/users/:id", userHandler.Update, requireToken, selfOrStaff)
	e.PATCH("/users/:id", userHandler.Update, requireToken, selfOrStaff)
	e.DELETE("/users/:id", userHandler.Delete, requireToken, selfOrStaff)

	e.POST("/auth", authHandler.Login)

	// --- Check-ins ---
	checkIns := e.Group("/check-ins", requireToken)
	checkIns.GET("", checkInHandler.List)
	checkIns.POST("", checkInHandler.Create)
	checkIns.GET("/last_checkin", checkInHandler.Last)
	checkIns.GET("/user_check_ins", checkInHandler.ForUser)
	checkIns.GET("/:id", checkInHandler.Get)
	checkIns.PUT("/:id", checkInHandler.Update)
	checkIns.PATCH("/:id", checkInHandler.Update)
	checkIns.DELETE("/:id", checkInHandler.Delete)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Health)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{registry, prometheus.DefaultGatherer},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			switch {
			case v.Status >= 500:
				event = log.Error().Err(v.Error)
			case v.Error != nil:
				event = log.Warn().Err(v.Error)
			}
			event.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
