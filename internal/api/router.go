package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/proconnect/verification-system/docs"
	"github.com/proconnect/verification-system/internal/api/handler"
	"github.com/proconnect/verification-system/internal/api/middleware"
	"github.com/proconnect/verification-system/internal/core/domain"
	"github.com/proconnect/verification-system/internal/core/ports"
)

// Services groups the core services the router exposes over HTTP. They are
// constructed in main so the recompute dispatcher can share the same
// instances.
type Services struct {
	Auth         ports.AuthService
	Verification ports.VerificationService
	TrustScore   ports.TrustScoreService
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(
	db *mongo.Database,
	rdb *redis.Client,
	svcs Services,
	dispatcher handler.RecomputeDispatcher,
	jwtSecret string,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("verification"))

	// --- Operational endpoints (no auth required) ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)
	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(svcs.Auth)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Authenticated API ---
	v1 := e.Group("/v1", middleware.Auth(jwtSecret))

	credentialHandler := handler.NewCredentialHandler(svcs.Verification)
	v1.POST("/credentials", credentialHandler.Submit)
	v1.GET("/credentials", credentialHandler.List)
	v1.POST("/verification-requests", credentialHandler.SubmitRequest)

	trustScoreHandler := handler.NewTrustScoreHandler(svcs.TrustScore)
	v1.GET("/users/:id/trust-score", trustScoreHandler.Get)
	v1.GET("/users/:id/verification-summary", trustScoreHandler.Summary)

	// --- Admin API ---
	admin := v1.Group("/admin", middleware.RBAC(domain.RoleAdmin))

	adminHandler := handler.NewAdminHandler(svcs.Verification, dispatcher)
	admin.PUT("/credentials/:type/:id/status", adminHandler.SetCredentialStatus)
	admin.POST("/verification-requests/:id/resolve", adminHandler.ResolveRequest)
	admin.GET("/verification-requests", adminHandler.ListRequests)
	admin.PUT("/users/:id/ban", adminHandler.ToggleBan)
	admin.POST("/users/:id/trust-score/recompute", trustScoreHandler.Recompute)
	admin.POST("/trust-scores/recompute", adminHandler.RecomputeAll)

	return e
}
