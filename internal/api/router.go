package api

import (
	"context"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/promptforge/platform-api/internal/api/handler"
	"github.com/promptforge/platform-api/internal/api/middleware"
	"github.com/promptforge/platform-api/internal/core/domain"
	"github.com/promptforge/platform-api/internal/core/ports"
	"github.com/promptforge/platform-api/internal/core/ratelimit"
	"github.com/promptforge/platform-api/internal/core/service"
	"github.com/promptforge/platform-api/internal/infrastructure/config"
	mongodb "github.com/promptforge/platform-api/internal/infrastructure/db/mongo"
	redisdb "github.com/promptforge/platform-api/internal/infrastructure/db/redis"
	"github.com/promptforge/platform-api/internal/infrastructure/queue"
)

// NewRouter builds and returns the Echo instance with all routes
// registered. Background workers (usage recorder, counter sweeper) stop
// when ctx is cancelled.
func NewRouter(ctx context.Context, cfg *config.Config, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("promptforge"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	keyRepo := mongodb.NewAPIKeyRepository(db)
	templateRepo := mongodb.NewTemplateRepository(db)

	var counters ports.CounterStore
	if cfg.RateLimitBackend == "redis" && rdb != nil {
		counters = redisdb.NewCounterStore(rdb)
	} else {
		memStore := ratelimit.NewMemoryStore()
		memStore.StartSweeper(ctx, 0)
		counters = memStore
	}
	limiter := ratelimit.NewLimiter(counters)

	usageRecorder := queue.NewUsageRecorder(0, keyRepo, log)
	usageRecorder.Start(ctx)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, 24*time.Hour, log)
	authenticator := service.NewTokenAuthenticator(userRepo, service.AuthenticatorConfig{
		Production:            cfg.Env.IsProduction(),
		LocalSecret:           cfg.JWTSecret,
		ExternalSecret:        cfg.ExternalJWTSecret,
		AllowUnverifiedDecode: cfg.AllowUnverifiedTokens,
	}, log)
	keyService := service.NewAPIKeyService(keyRepo, limiter, usageRecorder, log)
	templateService := service.NewTemplateService(templateRepo)

	authn := middleware.Authenticate(authenticator, log)
	keyAuthn := middleware.AuthenticateAPIKey(keyService, log)

	// --- User-facing routes ---
	authHandler := handler.NewAuthHandler(authService)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.GET("/auth/me", authHandler.Me, authn)

	keyHandler := handler.NewAPIKeyHandler(keyService)
	keys := e.Group("/v1/keys", authn)
	keys.POST("", keyHandler.Create)
	keys.GET("", keyHandler.List)
	keys.DELETE("/:id", keyHandler.Revoke)
	keys.GET("/:id/usage", keyHandler.Usage)

	adminHandler := handler.NewAdminHandler(userRepo)
	admin := e.Group("/v1/admin", authn, middleware.Authorize(domain.RoleAdmin))
	admin.GET("/users/:id", adminHandler.GetUser)

	// --- Agent-facing routes (API-key authenticated) ---
	templateHandler := handler.NewTemplateHandler(templateService)
	agent := e.Group("/agent/v1", keyAuthn)
	agent.GET("/templates", templateHandler.List, middleware.RequirePermission(domain.PermTemplatesRead))
	agent.GET("/templates/:id", templateHandler.Get, middleware.RequirePermission(domain.PermTemplatesRead))
	agent.POST("/templates", templateHandler.Create, middleware.RequirePermission(domain.PermTemplatesWrite))

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
