package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/mapascal/records-system/docs"
	"github.com/mapascal/records-system/internal/api/handler"
	"github.com/mapascal/records-system/internal/api/middleware"
	"github.com/mapascal/records-system/internal/core/domain"
	"github.com/mapascal/records-system/internal/core/ports"
	"github.com/mapascal/records-system/internal/core/service"
	mongodb "github.com/mapascal/records-system/internal/infrastructure/db/mongo"
	redisdb "github.com/mapascal/records-system/internal/infrastructure/db/redis"
	"github.com/mapascal/records-system/internal/pkg/config"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, files ports.FileStore, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.BodyLimit(cfg.MaxUploadSize))
	e.Use(echoprometheus.NewMiddleware("mapascal"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	letterRepo := mongodb.NewLetterRepository(db)
	pendingStore := redisdb.NewPendingLoginStore(rdb)

	authService := service.NewAuthService(userRepo, pendingStore, cfg.JWTSecret, cfg.SessionTTL, cfg.AccessCodeTTL, log)
	memberService := service.NewMemberService(userRepo, authService, log)
	letterService := service.NewLetterService(letterRepo, files, log)

	authHandler := handler.NewAuthHandler(authService, memberService)
	memberHandler := handler.NewMemberHandler(memberService)
	letterHandler := handler.NewLetterHandler(letterService)

	authMiddleware := middleware.Auth(cfg.JWTSecret)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/verify-token", authHandler.VerifyToken)
	e.POST("/auth/register", authHandler.Register)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Authenticated routes ---
	v1 := e.Group("/v1", authMiddleware)

	v1.GET("/members", memberHandler.List)
	v1.GET("/members/pending", memberHandler.Pending, adminOnly)
	v1.POST("/members/:id/approve", memberHandler.Approve, adminOnly)
	v1.POST("/members/:id/access-code", memberHandler.ReissueCode, adminOnly)

	letters := v1.Group("/letters/:direction")
	letters.POST("", letterHandler.Create)
	letters.GET("", letterHandler.List)
	letters.GET("/:id", letterHandler.Get)
	letters.PUT("/:id", letterHandler.Update)
	letters.DELETE("/:id", letterHandler.Delete)
	letters.GET("/:id/file", letterHandler.Download)

	return e
}
