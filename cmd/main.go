package main

import (
	"cariella/internal/handler"
	"cariella/internal/middleware"
	"cariella/internal/model"
	"cariella/pkg/cache"
	"cariella/pkg/config"
	"cariella/pkg/database"
	"cariella/pkg/logger"
	"cariella/pkg/session"
	"cariella/pkg/token"
	"cariella/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting Cariella service...", cfg.LogConfig()...)

	// Initialize database
	if err := database.InitDB(database.DBSettings{
		DSN:             cfg.DB.GetDSN(),
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		LogLevel:        cfg.DB.LogLevel,
	}); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Sessions live in Redis when configured, otherwise in process
	// memory. The reference cache rides the same client.
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cache.Initialize(rdb)
		session.Initialize(session.NewRedisStore(rdb, cfg.Session.Lifetime), cfg.Session.Lifetime)
		log.Info("Redis session store initialized", zap.String("addr", cfg.Redis.Addr))
	} else {
		cache.Initialize(nil)
		session.Initialize(session.NewMemoryStore(cfg.Session.Lifetime), cfg.Session.Lifetime)
		log.Info("In-memory session store initialized")
	}

	// Initialize remember-me token signing
	token.Initialize(&cfg.Token)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())
	e.Use(middleware.LoadSession)

	// Public routes
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication and account lifecycle
	auth := e.Group("/api/auth")
	auth.POST("/register", handler.Register)
	auth.POST("/login", handler.Login)
	auth.POST("/logout", handler.Logout)
	auth.POST("/verify-phone", handler.VerifyPhone)
	auth.POST("/request-password-reset", handler.RequestPasswordReset)
	auth.POST("/reset-password", handler.ResetPassword)
	auth.GET("/get-locations", handler.GetLocations)

	// Vehicles - catalog is public, mutations and listings are
	// restricted to authenticated car owners
	ownerOnly := []echo.MiddlewareFunc{middleware.RequireAuth, middleware.RequireRole(model.UserTypeCarOwner)}
	vehicles := e.Group("/api/vehicles")
	vehicles.GET("/get-vehicle-catalog", handler.GetVehicleCatalog)
	vehicles.POST("/add", handler.AddVehicle, ownerOnly...)
	vehicles.GET("/get", handler.GetVehicles, ownerOnly...)

	// Service history
	services := e.Group("/api/services", ownerOnly...)
	services.GET("/get-history", handler.GetServiceHistory)

	// Public marketplace feed
	e.GET("/api/marketplace/get-listings", handler.GetListings)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
