package main

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"trackwise/internal/caching"
	"trackwise/internal/handlers"
	"trackwise/internal/jobs"
	"trackwise/internal/middleware"
	"trackwise/internal/repositories"
	"trackwise/internal/services"
	"trackwise/pkg/config"
	"trackwise/pkg/database"
	"trackwise/pkg/logger"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("load configuration: %v", err))
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	// Database connection pool
	pool, err := database.NewPool(context.Background(), cfg.DB.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().Msg("database connected")

	// JWT configuration
	jwtSecret := cfg.JWT.Secret
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Warn().Msg("JWT_SECRET not set, using a generated secret; sessions reset on restart")
	}

	// Cache service
	cacheSvc := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	// Object storage for product images
	storageSvc, err := services.NewMinioStorageService(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize object storage")
	}
	if err := storageSvc.EnsureBucketExists(context.Background(), cfg.Minio.Bucket); err != nil {
		log.Warn().Err(err).Str("bucket", cfg.Minio.Bucket).Msg("could not ensure image bucket exists")
	}

	// Repositories
	accountRepo := repositories.NewAccountRepo(pool)
	companyRepo := repositories.NewCompanyRepo(pool)
	profileRepo := repositories.NewProfileRepo(pool)
	productRepo := repositories.NewProductRepo(pool)

	// Services
	authSvc := services.NewAuthService(accountRepo, cacheSvc, jwtSecret, cfg.JWT.TTLSeconds)
	inventorySvc := services.NewInventoryService(productRepo, profileRepo, cacheSvc, storageSvc, cfg.Minio.Bucket)

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, inventorySvc, cfg.JWT.TTLSeconds, log)
	inventoryHandlers := handlers.NewInventoryHandlers(inventorySvc, log)
	healthHandlers := handlers.NewHealthHandlers(pool)

	// Background low-stock scanning
	lowStockSvc := jobs.NewLowStockService(productRepo, companyRepo, cfg.Jobs.LowStockThreshold, log)
	scheduler, err := jobs.NewScheduler(lowStockSvc, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create job scheduler")
	}
	scanInterval, err := time.ParseDuration(cfg.Jobs.LowStockScanInterval)
	if err != nil {
		scanInterval = time.Hour
	}
	if err := scheduler.Start(scanInterval); err != nil {
		log.Fatal().Err(err).Msg("failed to start job scheduler")
	}
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			log.Error().Err(err).Msg("scheduler shutdown failed")
		}
	}()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)

	// Account flows (no session required for register/login)
	accounts := e.Group("/accounts")
	accounts.POST("/register", authHandlers.Register)
	accounts.POST("/login", authHandlers.Login)

	// Protected routes
	protected := e.Group("")
	protected.Use(middleware.SessionMiddleware(jwtSecret))

	protected.POST("/accounts/logout", authHandlers.Logout)
	protected.GET("/dashboard", authHandlers.Dashboard)
	protected.GET("/me", authHandlers.Me)

	// Inventory routes. The stock endpoints accept any method and
	// answer non-POST calls with the JSON failure body themselves.
	protected.GET("/inventory", inventoryHandlers.List)
	protected.GET("/inventory/add", inventoryHandlers.Add)
	protected.POST("/inventory/add", inventoryHandlers.Add)
	protected.GET("/inventory/:id", inventoryHandlers.Detail)
	protected.POST("/inventory/:id", inventoryHandlers.Detail)
	protected.Any("/inventory/:id/increase", inventoryHandlers.IncreaseStock)
	protected.Any("/inventory/:id/decrease", inventoryHandlers.DecreaseStock)
	protected.GET("/inventory/:id/delete", inventoryHandlers.Delete)
	protected.POST("/inventory/:id/delete", inventoryHandlers.Delete)
	protected.POST("/inventory/:id/image", inventoryHandlers.UploadImage)

	log.Info().Str("version", version).Int("port", cfg.HTTP.Port).Msg("trackwise server starting")
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", cfg.HTTP.Port)))
}
