package main

import (
	"fmt"
	"log"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"cdr-backend-V1.0/internal/cache"
	"cdr-backend-V1.0/internal/config"
	"cdr-backend-V1.0/internal/controller"
	"cdr-backend-V1.0/internal/db"
	"cdr-backend-V1.0/internal/model"
	"cdr-backend-V1.0/internal/repository"
	"cdr-backend-V1.0/internal/service"
	logger "cdr-backend-V1.0/pkg/logging"
	"cdr-backend-V1.0/pkg/middleware"
)

func main() {
	printStartUpBanner()

	// Secrets (DB password, JWT keys) come from the environment.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on the environment")
	}

	// Load XML configuration from file.
	cfg, err := config.LoadConfig("config.xml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.Init("logs", cfg.RequestDump)

	// Initialize DB using the loaded config.
	db.InitDBFromConfig(cfg)
	// Run migrations.
	if err := db.GetDB().AutoMigrate(
		&model.User{},
		&model.Domain{},
		&model.Question{},
		&model.Test{},
		&model.Answer{},
		&model.Report{},
	); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Create repositories.
	userRepo := repository.NewUserRepository()
	catalogRepo := repository.NewCatalogRepository()
	testRepo := repository.NewTestRepository()
	adminRepo := repository.NewAdminRepository()

	// Optional Redis cache for the question catalog.
	var catalogCache *cache.CatalogCache
	if cfg.Cache.Enabled {
		client := redis.NewClient(&redis.Options{Addr: cfg.Cache.Addr})
		catalogCache = cache.NewCatalogCache(client, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
		logger.Info("catalog cache enabled at %s", cfg.Cache.Addr)
	}

	// Create services.
	authService := service.NewAuthService(userRepo)
	catalogService := service.NewCatalogService(catalogRepo, catalogCache)
	testService := service.NewTestService(testRepo, catalogService)
	adminService := service.NewAdminService(adminRepo, userRepo, testRepo, cfg.Pagination.PageSize)
	reportService := service.NewReportService(testRepo, userRepo, catalogService, cfg.Reports.Dir)

	// Generate PDF reports off the request path once tests are submitted.
	service.InitReportEventListeners(reportService)

	// Initialize Gin router.
	r := gin.Default()

	// CORS configuration.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RateLimitMiddleware(cfg.Authentication.RateLimitRPS, cfg.Authentication.RateLimitBurst))
	if cfg.RequestDump {
		r.Use(middleware.RequestDumpMiddleware())
	}

	controller.RegisterRoutes(r, authService, catalogService, testService, adminService, reportService)

	// Start server on the host and port specified in the XML config.
	addr := fmt.Sprintf("%s:%d", cfg.Context.Host, cfg.Context.Port)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func printStartUpBanner() {
	myFigure := figure.NewFigure("CDR API", "", true)
	myFigure.Print()

	fmt.Println("======================================================")
	fmt.Printf("CDR ASSESSMENT API (v%s)\n\n", "1.0.0")
}
