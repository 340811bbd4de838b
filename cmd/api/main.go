package main

import (
	"context"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "taxengine/api/swagger" // swagger docs
	"taxengine/internal/cache"
	"taxengine/internal/database"
	"taxengine/internal/handler"
	"taxengine/internal/middleware"
	"taxengine/internal/repository"
	"taxengine/internal/service"
	"taxengine/internal/websocket"
	"taxengine/pkg/config"
	"taxengine/pkg/logger"
)

// @title           Tax Engine API
// @version         1.0
// @description     Rule-based tax calculation service: taxpayers, time-bounded tax rules and tax transactions.
// @host            localhost:8080
// @BasePath        /
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	db, err := database.NewConnection(cfg.DB.DSN())
	if err != nil {
		zl.Fatal().Err(err).Msg("database connection failed")
	}
	zl.Info().Msg("connected to PostgreSQL")

	if err := database.SeedDefaultRules(context.Background(), db); err != nil {
		zl.Fatal().Err(err).Msg("failed to seed default tax rules")
	}

	// Rule cache: explicit object with a fixed TTL, owned here and shared
	// by the engine and the rule service (which flushes it on mutations).
	ruleCache := cache.NewRuleCache(cfg.Cache.RuleTTL())

	// Set up WebSocket Hub for the transaction event feed
	wsHub := websocket.NewHub(zl)
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	ruleRepo := repository.NewTaxRuleRepository(db)
	taxPayerRepo := repository.NewTaxPayerRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	engine := service.NewRuleEngine(ruleRepo, ruleCache, zl)
	ruleService := service.NewTaxRuleService(ruleRepo, engine, ruleCache, zl)
	taxPayerService := service.NewTaxPayerService(taxPayerRepo, zl)
	calcService := service.NewTaxCalculationService(engine, taxPayerRepo, transactionRepo, wsHub, zl)

	// Initialize Handlers
	ruleHandler := handler.NewTaxRuleHandler(ruleService)
	taxPayerHandler := handler.NewTaxPayerHandler(taxPayerService)
	transactionHandler := handler.NewTransactionHandler(calcService)

	// Set up Gin Router
	if cfg.App.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(zl), gin.Recovery())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.HTTP.AllowOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint: live transaction events
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c)
	})

	// Register API Routes
	ruleHandler.RegisterRoutes(router.Group(""))
	taxPayerHandler.RegisterRoutes(router.Group(""))
	transactionHandler.RegisterRoutes(router.Group(""))

	zl.Info().Str("addr", cfg.HTTP.Addr()).Msg("server listening")
	if err := router.Run(cfg.HTTP.Addr()); err != nil {
		zl.Fatal().Err(err).Msg("server failed")
	}
}
