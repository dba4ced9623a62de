// @title           Product Studio Backend API
// @version         1.0.0
// @description     Backend API for custom product projects: brief, prototype sampling, manufacturer sourcing, payments and add-on services. Change events stream over server-sent events.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"time"

	"product-studio-backend/docs"
	"product-studio-backend/internal/config"
	"product-studio-backend/internal/database"
	"product-studio-backend/internal/handlers"
	"product-studio-backend/internal/middleware"
	"product-studio-backend/internal/payments"
	"product-studio-backend/internal/realtime"
	"product-studio-backend/internal/services"
	"product-studio-backend/internal/supabase"
	"product-studio-backend/internal/workflow"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Point Swagger at the public base URL
	if cfg.BaseURL != "" {
		baseURL, err := url.Parse(cfg.BaseURL)
		if err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	ctx := context.Background()

	// Project store: Postgres when configured, memory otherwise
	var (
		repo     services.ProjectRepository
		dbPinger handlers.Pinger
	)
	if cfg.DatabaseURL != "" {
		dbClient, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize database client: %v", err)
		}
		defer dbClient.Close()

		migrator, err := database.NewMigrator(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize migrator: %v", err)
		}
		if err := migrator.Run(ctx); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		migrator.Close()
		log.Println("Migrations completed successfully")

		repo = dbClient
		dbPinger = dbClient
	} else {
		log.Println("Warning: DATABASE_URL not set. Projects are kept in memory and lost on restart.")
		repo = workflow.NewMemoryStore()
	}

	// Blob storage and catalog: Supabase when configured
	var (
		blobs   workflow.BlobStore
		catalog services.CatalogReader
	)
	if cfg.SupabaseURL != "" {
		storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
		if err != nil {
			log.Fatalf("Failed to initialize storage client: %v", err)
		}
		catalogClient, err := supabase.NewClient(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize Supabase client: %v", err)
		}
		blobs = storageClient
		catalog = catalogClient
	} else {
		log.Println("Warning: SUPABASE_URL not set. Feedback images and catalog are in memory.")
		blobs = workflow.NewMemoryBlobs()
		catalog = workflow.NewMemoryCatalog()
	}

	var gateway workflow.PaymentGateway
	if cfg.PaymentGatewayURL != "" {
		gateway = payments.NewClient(cfg.PaymentGatewayURL, cfg.PaymentGatewayKey, cfg.PaymentGatewayRPS)
	} else {
		log.Println("Warning: PAYMENT_GATEWAY_URL not set. Using the stub gateway; no money moves.")
		gateway = payments.NewStubGateway()
	}

	// Change events: Redis fans out across instances, the hub only within one
	var (
		broker      realtime.Broker
		redisPinger handlers.Pinger
	)
	if cfg.RedisURL != "" {
		redisClient, err := realtime.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		redisBroker := realtime.NewRedisBroker(redisClient)
		broker = redisBroker
		redisPinger = redisBroker
	} else {
		broker = realtime.NewHub()
	}

	engine := workflow.NewEngine(repo, gateway, blobs, catalog,
		workflow.WithOptimisticLocking(cfg.OptimisticLocking))
	projectService := services.NewProjectService(repo, engine, catalog, broker)

	projectsHandler := handlers.NewProjectsHandler(projectService)
	statusHandler := handlers.NewStatusHandler(projectService)
	prototypeHandler := handlers.NewPrototypeHandler(projectService)
	paymentsHandler := handlers.NewPaymentsHandler(projectService)
	catalogHandler := handlers.NewCatalogHandler(projectService)
	eventsHandler := handlers.NewEventsHandler(projectService)
	webhookHandler := handlers.NewWebhookHandler(cfg, projectService)
	healthHandler := handlers.NewHealthHandler(dbPinger, redisPinger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", healthHandler.Health)

	// Webhook (no JWT, signed body)
	router.POST("/api/v1/webhooks/payments", webhookHandler.HandlePaymentWebhook)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	api.POST("/projects", projectsHandler.CreateProject)
	api.GET("/projects", projectsHandler.ListProjects)
	api.GET("/projects/:project_id", projectsHandler.GetProject)
	api.DELETE("/projects/:project_id", projectsHandler.DeleteProject)
	api.GET("/projects/:project_id/status", statusHandler.GetStatus)
	api.GET("/projects/:project_id/events", eventsHandler.Stream)

	// Lifecycle commands
	api.POST("/projects/:project_id/transition", projectsHandler.Transition)
	api.PUT("/projects/:project_id/brief", projectsHandler.SubmitBrief)
	api.POST("/projects/:project_id/manufacturer", projectsHandler.SelectManufacturer)
	api.POST("/projects/:project_id/packages/:module", projectsHandler.SelectPackage)

	// Prototype
	api.POST("/projects/:project_id/prototype", prototypeHandler.AdvancePrototype)
	api.POST("/projects/:project_id/feedback", prototypeHandler.SubmitFeedback)
	api.POST("/projects/:project_id/sample/approve", prototypeHandler.Approve)
	api.POST("/projects/:project_id/sample/request-new", prototypeHandler.RequestNewSample)

	// Payments
	api.GET("/projects/:project_id/payments", paymentsHandler.GetPayments)
	api.POST("/projects/:project_id/payments/:type", paymentsHandler.Pay)

	// Catalog
	api.GET("/catalog/manufacturers", catalogHandler.ListManufacturers)
	api.GET("/catalog/packages/:module", catalogHandler.ListPackages)

	// Admin only
	admin := api.Group("")
	admin.Use(middleware.RequireAdmin())
	admin.POST("/projects/:project_id/payments/:type/record", paymentsHandler.RecordPayment)
	admin.PATCH("/projects/:project_id/pricing", projectsHandler.UpdatePricing)
	admin.PATCH("/projects/:project_id/unlocks", projectsHandler.SetUnlocks)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
