package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"

	"github.com/fenilmodi00/scholarship-backend/config"
	"github.com/fenilmodi00/scholarship-backend/database"
	"github.com/fenilmodi00/scholarship-backend/handlers"
	"github.com/fenilmodi00/scholarship-backend/jobs"
	"github.com/fenilmodi00/scholarship-backend/models"
	"github.com/fenilmodi00/scholarship-backend/services"
	"github.com/fenilmodi00/scholarship-backend/shared"
)

func main() {
	// Load config
	cfg := config.LoadConfig()

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	// Connect to database
	if err := database.Connect(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.Migrate("database/schema.sql"); err != nil {
		log.Printf("Migration warning: %v", err)
	}

	// Shared infrastructure
	scraperCfg := shared.ScraperConfig{
		HTTPRequestTimeout: cfg.HTTPTimeout,
		PolitenessDelay:    shared.NewDefaultScraperConfig().PolitenessDelay,
		MaxRequestsPerRun:  cfg.MaxRequestsPerRun,
		MaxRetryAttempts:   shared.NewDefaultScraperConfig().MaxRetryAttempts,
	}
	clientFactory := shared.NewHTTPClientFactory(cfg.HTTPTimeout)
	metrics := shared.NewPipelineMetrics()

	// Core pipeline services
	analyzer := services.NewContentAnalyzer()
	normalizer := services.NewNormalizer(analyzer, cfg.RelevanceThreshold)
	store := services.NewScholarshipStore(database.DB)
	runner := services.NewPipelineRunner(normalizer, store, 25)
	enricher := services.NewEnricher(store, analyzer, clientFactory, scraperCfg, cfg.EnrichRetryCap)

	// Source adapters
	sessionProvider := services.NewEnvSessionProvider(cfg.SocialSessionCookie)
	adapters := map[models.Source]services.SourceAdapter{
		models.SourceGeneral: services.NewGeneralWebAdapter(clientFactory, scraperCfg),
		models.SourceForum:   services.NewForumAdapter(scraperCfg),
		models.SourceSocial:  services.NewSocialAdapter(sessionProvider, scraperCfg),
		models.SourceRSS:     services.NewRSSAdapter(scraperCfg),
	}

	logrus.WithFields(logrus.Fields{
		"relevance_threshold":  cfg.RelevanceThreshold,
		"max_requests_per_run": cfg.MaxRequestsPerRun,
		"run_time_budget":      cfg.RunTimeBudget,
		"enrich_retry_cap":     cfg.EnrichRetryCap,
		"block_cooldown":       cfg.BlockCooldown,
	}).Info("Scholarship pipeline services initialized")

	// Orchestrator owns all scheduling
	orchestrator := jobs.NewOrchestrator(runner, enricher, adapters, metrics,
		cfg.RunTimeBudget, cfg.BlockCooldown, cfg.EnrichBatchLimit)
	if err := orchestrator.Start(); err != nil {
		log.Fatalf("Failed to start orchestrator: %v", err)
	}
	defer orchestrator.Stop()

	// Initialize handlers
	scholarshipHandler := handlers.NewScholarshipHandler(store)
	scrapeHandler := handlers.NewScrapeHandler(orchestrator, metrics)

	// Setup Fiber
	app := fiber.New()

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New())

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		status := "ok"
		if err := database.HealthCheck(); err != nil {
			status = "degraded"
		}
		return c.JSON(fiber.Map{
			"status":    status,
			"timestamp": time.Now().Unix(),
		})
	})

	// Routes
	api := app.Group("/api/v1")

	api.Get("/scholarships", scholarshipHandler.GetScholarships)
	api.Get("/scholarships/:id", scholarshipHandler.GetScholarshipByID)

	api.Post("/scrape/:source", scrapeHandler.TriggerSource)
	api.Post("/enrich", scrapeHandler.TriggerEnrichment)
	api.Get("/runs", scrapeHandler.GetRuns)

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
