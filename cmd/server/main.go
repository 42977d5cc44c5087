package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"pricedex/internal/config"
	"pricedex/internal/handlers"
	"pricedex/internal/jobs"
	"pricedex/internal/metadata"
	"pricedex/internal/providers"
	"pricedex/internal/store"
	"pricedex/internal/syncer"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("🚀 Starting Pricedex Server...")

	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	}

	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s, DataDir: %s)", cfg.Port, cfg.DataDir)

	pricing, err := store.NewPricingStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("❌ Failed to open pricing store: %v", err)
	}
	overrides, err := store.NewOverrideStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("❌ Failed to open override store: %v", err)
	}
	snapshots := store.NewSnapshotStore(cfg.DataDir)

	browser := providers.NewBrowser(cfg.ChromePath, cfg.ScraperWait)

	// The adapter list is the single registry of providers; adding a source
	// means adding one constructor call here.
	adapters := []providers.Adapter{
		providers.NewOpenRouterAdapter(cfg.OpenRouterURL, cfg.HTTPTimeout),
		providers.NewAzureAdapter(cfg.AzurePricesURL, cfg.AzureCatalogURL, cfg.HTTPTimeout),
		providers.NewOpenAIAdapter(cfg.OpenAIPricingURL, browser, snapshots),
		providers.NewGeminiAdapter(cfg.GeminiPricingURL, browser, snapshots),
		providers.NewXAIAdapter(),
	}

	var enricher *metadata.Enricher
	if cfg.MetadataEnabled {
		enricher = metadata.NewEnricher(cfg.LiteLLMURL, cfg.MetadataTimeout, cfg.MetadataTTL)
		log.Println("📖 Metadata enrichment enabled")
	}

	orchestrator := syncer.New(adapters, pricing, overrides, enricher, syncer.Options{
		FetchRetries:       cfg.FetchRetries,
		FetchTimeout:       cfg.HTTPTimeout,
		ScraperTimeout:     cfg.ScraperTimeout,
		ScraperConcurrency: cfg.ScraperConcurrency,
	})

	refresh, err := jobs.NewRefreshJob(orchestrator, cfg.RefreshInterval)
	if err != nil {
		log.Fatalf("❌ Failed to create refresh job: %v", err)
	}
	refresh.Start()

	// Boot serves persisted data only; syncs happen on demand or on the
	// refresh schedule.
	if pricing.LastRefresh().IsZero() {
		log.Println("⚠️  Pricing index is empty; POST /api/sync to populate it")
	}

	app := fiber.New(fiber.Config{
		AppName:      "Pricedex v1.0",
		ReadTimeout:  120 * time.Second,
		WriteTimeout: 300 * time.Second, // manual full syncs respond after every provider settles
		IdleTimeout:  120 * time.Second,
		UnescapePath: true, // model IDs embed '/' and arrive URL-encoded
	})

	app.Use(recover.New())
	app.Use(logger.New())

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	handlers.New(pricing, overrides, orchestrator).Register(app)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")
		refresh.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
