package main

import (
	"fmt"
	"log"
	"os"

	"github.com/boycottwatch/backend/config"
	httpDelivery "github.com/boycottwatch/backend/internal/delivery/http"
	"github.com/boycottwatch/backend/internal/infrastructure/cache"
	"github.com/boycottwatch/backend/internal/infrastructure/catalog"
	"github.com/boycottwatch/backend/internal/infrastructure/gemini"
	"github.com/boycottwatch/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting BoycottWatch Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Load the brand catalog. A missing or broken catalog is survivable: the
	// server starts empty and every search resolves to "not recognized".
	records, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		log.Printf("WARNING: failed to load brand catalog from %s: %v (starting with empty catalog)", cfg.Catalog.Path, err)
		records = nil
	}
	brandCatalog := catalog.New(records)
	log.Printf("Catalog loaded: %d brands from %s", len(brandCatalog.Records()), cfg.Catalog.Path)

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache()
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	geminiClient := gemini.NewClient(gemini.Config{
		APIKey:      cfg.Gemini.APIKey,
		BaseURL:     cfg.Gemini.BaseURL,
		Model:       cfg.Gemini.Model,
		MaxAttempts: cfg.Gemini.MaxAttempts,
		BaseDelay:   cfg.Gemini.BaseDelay,
	})

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		geminiClient.SetDebug(true)
		log.Printf("Gemini client debug mode enabled")
	}

	if cfg.Gemini.APIKey != "" {
		log.Printf("Gemini API configured: %s model=%s", cfg.Gemini.BaseURL, cfg.Gemini.Model)
	} else {
		log.Printf("Gemini API key not configured, serving canned enrichment responses")
	}

	// Initialize usecase layer
	searchService := usecase.NewSearchService(
		brandCatalog,
		memoryCache,
		geminiClient,
		usecase.SearchServiceConfig{
			CacheTTL: cfg.Cache.TTL,
			Matching: usecase.MatchConfig{
				ExactScore:         cfg.Matching.ExactScore,
				ContainsScore:      cfg.Matching.ContainsScore,
				FuzzyWeight:        cfg.Matching.FuzzyWeight,
				CategoryScore:      cfg.Matching.CategoryScore,
				FuzzyThreshold:     cfg.Matching.FuzzyThreshold,
				EnableDebugLogging: cfg.Matching.DebugLogging,
			},
		},
	)

	log.Printf("Matching: exact=%d contains=%d fuzzy>=%.2f category=%d debug=%v",
		cfg.Matching.ExactScore,
		cfg.Matching.ContainsScore,
		cfg.Matching.FuzzyThreshold,
		cfg.Matching.CategoryScore,
		cfg.Matching.DebugLogging)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(searchService, brandCatalog, geminiClient)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
