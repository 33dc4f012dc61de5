package main

import (
	"fmt"
	"log"
	"os"

	"github.com/cartscout/backend/config"
	httpDelivery "github.com/cartscout/backend/internal/delivery/http"
	"github.com/cartscout/backend/internal/infrastructure/cache"
	"github.com/cartscout/backend/internal/infrastructure/llm"
	"github.com/cartscout/backend/internal/infrastructure/search"
	"github.com/cartscout/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting CartScout Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache()

	searchClient := search.NewClient(cfg.Search.APIKey, cfg.Search.RequestTimeout)
	llmClient := llm.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		searchClient.SetDebug(true)
		llmClient.SetDebug(true)
		log.Printf("Debug mode enabled for outbound clients")
	}

	if cfg.Search.APIKey != "" {
		log.Printf("Product search configured (key: %s...)", maskKey(cfg.Search.APIKey))
	} else {
		log.Printf("WARNING: product search key NOT CONFIGURED - searches will return 503")
	}
	log.Printf("LLM endpoint: %s", cfg.LLM.BaseURL)
	log.Printf("Models: research=%s analysis=%s recommendation=%s purchase=%s",
		cfg.LLM.ResearchModel,
		cfg.LLM.AnalysisModel,
		cfg.LLM.RecommendationModel,
		cfg.LLM.PurchaseModel)

	// Initialize usecase layer
	shoppingService := usecase.NewShoppingService(
		memoryCache,
		searchClient,
		llmClient,
		usecase.ShoppingServiceConfig{
			CacheTTL: cfg.Cache.TTL,
			Models: usecase.PipelineModels{
				Research:       cfg.LLM.ResearchModel,
				Analysis:       cfg.LLM.AnalysisModel,
				Recommendation: cfg.LLM.RecommendationModel,
				Purchase:       cfg.LLM.PurchaseModel,
			},
		},
	)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(shoppingService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// maskKey returns a short prefix of a credential for startup logging.
func maskKey(key string) string {
	if len(key) < 8 {
		return key[:1]
	}
	return key[:8]
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
