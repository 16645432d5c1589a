package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carefinder/backend/internal/adapters/cache"
	"github.com/carefinder/backend/internal/adapters/enrichment"
	"github.com/carefinder/backend/internal/adapters/events"
	"github.com/carefinder/backend/internal/api/handlers"
	"github.com/carefinder/backend/internal/api/middleware"
	"github.com/carefinder/backend/internal/api/routes"
	"github.com/carefinder/backend/internal/application/services"
	"github.com/carefinder/backend/internal/domain/providers"
	"github.com/carefinder/backend/internal/infrastructure/clients/npi"
	"github.com/carefinder/backend/internal/infrastructure/clients/openai"
	"github.com/carefinder/backend/internal/infrastructure/clients/redis"
	"github.com/carefinder/backend/internal/infrastructure/observability"
	"github.com/carefinder/backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize Redis client
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		// Continue without Redis - the in-memory cache takes over
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	// Initialize cache provider: Redis when available, otherwise a
	// bounded in-memory cache
	var cacheProvider providers.CacheProvider
	var memoryCache *cache.MemoryAdapter
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	} else {
		memoryCache = cache.NewMemoryAdapter(cfg.Cache.MaxEntries, cache.DefaultSweepInterval)
		cacheProvider = memoryCache
		log.Println("Using in-memory cache (Redis unavailable)")
	}

	// Initialize event bus for search analytics
	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Println("Event bus initialized successfully")
	} else {
		log.Println("Event bus disabled (Redis not available)")
	}

	// Initialize symptom classification client
	openaiClient, err := openai.NewClient(&cfg.OpenAI)
	if err != nil {
		log.Fatalf("Failed to initialize classification client: %v", err)
	}

	// Initialize NPI registry client
	npiClient := npi.NewClient(cfg.Registry.BaseURL)

	enricher := enrichment.NewStaticEnricher(time.Now().UnixNano())

	// Initialize services
	lookupService := services.NewProviderLookupService(npiClient, enricher, metrics)
	searchService := services.NewSearchService(
		openaiClient,
		lookupService,
		cacheProvider,
		eventBus,
		metrics,
		cfg.Cache.ResultTTLSeconds,
	)
	feedbackService := services.NewFeedbackService()

	// Initialize handlers
	searchHandler := handlers.NewSearchHandler(searchService)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService, cacheProvider)

	// Initialize cache middleware
	cacheMiddleware := middleware.NewCacheMiddleware(cacheProvider)

	// Set up router
	router := routes.NewRouter(
		searchHandler,
		feedbackHandler,
		cacheMiddleware,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	// Close event bus
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Printf("Error closing event bus: %v", err)
		}
	}

	// Stop background cache sweeping
	if memoryCache != nil {
		memoryCache.Stop()
	}

	log.Println("Server stopped")
}
