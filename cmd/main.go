package main

import (
	"context"
	"fmt"
	"os"
	"time"

	redisclient "github.com/shelfscout/shelfscout-backend/internal/clients/redis"
	"github.com/shelfscout/shelfscout-backend/internal/db"
	"github.com/shelfscout/shelfscout-backend/internal/handlers"
	"github.com/shelfscout/shelfscout-backend/internal/logger"
	"github.com/shelfscout/shelfscout-backend/internal/middleware"
	"github.com/shelfscout/shelfscout-backend/internal/observability"
	"github.com/shelfscout/shelfscout-backend/internal/repos"
	"github.com/shelfscout/shelfscout-backend/internal/server"
	"github.com/shelfscout/shelfscout-backend/internal/services"
	"github.com/shelfscout/shelfscout-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing
	shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "shelfscout",
		Environment: utils.GetEnv("DEPLOY_ENV", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "", log),
	})
	if shutdownOTel != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownOTel(ctx)
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	catalogRecordRepo := repos.NewCatalogRecordRepo(thePG, log)
	listingRecordRepo := repos.NewListingRecordRepo(thePG, log)
	priceHistoryRepo := repos.NewPriceHistoryRepo(thePG, log)

	// Cache (optional)
	var resolutionCache redisclient.ResolutionCache
	if cache, err := redisclient.NewResolutionCache(log); err != nil {
		log.Warn("Resolution cache disabled", "error", err)
	} else {
		resolutionCache = cache
		defer cache.Close()
	}

	// Services
	log.Info("Setting up Services from main...")
	seedResolverService := services.NewSeedResolverService(thePG, log, listingRecordRepo)
	catalogService := services.NewCatalogService(thePG, log, catalogRecordRepo)
	offerService := services.NewOfferService(thePG, log, listingRecordRepo)
	priceStatsService := services.NewPriceStatsService(thePG, log, priceHistoryRepo)
	resolveService := services.NewResolveService(thePG, log, seedResolverService, catalogService, offerService, priceStatsService, resolutionCache)

	// Handlers
	log.Info("Setting up handlers from main...")
	resolveHandler := handlers.NewResolveHandler(resolveService)

	// Middleware
	log.Info("Setting up middleware from main...")
	requestLogMiddleware := middleware.NewRequestLogMiddleware(log)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		ServiceName:          "shelfscout",
		ResolveHandler:       resolveHandler,
		RequestLogMiddleware: requestLogMiddleware,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
