// File: merchify/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"merchify/config"
	"merchify/cron"
	"merchify/database"
	chatlogRepo "merchify/database/repository/chatlog"
	"merchify/handlers"
	"merchify/middleware"
	"merchify/models"
	"merchify/routes"
	"merchify/services/catalog"
	"merchify/services/conversation"
	ai "merchify/services/intelligence"
	"merchify/services/selection"
	"merchify/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitContextCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Catalog cache over the provider API.
	provider := catalog.NewProviderClient(
		config.AppConfig.CatalogBaseURL,
		config.AppConfig.CatalogAPIToken,
		time.Duration(config.AppConfig.CatalogTimeoutSec)*time.Second,
	)
	cache := catalog.NewCache(
		provider,
		config.AppConfig.CacheFile,
		time.Duration(config.AppConfig.CacheFreshnessHrs)*time.Hour,
	)

	// Language-model collaborator.
	gemini, err := ai.NewGeminiClient(context.Background(), config.AppConfig.GeminiAPIKey, config.AppConfig.GeminiModel)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize Gemini client: %v", err)
	}
	defer gemini.Close()
	cache.WithEmbedder(gemini)

	llmTimeout := time.Duration(config.AppConfig.LLMTimeoutSec) * time.Second

	// Selectors and conversation pipeline.
	ctxStore := ai.NewRedisContextStore(utils.GetContextCacheClient(), 30*time.Minute)
	productSelector := selection.NewProductSelector(gemini, cache, llmTimeout)
	colorSelector := selection.NewColorSelector(gemini, cache, llmTimeout)
	logoAdjuster := conversation.NewLogoAdjuster(gemini, llmTimeout)

	chatLog := chatlogRepo.NewMongoChatLogRepo()
	manager := conversation.NewManager(
		ctxStore,
		cache,
		productSelector,
		colorSelector,
		logoAdjuster,
		models.Confidence(config.AppConfig.AcceptConfidence),
	).WithRecorder(chatLog)

	chatHandler := handlers.NewChatHandler(manager)
	chatLogHandler := handlers.NewChatLogHandler(chatLog)
	catalogHandler := handlers.NewCatalogHandler(cache)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		HandleChat:    chatHandler.HandleChat,
		ResetSession:  chatHandler.ResetSession,
		GetSessionLog: chatLogHandler.GetSessionLog,

		GetProduct:       catalogHandler.GetProduct,
		GetProductColors: catalogHandler.GetProductColors,
		SearchProducts:   catalogHandler.SearchProducts,
		GetCategories:    catalogHandler.GetCategories,
		RefreshCatalog:   catalogHandler.RefreshCatalog,
	}

	routes.RegisterRoutes(router, handlerBundle)

	// Background refresh worker and health monitor.
	cron.InitRefreshWorker(cache)
	utils.StartHealthMonitor([]*redis.Client{utils.GetContextCacheClient()}, database.MongoClient, cache.Stats)

	// Warm the snapshot so the first turn doesn't pay for a full fetch.
	go func() {
		warmCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if _, err := cache.Snapshot(warmCtx); err != nil {
			logger.Sugar().Warnf("main: initial catalog load failed: %v", err)
		}
	}()

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
