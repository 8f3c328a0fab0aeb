package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"violation-log-service/auth"
	"violation-log-service/config"
	"violation-log-service/handlers"
	"violation-log-service/inference"
	"violation-log-service/metrics"
	"violation-log-service/middleware"
	"violation-log-service/store"

	apexlog "github.com/apex/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if level, err := apexlog.ParseLevel(cfg.LogLevel); err == nil {
		apexlog.SetLevel(level)
	}

	// Validate required configuration
	if cfg.StoreURL == "" {
		log.Fatal("STORE_URL environment variable is required")
	}

	var analyzer inference.Client
	switch cfg.InferenceProvider {
	case "stub":
		analyzer = inference.NewStubClient()
	default:
		if cfg.GeminiAPIKey == "" {
			log.Fatal("GEMINI_API_KEY environment variable is required (or set INFERENCE_PROVIDER=stub)")
		}
		analyzer = inference.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.InferenceTimeout)
	}
	log.Printf("Inference provider=%s model=%s", analyzer.SourceName(), cfg.GeminiModel)

	metrics.Register()

	authService, err := auth.NewService(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize auth service: %v", err)
	}

	storeClient := store.NewClient(cfg.StoreURL, cfg.StoreTimeout, cfg.CacheTTL)
	h := handlers.NewHandlers(authService, storeClient, analyzer)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowOrigins:     []string{"*"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.SecurityHeaders())

	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.POST("/login", h.Login)
		api.POST("/login/guest", h.GuestLogin)

		authed := api.Group("", middleware.AuthMiddleware(authService))
		{
			authed.POST("/logout", h.Logout)

			authed.GET("/feed", h.GetFeed)
			authed.POST("/feed/refresh", h.RefreshFeed)
			authed.POST("/feed/search", h.SetSearch)
			authed.POST("/feed/filters", h.SetFilters)
			authed.POST("/feed/sort", h.SetSort)
			authed.POST("/feed/more", h.LoadMore)
			authed.POST("/feed/reset", h.ResetFeed)
			authed.POST("/feed/view", h.SetView)
			authed.POST("/feed/select/:id", h.SelectViolation)
			authed.GET("/feed/selected", h.GetSelected)
			authed.DELETE("/feed/selected", h.ClearSelected)

			authed.POST("/violations/:id/comments", h.AddComment)
			authed.GET("/stats", h.GetStats)

			safety := authed.Group("", middleware.RequireRole(auth.RoleSafety))
			{
				safety.POST("/violations", h.SubmitViolation)
				safety.POST("/analyze", h.Analyze)
				safety.GET("/export/excel", h.ExportExcel)
				safety.GET("/export/report/:id", h.ExportReport)
			}
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
