package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	"ring-predictions/internal/auth"
	"ring-predictions/internal/config"
	"ring-predictions/internal/database"
	"ring-predictions/internal/handlers"
	"ring-predictions/internal/jobs"
	"ring-predictions/internal/repository"
	"ring-predictions/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repository
	repo := repository.NewRepository(database.GetDB())

	clock := clockwork.NewRealClock()

	// Initialize services
	predictionService := services.NewPredictionService(
		repo,
		clock,
		cfg.Engine.BasePointsPerConfidenceUnit,
		cfg.Engine.CorrectnessThreshold,
	)
	leaderboardService := services.NewLeaderboardService(repo)
	badgeService := services.NewBadgeService(repo, clock)
	statsService := services.NewStatsService(repo, leaderboardService, badgeService)

	// Initialize handlers
	predictionHandler := handlers.NewPredictionHandler(predictionService)
	statsHandler := handlers.NewStatsHandler(statsService, leaderboardService, badgeService)

	// Start deadline sweep job
	sweeper := jobs.NewDeadlineSweeper(predictionService, cfg.Engine.SweepInterval, clock)
	go sweeper.Start()

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Public leaderboard route
	router.GET("/api/leaderboard", statsHandler.GetLeaderboard)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		// Prediction endpoints
		api.POST("/predictions", predictionHandler.CreatePrediction)
		api.GET("/predictions", predictionHandler.GetUserPredictions)
		api.GET("/predictions/:id", predictionHandler.GetPrediction)
		api.POST("/predictions/:id/submit", predictionHandler.SubmitPrediction)
		api.POST("/predictions/:id/cancel", predictionHandler.CancelPrediction)
		api.POST("/predictions/:id/resolve", predictionHandler.ResolvePrediction)

		// Stats endpoints
		api.GET("/users/:id/stats", statsHandler.GetUserStats)
		api.GET("/users/:id/badges", statsHandler.GetUserBadges)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	sweeper.Stop()

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
