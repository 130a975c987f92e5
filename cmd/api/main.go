// main.go - The entry point and router setup.

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bosocmputer/guarantee_letter_gemini/configs"
	"github.com/bosocmputer/guarantee_letter_gemini/internal/ai"
	"github.com/bosocmputer/guarantee_letter_gemini/internal/api"
	"github.com/bosocmputer/guarantee_letter_gemini/internal/ratelimit"
	"github.com/bosocmputer/guarantee_letter_gemini/internal/session"
	"github.com/gin-gonic/gin"
)

func main() {
	// Step 0: Load configuration from environment variables
	configs.LoadConfig()

	// Step 0.5: Set production mode
	if ginMode := os.Getenv("GIN_MODE"); ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Step 1: Build the extraction pipeline
	invoker := ai.NewGeminiInvoker(configs.GEMINI_API_KEY)
	limiter := ratelimit.NewRateLimiter(
		configs.RATE_LIMIT_MAX_CONCURRENT,
		time.Duration(configs.RATE_LIMIT_REFILL_MS)*time.Millisecond,
	)

	orchestrator, err := ai.NewOrchestrator(invoker, ai.OrchestratorConfig{
		Candidates:     configs.MODELS_FALLBACK,
		AttemptTimeout: time.Duration(configs.ATTEMPT_TIMEOUT) * time.Second,
		Limiter:        limiter,
	})
	if err != nil {
		log.Fatalf("Failed to build extraction orchestrator: %v", err)
	}

	sessions := session.NewStore(time.Duration(configs.SESSION_TTL) * time.Minute)
	api.Init(orchestrator, sessions)

	// Step 2: Initialize the Gin router
	router := gin.Default()

	// Add CORS middleware - configure allowed origins for production
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", configs.ALLOWED_ORIGINS)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, PUT, GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Root endpoint for SSL verification
	router.GET("/", func(c *gin.Context) {
		c.String(200, "ok")
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "guarantee-letter-generator",
			"version": "1.0.0",
		})
	})

	// Step 3: Define the API routes
	router.POST("/api/v1/guarantees/extract", api.ExtractHandler)
	router.PUT("/api/v1/guarantees/fields", api.UpdateFieldsHandler)
	router.POST("/api/v1/guarantees/letter", api.LetterHandler)

	// Step 4: Setup HTTP server with timeouts
	srv := &http.Server{
		Addr:           ":" + configs.PORT,
		Handler:        router,
		ReadTimeout:    30 * time.Second, // Uploads can be multi-megabyte PDFs
		WriteTimeout:   6 * time.Minute,  // Worst case: full model fallback takes minutes
		MaxHeaderBytes: 1 << 20,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on :%s", configs.PORT)
		log.Println("API Endpoints:")
		log.Println("  POST /api/v1/guarantees/extract")
		log.Println("  PUT  /api/v1/guarantees/fields")
		log.Println("  POST /api/v1/guarantees/letter")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
