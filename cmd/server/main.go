package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/phonewise/phonewise-be/internal/api"
	"github.com/phonewise/phonewise-be/internal/api/middleware"
	"github.com/phonewise/phonewise-be/internal/cache"
	"github.com/phonewise/phonewise-be/internal/chat"
	"github.com/phonewise/phonewise-be/internal/classifier"
	"github.com/phonewise/phonewise-be/internal/db"
	"github.com/phonewise/phonewise-be/internal/memory"
	"github.com/phonewise/phonewise-be/internal/query"
	"github.com/phonewise/phonewise-be/internal/safety"
	"github.com/phonewise/phonewise-be/internal/ws"
	"github.com/phonewise/phonewise-be/pkg/huggingface"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	// Get configuration from environment
	port := getEnv("PORT", "8080")
	databaseURL := getEnv("DATABASE_URL", "")
	hfToken := getEnv("HF_TOKEN", "")
	hfModel := getEnv("HF_MODEL", "")
	jwtSecret := getEnv("JWT_SECRET", "")
	redisAddr := getEnv("REDIS_ADDR", "")
	redisPassword := getEnv("REDIS_PASSWORD", "")

	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if hfToken == "" {
		log.Fatal("HF_TOKEN is required")
	}
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// Initialize database
	database, err := db.NewFromURL(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	log.Println("✅ Database connected")

	// Initialize the response cache (optional, falls back to no-op)
	var respCache cache.Cache = cache.NewNoop()
	if redisAddr != "" {
		redisCache, err := cache.NewRedis(context.Background(), redisAddr, redisPassword)
		if err != nil {
			log.Printf("Warning: Redis unavailable, caching disabled: %v", err)
		} else {
			respCache = redisCache
			log.Println("✅ Redis cache connected")
		}
	}
	defer respCache.Close()

	// Initialize pipeline components
	filter := safety.NewFilter()
	cls := classifier.NewClassifier()
	proc := query.NewProcessor()
	memMgr := memory.NewManager(10) // Keep last 10 messages per session
	hfClient := huggingface.NewHTTPClient(huggingface.Config{
		Token: hfToken,
		Model: hfModel,
	})

	engine := chat.NewEngine(filter, cls, proc, database, hfClient, respCache, memMgr)

	// Initialize handlers
	chatHandler := api.NewChatHandler(engine)
	productsHandler := api.NewProductsHandler(database)
	adminHandler := api.NewAdminHandler(database, jwtSecret)
	wsHandler := ws.NewChatHandler(engine, 30)

	// Setup Gin router
	router := gin.Default()

	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())

	// Global rate limiting (100 req/min per IP, burst of 200)
	router.Use(middleware.PerIP(100.0/60.0, 200))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		status := "healthy"
		dbConnected := true
		if err := database.PingContext(c.Request.Context()); err != nil {
			status = "degraded"
			dbConnected = false
		}
		c.JSON(http.StatusOK, gin.H{
			"status":             status,
			"database_connected": dbConnected,
			"model_circuit":      engine.BreakerState().String(),
			"time":               time.Now().Unix(),
		})
	})

	apiGroup := router.Group("/api")
	chatHandler.RegisterRoutes(apiGroup)
	productsHandler.RegisterRoutes(apiGroup)
	adminHandler.RegisterRoutes(apiGroup)

	// WebSocket chat route (public, session based)
	router.GET("/ws/chat", wsHandler.HandleChat)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%s", port)
		log.Printf("📝 API endpoints:")
		log.Printf("   POST   /api/chat/session")
		log.Printf("   POST   /api/chat/message")
		log.Printf("   GET    /api/chat/history/:session_id")
		log.Printf("   DELETE /api/chat/history/:session_id")
		log.Printf("   GET    /api/products")
		log.Printf("   GET    /api/products/:id")
		log.Printf("   POST   /api/products/search")
		log.Printf("   POST   /api/products/compare")
		log.Printf("   POST   /api/admin/login")
		log.Printf("   POST   /api/admin/phones")
		log.Printf("   GET    /api/admin/analytics")
		log.Printf("   WS     /ws/chat")
		log.Printf("")
		log.Printf("Press Ctrl+C to stop")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
