package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/kollektiv-forsinkelser/tracker/internal/api"
	"github.com/kollektiv-forsinkelser/tracker/internal/config"
	"github.com/kollektiv-forsinkelser/tracker/internal/db"
	"github.com/kollektiv-forsinkelser/tracker/internal/poller"
)

func main() {
	log.Println("Starting delay tracker service...")

	// Load configuration
	cfg := config.Load()
	log.Printf("Config loaded: feed=%s poll_interval=%v", cfg.FeedURL, cfg.PollInterval)

	// Initialize database
	database, err := db.Connect(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("Failed to ensure database schema: %v", err)
	}
	log.Println("Database initialized")

	// Start the polling loop
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feedPoller := poller.NewPoller(database, cfg)
	go feedPoller.Run(ctx)

	// Read-side API
	delayHandler := api.NewDelayHandler(database)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	// Health check endpoint with database connectivity test
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := database.Conn().PingContext(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":    "error",
				"database":  "disconnected",
				"timestamp": time.Now().UTC(),
				"error":     err.Error(),
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "ok",
			"database":  "connected",
			"timestamp": time.Now().UTC(),
		})
	})

	r.Get("/api/delays", delayHandler.GetDelays)
	r.Get("/api/stats", delayHandler.GetStats)
	r.Get("/api/daily_stats", delayHandler.GetDailyStats)
	r.Get("/api/history/{year}", delayHandler.GetYearTotal)
	r.Get("/api/history/{year}/{transport}", delayHandler.GetYearTotal)

	// Static frontend (if configured)
	if cfg.StaticDir != "" {
		fs := http.FileServer(http.Dir(cfg.StaticDir))
		r.Handle("/*", fs)
	}

	server := &http.Server{Addr: ":" + cfg.Port, Handler: r}

	go func() {
		log.Printf("API server starting on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Goodbye!")
}
