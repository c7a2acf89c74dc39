package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/formforge/formforge-backend/ai/embedding"
	"github.com/formforge/formforge-backend/ai/llm"
	"github.com/formforge/formforge-backend/ai/vectorindex"
	"github.com/formforge/formforge-backend/config"
	"github.com/formforge/formforge-backend/mediahost"
	"github.com/formforge/formforge-backend/monitoring"
	v1 "github.com/formforge/formforge-backend/v1"
	v1handlers "github.com/formforge/formforge-backend/v1/handlers"
	v1middleware "github.com/formforge/formforge-backend/v1/middleware"
)

func main() {
	// Load .env file if it exists (optional - fails silently if not found)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
	slog.SetDefault(logger)

	slog.Info("Starting FormForge API server initialization")

	cfg := config.Load()

	dbConfig := v1.NewDatabaseConfig()
	gormDB, err := v1.ConnectGormDB(dbConfig)
	if err != nil {
		slog.Error("Failed to connect to GORM database", "error", err)
		os.Exit(1)
	}

	embedder := embedding.NewFromConfig(cfg.Embedding)
	completer := llm.NewOpenRouterClient(cfg.LLM)
	index := vectorindex.NewFromConfig(cfg.Memory, cfg.Pinecone)
	uploader := mediahost.NewCloudinaryUploader(cfg.Cloudinary)
	metrics := monitoring.New()

	v1Handler := v1handlers.NewV1Handler(gormDB, cfg, embedder, completer, index, uploader, metrics)

	mux := http.NewServeMux()
	v1Handler.SetupV1Routes(mux)

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if sqlDB, err := gormDB.DB(); err != nil || sqlDB.PingContext(r.Context()) != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"unhealthy","service":"formforge-backend","timestamp":"%s"}`, time.Now().Format(time.RFC3339))
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","service":"formforge-backend","timestamp":"%s"}`, time.Now().Format(time.RFC3339))
	})

	// Metrics endpoint
	mux.Handle("/metrics", metrics.Handler())

	// Apply CORS and security header middleware to everything
	handler := v1middleware.CORSMiddleware(cfg.AllowedOrigin)(v1middleware.SecurityHeaders(mux))

	addr := ":" + cfg.Port
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("FormForge API server starting", "port", cfg.Port, "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Failed to start API server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down FormForge API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("FormForge API server exited")
}
