package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aaronmarkham/studioproducer/internal/agents"
	"github.com/aaronmarkham/studioproducer/internal/api"
	"github.com/aaronmarkham/studioproducer/internal/config"
	"github.com/aaronmarkham/studioproducer/internal/edl"
	"github.com/aaronmarkham/studioproducer/internal/llm"
	"github.com/aaronmarkham/studioproducer/internal/models"
	"github.com/aaronmarkham/studioproducer/internal/queue"
	"github.com/aaronmarkham/studioproducer/internal/runstore"
	"github.com/aaronmarkham/studioproducer/internal/storage"
	"github.com/aaronmarkham/studioproducer/internal/worker"
)

func main() {
	log.Println("Starting Studio Producer API...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to the run store
	store, err := runstore.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()
	log.Println("Connected to database")

	// Connect to Redis queue
	q, err := queue.New(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to queue: %v", err)
	}
	defer q.Close()
	log.Println("Connected to Redis queue")

	// Initialize storage
	stor := storage.New(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseStorageBucket)
	log.Println("Initialized Supabase storage")

	// Create API handler
	handler := api.NewHandler(store, q, stor)
	router := api.NewRouter(handler, api.RouterConfig{
		BackendAPIKey:      cfg.BackendAPIKey,
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
	})

	if cfg.BackendAPIKey != "" {
		log.Println("API key authentication enabled")
	} else {
		log.Println("WARNING: No BACKEND_API_KEY set — API is unprotected (dev mode)")
	}

	// Start HTTP server
	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
	}

	// Start worker if enabled
	var workerCtx context.Context
	var workerCancel context.CancelFunc
	if cfg.WorkerEnabled {
		log.Println("Worker enabled, starting background processing...")

		// Text-driving agents run on OpenAI; image/vision-driving
		// agents run on Gemini — mirrors how the two vendor drivers
		// split responsibilities across the pipeline.
		textDriver := llm.NewOpenAIDriver(cfg.OpenAIKey, cfg.OpenAITextModel)
		geminiDriver := llm.NewGeminiDriver(cfg.GeminiKey, cfg.GeminiTextModel, cfg.GeminiImageModel)

		producer := agents.NewProducer(textDriver)
		critic := agents.NewCritic(textDriver)
		scriptWriter := agents.NewScriptWriter(textDriver)
		videoGen := agents.NewVideoGenerator(geminiDriver, models.ProviderGemini)
		audioGen := agents.NewAudioGenerator()
		qa := agents.NewQAVerifier(geminiDriver)
		editor := edl.NewEditor(textDriver)

		w := worker.New(store, q, stor, producer, critic, scriptWriter, videoGen, audioGen, qa, editor, cfg.MaxConcurrentPilots)

		// Start worker in background
		workerCtx, workerCancel = context.WithCancel(context.Background())
		go w.Start(workerCtx, cfg.MaxConcurrentJobs)
	}

	// Start server in goroutine
	go func() {
		log.Printf("API server listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Shutdown worker
	if workerCancel != nil {
		workerCancel()
	}

	// Shutdown HTTP server
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
