// Package config loads process configuration from the environment
// (and an optional .env file), with required-field validation for
// anything the process cannot run without.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	APIPort            string
	WorkerEnabled      bool
	BackendAPIKey      string // API key for authenticating requests (empty = no auth, dev mode)
	CorsAllowedOrigins string // Comma-separated allowed origins (empty = *, dev mode)

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Supabase-style object storage, for EDL/script/result artifacts
	SupabaseURL           string
	SupabaseServiceKey    string
	SupabaseStorageBucket string

	// OpenAI (Producer/ScriptWriter/Critic/Editor text completion)
	OpenAIKey      string
	OpenAITextModel string

	// Gemini (VideoGenerator/QAVerifier image and vision completion)
	GeminiKey       string
	GeminiImageModel string
	GeminiTextModel  string

	// Worker
	MaxConcurrentJobs   int // how many production runs this process drives at once
	MaxConcurrentPilots int // per-run Orchestrator fan-out bound (stages 2/3)
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	cfg := &Config{
		APIPort:               getEnv("API_PORT", "8080"),
		WorkerEnabled:         getEnvBool("WORKER_ENABLED", true),
		BackendAPIKey:         getEnv("BACKEND_API_KEY", ""),
		CorsAllowedOrigins:    getEnv("CORS_ALLOWED_ORIGINS", ""),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		RedisURL:              getEnv("REDIS_URL", "redis://localhost:6379"),
		SupabaseURL:           getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey:    getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseStorageBucket: getEnv("SUPABASE_STORAGE_BUCKET", "studio-producer-runs"),
		OpenAIKey:             getEnv("OPENAI_API_KEY", ""),
		OpenAITextModel:       getEnv("OPENAI_TEXT_MODEL", "gpt-4o"),
		GeminiKey:             getEnv("GEMINI_API_KEY", ""),
		GeminiImageModel:      getEnv("GEMINI_IMAGE_MODEL", "gemini-2.0-flash-exp"),
		GeminiTextModel:       getEnv("GEMINI_TEXT_MODEL", "gemini-2.0-flash"),
		MaxConcurrentJobs:     getEnvInt("MAX_CONCURRENT_JOBS", 5),
		MaxConcurrentPilots:   getEnvInt("MAX_CONCURRENT_PILOTS", 3),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	if cfg.GeminiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	if cfg.SupabaseURL == "" || cfg.SupabaseServiceKey == "" {
		return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY are required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}
