package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chefgpt/internal/api"
	"chefgpt/internal/platform/gemini"
	"chefgpt/internal/platform/localllm"
)

// Config represents the application configuration, read from the
// environment (with an optional .env file for local development).
type Config struct {
	GeminiAPIKey   string
	GeminiModel    string
	Provider       string
	LocalLLMURL    string
	LocalLLMModel  string
	Port           string
	AllowedOrigins string
}

func loadConfig() (Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := Config{
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    os.Getenv("GEMINI_MODEL"),
		Provider:       strings.ToLower(os.Getenv("MODEL_PROVIDER")),
		LocalLLMURL:    os.Getenv("LOCAL_LLM_URL"),
		LocalLLMModel:  os.Getenv("LOCAL_LLM_MODEL"),
		Port:           os.Getenv("PORT"),
		AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
	}
	if cfg.Provider == "" {
		cfg.Provider = "gemini"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Provider == "gemini" && cfg.GeminiAPIKey == "" {
		return Config{}, errors.New("GEMINI_API_KEY must be set")
	}
	return cfg, nil
}

func newModelClient(ctx context.Context, cfg Config) (api.ModelClient, error) {
	switch cfg.Provider {
	case "gemini":
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case "local":
		return localllm.NewClient(cfg.LocalLLMURL, cfg.LocalLLMModel), nil
	default:
		return nil, fmt.Errorf("unknown MODEL_PROVIDER %q", cfg.Provider)
	}
}

func main() {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}

	model, err := newModelClient(ctx, cfg)
	if err != nil {
		panic(fmt.Errorf("error creating model client: %w", err))
	}

	handler := api.NewHandler(model)

	r := gin.Default()
	r.Use(api.RequestID())
	r.Use(api.Metrics())

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if cfg.AllowedOrigins == "" || cfg.AllowedOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = strings.Split(cfg.AllowedOrigins, ",")
		corsConfig.AllowCredentials = true
	}
	r.Use(cors.New(corsConfig))

	r.GET("/health", handler.Health)
	r.POST("/recipe/from_text", handler.FromText)
	r.POST("/recipe/from_image", handler.FromImage)
	r.POST("/recipe/from_prompt", handler.FromPrompt)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if err := r.Run(":" + cfg.Port); err != nil {
		panic(fmt.Errorf("server exited: %w", err))
	}
}
