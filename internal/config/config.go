// Package config provides configuration for the concierge service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the service configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Database
	DatabaseURL string

	// Tool-selection backend (structured function calling)
	RouterLLMURL    string
	RouterLLMAPIKey string
	RouterLLMModel  string

	// Primary generation backend
	PrimaryLLMURL   string
	PrimaryLLMModel string

	// Refiner / fallback backend
	RefinerLLMURL    string
	RefinerLLMAPIKey string
	RefinerLLMModel  string
	UseRefinement    bool

	// Embeddings
	EmbeddingModel string

	// Policy FAQ source
	FAQURL     string
	PolicyTopK int

	// Web search (optional, degrades to a mock response when empty)
	WebSearchURL    string
	WebSearchAPIKey string

	// Generation parameters
	Temperature float64
	MaxTokens   int

	// Timeouts
	LLMTimeout   time.Duration
	FetchTimeout time.Duration

	// Default passenger id used by the UI when none is supplied
	DefaultPassengerID string

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:           getEnvInt("HTTP_PORT", 8080),
		DatabaseURL:        getEnv("DATABASE_URL", "file:concierge.db?cache=shared&mode=rwc"),
		RouterLLMURL:       getEnv("ROUTER_LLM_URL", "https://api.openai.com"),
		RouterLLMAPIKey:    getEnv("ROUTER_LLM_API_KEY", ""),
		RouterLLMModel:     getEnv("ROUTER_LLM_MODEL", "gpt-4o-mini"),
		PrimaryLLMURL:      getEnv("PRIMARY_LLM_URL", "http://localhost:11434"),
		PrimaryLLMModel:    getEnv("PRIMARY_LLM_MODEL", "deepseek-r1:1.5b"),
		RefinerLLMURL:      getEnv("REFINER_LLM_URL", ""),
		RefinerLLMAPIKey:   getEnv("REFINER_LLM_API_KEY", ""),
		RefinerLLMModel:    getEnv("REFINER_LLM_MODEL", "gemini-1.5-flash"),
		UseRefinement:      getEnvBool("USE_REFINEMENT", false),
		EmbeddingModel:     getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		FAQURL:             getEnv("FAQ_URL", "https://storage.googleapis.com/benchmarks-artifacts/travel-db/swiss_faq.md"),
		PolicyTopK:         getEnvInt("POLICY_TOP_K", 2),
		WebSearchURL:       getEnv("WEB_SEARCH_URL", "https://api.tavily.com"),
		WebSearchAPIKey:    getEnv("WEB_SEARCH_API_KEY", ""),
		Temperature:        getEnvFloat("LLM_TEMPERATURE", 0.7),
		MaxTokens:          getEnvInt("LLM_MAX_TOKENS", 500),
		LLMTimeout:         time.Duration(getEnvInt("LLM_TIMEOUT_MS", 60000)) * time.Millisecond,
		FetchTimeout:       time.Duration(getEnvInt("FETCH_TIMEOUT_MS", 10000)) * time.Millisecond,
		DefaultPassengerID: getEnv("DEFAULT_PASSENGER_ID", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
