package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	defaultDBPath      = "./pricelab.db"
	defaultPort        = "8080"
	defaultProvider    = "anthropic"
	defaultMaxTokens   = 2048
	defaultTemperature = 0.0
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Port   string
	DBPath string

	LLMProvider    string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float64

	// OTLPEndpoint enables trace export when set; empty means traces
	// stay in-process.
	OTLPEndpoint string
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort: local dev reads .env, production uses real env injection.
	_ = godotenv.Load()

	cfg := Config{
		Port:           os.Getenv("PORT"),
		DBPath:         os.Getenv("DB_PATH"),
		LLMProvider:    os.Getenv("LLM_PROVIDER"),
		LLMModel:       os.Getenv("LLM_MODEL"),
		LLMMaxTokens:   intEnv("LLM_MAX_TOKENS", defaultMaxTokens),
		LLMTemperature: floatEnv("LLM_TEMPERATURE", defaultTemperature),
		OTLPEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = defaultProvider
	}
	return cfg
}

func intEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("pricelab: invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return v
}

func floatEnv(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("pricelab: invalid %s=%q, using %g", key, raw, fallback)
		return fallback
	}
	return v
}
