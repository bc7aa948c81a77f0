package config

import (
	"os"
	"strconv"

	"FaceRec/internal/middleware"
)

const (
	DefaultPort      = "8000"
	DefaultBodyLimit = 2 * 1024 * 1024

	developmentStaticDir = "./web/app"
	productionStaticDir  = "./web/dist"
)

// Port reads APP_PORT, then PORT.
func Port() string {
	if port := os.Getenv("APP_PORT"); port != "" {
		return port
	}
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return DefaultPort
}

// StaticDir picks the asset folder: STATIC_DIR when set, otherwise the
// development or built folder depending on APP_ENV.
func StaticDir() string {
	if dir := os.Getenv("STATIC_DIR"); dir != "" {
		return dir
	}
	if os.Getenv("APP_ENV") == "development" {
		return developmentStaticDir
	}
	return productionStaticDir
}

func BodyLimit() int {
	return intFromEnv("APP_BODY_LIMIT", DefaultBodyLimit)
}

func RateLimit() middleware.Config {
	cfg := middleware.DefaultConfig()

	if v, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64); err == nil && v > 0 {
		cfg.RequestsPerSecond = v
	}
	cfg.Burst = intFromEnv("RATE_LIMIT_BURST", cfg.Burst)

	return cfg
}

func intFromEnv(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
