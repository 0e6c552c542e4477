package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// CoinDCX API
	APIBaseURL    string
	PublicBaseURL string
	APIKey        string
	APISecret     string

	// Allocation config file for the buy command (optional)
	AllocConfigPath string

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		APIBaseURL:    envStr("COINDCX_API_URL", "https://api.coindcx.com"),
		PublicBaseURL: envStr("COINDCX_PUBLIC_URL", "https://public.coindcx.com"),
		APIKey:        envStr("COINDCX_API_KEY", ""),
		APISecret:     envStr("COINDCX_API_SECRET", ""),

		AllocConfigPath: envStr("ALLOC_CONFIG_PATH", ""),

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
