package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env            string
	BaseURL        string
	RequestTimeout time.Duration
	TokenFile      string
	PageLimit      int
	SeedDelay      time.Duration
	MetricsAddr    string
}

// Load returns application config populated from environment variables with
// sensible defaults. A .env file in the working directory is read first when
// present.
func Load() App {
	_ = godotenv.Load()

	return App{
		Env:            getEnv("APP_ENV", "dev"),
		BaseURL:        getEnv("REGISTRY_URL", "http://localhost:8080/api"),
		RequestTimeout: durationEnv("REQUEST_TIMEOUT", 30*time.Second),
		TokenFile:      getEnv("TOKEN_FILE", defaultTokenFile()),
		PageLimit:      intEnv("PAGE_LIMIT", 10),
		SeedDelay:      durationEnv("SEED_DELAY", 50*time.Millisecond),
		MetricsAddr:    getEnv("METRICS_ADDR", ""),
	}
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".registryctl-token"
	}
	return filepath.Join(home, ".registryctl", "token")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Printf("invalid int for %s, using fallback %d", key, fallback)
			return fallback
		}
		return parsed
	}
	return fallback
}
