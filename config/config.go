// Package config loads runtime settings from .env and the process environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yeremiapane/food-delivery-web/utils"
)

type Config struct {
	Port    string
	GinMode string

	DBDriver string
	DBDSN    string

	APIBaseURL string
	APITimeout time.Duration

	SessionSecret        string
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration

	DriverPollInterval time.Duration
	LocationThreshold  float64

	MapsAPIKey string
	CORSOrigin string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	RateLimitRPS   int
	RateLimitBurst int
}

// Load reads .env (if present) and returns the configuration with defaults applied.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("Warning: .env file not found, using environment only")
	}

	cfg := Config{
		Port:    getenv("PORT", "8080"),
		GinMode: getenv("GIN_MODE", "debug"),

		DBDriver: strings.ToLower(getenv("DB_DRIVER", "sqlite")),
		DBDSN:    getenv("DB_DSN", "food_delivery_web.db"),

		APIBaseURL: strings.TrimRight(getenv("API_BASE_URL", "http://localhost:5000/api"), "/"),
		APITimeout: parseDur("API_TIMEOUT", 15*time.Second),

		SessionSecret:        getenv("SESSION_SECRET", ""),
		SessionTTL:           parseDur("SESSION_TTL", 24*time.Hour),
		SessionSweepInterval: parseDur("SESSION_SWEEP_INTERVAL", 10*time.Minute),

		DriverPollInterval: parseDur("DRIVER_POLL_INTERVAL", 30*time.Second),
		LocationThreshold:  parseFloat("LOCATION_THRESHOLD", 0.0001),

		MapsAPIKey: os.Getenv("MAPS_API_KEY"),
		CORSOrigin: getenv("CORS_ORIGIN", "http://localhost:3000"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       atoi(getenv("REDIS_DB", "0")),
		CacheTTL:      parseDur("CACHE_TTL", 60*time.Second),

		RateLimitRPS:   atoi(getenv("RATE_LIMIT_RPS", "20")),
		RateLimitBurst: atoi(getenv("RATE_LIMIT_BURST", "40")),
	}

	if cfg.SessionSecret == "" {
		utils.InfoLogger.Println("Warning: SESSION_SECRET not set, using development secret")
		cfg.SessionSecret = "food-delivery-web-dev-secret"
	}
	if cfg.MapsAPIKey == "" {
		utils.InfoLogger.Println("Warning: MAPS_API_KEY not set, driver map will not load")
	}
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		utils.ErrorLogger.Errorf("invalid duration for %s: %q, using %s", key, v, def)
		return def
	}
	return d
}

func parseFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		utils.ErrorLogger.Errorf("invalid number for %s: %q, using %g", key, v, def)
		return def
	}
	return f
}
