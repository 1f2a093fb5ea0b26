// Package config reads service settings from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings.
type Config struct {
	Port              string
	Env               string
	LogLevel          string
	ModelPath         string
	ImageryServiceURL string
	ImageryTimeout    time.Duration
	GeocoderURL       string
	GeocoderUserAgent string
	GeocodeCacheTTL   time.Duration
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	DatabaseURL       string
	CarbonPriceRM     float64
}

// Load reads .env files (if any) and then the process environment.
// It reports whether a .env file was found.
func Load(files ...string) (*Config, bool) {
	found := godotenv.Load(files...) == nil
	return FromEnv(), found
}

// FromEnv builds a Config from the current environment.
func FromEnv() *Config {
	return &Config{
		Port:              getEnv("PORT", "5000"),
		Env:               getEnv("GO_ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", ""),
		ModelPath:         getEnv("MODEL_PATH", "model/acd_model.json"),
		ImageryServiceURL: getEnv("IMAGERY_SERVICE_URL", ""),
		ImageryTimeout:    getDuration("IMAGERY_TIMEOUT", 120*time.Second),
		GeocoderURL:       getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org"),
		GeocoderUserAgent: getEnv("GEOCODER_USER_AGENT", "carbovista-backend/1.0"),
		GeocodeCacheTTL:   getDuration("GEOCODE_CACHE_TTL", 24*time.Hour),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getInt("REDIS_DB", 0),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		CarbonPriceRM:     getFloat("CARBON_PRICE_RM", 50),
	}
}

// IsProduction reports whether GO_ENV is production.
func (c *Config) IsProduction() bool { return c.Env == "production" }

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}
