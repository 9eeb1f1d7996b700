// Package config centralises configuration parsing for the exercise tracker.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures runtime configuration values for the service.
type Config struct {
	HTTPAddress   string
	MongoURI      string
	MongoDatabase string
	LogTimezone   *time.Location // Fixed offset applied to from/to log filter dates.
}

// Load reads environment variables into Config, applying sensible defaults for local dev.
// An empty MONGO_URI selects the in-memory store.
func Load() Config {
	// The from/to query parameters are interpreted as the start of the
	// calendar day in a fixed UTC-6 offset. This is a business rule
	// inherited from the service's first deployment, kept configurable.
	offsetHours := getIntEnv("LOG_UTC_OFFSET_HOURS", -6)

	return Config{
		HTTPAddress:   getEnv("HTTP_ADDRESS", ":3000"),
		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDatabase: getEnv("MONGO_DATABASE", "exercise_tracker"),
		LogTimezone:   time.FixedZone("logfilter", offsetHours*3600),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
