package worker

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration for the optimization service
type Config struct {
	Port              string
	LogLevel          string
	LogFormat         string
	Environment       string
	DBPath            string // "memory" keeps runs in process
	Workers           int
	CacheSize         int
	RequestsPerMinute int
	RateBurst         int
	RateIdleTimeout   time.Duration
	MaxPopSize        int
	MaxGenerations    int
	MaxWork           int64 // pop_size * generations
	JaegerEndpoint    string
	RunTimeout        time.Duration
	ShutdownTimeout   time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Port:              getEnv("DOSAGE_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
		Environment:       getEnv("DOSAGE_ENV", "development"),
		DBPath:            getEnv("DOSAGE_DB", "dosage.db"),
		Workers:           getEnvInt("DOSAGE_WORKERS", 1),
		CacheSize:         getEnvInt("DOSAGE_CACHE_SIZE", 256),
		RequestsPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		RateBurst:         getEnvInt("RATE_LIMIT_BURST", 5),
		RateIdleTimeout:   getEnvDuration("RATE_LIMIT_IDLE_TIMEOUT", "10m"),
		MaxPopSize:        getEnvInt("MAX_POP_SIZE", 10000),
		MaxGenerations:    getEnvInt("MAX_GENERATIONS", 10000),
		MaxWork:           int64(getEnvInt("MAX_WORK", 5000000)),
		JaegerEndpoint:    getEnv("JAEGER_ENDPOINT", ""),
		RunTimeout:        getEnvDuration("RUN_TIMEOUT", "60s"),
		ShutdownTimeout:   getEnvDuration("SHUTDOWN_TIMEOUT", "10s"),
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
