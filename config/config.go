package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	ServerPort  string
	DatabaseURL string
	LogLevel    string

	// Normalizer gate: candidates scoring below this are dropped before
	// any persistence is attempted
	RelevanceThreshold float64

	// Per-run bounds applied to every adapter
	MaxRequestsPerRun int
	RunTimeBudget     time.Duration
	HTTPTimeout       time.Duration

	// Enricher policy
	EnrichBatchLimit int
	EnrichRetryCap   int

	// Cooldown applied to a source after a blocked run before its next
	// scheduled attempt
	BlockCooldown time.Duration

	// Opaque session material for the social platform; empty means the
	// session provider reports auth unavailable
	SocialSessionCookie string
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		logrus.Warn("Error loading .env file, using system environment variables")
	}

	return &Config{
		ServerPort:          getEnv("SERVER_PORT", "8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		RelevanceThreshold:  getEnvFloat("RELEVANCE_THRESHOLD", 0.3),
		MaxRequestsPerRun:   getEnvInt("MAX_REQUESTS_PER_RUN", 30),
		RunTimeBudget:       getEnvDuration("RUN_TIME_BUDGET", 4*time.Minute),
		HTTPTimeout:         getEnvDuration("HTTP_TIMEOUT", 20*time.Second),
		EnrichBatchLimit:    getEnvInt("ENRICH_BATCH_LIMIT", 5),
		EnrichRetryCap:      getEnvInt("ENRICH_RETRY_CAP", 3),
		BlockCooldown:       getEnvDuration("BLOCK_COOLDOWN", 30*time.Minute),
		SocialSessionCookie: getEnv("SOCIAL_SESSION_COOKIE", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logrus.Warnf("Invalid %s value: %s, using default %d", key, value, fallback)
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logrus.Warnf("Invalid %s value: %s, using default %v", key, value, fallback)
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logrus.Warnf("Invalid %s value: %s, using default %v", key, value, fallback)
		return fallback
	}
	return parsed
}
