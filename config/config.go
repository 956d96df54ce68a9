package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port        string
	Environment string

	// Stores
	MongoDBURL  string
	MongoDBName string
	RedisURL    string
	DatabaseURL string

	// JWT
	JWTSecret string

	// Classifier
	OpenAIAPIKey  string
	LLMModel      string
	LLMTimeoutSec int

	// Gmail ingestion (optional; ingest stays disabled when unset)
	GmailClientID     string
	GmailClientSecret string
	GmailRefreshToken string

	// Engine
	OwnOrgToken         string
	ClassifyParallelism int
	CategoryCacheTTLMin int

	// Priority score weights
	ScoreBase                   int
	ScoreServiceRequest         int
	ScoreExternalPaymentRequest int
	ScoreUrgencyHigh            int
	ScoreUrgencyLow             int
	ScoreNeedsResponse          int
	ScoreImportantLabel         int
	ScoreStarredLabel           int
	ScoreUnreadLabel            int
	ScoreLowValuePenalty        int
}

func Load() (*Config, error) {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),

		// Stores
		MongoDBURL:  getEnv("MONGODB_URL", ""),
		MongoDBName: getEnv("MONGODB_DATABASE", "inboxcore"),
		RedisURL:    getEnv("REDIS_URL", ""),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", ""),

		// Classifier
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		LLMModel:      getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMTimeoutSec: getEnvInt("LLM_TIMEOUT_SEC", 30),

		// Gmail ingestion
		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),

		// Engine
		OwnOrgToken:         getEnv("OWN_ORG_TOKEN", ""),
		ClassifyParallelism: getEnvInt("CLASSIFY_PARALLELISM", 5),
		CategoryCacheTTLMin: getEnvInt("CATEGORY_CACHE_TTL_MIN", 60),

		// Priority score weights
		ScoreBase:                   getEnvInt("SCORE_BASE", 50),
		ScoreServiceRequest:         getEnvInt("SCORE_SERVICE_REQUEST", 30),
		ScoreExternalPaymentRequest: getEnvInt("SCORE_EXTERNAL_PAYMENT_REQUEST", 20),
		ScoreUrgencyHigh:            getEnvInt("SCORE_URGENCY_HIGH", 25),
		ScoreUrgencyLow:             getEnvInt("SCORE_URGENCY_LOW", -10),
		ScoreNeedsResponse:          getEnvInt("SCORE_NEEDS_RESPONSE", 15),
		ScoreImportantLabel:         getEnvInt("SCORE_IMPORTANT_LABEL", 10),
		ScoreStarredLabel:           getEnvInt("SCORE_STARRED_LABEL", 10),
		ScoreUnreadLabel:            getEnvInt("SCORE_UNREAD_LABEL", 5),
		ScoreLowValuePenalty:        getEnvInt("SCORE_LOW_VALUE_PENALTY", -40),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
