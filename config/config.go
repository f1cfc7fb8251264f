package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Event bus backends
const (
	EventBusAsynq  = "asynq"
	EventBusKafka  = "kafka"
	EventBusInline = "inline"
)

type Config struct {
	Port        string
	Environment string
	DBUrl       string
	JWTSecret   string
	FrontendURL string
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Event bus Configuration
	EventBus          string
	KafkaBrokers      []string
	KafkaTopic        string
	KafkaGroupID      string
	WorkerConcurrency int
	WorkerMetricsAddr string
	// Notification policies
	JobMatchDedupWindow time.Duration
	MessageMergeWindow  time.Duration
	FanOutBatchSize     int
	FanOutMaxRetries    int
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitGlobalThreshold int
	RateLimitMessageLimit    int
}

func LoadConfig() (*Config, error) {
	// Load .env file (only effective locally; ignored in production when missing)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("APP_ENV", "development"),
		DBUrl:       getEnv("DATABASE_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		// Event bus Configuration
		EventBus:          strings.ToLower(getEnv("EVENT_BUS", EventBusAsynq)),
		KafkaBrokers:      getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaTopic:        getEnv("KAFKA_TOPIC", "gradhire.domain-events"),
		KafkaGroupID:      getEnv("KAFKA_GROUP_ID", "gradhire-worker"),
		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 10),
		WorkerMetricsAddr: getEnv("WORKER_METRICS_ADDR", ":9091"),
		// Notification policies
		JobMatchDedupWindow: getEnvDuration("JOB_MATCH_DEDUP_WINDOW", 24*time.Hour),
		MessageMergeWindow:  getEnvDuration("MESSAGE_MERGE_WINDOW", 10*time.Minute),
		FanOutBatchSize:     getEnvInt("FANOUT_BATCH_SIZE", 500),
		FanOutMaxRetries:    getEnvInt("FANOUT_MAX_RETRIES", 2),
		// Rate Limiting Configuration (with sensible defaults)
		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),    // 1 minute window
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100), // 100 requests per window
		RateLimitMessageLimit:    getEnvInt("RATE_LIMIT_MESSAGE_LIMIT", 30),     // 30 messages per window
	}

	if cfg.FanOutMaxRetries < 0 {
		log.Printf("WARNING: FANOUT_MAX_RETRIES=%d is negative; using 0.", cfg.FanOutMaxRetries)
		cfg.FanOutMaxRetries = 0
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.JWTSecret == "" {
		log.Println("WARNING: JWT_SECRET is missing. All authenticated requests will be rejected.")
	}
	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Rate limiting will use in-memory fallback.")
		if cfg.EventBus == EventBusAsynq {
			log.Println("WARNING: asynq event bus needs Redis; falling back to inline event delivery.")
			cfg.EventBus = EventBusInline
		}
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvDuration parses values like "24h" or "10m"
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma separated variable, skipping blanks
func getEnvList(key string, fallback []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
