package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Client sources
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config holds all process configuration for clientwatch
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Engine
	EngineConfigPath string
	Version          string

	// Client data
	ClientSource string // file | postgres
	ClientsFile  string

	// Dismissals (file fallback when Redis is disabled)
	DismissalsFile string

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Kafka
	Kafka KafkaConfig

	// Webhook
	Webhook WebhookConfig

	// Scheduler
	ScanSchedule string

	// API
	APIRateLimit float64 // requests per second
	APIBurst     int

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	Prefix   string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// KafkaConfig holds alert publishing configuration
type KafkaConfig struct {
	Enabled    bool
	Brokers    []string
	AlertTopic string
	ClientID   string
}

// WebhookConfig holds the optional chat webhook that receives alert digests
type WebhookConfig struct {
	URL     string
	Timeout time.Duration
	MaxRPS  float64
}

// Enabled reports whether a webhook URL is configured
func (w WebhookConfig) Enabled() bool {
	return w.URL != ""
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		EngineConfigPath: getEnv("ENGINE_CONFIG", ""),
		Version:          getEnv("ENGINE_VERSION", "dev"),

		ClientSource: strings.ToLower(getEnv("CLIENT_SOURCE", SourceFile)),
		ClientsFile:  getEnv("CLIENTS_FILE", "data/clients.json"),

		DismissalsFile: getEnv("DISMISSALS_FILE", "data/dismissals.json"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Prefix:   getEnv("REDIS_PREFIX", "clientwatch"),
		},

		Kafka: KafkaConfig{
			Enabled:    getEnvAsBool("KAFKA_ENABLED", false),
			Brokers:    getEnvAsList("KAFKA_BROKERS", "localhost:9092"),
			AlertTopic: getEnv("KAFKA_ALERT_TOPIC", "client-alerts"),
			ClientID:   getEnv("KAFKA_CLIENT_ID", "clientwatch"),
		},

		Webhook: WebhookConfig{
			URL:     getEnv("WEBHOOK_URL", ""),
			Timeout: getEnvAsDuration("WEBHOOK_TIMEOUT", "10s"),
			MaxRPS:  getEnvAsFloat("WEBHOOK_MAX_RPS", 1),
		},

		ScanSchedule: getEnv("SCAN_SCHEDULE", "0 0 7 * * *"),

		APIRateLimit: getEnvAsFloat("API_RATE_LIMIT", 20),
		APIBurst:     getEnvAsInt("API_BURST", 40),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.ClientSource {
	case SourceFile:
		if c.ClientsFile == "" {
			return fmt.Errorf("CLIENTS_FILE is required when CLIENT_SOURCE=file")
		}
	case SourcePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when CLIENT_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("CLIENT_SOURCE must be one of: file, postgres")
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED=true")
	}

	if c.APIRateLimit <= 0 || c.APIBurst <= 0 {
		return fmt.Errorf("API_RATE_LIMIT and API_BURST must be > 0")
	}

	return nil
}

// RedisAddr returns host:port for the Redis client
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList splits a comma-separated value, dropping blanks
func getEnvAsList(key string, defaultValue string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, defaultValue), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
