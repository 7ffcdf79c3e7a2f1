package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	OCR      OCRConfig
	Batch    BatchConfig
	Pipeline PipelineConfig
}

// PipelineConfig points at optional data files layered over the built-in
// tables at startup.
type PipelineConfig struct {
	// NormalizeConfigPath is a YAML file overriding the normalizer's
	// substitution tables.
	NormalizeConfigPath string
	// RulePackPath is a JSON overlay rule pack installed on boot.
	RulePackPath string
}

// DatabaseConfig holds checklist-store configuration. The DSN selects the
// backend: a postgres:// URL opens pgx, anything else is treated as a
// SQLite path.
type DatabaseConfig struct {
	DSN             string
	MaxConns        int
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// OCRConfig holds configuration for the external OCR process.
type OCRConfig struct {
	Command string
	Timeout time.Duration
}

// BatchConfig holds batch-processing knobs.
type BatchConfig struct {
	Workers         int
	QueueSize       int
	DocTimeout      time.Duration
	StreamIdleAfter time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", "./intake.db"),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			Addr:            getEnv("HTTP_ADDR", ":8080"),
			ShutdownTimeout: getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		OCR: OCRConfig{
			Command: getEnv("OCR_COMMAND", "ocr-engine"),
			Timeout: getEnvAsDuration("OCR_TIMEOUT", 90*time.Second),
		},
		Batch: BatchConfig{
			Workers:         getEnvAsInt("BATCH_WORKERS", 4),
			QueueSize:       getEnvAsInt("BATCH_QUEUE_SIZE", 256),
			DocTimeout:      getEnvAsDuration("BATCH_DOC_TIMEOUT", 3*time.Minute),
			StreamIdleAfter: getEnvAsDuration("BATCH_STREAM_IDLE", 2*time.Minute),
		},
		Pipeline: PipelineConfig{
			NormalizeConfigPath: getEnv("NORMALIZE_CONFIG", ""),
			RulePackPath:        getEnv("RULE_PACK", ""),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Batch.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "BATCH_WORKERS must be positive", ErrInvalidInput)
	}
	return nil
}
