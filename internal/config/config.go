package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds every setting of the service.
type Config struct {
	DatabaseURL    string        `env:"DATABASE_URL,required"`
	DBDriver       string        `env:"DB_DRIVER" envDefault:"postgres"`
	AutoMigrate    bool          `env:"AUTO_MIGRATE" envDefault:"true"`
	ServerPort     string        `env:"SERVER_PORT" envDefault:"8080"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	JWTSecret      string        `env:"JWT_SECRET,required"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"30m"`
	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"10"`

	// ignore | fail
	ReconcileUnknownID string `env:"RECONCILE_UNKNOWN_ID" envDefault:"ignore"`

	UploadConcurrency int   `env:"UPLOAD_CONCURRENCY" envDefault:"5"`
	MaxIconBytes      int64 `env:"MAX_ICON_BYTES" envDefault:"2097152"`

	// MinIO is optional; icon and export endpoints answer 503 without it.
	MinioEndpoint        string `env:"MINIO_ENDPOINT"`
	MinioAccessKeyID     string `env:"MINIO_ACCESS_KEY_ID"`
	MinioSecretAccessKey string `env:"MINIO_SECRET_ACCESS_KEY"`
	MinioUseSSL          bool   `env:"MINIO_USE_SSL"`
	MinioBucketName      string `env:"MINIO_BUCKET_NAME" envDefault:"workouts"`
	MinioRegion          string `env:"MINIO_REGION" envDefault:"us-east-1"`
	MinioPublicURL       string `env:"MINIO_PUBLIC_URL"`

	RabbitMQ struct {
		RabbitMQURL       string `env:"RABBITMQ_URL"`
		RabbitMQQueueName string `env:"RABBITMQ_QUEUE_NAME" envDefault:"workout_export_queue"`
	}
}

// MinioEnabled reports whether object storage is configured.
func (c *Config) MinioEnabled() bool {
	return c.MinioEndpoint != "" && c.MinioAccessKeyID != "" && c.MinioSecretAccessKey != ""
}

// RabbitMQEnabled reports whether the export queue is configured.
func (c *Config) RabbitMQEnabled() bool {
	return c.RabbitMQ.RabbitMQURL != ""
}

// LoadConfig reads the environment, loading .env first when it exists.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env file: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config from environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
	}
	switch c.ReconcileUnknownID {
	case "ignore", "fail":
	default:
		return fmt.Errorf("RECONCILE_UNKNOWN_ID must be ignore or fail, got %q", c.ReconcileUnknownID)
	}
	if c.UploadConcurrency < 1 {
		return errors.New("UPLOAD_CONCURRENCY must be at least 1")
	}
	if c.MaxIconBytes < 1 {
		return errors.New("MAX_ICON_BYTES must be positive")
	}
	return nil
}
