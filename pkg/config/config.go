package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration shared by every function.
type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	AWSRegion   string `envconfig:"AWS_REGION" default:"us-east-1"`
	AWSEndpoint string `envconfig:"AWS_ENDPOINT_URL"`

	BucketName      string        `envconfig:"BUCKET_NAME"`
	StagingPrefix   string        `envconfig:"STAGING_PREFIX" default:"staging/"`
	ProcessedPrefix string        `envconfig:"PROCESSED_PREFIX" default:"processed/"`
	UploadURLTTL    time.Duration `envconfig:"UPLOAD_URL_TTL" default:"5m"`

	CatalogItemsQueueURL string `envconfig:"CATALOG_ITEMS_QUEUE_URL"`

	CreateProductTopicARN string `envconfig:"CREATE_PRODUCT_TOPIC_ARN"`
	NotifyDriver          string `envconfig:"NOTIFY_DRIVER" default:"sns"`
	NotifyEmailFrom       string `envconfig:"NOTIFY_EMAIL_FROM"`
	NotifyEmailTo         string `envconfig:"NOTIFY_EMAIL_TO"`

	StoreDriver      string `envconfig:"STORE_DRIVER" default:"dynamodb"`
	ProductTableName string `envconfig:"PRODUCT_TABLE_NAME" default:"ProductsTable"`
	StockTableName   string `envconfig:"STOCK_TABLE_NAME" default:"StockTable"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME"`

	RedisAddr string        `envconfig:"REDIS_ADDR"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	ListPageSize int32 `envconfig:"LIST_PAGE_SIZE" default:"5"`

	AuthUsers string `envconfig:"AUTH_USERS"`

	LocalAddr      string `envconfig:"LOCAL_ADDR" default:":3000"`
	LocalRateLimit int    `envconfig:"LOCAL_RATE_LIMIT" default:"100"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	switch cfg.StoreDriver {
	case "dynamodb", "postgres":
	default:
		return nil, fmt.Errorf("config: unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	switch cfg.NotifyDriver {
	case "sns", "ses":
	default:
		return nil, fmt.Errorf("config: unknown NOTIFY_DRIVER %q", cfg.NotifyDriver)
	}
	if cfg.ListPageSize <= 0 {
		return nil, errors.New("config: LIST_PAGE_SIZE must be positive")
	}
	return &cfg, nil
}

// MustLoad is LoadEnv followed by Load, for function entrypoints.
func MustLoad() (*Config, error) {
	LoadEnv()
	return Load()
}

// IsLocal reports whether the process runs on a developer machine.
func (c *Config) IsLocal() bool {
	return c != nil && c.AppEnv == "local"
}

// RequireBucket fails when no import bucket is configured.
func (c *Config) RequireBucket() error {
	return require("BUCKET_NAME", c.BucketName)
}

// RequireNotifier fails when the selected notification driver lacks its settings.
func (c *Config) RequireNotifier() error {
	if c.NotifyDriver == "ses" {
		if err := require("NOTIFY_EMAIL_FROM", c.NotifyEmailFrom); err != nil {
			return err
		}
		return require("NOTIFY_EMAIL_TO", c.NotifyEmailTo)
	}
	return require("CREATE_PRODUCT_TOPIC_ARN", c.CreateProductTopicARN)
}

// PostgresDSN builds the lib/pq connection string from the DB_* variables.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

func require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("config: %s must be set", name)
	}
	return nil
}
