package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends selectable through the environment.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	SQLite       SQLiteConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Catalog      CatalogConfig
	Platform     PlatformConfig
	GenAI        GenAIConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string `validate:"required"`
	Env                   string
	Host                  string
	Port                  string `validate:"required,numeric"`
	Version               string
	RequestTimeoutSeconds int    `validate:"gte=0"`
	StoreBackend          string `validate:"oneof=memory postgres"`
	SessionBackend        string `validate:"oneof=memory postgres redis"`
	BodyLimitMB           int    `validate:"gt=0"`
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int `validate:"gte=0"`
}

// SQLiteConfig holds the local database file used by the sqlite durable catalog layer.
type SQLiteConfig struct {
	Path string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `validate:"oneof=debug info warn error dpanic panic fatal"`
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	SessionTTLHours     int    `validate:"gt=0"`
	SessionGraceMinutes int    `validate:"gte=0"`
	HashAlgorithm       string `validate:"oneof=bcrypt argon2id"`
	BcryptCost          int    `validate:"gte=4,lte=31"`
	MinPasswordLength   int    `validate:"gte=8"`
	AdminEmails         []string
	SeedEmail           string
	SeedPassword        string
	SeedFirstName       string
	SeedLastName        string
}

// CatalogConfig defines the catalog cache policy.
type CatalogConfig struct {
	TTLSeconds          int    `validate:"gt=0"`
	FetchTimeoutSeconds int    `validate:"gt=0"`
	DefaultPageSize     int    `validate:"gt=0,lte=250"`
	DurableBackend      string `validate:"oneof=memory redis sqlite"`
}

// PlatformConfig holds the remote commerce platform credentials.
type PlatformConfig struct {
	Domain          string
	StorefrontToken string
	AdminToken      string
	APIVersion      string `validate:"required"`
	TimeoutSeconds  int    `validate:"gt=0"`
}

// GenAIConfig holds the generative content API settings.
type GenAIConfig struct {
	APIKey         string
	BaseURL        string `validate:"required,url"`
	TextModel      string `validate:"required"`
	ImageModel     string `validate:"required"`
	TimeoutSeconds int    `validate:"gt=0"`
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	storeBackend := getEnv("STORE_BACKEND", BackendMemory)

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "storefront-api"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "3000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			StoreBackend:          storeBackend,
			SessionBackend:        getEnv("SESSION_BACKEND", storeBackend),
			BodyLimitMB:           getEnvAsInt("HTTP_BODY_LIMIT_MB", 50),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		SQLite: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", "data/catalog.db"),
		},
		Logger: LoggerConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		},
		Auth: AuthConfig{
			SessionTTLHours:     getEnvAsInt("AUTH_SESSION_TTL_HOURS", 7*24),
			SessionGraceMinutes: getEnvAsInt("AUTH_SESSION_GRACE_MINUTES", 24*60),
			HashAlgorithm:       getEnv("AUTH_HASH_ALGORITHM", "bcrypt"),
			BcryptCost:          getEnvAsInt("AUTH_BCRYPT_COST", 12),
			MinPasswordLength:   getEnvAsInt("AUTH_MIN_PASSWORD_LENGTH", 8),
			AdminEmails:         getEnvAsList("AUTH_ADMIN_EMAILS"),
			SeedEmail:           os.Getenv("AUTH_SEED_EMAIL"),
			SeedPassword:        os.Getenv("AUTH_SEED_PASSWORD"),
			SeedFirstName:       getEnv("AUTH_SEED_FIRST_NAME", "Admin"),
			SeedLastName:        getEnv("AUTH_SEED_LAST_NAME", "User"),
		},
		Catalog: CatalogConfig{
			TTLSeconds:          getEnvAsInt("CATALOG_TTL_SECONDS", 5),
			FetchTimeoutSeconds: getEnvAsInt("CATALOG_FETCH_TIMEOUT_SECONDS", 10),
			DefaultPageSize:     getEnvAsInt("CATALOG_PAGE_SIZE", 50),
			DurableBackend:      getEnv("CATALOG_DURABLE_BACKEND", BackendMemory),
		},
		Platform: PlatformConfig{
			Domain:          os.Getenv("SHOPIFY_DOMAIN"),
			StorefrontToken: os.Getenv("SHOPIFY_STOREFRONT_TOKEN"),
			AdminToken:      os.Getenv("SHOPIFY_ADMIN_TOKEN"),
			APIVersion:      getEnv("SHOPIFY_API_VERSION", "2024-01"),
			TimeoutSeconds:  getEnvAsInt("SHOPIFY_TIMEOUT_SECONDS", 10),
		},
		GenAI: GenAIConfig{
			APIKey:         os.Getenv("GEMINI_API_KEY"),
			BaseURL:        getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			TextModel:      getEnv("GEMINI_TEXT_MODEL", "gemini-2.0-flash-exp"),
			ImageModel:     getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
			TimeoutSeconds: getEnvAsInt("GEMINI_TIMEOUT_SECONDS", 60),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// SessionTTL is the fixed lifetime of a newly issued session.
func (a AuthConfig) SessionTTL() time.Duration {
	return time.Duration(a.SessionTTLHours) * time.Hour
}

// SessionGrace is how long an expired session is retained by self-expiring stores
// so the next access can still report it as expired.
func (a AuthConfig) SessionGrace() time.Duration {
	return time.Duration(a.SessionGraceMinutes) * time.Minute
}

// TTL is the freshness window of the short-lived catalog layer.
func (c CatalogConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// FetchTimeout bounds a single remote catalog fetch.
func (c CatalogConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// Timeout bounds a single platform API call.
func (p PlatformConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// Timeout bounds a single generative API call.
func (g GenAIConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

// getEnvAsList splits a comma separated value, dropping blanks.
func getEnvAsList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
