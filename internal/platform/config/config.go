package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	Port          string
	IsProduction  bool
	StoreDriver   string
	DatabaseURL   string
	EnableDBCheck bool
	// MigrationsPath is a golang-migrate source URL, e.g. file://migrations.
	MigrationsPath string

	JWTSecret string
	JWTIssuer string
	// JobsAPIKey guards the scheduler and settlement endpoints.
	JobsAPIKey string

	CORSAllowedOrigins []string
	RateLimit          string

	BaseCurrency        string
	AccountNumberPrefix string

	ArchiveRetention      time.Duration
	ArchiveBatchSize      int
	ContributionWorkers   int
	ResolverScanBatchSize int
	LedgerMaxRetries      int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Port:                  v.GetString("PORT"),
		IsProduction:          v.GetBool("IS_PRODUCTION"),
		StoreDriver:           strings.ToLower(v.GetString("STORE_DRIVER")),
		DatabaseURL:           v.GetString("PGSQL_URL"),
		EnableDBCheck:         v.GetBool("ENABLE_DB_CHECK"),
		MigrationsPath:        v.GetString("MIGRATIONS_PATH"),
		JWTSecret:             v.GetString("JWT_SECRET"),
		JWTIssuer:             v.GetString("JWT_ISSUER"),
		JobsAPIKey:            v.GetString("JOBS_API_KEY"),
		CORSAllowedOrigins:    splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		RateLimit:             v.GetString("RATE_LIMIT"),
		BaseCurrency:          strings.ToUpper(v.GetString("BASE_CURRENCY")),
		AccountNumberPrefix:   strings.ToUpper(v.GetString("ACCOUNT_NUMBER_PREFIX")),
		ArchiveBatchSize:      v.GetInt("ARCHIVE_BATCH_SIZE"),
		ContributionWorkers:   v.GetInt("CONTRIBUTION_WORKERS"),
		ResolverScanBatchSize: v.GetInt("RESOLVER_SCAN_BATCH_SIZE"),
		LedgerMaxRetries:      v.GetInt("LEDGER_MAX_RETRIES"),
	}

	retentionStr := v.GetString("ARCHIVE_RETENTION")
	retention, err := time.ParseDuration(retentionStr)
	if err != nil || retention <= 0 {
		return nil, fmt.Errorf("invalid ARCHIVE_RETENTION %q: must be a positive duration", retentionStr)
	}
	cfg.ArchiveRetention = retention

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == defaultJWTSecret {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	if cfg.JobsAPIKey == "" {
		log.Println("Warning: JOBS_API_KEY not set. Internal job endpoints will reject every request.")
	}
	return cfg, nil
}

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("STORE_DRIVER", DriverPostgres)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("ENABLE_DB_CHECK", true)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_ISSUER", "enkamba")
	v.SetDefault("JOBS_API_KEY", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT", "60-M")
	v.SetDefault("BASE_CURRENCY", "CDF")
	v.SetDefault("ACCOUNT_NUMBER_PREFIX", "ENK")
	v.SetDefault("ARCHIVE_RETENTION", "8760h")
	v.SetDefault("ARCHIVE_BATCH_SIZE", 500)
	v.SetDefault("CONTRIBUTION_WORKERS", 8)
	v.SetDefault("RESOLVER_SCAN_BATCH_SIZE", 500)
	v.SetDefault("LEDGER_MAX_RETRIES", 3)
}

// Validate rejects configurations the services cannot run with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("PGSQL_URL is required when STORE_DRIVER is %s", DriverPostgres)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.BaseCurrency == "" || c.AccountNumberPrefix == "" {
		return fmt.Errorf("BASE_CURRENCY and ACCOUNT_NUMBER_PREFIX must not be empty")
	}
	if c.ArchiveBatchSize <= 0 || c.ContributionWorkers <= 0 || c.ResolverScanBatchSize <= 0 {
		return fmt.Errorf("ARCHIVE_BATCH_SIZE, CONTRIBUTION_WORKERS and RESOLVER_SCAN_BATCH_SIZE must be positive")
	}
	if c.LedgerMaxRetries < 0 {
		return fmt.Errorf("LEDGER_MAX_RETRIES must not be negative")
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
