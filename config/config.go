package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/scolli03/rwmarket/internal/http/ratelimit"
	"github.com/scolli03/rwmarket/internal/telemetry"
)

// Config holds the application configuration
type Config struct {
	Torn       TornConfig       `mapstructure:"torn"`
	Pricing    PricingConfig    `mapstructure:"pricing"`
	Quote      QuoteConfig      `mapstructure:"quote"`
	Fetch      FetchConfig      `mapstructure:"fetch"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Telemetry  telemetry.Config `mapstructure:"telemetry"`
}

// TornConfig holds the Torn API settings
type TornConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// PricingConfig holds the external pricing source settings
type PricingConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	CacheBackend  string        `mapstructure:"cache_backend"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
}

// QuoteConfig holds the default pricing policy
type QuoteConfig struct {
	MarketDiscount float64 `mapstructure:"market_discount"`
	CacheDiscount  int64   `mapstructure:"cache_discount"`
	CacheMargin    float64 `mapstructure:"cache_margin"`
	RoundingUnit   int64   `mapstructure:"rounding_unit"`
}

// FetchConfig paces multi-step upstream flows
type FetchConfig struct {
	RequestDelay time.Duration `mapstructure:"request_delay"`
	LookupDelay  time.Duration `mapstructure:"lookup_delay"`
	MaxPages     int           `mapstructure:"max_pages"`
}

// RateLimitConfig holds per-upstream transport limits
type RateLimitConfig struct {
	Torn    ratelimit.Config `mapstructure:"torn"`
	Pricing ratelimit.Config `mapstructure:"pricing"`
}

// ClassifierConfig holds the optional id allow-lists
type ClassifierConfig struct {
	WeaponIDs []int64 `mapstructure:"weapon_ids"`
	ArmorIDs  []int64 `mapstructure:"armor_ids"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	APIKey          string        `mapstructure:"api_key"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	RequestsPerSec  float64       `mapstructure:"requests_per_second"`
	Burst           int           `mapstructure:"burst"`
	SessionTTL      time.Duration `mapstructure:"session_ttl"`
}

// DatabaseConfig holds preference store configuration
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	URL             string        `mapstructure:"url"`
	Path            string        `mapstructure:"path"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MinConnections  int           `mapstructure:"min_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// StorageConfig holds export storage configuration
type StorageConfig struct {
	Type          string        `mapstructure:"type"`
	BasePath      string        `mapstructure:"base_path"`
	Retention     time.Duration `mapstructure:"retention"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

var globalConfig *Config

// Load loads the configuration from file, .env, and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// .env is optional
	if err := loadEnvFile(); err != nil {
		log.Debug().Err(err).Msg(".env file not loaded")
	}

	v.SetEnvPrefix("RWMARKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	globalConfig = &cfg
	return &cfg, nil
}

// Validate checks fraction ranges and enumerations
func (c *Config) Validate() error {
	var errs []error
	if c.Quote.MarketDiscount < 0 || c.Quote.MarketDiscount > 1 {
		errs = append(errs, fmt.Errorf("quote.market_discount %v not in [0,1]", c.Quote.MarketDiscount))
	}
	if c.Quote.CacheMargin < 0 || c.Quote.CacheMargin > 1 {
		errs = append(errs, fmt.Errorf("quote.cache_margin %v not in [0,1]", c.Quote.CacheMargin))
	}
	if c.Quote.CacheDiscount < 0 {
		errs = append(errs, fmt.Errorf("quote.cache_discount must not be negative"))
	}
	if c.Quote.RoundingUnit <= 0 {
		errs = append(errs, fmt.Errorf("quote.rounding_unit must be positive"))
	}
	if c.Fetch.MaxPages <= 0 {
		errs = append(errs, fmt.Errorf("fetch.max_pages must be positive"))
	}
	switch c.Pricing.CacheBackend {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("pricing.cache_backend %q must be memory or redis", c.Pricing.CacheBackend))
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("database.driver %q must be sqlite or postgres", c.Database.Driver))
	}
	return errors.Join(errs...)
}

// RequireAPIKey reports a missing Torn API key
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.Torn.APIKey) == "" {
		return fmt.Errorf("torn api key not set (TORN_API_KEY)")
	}
	return nil
}

// loadEnvFile loads the first .env found into the process environment
func loadEnvFile() error {
	for _, path := range []string{".", "./config"} {
		envFile := path + "/.env"
		if _, err := os.Stat(envFile); err == nil {
			return loadDotEnvFile(envFile)
		}
	}
	return fmt.Errorf("no .env file found")
}

// loadDotEnvFile reads KEY=VALUE lines. Variables already set win.
func loadDotEnvFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		value = strings.Trim(strings.TrimSpace(value), "\"'")
		if _, set := os.LookupEnv(key); !set {
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

// bindEnvVars binds the conventional unprefixed variables
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("torn.api_key", "RWMARKET_TORN_API_KEY", "TORN_API_KEY")
	v.BindEnv("server.port", "RWMARKET_SERVER_PORT", "PORT")
	v.BindEnv("server.api_key", "RWMARKET_SERVER_API_KEY", "API_KEY")
	v.BindEnv("logging.level", "RWMARKET_LOGGING_LEVEL", "LOG_LEVEL")
	v.BindEnv("database.url", "RWMARKET_DATABASE_URL", "DATABASE_URL")
	v.BindEnv("pricing.redis_addr", "RWMARKET_PRICING_REDIS_ADDR", "REDIS_ADDR")
	v.BindEnv("telemetry.endpoint", "RWMARKET_TELEMETRY_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// Upstreams
	v.SetDefault("torn.base_url", "https://api.torn.com/v2")
	v.SetDefault("pricing.base_url", "https://weav3r.dev/api/marketplace")
	v.SetDefault("pricing.cache_ttl", 5*time.Minute)
	v.SetDefault("pricing.cache_backend", "memory")
	v.SetDefault("pricing.redis_addr", "localhost:6379")
	v.SetDefault("pricing.redis_db", 0)

	// Quote policy
	v.SetDefault("quote.market_discount", 0.05)
	v.SetDefault("quote.cache_discount", 1_000_000)
	v.SetDefault("quote.cache_margin", 0.03)
	v.SetDefault("quote.rounding_unit", 1_000_000)

	// Pacing
	v.SetDefault("fetch.request_delay", 200*time.Millisecond)
	v.SetDefault("fetch.lookup_delay", 100*time.Millisecond)
	v.SetDefault("fetch.max_pages", 500)

	torn := ratelimit.DefaultConfig()
	v.SetDefault("rate_limit.torn.requests_per_second", torn.RequestsPerSecond)
	v.SetDefault("rate_limit.torn.burst", torn.Burst)
	v.SetDefault("rate_limit.torn.max_retries", torn.MaxRetries)
	v.SetDefault("rate_limit.torn.initial_backoff", torn.InitialBackoff)
	v.SetDefault("rate_limit.torn.max_backoff", torn.MaxBackoff)
	v.SetDefault("rate_limit.pricing.requests_per_second", 5.0)
	v.SetDefault("rate_limit.pricing.burst", 5)
	v.SetDefault("rate_limit.pricing.max_retries", torn.MaxRetries)
	v.SetDefault("rate_limit.pricing.initial_backoff", torn.InitialBackoff)
	v.SetDefault("rate_limit.pricing.max_backoff", torn.MaxBackoff)

	// Server
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 5*time.Minute)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.allowed_origins", []string{"https://www.torn.com"})
	v.SetDefault("server.requests_per_second", 10)
	v.SetDefault("server.burst", 20)
	v.SetDefault("server.session_ttl", 30*time.Minute)

	// Database
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/rwmarket.db")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 1)
	v.SetDefault("database.max_conn_lifetime", 1*time.Hour)
	v.SetDefault("database.max_conn_idle_time", 30*time.Minute)

	// Storage
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.base_path", "./data/exports")
	v.SetDefault("storage.retention", "168h")
	v.SetDefault("storage.sweep_interval", "1h")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.no_color", false)

	// Telemetry
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", telemetry.DefaultServiceName)
}

// Get returns the last loaded configuration
func Get() *Config {
	return globalConfig
}
