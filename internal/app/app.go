// Package app builds the rwmarket object graph from configuration. Both
// binaries share it.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/scolli03/rwmarket/config"
	"github.com/scolli03/rwmarket/internal/cachequote"
	"github.com/scolli03/rwmarket/internal/classifier"
	"github.com/scolli03/rwmarket/internal/database"
	"github.com/scolli03/rwmarket/internal/pipeline"
	"github.com/scolli03/rwmarket/internal/preferences"
	"github.com/scolli03/rwmarket/internal/pricecache"
	"github.com/scolli03/rwmarket/internal/pricing"
	"github.com/scolli03/rwmarket/internal/storage"
	"github.com/scolli03/rwmarket/internal/torn"
	"github.com/scolli03/rwmarket/internal/weav3r"
)

// App is the wired application
type App struct {
	Config     *config.Config
	Torn       *torn.Client
	Prices     *pricecache.CachedSource
	PriceCache pricecache.Store
	Market     *pipeline.Market
	War        *pipeline.War
	Prefs      preferences.Store
	Storage    *storage.LocalStorage
}

// Options selects the optional parts to build
type Options struct {
	// SkipPreferences leaves Prefs nil
	SkipPreferences bool
}

// New wires clients, caches, pipelines and stores from cfg
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &App{Config: cfg}
	a.Torn = torn.NewClient(cfg.Torn.BaseURL, cfg.Torn.APIKey, cfg.RateLimit.Torn)

	store, err := pricecache.Open(ctx, pricecache.Options{
		Backend:       cfg.Pricing.CacheBackend,
		TTL:           cfg.Pricing.CacheTTL,
		RedisAddr:     cfg.Pricing.RedisAddr,
		RedisPassword: cfg.Pricing.RedisPassword,
		RedisDB:       cfg.Pricing.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open price cache: %w", err)
	}
	a.PriceCache = store
	a.Prices = pricecache.NewCachedSource(weav3r.NewClient(cfg.Pricing.BaseURL, cfg.RateLimit.Pricing), store, cfg.Pricing.CacheTTL)

	a.Market = &pipeline.Market{
		Source: a.Torn,
		Classifier: classifier.New(classifier.Config{
			WeaponIDs: cfg.Classifier.WeaponIDs,
			ArmorIDs:  cfg.Classifier.ArmorIDs,
		}),
		Delay:    cfg.Fetch.RequestDelay,
		MaxPages: cfg.Fetch.MaxPages,
	}
	a.War = &pipeline.War{
		Source: a.Torn,
		Engine: cachequote.NewEngine(a.Prices, cfg.Fetch.LookupDelay),
	}

	a.Storage, err = storage.NewLocalStorage(cfg.Storage.BasePath)
	if err != nil {
		a.Close()
		return nil, err
	}

	if !opts.SkipPreferences {
		a.Prefs, err = preferences.Open(ctx, PreferencesOptions(cfg))
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to open preferences store: %w", err)
		}
	}

	log.Debug().
		Str("price_cache", store.Name()).
		Str("database", cfg.Database.Driver).
		Str("storage", cfg.Storage.BasePath).
		Msg("Application wired")
	return a, nil
}

// PreferencesOptions maps database config onto the preferences store options
func PreferencesOptions(cfg *config.Config) preferences.Options {
	return preferences.Options{
		Driver: cfg.Database.Driver,
		Path:   cfg.Database.Path,
		URL:    cfg.Database.URL,
		Pool: database.PoolConfig{
			MaxConns:    cfg.Database.MaxConnections,
			MinConns:    cfg.Database.MinConnections,
			MaxLifetime: cfg.Database.MaxConnLifetime,
			MaxIdleTime: cfg.Database.MaxConnIdleTime,
		},
	}
}

// MarketDiscount is the configured default market discount
func (a *App) MarketDiscount() float64 {
	return a.Config.Quote.MarketDiscount
}

// CachePolicy is the configured default cache quote policy
func (a *App) CachePolicy() pricing.CachePolicy {
	return pricing.CachePolicy{
		Discount:     a.Config.Quote.CacheDiscount,
		Margin:       a.Config.Quote.CacheMargin,
		RoundingUnit: a.Config.Quote.RoundingUnit,
	}
}

// Close releases stores and the database pool
func (a *App) Close() error {
	var errs []error
	if a.Prefs != nil {
		errs = append(errs, a.Prefs.Close())
	}
	if a.PriceCache != nil {
		errs = append(errs, a.PriceCache.Close())
	}
	database.Close()
	return errors.Join(errs...)
}

// NewLogger builds the process logger and installs it as the global one
func NewLogger(cfg config.LoggingConfig, service string) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stderr
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stderr, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", service).Logger()
	log.Logger = logger
	return &logger
}
