// Package app wires the event pipeline from configuration. Every binary
// builds the same graph; each decides what to expose on top of it.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"calendar-autobot/config"
	"calendar-autobot/internal/calsync"
	"calendar-autobot/internal/calsync/refcache"
	"calendar-autobot/internal/event"
	"calendar-autobot/internal/event/repository"
	"calendar-autobot/internal/event/repository/postgre"
	"calendar-autobot/internal/event/usecase"
	"calendar-autobot/internal/extraction"
	"calendar-autobot/pkg/errtrack"
	"calendar-autobot/pkg/gcalendar"
	"calendar-autobot/pkg/llmprovider"
	"calendar-autobot/pkg/log"
)

const redisPingTimeout = 3 * time.Second

// App is the assembled pipeline plus the resources it owns.
type App struct {
	DB        *sqlx.DB
	Repo      repository.Repository
	UseCase   event.UseCase
	Extractor *extraction.Client
	Reporter  errtrack.Reporter

	redis *redis.Client
}

// Options toggles the optional parts of the graph.
type Options struct {
	// Migrate creates the schema on startup.
	Migrate bool
	// SkipRedis keeps the calendar cache process-local.
	SkipRedis bool
}

// New connects the database and builds every component. The caller must Close the App.
func New(ctx context.Context, l log.Logger, cfg *config.Config, opt Options) (*App, error) {
	reporter := errtrack.New(l, errtrack.Config{
		Service:    cfg.ErrorTracking.Service,
		WebhookURL: cfg.ErrorTracking.WebhookURL,
	})

	db, err := postgre.Connect(ctx, postgre.ConnectOptions{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if opt.Migrate {
		if err := postgre.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	repo := postgre.New(db, l)

	a := &App{DB: db, Repo: repo, Reporter: reporter}

	a.Extractor = newExtractor(ctx, l, cfg)

	var cache refcache.Cache = refcache.NewLRU(cfg.CalendarCache.Size, cfg.CalendarCache.TTL)
	if !opt.SkipRedis {
		if rc := connectRedis(ctx, l, cfg.Redis); rc != nil {
			a.redis = rc
			cache = refcache.NewLayered(cache, refcache.NewRedis(rc, cfg.CalendarCache.TTL, l))
		}
	}

	httpClient := &http.Client{Timeout: cfg.Google.RequestTimeout}
	api := gcalendar.NewClient(httpClient)
	tokens := calsync.NewTokenManager(l, repo, calsync.TokenConfig{
		ClientID:      cfg.Google.ClientID,
		ClientSecret:  cfg.Google.ClientSecret,
		TokenURL:      cfg.Google.TokenURL,
		TokenInfoURL:  cfg.Google.TokenInfoURL,
		RequiredScope: cfg.Google.RequiredScope,
		ProbeTimeout:  cfg.Google.ProbeTimeout,
		HTTPClient:    httpClient,
	})
	resolver := calsync.NewCalendarResolver(l, api, repo, cache, calsync.ResolverConfig{
		Summary:     cfg.Google.CalendarSummary,
		Description: cfg.Google.CalendarDescription,
	})
	engine := calsync.NewEngine(l, tokens, resolver, api, calsync.EngineConfig{
		RequestTimeout: cfg.Google.RequestTimeout,
	})

	a.UseCase = usecase.New(l, repo, a.Extractor, engine, reporter, usecase.Config{})
	return a, nil
}

// Previewer runs extraction and validation only.
type Previewer interface {
	Preview(ctx context.Context, input event.PreviewInput) (event.PreviewOutput, error)
}

// NewPreviewer builds a dry-run pipeline that needs neither the database nor Google.
func NewPreviewer(ctx context.Context, l log.Logger, cfg *config.Config) Previewer {
	reporter := errtrack.NewLogReporter(l, cfg.ErrorTracking.Service)
	return usecase.New(l, nil, newExtractor(ctx, l, cfg), nil, reporter, usecase.Config{})
}

func newExtractor(ctx context.Context, l log.Logger, cfg *config.Config) *extraction.Client {
	return extraction.New(l, newGenerator(ctx, l, cfg), extraction.Config{
		CallTimeout:      cfg.Extraction.CallTimeout,
		RateLimitBackoff: cfg.Extraction.RateLimitBackoff,
	})
}

// newGenerator returns the LLM manager, or nil for offline-only extraction.
func newGenerator(ctx context.Context, l log.Logger, cfg *config.Config) extraction.Generator {
	providers, err := llmprovider.InitializeProviders(&cfg.LLM)
	if err != nil {
		if errors.Is(err, llmprovider.ErrNoProvidersConfigured) {
			l.Warn(ctx, "No LLM provider configured, extraction runs offline only")
		} else {
			l.Warnf(ctx, "LLM providers unavailable, extraction runs offline only: %v", err)
		}
		return nil
	}

	retryDelay, _ := time.ParseDuration(cfg.LLM.RetryDelay)
	maxTotal, _ := time.ParseDuration(cfg.LLM.MaxTotalTimeout)
	for _, p := range providers {
		l.Infof(ctx, "LLM provider enabled: %s (%s)", p.Name(), p.Model())
	}
	return llmprovider.NewManager(providers, &llmprovider.Config{
		FallbackEnabled: cfg.LLM.FallbackEnabled,
		RetryAttempts:   cfg.LLM.RetryAttempts,
		RetryDelay:      retryDelay,
		MaxTotalTimeout: maxTotal,
	}, l)
}

func connectRedis(ctx context.Context, l log.Logger, cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	rc := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := rc.Ping(pingCtx).Err(); err != nil {
		l.Warnf(ctx, "Redis not available (optional), calendar cache stays in-process: %v", err)
		rc.Close()
		return nil
	}
	l.Infof(ctx, "Redis connected at %s", cfg.Addr)
	return rc
}

// RedisConnOpt is the asynq connection for the configured Redis.
func RedisConnOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
}

func (a *App) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	a.DB.Close()
}
