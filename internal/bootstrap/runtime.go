// Package bootstrap connects the process-wide dependencies shared by the
// server and the admin CLI.
package bootstrap

import (
	"context"
	"fmt"

	"domin8x/internal/cache"
	"domin8x/internal/config"
	"domin8x/internal/database"
	"domin8x/internal/middleware"
	"domin8x/internal/observability"
	"domin8x/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Version is reported in traces and health responses.
const Version = "1.0.0"

// Options control runtime initialization behavior.
type Options struct {
	// Seed loads the starter content after connecting.
	Seed bool
	// SkipRedis leaves the cache disabled, for one-shot CLI commands.
	SkipRedis bool
}

// InitRuntime connects to the database and Redis and optionally seeds starter content.
// Redis is optional: a nil client means caching, sessions and the event relay are disabled.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	var rdb *redis.Client
	if !opts.SkipRedis {
		rdb = cache.InitRedis(cfg.RedisURL)
	}

	if opts.Seed {
		if _, err := seed.Seed(ctx, db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed starter content: %w", err)
		}
	}

	return db, rdb, nil
}

// InitTracing installs the span exporter chosen by TRACING_* settings.
func InitTracing(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	tc := observability.TracingConfig{
		Version:      Version,
		Environment:  cfg.Env,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SampleRatio:  cfg.TracingSampleRatio,
	}
	if cfg.TracingEnabled {
		tc.Exporter = cfg.TracingExporter
	}
	return observability.InitTracing(ctx, tc)
}

// Close releases the database and Redis connections.
func Close(db *gorm.DB, rdb *redis.Client) {
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			if cerr := sqlDB.Close(); cerr != nil {
				middleware.Logger.Warn("error closing sql DB", "error", cerr.Error())
			}
		}
	}
	if rdb != nil {
		if rerr := rdb.Close(); rerr != nil {
			middleware.Logger.Warn("error closing redis", "error", rerr.Error())
		}
		cache.SetClient(nil)
	}
}
