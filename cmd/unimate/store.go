package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/unimate/listing-search/config"
	"github.com/unimate/listing-search/internal/cache"
	"github.com/unimate/listing-search/internal/metrics"
	"github.com/unimate/listing-search/internal/search"
	"github.com/unimate/listing-search/services"
	"github.com/unimate/listing-search/store/bunt"
	"github.com/unimate/listing-search/store/mongo"
	"github.com/unimate/listing-search/store/postgres"
)

// openStore connects to the backend named by cfg.Store.Driver.
func openStore(ctx context.Context, cfg *config.Config) (services.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverBunt:
		s, err := bunt.Open(cfg.Store.BuntPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverPostgres:
		s, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMongo:
		s, err := mongo.New(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// newSearcher builds the search service over store, with the Redis score
// cache when enabled and m as recorder when non-nil. The returned cleanup
// closes the Redis client.
func newSearcher(ctx context.Context, cfg *config.Config, store services.Store, m *metrics.Metrics) (*search.Service, func(), error) {
	var opts []search.Option
	cleanup := func() {}

	if m != nil {
		opts = append(opts, search.WithRecorder(m))
	}
	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, cleanup, err
		}
		slog.Info("score cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		opts = append(opts, search.WithScoreCache(cache.NewRedisScores(rdb, cfg.Redis.CacheTTL)))
		cleanup = func() {
			if err := rdb.Close(); err != nil {
				slog.Warn("failed to close redis client", "error", err)
			}
		}
	}

	svc, err := search.NewService(store, store, cfg.Search, opts...)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return svc, cleanup, nil
}
