package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"welltrend/internal/cache"
	"welltrend/internal/config"
	dbpkg "welltrend/internal/db"
	"welltrend/internal/downtime"
	"welltrend/internal/trend"
	"welltrend/internal/tsdb"
)

// Options defines initialization overrides applied on top of the loaded
// config. They mirror the persistent flags of cmd/trendctl.
type Options struct {
	ConfigPath   string
	DatabasePath string
	// ExternalStore forces the external store flag when non-nil.
	ExternalStore *bool
	// Watch reloads the config file on change.
	Watch  bool
	Logger *slog.Logger
	Clock  clockwork.Clock
}

// Services is the wired engine and its resources.
type Services struct {
	Config   *config.Config
	Source   *config.Source
	DB       *dbpkg.DB
	Engine   *trend.Engine
	Downtime *downtime.Aggregator

	cache  *cache.TTL
	influx *tsdb.Influx
}

// Bootstrap loads config, applies overrides, opens storage and constructs the
// engine. Callers must Close the result.
func Bootstrap(ctx context.Context, opts Options) (*Services, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	log := opts.Logger

	src, cfg, err := config.Load(opts.ConfigPath, log)
	if err != nil {
		return nil, err
	}
	if opts.DatabasePath != "" {
		cfg.Database.Path = opts.DatabasePath
	}
	if opts.ExternalStore != nil {
		src.SetExternalStoreEnabled(*opts.ExternalStore)
	}

	d, err := dbpkg.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := &Services{Config: cfg, Source: src, DB: d}
	if err := d.Ping(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	rel, err := tsdb.NewRelational(tsdb.RelationalConfig{Logger: log, Partitions: d})
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	var external tsdb.Backend
	if cfg.ExternalStore.Configured() {
		client, err := tsdb.NewSDKInfluxClient(cfg.ExternalStore.Host, cfg.ExternalStore.Token, cfg.ExternalStore.Database)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("external store client: %w", err)
		}
		s.influx, err = tsdb.NewInflux(tsdb.InfluxConfig{Logger: log, Client: client, Table: cfg.ExternalStore.Table})
		if err != nil {
			_ = client.Close()
			_ = s.Close()
			return nil, err
		}
		external = s.influx
	} else if src.ExternalStoreEnabled() {
		log.Warn("external store enabled but not configured; calls will fail until it is disabled")
	}

	s.cache = cache.NewTTL(cache.Config{
		TTL:      cfg.Cache.TTL,
		Capacity: cfg.Cache.Capacity,
		Version:  cfg.Cache.Version,
	})
	s.Engine, err = trend.NewEngine(trend.EngineConfig{
		Logger:     log,
		Nodes:      d,
		Reference:  d,
		Relational: rel,
		External:   external,
		Flags:      src,
		Cache:      s.cache,
	})
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.Downtime, err = downtime.NewAggregator(downtime.Config{
		Logger: log,
		Clock:  opts.Clock,
		Nodes:  d,
		Series: s.Engine,
	})
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	if opts.Watch {
		src.Watch()
	}
	log.Debug("engine ready",
		"database", cfg.Database.Path,
		"external_configured", external != nil,
		"external_enabled", src.ExternalStoreEnabled(),
		"cache_ttl", cfg.Cache.TTL,
	)
	return s, nil
}

// Close releases the cache, the external client and the database.
func (s *Services) Close() error {
	if s.cache != nil {
		s.cache.Close()
	}
	var errs []error
	if s.influx != nil {
		errs = append(errs, s.influx.Close())
	}
	if s.DB != nil {
		errs = append(errs, s.DB.Close())
	}
	return errors.Join(errs...)
}
