package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/wonny/clientwatch/internal/audit"
	"github.com/wonny/clientwatch/internal/clientstore"
	"github.com/wonny/clientwatch/internal/contracts"
	"github.com/wonny/clientwatch/internal/dismissal"
	"github.com/wonny/clientwatch/internal/engineconfig"
	"github.com/wonny/clientwatch/internal/metrics"
	"github.com/wonny/clientwatch/internal/monitor"
	"github.com/wonny/clientwatch/internal/publish"
	"github.com/wonny/clientwatch/internal/service"
	"github.com/wonny/clientwatch/pkg/config"
	"github.com/wonny/clientwatch/pkg/database"
	"github.com/wonny/clientwatch/pkg/httputil"
	"github.com/wonny/clientwatch/pkg/logger"
	"github.com/wonny/clientwatch/pkg/redis"
)

// app holds the wired collaborators shared by every command
type app struct {
	cfg        *config.Config
	log        *logger.Logger
	db         *database.DB // nil without DATABASE_URL
	redis      *redis.Client
	store      clientstore.Store
	monitor    *monitor.Monitor
	dismissals *dismissal.Store
	svc        *service.Service
	metrics    *metrics.Metrics // nil unless requested
	closers    []func()
}

// newApp loads configuration and connects the configured backends.
// withMetrics registers collectors on the default Prometheus registry.
func newApp(ctx context.Context, withMetrics bool) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if clientsFile != "" {
		cfg.ClientSource = config.SourceFile
		cfg.ClientsFile = clientsFile
	}
	if engineConfig != "" {
		cfg.EngineConfigPath = engineConfig
	}

	// 2. Initialize logger (stderr keeps stdout clean for output)
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	a := &app{
		cfg: cfg,
		log: logger.NewWithWriter(level, cfg.LogFormat, os.Stderr),
	}

	if withMetrics && cfg.MetricsEnabled {
		a.metrics = metrics.New()
	}

	// 3. Connect to database (optional)
	if cfg.Database.URL != "" {
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if err := db.Migrate(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		a.db = db
		a.log.Debug("Connected to database")
	}

	// 4. Connect to Redis (optional)
	a.redis = redis.Disabled()
	if cfg.Redis.Enabled {
		rc, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.redis = rc
		a.closers = append(a.closers, func() { rc.Close() })
		a.log.Debug("Connected to redis")
	}

	// 5. Client store
	a.store, err = clientstore.Open(cfg, a.db)
	if err != nil {
		a.Close()
		return nil, err
	}

	// 6. Engine
	engineCfg, err := engineconfig.LoadOrDefault(cfg.EngineConfigPath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load engine config: %w", err)
	}
	opts := []monitor.Option{
		monitor.WithLogger(a.log),
		monitor.WithVersion(cfg.Version),
	}
	if a.metrics != nil {
		opts = append(opts, monitor.WithMetrics(a.metrics))
	}
	a.monitor, err = monitor.New(engineCfg, opts...)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.dismissals = dismissal.Open(cfg, a.redis)
	a.svc = service.New(a.store, a.monitor, a.dismissals)

	return a, nil
}

// Close releases connections in reverse order
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// reports builds the scan report store: Redis cache and Postgres history
// when configured, process memory otherwise
func (a *app) reports() audit.ReportStore {
	var stores audit.Stores
	if a.redis.Enabled() {
		stores = append(stores, audit.NewCacheStore(redis.NewCache(a.redis, a.cfg.Redis.Prefix)))
	}
	if a.db != nil {
		stores = append(stores, audit.NewRepository(a.db.Pool))
	}
	if len(stores) == 0 {
		return &audit.MemoryStore{}
	}
	return stores
}

// history returns the Postgres scan history, nil without a database
func (a *app) history() *audit.Repository {
	if a.db == nil {
		return nil
	}
	return audit.NewRepository(a.db.Pool)
}

// sink builds the alert publishers enabled in config
func (a *app) sink() (contracts.AlertSink, error) {
	var sinks publish.Multi

	if a.cfg.Kafka.Enabled {
		kp, err := publish.NewKafkaPublisher(a.cfg.Kafka, a.log)
		if err != nil {
			return nil, fmt.Errorf("create kafka publisher: %w", err)
		}
		a.closers = append(a.closers, func() { kp.Close() })
		sinks = append(sinks, kp)
	}

	if a.cfg.Webhook.Enabled() {
		client := httputil.New(a.log, a.cfg.Webhook.Timeout).
			WithRateLimit(a.cfg.Webhook.MaxRPS, 1)
		sinks = append(sinks, publish.NewWebhookPublisher(client, a.cfg.Webhook.URL))
	}

	switch len(sinks) {
	case 0:
		return publish.Nop{}, nil
	case 1:
		return sinks[0], nil
	default:
		return sinks, nil
	}
}
