package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/livescore/external/apisports"
	"github.com/riskibarqy/livescore/internal/config"
	"github.com/riskibarqy/livescore/internal/infrastructure/publisher"
	"github.com/riskibarqy/livescore/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/livescore/internal/interfaces/httpapi"
	"github.com/riskibarqy/livescore/internal/observability"
	idgen "github.com/riskibarqy/livescore/internal/platform/id"
	"github.com/riskibarqy/livescore/internal/platform/logging"
	"github.com/riskibarqy/livescore/internal/platform/resilience"
	"github.com/riskibarqy/livescore/internal/platform/worker"
	"github.com/riskibarqy/livescore/internal/usecase"
)

// App owns the HTTP server and every backend it was built with.
type App struct {
	Server *http.Server

	logger *logging.Logger
	pool   *worker.Pool
	db     *sqlx.DB
	redis  *redis.Client
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{logger: logger}
	built := false
	defer func() {
		if !built {
			_ = a.Close(context.Background())
		}
	}()

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
	}

	pool, err := worker.NewPool(cfg.BackgroundWorkers, cfg.BackgroundJobTimeout, logger.Named("worker"))
	if err != nil {
		return nil, err
	}
	a.pool = pool

	breakerCfg := resilience.CircuitBreakerConfig{
		Enabled:          cfg.APISportsCircuitEnabled,
		FailureThreshold: cfg.APISportsCircuitFailureCount,
		OpenTimeout:      cfg.APISportsCircuitOpenTimeout,
		HalfOpenMaxReq:   cfg.APISportsCircuitHalfOpenMaxReq,
	}
	clientCfg := func(baseURL string) apisports.ClientConfig {
		c := apisports.ClientConfig{
			BaseURL:        baseURL,
			APIKey:         cfg.APISportsAPIKey,
			Timeout:        cfg.APISportsTimeout,
			MaxRetries:     cfg.APISportsMaxRetries,
			Logger:         logger.Named("apisports"),
			CircuitBreaker: breakerCfg,
		}
		if metrics != nil {
			c.Observer = metrics
		}
		return c
	}
	football := apisports.NewFootballClient(clientCfg(cfg.APIFootballBaseURL))
	basketball := apisports.NewBasketballClient(clientCfg(cfg.APIBasketballBaseURL))
	if metrics != nil {
		metrics.TrackCircuitBreaker(football.Transport().Provider(), football.Transport().Breaker())
		metrics.TrackCircuitBreaker(basketball.Transport().Provider(), basketball.Transport().Breaker())
	}
	if !cfg.HasAPISportsKey() {
		logger.Warn("APISPORTS_API_KEY is not set; live lookups will fail until it is configured")
	}

	liveOpts := []usecase.LiveMatchServiceOption{
		usecase.WithBackgroundRunner(pool),
		usecase.WithLiveMatchLogger(logger),
	}
	if metrics != nil {
		liveOpts = append(liveOpts, usecase.WithLiveMatchMetrics(metrics))
	}

	if cfg.RawArchiveEnabled {
		db, err := openArchiveDB(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		a.db = db
		liveOpts = append(liveOpts, usecase.WithRawArchive(postgres.NewRawDataRepository(db)))
		logger.Info("raw payload archive enabled", "db", dbNameFromURL(cfg.DBURL))
	}

	if cfg.LivePublishEnabled {
		client, err := publisher.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.redis = client
		liveOpts = append(liveOpts, usecase.WithSnapshotPublisher(publisher.NewRedisLivePublisher(client, publisher.RedisLivePublisherConfig{
			MaxLen:         cfg.LivePublishStreamMaxLen,
			CircuitBreaker: resilience.DefaultCircuitBreakerConfig(),
		}, logger)))
		logger.Info("live snapshot publishing enabled", "max_len", cfg.LivePublishStreamMaxLen)
	}

	liveSvc := usecase.NewLiveMatchService(football, basketball, usecase.LiveMatchServiceConfig{
		CacheTTL:         cfg.LiveCacheTTL,
		NBALeagueIDs:     cfg.NBALeagueIDs,
		FanoutWorkers:    cfg.LiveFanoutWorkers,
		UpstreamTimeout:  cfg.APISportsTimeout,
		APIKeyConfigured: cfg.HasAPISportsKey(),
	}, liveOpts...)
	oddsSvc := usecase.NewOddsService()

	handlerCfg := httpapi.HandlerConfig{
		StreamInterval: cfg.LiveStreamInterval,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}
	routerCfg := httpapi.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
		IDGenerator:        idgen.NewUUIDGenerator(),
	}
	if metrics != nil {
		handlerCfg.StreamMetrics = metrics
		routerCfg.Metrics = metrics
		routerCfg.MetricsHandler = metrics.Handler()
	}

	handler := httpapi.NewHandler(liveSvc, oddsSvc, logger.Named("httpapi"), handlerCfg)
	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(handler, logger.Named("http"), routerCfg),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	a.Server.RegisterOnShutdown(handler.CloseStreams)

	built = true
	return a, nil
}

// Close drains background jobs and releases the optional backends. It is
// called after the HTTP server has been shut down.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.pool.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("drain background jobs: %w", err))
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close db: %w", err))
		}
	}
	return errors.Join(errs...)
}
