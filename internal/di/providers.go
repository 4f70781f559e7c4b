package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"SqueezeScan/internal/domain/repository"
	"SqueezeScan/internal/engine"
	"SqueezeScan/internal/handler/api"
	"SqueezeScan/internal/handler/ws"
	mid "SqueezeScan/internal/middleware"
	internalrepo "SqueezeScan/internal/repository"
	icache "SqueezeScan/internal/service/cache"
	"SqueezeScan/internal/service/marketdata"
	"SqueezeScan/internal/usecase"
	"SqueezeScan/pkg/cache"
	pkgch "SqueezeScan/pkg/clickhouse"
	"SqueezeScan/pkg/config"
	pkgkafka "SqueezeScan/pkg/kafka"
	applogger "SqueezeScan/pkg/logger"
	"SqueezeScan/pkg/metrics"
	pkgqueue "SqueezeScan/pkg/queue"
	"SqueezeScan/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideEngine creates the squeeze engine from config.
func ProvideEngine(cfg *config.Config) *engine.Engine {
	return engine.New(cfg.Engine)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, []string{"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideBarStore creates the ClickHouse bar and scan store.
func ProvideBarStore(chClient *pkgch.Client, l *applogger.Logger) (*internalrepo.CHBarStore, error) {
	store := internalrepo.NewCHBarStore(chClient)
	store.SetLogger(l)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("bar store init: %w", err)
	}
	return store, nil
}

// ProvideRedisCache creates the Redis cache used for bar responses, or nil
// when Redis is disabled.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("redis addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("redis port: %w", err)
	}
	return cache.NewRedisCache(
		cache.WithRedisHost(host),
		cache.WithRedisPort(port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix("squeezescan"),
	)
}

// ProvideBarSource creates the market data client.
func ProvideBarSource(cfg *config.Config, rc *cache.RedisCache, l *applogger.Logger) repository.BarSource {
	opts := []marketdata.Option{
		marketdata.WithRateLimit(cfg.MarketData.RequestsPerSec, cfg.MarketData.Burst),
		marketdata.WithSymbolSuffix(cfg.MarketData.SymbolSuffix),
	}
	if rc != nil {
		layered := cache.NewLayeredCache(rc)
		opts = append(opts, marketdata.WithCache(layered, cfg.MarketData.CacheTTL.Short, cfg.MarketData.CacheTTL.Long))
	}
	return marketdata.New(cfg.MarketData.BaseURL, cfg.MarketData.Timeout, l, opts...)
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideAlertPublisher creates the Kafka alert publisher repository.
func ProvideAlertPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.AlertPublisher {
	return internalrepo.NewKafkaAlertPublisher(producer, cfg.Kafka.AlertTopic)
}

// ProvideAlertPipeline creates the buffering alert dispatch pipeline.
func ProvideAlertPipeline(pub repository.AlertPublisher, m repository.Metrics) *mid.AlertPipeline {
	return mid.NewAlertPipeline(pub, m,
		mid.WithCooldown(time.Minute),
		mid.WithBufferSize(512),
	)
}

// ProvideScanner creates the squeeze scanner use case.
func ProvideScanner(
	source repository.BarSource,
	store *internalrepo.CHBarStore,
	eng *engine.Engine,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.SqueezeScanner {
	s := usecase.NewSqueezeScanner(
		source, store, store, eng, m, l,
		cfg.Scanner.Workers, cfg.Scanner.MinDataPoints,
	)
	var results icache.BytesCache
	if cfg.Redis.Enabled {
		results = icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	} else {
		results = icache.NewTTLCache()
	}
	s.SetResultCache(results, cfg.Scanner.ResultTTL)
	return s
}

// ProvideAlerts creates the alerts use case wired to the dispatch pipeline.
func ProvideAlerts(l *applogger.Logger, pipe *mid.AlertPipeline) *usecase.AlertsUseCase {
	uc := usecase.NewAlertsUseCase(l)
	uc.SetDispatcher(pipe.Process)
	return uc
}

// ProvideWatchlist creates the tracked-symbol registry.
func ProvideWatchlist() *usecase.WatchlistUseCase {
	return usecase.NewWatchlistUseCase()
}

// ProvideBars creates the stored-bars use case.
func ProvideBars(store *internalrepo.CHBarStore) *usecase.BarsUseCase {
	return usecase.NewBarsUseCase(store)
}

// ProvideHistory creates the squeeze history use case.
func ProvideHistory(source repository.BarSource, eng *engine.Engine) *usecase.HistoryUseCase {
	return usecase.NewHistoryUseCase(source, eng)
}

// ProvideIndicators creates the indicator rows use case.
func ProvideIndicators(source repository.BarSource, eng *engine.Engine) *usecase.IndicatorsUseCase {
	return usecase.NewIndicatorsUseCase(source, eng)
}

// ProvideProgressHub creates the WebSocket progress hub.
func ProvideProgressHub(l *applogger.Logger) *ws.ProgressHub {
	return ws.NewProgressHub(l)
}

// ProvideScanQueue creates the Redis-backed scan job queue consumer, or nil
// when Redis is disabled.
func ProvideScanQueue(
	cfg *config.Config,
	rc *cache.RedisCache,
	l *applogger.Logger,
	scanner *usecase.SqueezeScanner,
	alerts *usecase.AlertsUseCase,
) *pkgqueue.RedisQueue {
	if rc == nil {
		return nil
	}
	job := usecase.NewScanJob(scanner, alerts, l)
	return pkgqueue.NewRedisConsumer(l,
		&pkgqueue.QueueConfig{
			Workers:    cfg.Scanner.Workers,
			QueueSize:  1024,
			RetryLimit: 3,
			RetryDelay: 5 * time.Second,
		},
		rc.Client(),
		[]pkgqueue.Job{job},
		pkgqueue.WithKeyPrefix(cfg.Scanner.QueueName),
	)
}

// ProvideHandler creates the HTTP handler with all use cases.
func ProvideHandler(
	l *applogger.Logger,
	scanner *usecase.SqueezeScanner,
	history *usecase.HistoryUseCase,
	indicators *usecase.IndicatorsUseCase,
	alerts *usecase.AlertsUseCase,
	bars *usecase.BarsUseCase,
	watchlist *usecase.WatchlistUseCase,
	hub *ws.ProgressHub,
	queue *pkgqueue.RedisQueue,
	cfg *config.Config,
) *api.ScannerHandler {
	scanner.SetProgressSink(hub)
	h := api.NewScannerHandler(
		l, scanner, history, indicators, alerts, bars, watchlist,
		cfg.Scanner.Symbols,
		repository.NormalizePeriod(cfg.Scanner.Period),
	)
	if queue != nil {
		h.SetQueue(queue)
	}
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler *api.ScannerHandler,
	hub *ws.ProgressHub,
	pipe *mid.AlertPipeline,
	queue *pkgqueue.RedisQueue,
	store *internalrepo.CHBarStore,
	pub repository.AlertPublisher,
) *server.App {
	return server.New(cfg, l, handler, hub, pipe, queue, store, pub)
}
