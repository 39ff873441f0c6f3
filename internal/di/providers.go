package di

import (
	"context"
	"fmt"
	"sync"
	"time"

	"PriceCast/internal/domain/repository"
	"PriceCast/internal/handler/api"
	internalrepo "PriceCast/internal/repository"
	"PriceCast/internal/service/cache"
	"PriceCast/internal/service/ratelimit"
	"PriceCast/internal/services/ml"
	"PriceCast/internal/usecase"
	pkgch "PriceCast/pkg/clickhouse"
	"PriceCast/pkg/config"
	pkgkafka "PriceCast/pkg/kafka"
	applogger "PriceCast/pkg/logger"
	"PriceCast/pkg/metrics"
	"PriceCast/pkg/server"
)

const (
	SourceCSV        = "csv"
	SourceClickHouse = "clickhouse"

	loadTimeout = 2 * time.Minute
)

// ProvideLogger builds the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideClickHouseClient creates a ClickHouse client when ClickHouse is the data source.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Data.Source != SourceClickHouse {
		return nil, nil
	}
	return NewClickHouseClient(cfg)
}

// NewClickHouseClient connects and makes sure the observation table exists.
func NewClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(4, 2),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database,
		internalrepo.CreateTableStmt(ObservationTable(cfg)),
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ObservationTable is the fully qualified ClickHouse table name.
func ObservationTable(cfg *config.Config) string {
	return cfg.ClickHouse.Database + "." + cfg.ClickHouse.Table
}

// ProvideObservationSource selects the CSV or ClickHouse reader.
func ProvideObservationSource(cfg *config.Config, ch *pkgch.Client, l *applogger.Logger) (repository.ObservationSource, error) {
	switch cfg.Data.Source {
	case SourceClickHouse:
		if ch == nil {
			return nil, fmt.Errorf("clickhouse source selected but client is not configured")
		}
		src := internalrepo.NewCHObservationSource(ch, ObservationTable(cfg))
		src.SetLogger(l)
		src.SetTickers(cfg.Data.Tickers)
		return src, nil
	case SourceCSV, "":
		src := internalrepo.NewCSVObservationSource(cfg.Data.CSVPath)
		src.SetLogger(l)
		src.SetTickers(cfg.Data.Tickers)
		return src, nil
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Data.Source)
	}
}

// ProvideSeriesStore loads the observation table into memory.
func ProvideSeriesStore(src repository.ObservationSource, l *applogger.Logger) (repository.SeriesStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	obs, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}
	store, err := internalrepo.NewMemorySeriesStore(obs, l)
	if err != nil {
		return nil, fmt.Errorf("series store: %w", err)
	}
	return store, nil
}

var defaultRecorder = sync.OnceValue(func() *metrics.Recorder { return metrics.New(nil) })

// ProvideMetrics returns the process-wide Prometheus recorder.
func ProvideMetrics() repository.Metrics {
	return defaultRecorder()
}

// ProvideEventPublisher publishes to Kafka when brokers are configured.
func ProvideEventPublisher(cfg *config.Config) (repository.EventPublisher, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return internalrepo.NopPublisher{}, nil
	}
	producer, err := pkgkafka.NewProducer(KafkaProducerConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.Topic), nil
}

// KafkaProducerConfig maps the kafka config section onto the producer. Events are
// keyed by model id or ticker, so hashing by key keeps each ticker's events ordered.
func KafkaProducerConfig(cfg *config.Config) pkgkafka.ProducerConfig {
	pc := pkgkafka.DefaultProducerConfig()
	pc.Brokers = cfg.Kafka.Brokers
	pc.RequiredAcks = cfg.Kafka.RequiredAcks
	pc.Compression = cfg.Kafka.Compression
	pc.MaxAttempts = cfg.Kafka.MaxAttempts
	pc.WriteTimeout = cfg.Kafka.WriteTimeout
	pc.ReadTimeout = cfg.Kafka.ReadTimeout
	pc.Async = cfg.Kafka.Async
	return pc
}

// ProvideTrainer maps model config onto trainer hyper-parameters.
func ProvideTrainer(cfg *config.Config) *usecase.Trainer {
	return usecase.NewTrainer(usecase.TrainerConfig{
		PredictionDays: cfg.Model.PredictionDays,
		Trees:          cfg.Model.Trees,
		Workers:        cfg.Model.Workers,
		Tree: ml.TreeParams{
			MaxDepth:        cfg.Model.MaxDepth,
			MinSamplesSplit: cfg.Model.MinSamplesSplit,
			MinSamplesLeaf:  cfg.Model.MinSamplesLeaf,
			MaxFeatures:     cfg.Model.MaxFeatures,
		},
	})
}

func ProvideForecaster(store repository.SeriesStore) *usecase.Forecaster {
	return usecase.NewForecaster(store)
}

// ProvidePredictor assembles the predictor with its ambient collaborators.
func ProvidePredictor(
	store repository.SeriesStore,
	trainer *usecase.Trainer,
	forecaster *usecase.Forecaster,
	pub repository.EventPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.Predictor {
	p := usecase.NewPredictor(store, trainer, forecaster)
	p.SetPublisher(pub)
	p.SetMetrics(m)
	p.SetLogger(l)
	return p
}

// ProvideCache uses Redis when enabled and reachable, else an in-process cache.
func ProvideCache(cfg *config.Config, l *applogger.Logger) cache.BytesCache {
	if !cfg.Redis.Enabled {
		return cache.NewTTLCache()
	}
	rc := cache.NewRedisCache(cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		l.Warn("redis unavailable, using in-memory cache",
			applogger.String("addr", cfg.Redis.Addr), applogger.Error(err))
		_ = rc.Close()
		return cache.NewTTLCache()
	}
	return rc
}

// ProvideLimiter allows a burst of 3 training requests per client, refilled once a minute.
func ProvideLimiter() *ratelimit.Limiter {
	return ratelimit.New(3, 1.0/60)
}

func ProvideHandler(
	cfg *config.Config,
	l *applogger.Logger,
	p *usecase.Predictor,
	c cache.BytesCache,
	limiter *ratelimit.Limiter,
) *api.PredictorEchoHandler {
	return api.NewPredictorEchoHandler(l, p, c, cfg.Redis.TTL, limiter)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	p *usecase.Predictor,
	h *api.PredictorEchoHandler,
	pub repository.EventPublisher,
	ch *pkgch.Client,
) *server.App {
	app := server.New(cfg, l, p, pub, ch)
	app.SetHTTPHandler(h)
	return app
}

// ProvideRuntime bundles the predictor for one-shot CLI commands.
func ProvideRuntime(
	l *applogger.Logger,
	p *usecase.Predictor,
	pub repository.EventPublisher,
	ch *pkgch.Client,
) *Runtime {
	return &Runtime{Logger: l, Predictor: p, pub: pub, ch: ch}
}
