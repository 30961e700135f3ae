package di

import (
	"context"
	"fmt"
	"time"

	"CoinSight/internal/domain/repository"
	dservice "CoinSight/internal/domain/service"
	"CoinSight/internal/handler/api"
	mid "CoinSight/internal/middleware"
	internalrepo "CoinSight/internal/repository"
	"CoinSight/internal/service/binance"
	"CoinSight/internal/service/coingecko"
	"CoinSight/internal/service/newsapi"
	"CoinSight/internal/service/openai"
	"CoinSight/internal/usecase"
	"CoinSight/pkg/cache"
	pkgch "CoinSight/pkg/clickhouse"
	"CoinSight/pkg/config"
	xhttp "CoinSight/pkg/http"
	pkgkafka "CoinSight/pkg/kafka"
	applogger "CoinSight/pkg/logger"
	"CoinSight/pkg/metrics"
	"CoinSight/pkg/queue"
	"CoinSight/pkg/ratelimit"
	"CoinSight/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "console"
	if cfg.Environment == "production" {
		format = "json"
	}
	l, err := applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
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

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.SchemaStatements); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
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

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvidePriceStore creates the ClickHouse price store.
func ProvidePriceStore(chClient *pkgch.Client) repository.PriceStore {
	return internalrepo.NewClickHousePriceStore(chClient.DB())
}

// ProvideSentimentStore creates the ClickHouse sentiment store.
func ProvideSentimentStore(chClient *pkgch.Client) repository.SentimentStore {
	return internalrepo.NewClickHouseSentimentStore(chClient.DB())
}

// ProvidePredictionStore creates the ClickHouse prediction store.
func ProvidePredictionStore(chClient *pkgch.Client) repository.PredictionStore {
	return internalrepo.NewClickHousePredictionStore(chClient.DB())
}

// ProvidePredictionPublisher creates the Kafka prediction publisher.
func ProvidePredictionPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideMarketStream creates the Binance WebSocket stream.
func ProvideMarketStream(cfg *config.Config) repository.MarketStream {
	return binance.New(
		cfg.Binance.WebSocketURL,
		cfg.Binance.Symbols,
		cfg.Binance.ReconnectDelay,
		cfg.Binance.PingInterval,
	)
}

// ProvidePriceSource creates the CoinGecko REST client behind its rate limiter.
func ProvidePriceSource(cfg *config.Config, m repository.Metrics, l *applogger.Logger) dservice.PriceSource {
	bucket := ratelimit.PerMinute(cfg.CoinGecko.RatePerMinute, cfg.CoinGecko.Burst)
	invoker := ratelimit.NewInvoker("coingecko", bucket,
		ratelimit.WithMinInterval(cfg.CoinGecko.MinInterval),
		ratelimit.WithWaitTimeout(cfg.CoinGecko.WaitTimeout),
		ratelimit.WithLogger(l),
		ratelimit.WithCapacityHook(func() { m.RecordCapacityExhausted("coingecko") }),
	)
	httpClient := xhttp.NewClient(xhttp.WithTimeout(15 * time.Second))
	return coingecko.New(cfg.CoinGecko.BaseURL, cfg.CoinGecko.APIKey, httpClient, invoker)
}

// ProvideNewsSource creates the NewsAPI client. The quota here is fixed; the
// free tier allows far more than one poll cycle consumes.
func ProvideNewsSource(cfg *config.Config, m repository.Metrics, l *applogger.Logger) dservice.NewsSource {
	bucket := ratelimit.PerMinute(30, 5)
	invoker := ratelimit.NewInvoker("newsapi", bucket,
		ratelimit.WithMinInterval(time.Second),
		ratelimit.WithWaitTimeout(10*time.Second),
		ratelimit.WithLogger(l),
		ratelimit.WithCapacityHook(func() { m.RecordCapacityExhausted("newsapi") }),
	)
	httpClient := xhttp.NewClient(xhttp.WithTimeout(15 * time.Second))
	return newsapi.New(cfg.News.BaseURL, cfg.News.APIKey, cfg.News.MaxItems, httpClient, invoker)
}

// ProvideArticleScorer creates the model scorer behind its dispatcher. A
// missing API key yields an unavailable scorer, not an error.
func ProvideArticleScorer(cfg *config.Config, m repository.Metrics, l *applogger.Logger) dservice.ArticleScorer {
	bucket := ratelimit.PerMinute(cfg.OpenAI.RatePerMinute, cfg.OpenAI.Burst)
	invoker := ratelimit.NewInvoker("openai", bucket,
		ratelimit.WithMinInterval(cfg.OpenAI.MinInterval),
		ratelimit.WithWaitTimeout(cfg.OpenAI.WaitTimeout),
		ratelimit.WithLogger(l),
		ratelimit.WithCapacityHook(func() { m.RecordCapacityExhausted("openai") }),
	)
	dispatcher := queue.NewDispatcher("openai", 1, cfg.OpenAI.QueueSize,
		queue.WithInvoker(invoker),
		queue.WithRetry(3, 2*time.Second),
		queue.WithLogger(l),
		queue.WithDepthHook(func(depth int) { m.RecordQueueDepth("openai", depth) }),
	)
	httpClient := xhttp.NewClient(xhttp.WithTimeout(45 * time.Second))
	return openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model, 30*time.Second, httpClient, dispatcher)
}

// ProvideCacheService creates the forecast cache. Redis failures degrade to
// the in-process cache so a missing Redis never blocks startup.
func ProvideCacheService(cfg *config.Config, l *applogger.Logger) cache.Service {
	if cfg.Cache.Redis.Enabled {
		rc, err := cache.NewRedisCache(
			cache.WithRedisHost(cfg.Cache.Redis.Host),
			cache.WithRedisPort(cfg.Cache.Redis.Port),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
		)
		if err == nil {
			return cache.NewLayeredCache(rc)
		}
		l.Warn("redis unavailable, using in-process cache", applogger.Error(err))
	}
	return cache.NewMemoryCache()
}

// ProvideTickCollector creates the tick collection use case with its
// middleware pipeline between the WebSocket stream and the price store.
func ProvideTickCollector(
	stream repository.MarketStream,
	priceStore repository.PriceStore,
	m repository.Metrics,
) *usecase.TickCollector {
	writer := usecase.NewTickWriter(priceStore)
	pipe := mid.NewIngestPipeline(writer, m,
		mid.WithMaxRPS(20),
		mid.WithBufferSize(1000),
	)
	return usecase.NewTickCollector(stream, writer, m, pipe)
}

// ProvideNewsCollector creates the news collection use case.
func ProvideNewsCollector(
	source dservice.NewsSource,
	scorer dservice.ArticleScorer,
	store repository.SentimentStore,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.NewsCollector {
	return usecase.NewNewsCollector(source, scorer, store, m, l, cfg.News.Categories, cfg.News.PollInterval)
}

// ProvidePredictionProcessor creates the prediction routing use case.
func ProvidePredictionProcessor(
	pub repository.Publisher,
	store repository.PredictionStore,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.PredictionProcessor {
	return usecase.NewPredictionProcessor(pub, store, m, cfg.Backend.Type)
}

// ProvideForecaster creates the forecast use case.
func ProvideForecaster(
	prices dservice.PriceSource,
	priceStore repository.PriceStore,
	sentStore repository.SentimentStore,
	processor *usecase.PredictionProcessor,
	cacheSvc cache.Service,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.Forecaster {
	return usecase.NewForecaster(
		prices,
		priceStore,
		sentStore,
		processor,
		cacheSvc,
		m,
		l,
		cfg.Prediction.Horizons,
		cfg.Prediction.HistoryDays,
		cfg.Cache.TTL.Predictions,
	)
}

// ProvideHTTPHandler creates the Echo route handler.
func ProvideHTTPHandler(
	l *applogger.Logger,
	forecaster *usecase.Forecaster,
	collector *usecase.TickCollector,
) xhttp.Handler {
	return api.NewForecastHandler(l, forecaster, collector)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	tickCollector *usecase.TickCollector,
	newsCollector *usecase.NewsCollector,
	forecaster *usecase.Forecaster,
	predProc *usecase.PredictionProcessor,
	scorer dservice.ArticleScorer,
	producer *pkgkafka.Producer,
	chClient *pkgch.Client,
	handler xhttp.Handler,
) *server.App {
	app := server.New(cfg, tickCollector, newsCollector, forecaster, predProc, scorer, producer, chClient)
	app.SetHTTPHandler(handler)
	return app
}
