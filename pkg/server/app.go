package server

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	dservice "CoinSight/internal/domain/service"
	"CoinSight/internal/usecase"
	pkgch "CoinSight/pkg/clickhouse"
	"CoinSight/pkg/config"
	xhttp "CoinSight/pkg/http"
	pkgkafka "CoinSight/pkg/kafka"
	applogger "CoinSight/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg           *config.Config
	tickCollector *usecase.TickCollector
	newsCollector *usecase.NewsCollector
	forecaster    *usecase.Forecaster
	predProc      *usecase.PredictionProcessor
	scorer        dservice.ArticleScorer
	producer      *pkgkafka.Producer
	chClient      *pkgch.Client
	httpServer    *xhttp.Server
	httpHandler   xhttp.Handler
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	tickCollector *usecase.TickCollector,
	newsCollector *usecase.NewsCollector,
	forecaster *usecase.Forecaster,
	predProc *usecase.PredictionProcessor,
	scorer dservice.ArticleScorer,
	producer *pkgkafka.Producer,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:           cfg,
		tickCollector: tickCollector,
		newsCollector: newsCollector,
		forecaster:    forecaster,
		predProc:      predProc,
		scorer:        scorer,
		producer:      producer,
		chClient:      chClient,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// kafkaLogSink adapts the producer to the log collector's publisher.
type kafkaLogSink struct {
	producer *pkgkafka.Producer
}

func (s kafkaLogSink) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return s.producer.Publish(ctx, topic, nil, payload)
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// init app logger (console info by default)
	l, _ := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})

	// Aggregate error logs into Kafka when a logs topic is configured
	if a.producer != nil && a.cfg.Kafka.LogsTopic != "" {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          a.cfg.Kafka.LogsTopic,
			Publisher:      kafkaLogSink{producer: a.producer},
		})
	}

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Start tick collector (Binance stream -> pipeline -> store)
	go func() {
		if err := a.tickCollector.Start(ctx); err != nil {
			l.Error("tick collector error", applogger.Error(err))
		}
	}()
	l.Info("tick collector started", applogger.Strings("symbols", a.cfg.Binance.Symbols))

	// Start news collector
	if a.newsCollector != nil {
		a.newsCollector.Start(ctx)
		l.Info("news collector started",
			applogger.Duration("interval", a.cfg.News.PollInterval),
		)
	}

	// Periodic forecast refresh keeps the cache and backend warm
	if a.forecaster != nil && a.cfg.Prediction.Interval > 0 {
		go a.runForecastLoop(ctx, l)
		l.Info("forecast loop started",
			applogger.Duration("interval", a.cfg.Prediction.Interval),
			applogger.Ints("horizons", a.cfg.Prediction.Horizons),
		)
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// runForecastLoop evaluates every configured symbol on a fixed interval.
func (a *App) runForecastLoop(ctx context.Context, l *applogger.Logger) {
	run := func() {
		for _, sym := range a.forecastSymbols() {
			if _, err := a.forecaster.Forecast(ctx, sym); err != nil {
				l.Warn("scheduled forecast failed",
					applogger.String("symbol", sym),
					applogger.Error(err),
				)
			}
		}
	}

	run()
	ticker := time.NewTicker(a.cfg.Prediction.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}

// forecastSymbols derives base assets from the stream pairs (BTCUSDT -> BTC).
func (a *App) forecastSymbols() []string {
	out := make([]string, 0, len(a.cfg.Binance.Symbols))
	for _, pair := range a.cfg.Binance.Symbols {
		sym := strings.ToUpper(pair)
		sym = strings.TrimSuffix(sym, "USDT")
		sym = strings.TrimSuffix(sym, "USD")
		if sym != "" {
			out = append(out, sym)
		}
	}
	return out
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	// best-effort logging via stdout
	l, err := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
	if err != nil {
		log.Printf("failed to create logger: %v", err)
		return err
	}
	l.Info("shutting down...")

	// Stop tick collector (pipeline + stream)
	if err := a.tickCollector.Shutdown(ctx); err != nil {
		l.Warn("tick collector stop error", applogger.Error(err))
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	// Drain queued article scoring before the stores go away
	if a.scorer != nil {
		a.scorer.Close()
	}

	// Close processor resources (publisher/storage)
	if a.predProc != nil {
		a.predProc.Close()
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
