package main

import (
	"context"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"terminalcoin/internal/cache"
	"terminalcoin/internal/config"
	"terminalcoin/internal/domain"
	"terminalcoin/internal/job"
	"terminalcoin/internal/metrics"
	"terminalcoin/internal/news"
	"terminalcoin/internal/provider"
	"terminalcoin/internal/service"
	"terminalcoin/internal/ui"
	"terminalcoin/pkg/logger"
	"terminalcoin/pkg/tracing"
)

func main() {
	godotenv.Load()

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logg, err := logger.New(cfg.LogFile, cfg.Debug)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logg.Sync()

	tp, tracer, err := tracing.InitTracer(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			logg.Warnw("error shutting down tracer provider", "error", err)
		}
	}()

	m := metrics.NewMetrics()

	limiter, err := provider.NewRateLimiter(cfg.RateLimitCalls, cfg.RateLimitPeriod)
	if err != nil {
		log.Fatalf("failed to build rate limiter: %v", err)
	}

	httpClient, err := provider.NewHTTPClient(provider.HTTPConfig{
		BaseURL:    cfg.CoinGeckoBaseURL,
		Name:       "coingecko",
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.RequestTimeout,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
	}, limiter, tracer, logg, m)
	if err != nil {
		log.Fatalf("failed to build http client: %v", err)
	}
	gecko := provider.NewCoinGeckoClient(httpClient, tracer, logg, m)

	var store cache.Store = cache.NewMemory()
	if cfg.RedisURL != "" {
		redisStore, err := cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			logg.Warnw("redis unavailable, using in-memory cache", "error", err)
		} else {
			store = redisStore
		}
	}

	markets := service.NewMarketService(
		tracer, gecko, store,
		time.Duration(cfg.CacheTTLSecs)*time.Second,
		cfg.CoinsLimit, cfg.Currency, logg,
	)

	feedClient, err := provider.NewFeedClient(cfg.RequestTimeout, cfg.UserAgent, tracer, logg)
	if err != nil {
		log.Fatalf("failed to build feed client: %v", err)
	}

	pipelineOpts := []news.PipelineOption{
		news.WithMaxPerSource(cfg.NewsPerFeed),
		news.WithPipelineMetrics(m),
	}
	if overlay := news.NewOpenAIScorer(cfg.OpenAIAPIKey, cfg.OpenAIModel); overlay != nil {
		logg.Infow("llm sentiment overlay enabled", "model", cfg.OpenAIModel)
		pipelineOpts = append(pipelineOpts, news.WithOverlay(overlay))
	}
	pipeline := news.NewPipeline(
		feedClient,
		news.NewAssetExtractor(domain.KeywordSymbols),
		news.NewLexiconScorer(),
		tracer, logg,
		pipelineOpts...,
	)

	sink := ui.NewProgramSink()
	poller := job.NewPoller(
		tracer, markets, pipeline, cfg.FeedSources,
		sink,
		time.Duration(cfg.RefreshSecs)*time.Second,
		logg,
	)

	program := tea.NewProgram(ui.NewModel(poller, cfg.NewsDisplay), tea.WithAltScreen())
	sink.SetProgram(program)
	go poller.Start(ctx)

	if _, err := program.Run(); err != nil {
		logg.Errorw("dashboard exited with error", "error", err)
		os.Exit(1)
	}
}
