package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/renzyndrome/tasty-telegram-bot/internal/config"
	"github.com/renzyndrome/tasty-telegram-bot/internal/domain"
	"github.com/renzyndrome/tasty-telegram-bot/internal/logger"
	"github.com/renzyndrome/tasty-telegram-bot/internal/queue"
	"github.com/renzyndrome/tasty-telegram-bot/internal/service"
	"github.com/renzyndrome/tasty-telegram-bot/internal/store"
	"github.com/renzyndrome/tasty-telegram-bot/internal/telegram"
	"github.com/renzyndrome/tasty-telegram-bot/internal/worker"
)

func main() {
	if err := config.LoadDotEnv(".env", ".env.local"); err != nil {
		fmt.Fprintf(os.Stderr, "failed loading .env files: %v\n", err)
	}
	cfg := config.Load()

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q: %v\n", cfg.LogLevel, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := telegram.NewClient(telegram.ClientConfig{
		Token:         cfg.TelegramBotToken,
		BaseURL:       cfg.TelegramBaseURL,
		SendRateRPS:   cfg.SendRateRPS,
		SendRateBurst: cfg.SendRateBurst,
	})
	if !client.Available() {
		log.Fatal().Msg("TELEGRAM_BOT_TOKEN is required")
	}

	rowStore, storeCloser := setupStore(ctx, cfg, log)
	defer storeCloser()

	reportQueue, queueCloser := setupQueue(ctx, cfg, log)
	defer queueCloser()

	required := domain.ParseRequiredFields(cfg.RequiredFields)
	ingestor := service.NewIngestor(reportQueue, client, required, log)

	flusher := worker.NewFlusher(
		reportQueue,
		rowStore,
		time.Duration(cfg.FlushIntervalMS)*time.Millisecond,
		cfg.FlushMaxAttempts,
		log,
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		flusher.Start(ctx)
	}()

	log.Info().
		Int("flush_interval_ms", cfg.FlushIntervalMS).
		Msg("bot started")

	poller := telegram.NewPoller(client, ingestor.HandleMessage, cfg.TelegramPollTimeout, log)
	poller.Run(ctx)

	wg.Wait()
	log.Info().Msg("bot stopped")
}

func setupStore(ctx context.Context, cfg config.Config, log zerolog.Logger) (store.RowStore, func()) {
	sheets := store.NewSheetsStore(store.SheetsConfig{
		SpreadsheetID: cfg.SheetsSpreadsheetID,
		AccessToken:   cfg.SheetsAccessToken,
		BaseURL:       cfg.SheetsBaseURL,
		Timeout:       time.Duration(cfg.SheetsTimeoutMS) * time.Millisecond,
		MaxRetries:    cfg.SheetsMaxRetries,
	})
	if sheets.Available() {
		log.Info().Msg("sheets store initialized")
		return sheets, func() {}
	}

	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err == nil {
			log.Info().Msg("postgres store initialized")
			return pg, pg.Close
		}
		log.Error().Err(err).Msg("failed to initialize postgres store, fallback to memory")
	}

	log.Warn().Msg("no sheet or database configured, rows stay in memory")
	return store.NewMemoryStore(), func() {}
}

func setupQueue(ctx context.Context, cfg config.Config, log zerolog.Logger) (queue.Queue, func()) {
	if cfg.RedisAddr == "" {
		log.Info().Msg("REDIS_ADDR not configured, using in-memory queue")
		return queue.NewMemoryQueue(), func() {}
	}

	redisQueue, err := queue.NewRedisQueue(ctx, queue.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Key:      cfg.RedisQueueKey,
	}, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize redis queue, fallback to memory")
		return queue.NewMemoryQueue(), func() {}
	}

	log.Info().Msg("redis queue initialized")
	return redisQueue, func() {
		_ = redisQueue.Close()
	}
}
