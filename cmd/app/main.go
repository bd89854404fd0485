package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"notion-reminder-service/internal/config"
	"notion-reminder-service/internal/domain/ports/adapter"
	aiAdapters "notion-reminder-service/internal/infra/adapters/ai"
	tele "notion-reminder-service/internal/infra/adapters/telegram"
	"notion-reminder-service/internal/infra/api"
	pg "notion-reminder-service/internal/infra/db/postgres"
	"notion-reminder-service/internal/infra/logging"
	"notion-reminder-service/internal/infra/metrics"
	red "notion-reminder-service/internal/infra/redis"
	"notion-reminder-service/internal/infra/sched"
	"notion-reminder-service/internal/infra/weatherapi"
	"notion-reminder-service/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "developer mode: console logs, no live Telegram/Gemini calls")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()

	loc, err := cfg.Weather.Location()
	if err != nil {
		logger.Fatal().Err(err).Str("timezone", cfg.Weather.Timezone).Msg("invalid business timezone")
	}
	clock := clockwork.NewRealClock()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	stationRepo := pg.NewStationRepo(pool)
	dayRepo := pg.NewDayRepo(pool)
	slotRepo := pg.NewSlotRepo(pool)
	intensityRepo := pg.NewIntensityRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Provider ----
	weather := weatherapi.NewClient(cfg.Weather.BaseURL, cfg.Weather.Timeout, clock, loc, logger)

	// ---- Outbound adapters ----
	var bot adapter.TelegramBotAdapter
	if cfg.Runtime.Dev || cfg.Bot.Token == "" {
		bot = tele.NewNoopBotAdapter(logger)
	} else {
		bot, err = tele.NewRealBotAdapter(cfg.Bot.Token, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram bot init failed")
		}
	}

	var summarizer adapter.Summarizer
	if cfg.Runtime.Dev || cfg.AI.GeminiKey == "" {
		summarizer = aiAdapters.NewNoopSummarizer()
	} else {
		summarizer, err = aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.Model, cfg.AI.MaxOutputTokens)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini init failed")
		}
	}

	// ---- Use cases ----
	rainfallUC := usecase.NewRainfallUseCase(
		weather, dayRepo, slotRepo, stationRepo, intensityRepo,
		txManager, locker, cfg.Redis.LockTTL, clock, loc, logger,
	)
	messageUC := usecase.NewWeatherMessageUseCase(
		rainfallUC, weather, intensityRepo, summarizer, bot,
		cfg.Bot.ChatID, logger,
	)

	// ---- HTTP server ----
	auth := api.NewAuthManager(cfg.Admin.JWTSecret, !cfg.Runtime.Dev, cfg.Admin.SessionTTL)
	srv := api.NewServer(rainfallUC, messageUC, stationRepo, intensityRepo, auth, cfg.Admin.APIKey, cfg.Jobs, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- In-process scheduling (optional) ----
	if cfg.Scheduler.Enable {
		ingestWorker := sched.NewIngestWorker(cfg.Scheduler.IngestInterval, rainfallUC, logger)
		go func() { _ = ingestWorker.Run(ctx) }()

		refreshWorker := sched.NewStationRefreshWorker(cfg.Scheduler.StationRefreshInterval, rainfallUC, logger)
		go func() { _ = refreshWorker.Run(ctx) }()
	}

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
}
