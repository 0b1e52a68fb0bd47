package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/turfhub/tg_turf_bot/pkg/client/turfapi"
	"github.com/turfhub/tg_turf_bot/pkg/domain/bot/receiver"
	"github.com/turfhub/tg_turf_bot/pkg/domain/bot/receiver/config"
	"github.com/turfhub/tg_turf_bot/pkg/metrics"
	"github.com/turfhub/tg_turf_bot/pkg/repository/cache"
	"github.com/turfhub/tg_turf_bot/pkg/repository/store"
	"github.com/turfhub/tg_turf_bot/pkg/utils/errs"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Err(errs.New("failed to load config").Wrap(err)).Msg("config init")
		return
	}
	if cfg.Debug {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := store.NewRepo(ctx, cfg.PostgreAddr)
	if err != nil {
		logger.Err(errs.New("failed to connect to postgres").Wrap(err)).Msg("db init")
		return
	}
	defer repo.Close()

	var turfCache *cache.Cache
	if cfg.Redis.Addr != "" {
		turfCache, err = cache.New(ctx, cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      time.Duration(cfg.Redis.TurfTTLSeconds) * time.Second,
		})
		if err != nil {
			// The bot works without the cache, just slower on the turf list.
			logger.Warn().Err(err).Msg("redis unavailable, caching disabled")
			turfCache = nil
		} else {
			defer turfCache.Close()
		}
	}

	var m *metrics.Metrics
	if cfg.MetricsPort > 0 {
		m = metrics.New()
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsPort); err != nil {
				logger.Error().Err(err).Msg("metrics server")
			}
		}()
	}

	api := turfapi.New(turfapi.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: time.Duration(cfg.API.TimeoutSeconds) * time.Second,
	}, logger)
	if m != nil {
		api.SetObserver(m.ObserveAPIRequest)
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("create bot api")
		return
	}
	bot.Debug = false
	logger.Info().Str("bot", bot.Self.UserName).Msg("authorized")

	processor := receiver.New(bot, repo, turfCache, api, m, logger)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 10
	updates := bot.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutting down bot")
		bot.StopReceivingUpdates()
	}()

	for update := range updates {
		processor.HandleUpdate(ctx, update)
	}
	logger.Info().Msg("bot stopped")
}
