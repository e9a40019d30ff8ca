package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"artbot/internal/bot"
	"artbot/internal/http/httpapi"
	"artbot/internal/infra"
	"artbot/internal/providers/fusionbrain"
	"artbot/internal/providers/image"
	"artbot/internal/providers/yandexart"
	"artbot/internal/storage"
)

const waitNoticeInterval = 15 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	generator, err := newGenerator(cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure image provider")
	}

	prefs, cleanup, err := newPrefsStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure preference store")
	}
	defer cleanup()

	tg, err := bot.New(cfg.TelegramBotToken, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to telegram")
	}
	logger.Info().
		Str("username", tg.Username()).
		Str("provider", generator.String()).
		Msg("bot authorized")

	handler := bot.NewHandler(tg.Sender(), generator, prefs, logger, waitNoticeInterval)

	if cfg.HealthAddr != "" {
		server := infra.NewHTTPServer(cfg.HealthAddr, httpapi.NewRouter(tg.Username(), generator.String()))
		go func() {
			logger.Info().Str("addr", cfg.HealthAddr).Msg("health listener started")
			if err := server.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("health listener failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("failed to shutdown health listener")
			}
		}()
	}

	if err := tg.Run(ctx, handler); err != nil && err != context.Canceled {
		logger.Error().Err(err).Msg("update loop stopped")
	}
	logger.Info().Msg("bot stopped")
}

func newGenerator(cfg *infra.Config, logger *infra.Logger) (image.Generator, error) {
	switch cfg.ImageProvider {
	case "fusionbrain":
		client, err := fusionbrain.NewClient(fusionbrain.Options{
			APIKey:         cfg.FusionBrainAPIKey,
			SecretKey:      cfg.FusionBrainSecretKey,
			BaseURL:        cfg.FusionBrainBaseURL,
			StylesURL:      cfg.FusionBrainStylesURL,
			Logger:         logger,
			RequestTimeout: cfg.RequestTimeout,
		})
		if err != nil {
			return nil, err
		}
		return image.NewFusionBrainGenerator(client, cfg.PollInterval, cfg.PollMaxAttempts), nil
	case "yandexart":
		client, err := yandexart.NewClient(yandexart.Options{
			APIKey:         cfg.YandexAPIKey,
			FolderID:       cfg.YandexFolderID,
			BaseURL:        cfg.YandexBaseURL,
			Logger:         logger,
			RequestTimeout: cfg.RequestTimeout,
		})
		if err != nil {
			return nil, err
		}
		return image.NewYandexArtGenerator(client, cfg.PollInterval, cfg.PollMaxAttempts), nil
	}
	return nil, fmt.Errorf("unknown image provider %q", cfg.ImageProvider)
}

func newPrefsStore(ctx context.Context, cfg *infra.Config, logger infra.Logger) (storage.PrefsStore, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Info().Msg("no DATABASE_URL, style preferences kept in memory")
		return storage.NewMemoryStore(), func() {}, nil
	}

	pool, err := infra.NewDBPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	store := storage.NewPostgresStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	logger.Info().Msg("style preferences stored in postgres")
	return store, pool.Close, nil
}
