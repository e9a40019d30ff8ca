package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	TelegramBotToken string
	ImageProvider    string

	FusionBrainAPIKey    string
	FusionBrainSecretKey string
	FusionBrainBaseURL   string
	FusionBrainStylesURL string

	YandexAPIKey   string
	YandexFolderID string
	YandexBaseURL  string

	DatabaseURL string
	HealthAddr  string

	PollInterval    time.Duration
	PollMaxAttempts int
	RequestTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
// The bot token and the credentials of the selected image provider are
// required; their absence is a startup error, never a runtime one.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		ImageProvider:    getEnv("IMAGE_PROVIDER", "fusionbrain"),

		FusionBrainAPIKey:    os.Getenv("FUSIONBRAIN_API_KEY"),
		FusionBrainSecretKey: os.Getenv("FUSIONBRAIN_SECRET_KEY"),
		FusionBrainBaseURL:   getEnv("FUSIONBRAIN_BASE_URL", "https://api-key.fusionbrain.ai"),
		FusionBrainStylesURL: getEnv("FUSIONBRAIN_STYLES_URL", "https://cdn.fusionbrain.ai/static/styles/key"),

		YandexAPIKey:   os.Getenv("YANDEX_API_KEY"),
		YandexFolderID: os.Getenv("YANDEX_FOLDER_ID"),
		YandexBaseURL:  getEnv("YANDEX_BASE_URL", "https://llm.api.cloud.yandex.net"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		HealthAddr:  os.Getenv("HEALTH_ADDR"),

		PollInterval:    time.Second * time.Duration(getEnvInt("GEN_POLL_INTERVAL_SECONDS", 4)),
		PollMaxAttempts: getEnvInt("GEN_POLL_MAX_ATTEMPTS", 20),
		RequestTimeout:  time.Second * time.Duration(getEnvInt("GEN_REQUEST_TIMEOUT_SECONDS", 30)),
	}

	if cfg.TelegramBotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	switch cfg.ImageProvider {
	case "fusionbrain":
		if cfg.FusionBrainAPIKey == "" {
			return nil, fmt.Errorf("FUSIONBRAIN_API_KEY is required")
		}
		if cfg.FusionBrainSecretKey == "" {
			return nil, fmt.Errorf("FUSIONBRAIN_SECRET_KEY is required")
		}
	case "yandexart":
		if cfg.YandexAPIKey == "" {
			return nil, fmt.Errorf("YANDEX_API_KEY is required")
		}
		if cfg.YandexFolderID == "" {
			return nil, fmt.Errorf("YANDEX_FOLDER_ID is required")
		}
	default:
		return nil, fmt.Errorf("unknown IMAGE_PROVIDER %q", cfg.ImageProvider)
	}

	if cfg.PollMaxAttempts < 1 {
		return nil, fmt.Errorf("GEN_POLL_MAX_ATTEMPTS must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
