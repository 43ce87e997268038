package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/Freeeeeet/gatekeeper_bot/internal/model"
	"github.com/Freeeeeet/gatekeeper_bot/internal/repository/store"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Mode способ получения обновлений
type Mode string

const (
	ModePolling Mode = "polling"
	ModeWebhook Mode = "webhook"
)

const (
	defaultWebhookPath     = "/api/bot"
	defaultHTTPAddr        = ":8080"
	defaultSQLitePath      = "gatekeeper.db"
	defaultMigrationsPath  = "migrations"
	defaultReasonTTL       = 7 * 24 * time.Hour
	defaultTimezone        = "Europe/Berlin"
	defaultLanguage        = "de"
	defaultCleanupSchedule = "@every 1h"
)

type Config struct {
	TelegramToken     string
	TargetChatID      int64
	AdminReviewChatID int64
	Environment       string
	LogLevel          string

	Mode               Mode
	PublicBaseURL      string
	WebhookPath        string
	WebhookSecretToken string
	HTTPAddr           string

	StorageType    store.Type
	DBDSN          string
	SQLitePath     string
	MigrationsPath string
	ReasonTTL      time.Duration

	MinReasonWords int
	MaxReasonChars int
	Timezone       string
	Location       *time.Location
	Language       string

	CleanupSchedule string
}

// Load читает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return FromEnv()
}

// FromEnv собирает конфиг из окружения и проверяет его
func FromEnv() (*Config, error) {
	cfg := &Config{
		TelegramToken:      os.Getenv("TELEGRAM_TOKEN"),
		Environment:        getenv("ENV", "development"),
		LogLevel:           os.Getenv("LOG_LEVEL"),
		Mode:               Mode(strings.ToLower(getenv("MODE", string(ModePolling)))),
		PublicBaseURL:      strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		WebhookPath:        getenv("WEBHOOK_PATH", defaultWebhookPath),
		WebhookSecretToken: os.Getenv("WEBHOOK_SECRET_TOKEN"),
		HTTPAddr:           getenv("HTTP_ADDR", defaultHTTPAddr),
		DBDSN:              os.Getenv("DB_DSN"),
		SQLitePath:         getenv("SQLITE_PATH", defaultSQLitePath),
		MigrationsPath:     getenv("MIGRATIONS_PATH", defaultMigrationsPath),
		Timezone:           getenv("TIMEZONE", defaultTimezone),
		Language:           strings.ToLower(getenv("LANGUAGE", defaultLanguage)),
		CleanupSchedule:    getenv("CLEANUP_SCHEDULE", defaultCleanupSchedule),
	}

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required but not set")
	}

	var err error
	if cfg.TargetChatID, err = chatID("TARGET_CHAT_ID"); err != nil {
		return nil, err
	}
	if cfg.AdminReviewChatID, err = chatID("ADMIN_REVIEW_CHAT_ID"); err != nil {
		return nil, err
	}

	switch cfg.Mode {
	case ModePolling:
	case ModeWebhook:
		if cfg.PublicBaseURL == "" {
			return nil, fmt.Errorf("PUBLIC_BASE_URL is required in webhook mode")
		}
	default:
		return nil, fmt.Errorf("MODE must be polling or webhook, got %q", cfg.Mode)
	}
	if !strings.HasPrefix(cfg.WebhookPath, "/") {
		cfg.WebhookPath = "/" + cfg.WebhookPath
	}

	if cfg.StorageType, err = store.ParseType(strings.ToLower(os.Getenv("STORAGE_TYPE"))); err != nil {
		return nil, fmt.Errorf("STORAGE_TYPE: %w", err)
	}
	if cfg.StorageType == "" {
		cfg.StorageType = store.TypeMemory
		if cfg.DBDSN != "" {
			cfg.StorageType = store.TypePostgres
		}
	}
	if cfg.StorageType == store.TypePostgres && cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required for postgres storage")
	}

	ttlSeconds, err := positiveInt("REASON_TTL_SECONDS", int(defaultReasonTTL/time.Second))
	if err != nil {
		return nil, err
	}
	cfg.ReasonTTL = time.Duration(ttlSeconds) * time.Second

	if cfg.MinReasonWords, err = positiveInt("MIN_REASON_WORDS", model.DefaultMinReasonWords); err != nil {
		return nil, err
	}
	if cfg.MaxReasonChars, err = positiveInt("MAX_REASON_CHARS", model.DefaultMaxReasonChars); err != nil {
		return nil, err
	}

	if cfg.Location, err = time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}

	if cfg.Language != "de" && cfg.Language != "en" {
		return nil, fmt.Errorf("LANGUAGE must be de or en, got %q", cfg.Language)
	}

	if _, err := cron.ParseStandard(cfg.CleanupSchedule); err != nil {
		return nil, fmt.Errorf("CLEANUP_SCHEDULE: %w", err)
	}

	return cfg, nil
}

// ValidationRules границы проверки текста пользователя
func (c *Config) ValidationRules() model.ValidationRules {
	return model.ValidationRules{
		MinReasonWords: c.MinReasonWords,
		MaxChars:       c.MaxReasonChars,
	}
}

// WebhookURL полный адрес вебхука
func (c *Config) WebhookURL() string {
	return c.PublicBaseURL + c.WebhookPath
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// chatID обязательный отрицательный ID группы
func chatID(key string) (int64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, fmt.Errorf("%s is required but not set", key)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	if id >= 0 {
		return 0, fmt.Errorf("%s must be a negative group chat id, got %d", key, id)
	}
	return id, nil
}

func positiveInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return n, nil
}
