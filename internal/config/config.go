package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment          string
	LogLevel             string
	DBDSN                string
	HTTPAddr             string
	JWTSecret            string
	SweepInterval        time.Duration
	VideoBaseURL         string
	PaymentWebhookSecret string
	TelegramToken        string
	TelegramChatID       string
	PublicBaseURL        string
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return FromEnv(os.Getenv)
}

// FromEnv собирает конфиг из произвольного источника переменных
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Environment:          getenv("ENV"),
		LogLevel:             strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL"))),
		DBDSN:                getenv("DB_DSN"),
		HTTPAddr:             getenv("HTTP_ADDR"),
		JWTSecret:            getenv("JWT_SECRET"),
		VideoBaseURL:         getenv("VIDEO_BASE_URL"),
		PaymentWebhookSecret: getenv("PAYMENT_WEBHOOK_SECRET"),
		TelegramToken:        getenv("TELEGRAM_TOKEN"),
		TelegramChatID:       strings.TrimSpace(getenv("TELEGRAM_CHAT_ID")),
		PublicBaseURL:        getenv("PUBLIC_BASE_URL"),
	}

	// Устанавливаем дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.VideoBaseURL == "" {
		cfg.VideoBaseURL = "https://meet.jit.si"
	}

	cfg.SweepInterval = 60 * time.Second
	if raw := getenv("SWEEP_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("SWEEP_INTERVAL: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", d)
		}
		cfg.SweepInterval = d
	}

	// Проверяем обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}
	if (cfg.TelegramToken == "") != (cfg.TelegramChatID == "") {
		return nil, fmt.Errorf("TELEGRAM_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}

	return cfg, nil
}

// TelegramEnabled зеркало объявлений в Telegram включено
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != ""
}

// TelegramChat числовой id чата или @username как есть
func (c *Config) TelegramChat() any {
	if id, err := strconv.ParseInt(c.TelegramChatID, 10, 64); err == nil {
		return id
	}
	return c.TelegramChatID
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}
