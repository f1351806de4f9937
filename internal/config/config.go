package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/shenikar/traffic_alert_bot/internal/geo"
)

const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	EnvFile  string `env:"-"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`

	// Credentials
	YandexAPIKey   string `env:"YANDEX_MAPS_API_KEY" validate:"required"`
	TelegramToken  string `env:"TG_API_KEY" validate:"required"`
	AdminChatID    int64  `env:"ADMIN_CHAT_ID"`
	APIKeys        []string
	SourceTimeout  time.Duration `env:"TILE_FETCH_TIMEOUT" envDefault:"5s" validate:"gt=0"`
	TileConcurrent int           `env:"TILE_CONCURRENCY" envDefault:"4" validate:"gte=1,lte=64"`
	SendTimeout    time.Duration `env:"SEND_TIMEOUT" envDefault:"10s" validate:"gt=0"`

	// Tracking area
	LatMin       float64       `env:"LAT_MIN" envDefault:"55.55" validate:"latitude"`
	LonMin       float64       `env:"LON_MIN" envDefault:"37.35" validate:"longitude"`
	LatMax       float64       `env:"LAT_MAX" envDefault:"55.91" validate:"latitude"`
	LonMax       float64       `env:"LON_MAX" envDefault:"37.85" validate:"longitude"`
	Zoom         int           `env:"ZOOM" envDefault:"11" validate:"gte=1,lte=21"`
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"15" validate:"gt=0"`

	// Storage
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"file" validate:"oneof=file postgres"`
	DataDir       string `env:"DATA_DIR" envDefault:"."`
	DatabaseURL   string `env:"DATABASE_URL" validate:"required_if=StorageDriver postgres"`

	// Redis Config
	RedisAddr string `env:"REDIS_ADDR"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Webhook Config
	WebhookURL        string        `env:"WEBHOOK_URL" validate:"omitempty,url"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"3"`
	WebhookBaseDelay  time.Duration `env:"WEBHOOK_BASE_DELAY" envDefault:"1s"`
}

// BBox возвращает нормализованную область наблюдения
func (c *Config) BBox() geo.BBox {
	return geo.NewBBox(c.LatMin, c.LonMin, c.LatMax, c.LonMax)
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла %s: %w", envFile, err)
	}

	cfg := &Config{
		EnvFile:           envFile,
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		YandexAPIKey:      os.Getenv("YANDEX_MAPS_API_KEY"),
		TelegramToken:     os.Getenv("TG_API_KEY"),
		AdminChatID:       getEnvAsInt64("ADMIN_CHAT_ID", 0),
		SourceTimeout:     getEnvAsDuration("TILE_FETCH_TIMEOUT", 5*time.Second),
		TileConcurrent:    getEnvAsInt("TILE_CONCURRENCY", 4),
		SendTimeout:       getEnvAsDuration("SEND_TIMEOUT", 10*time.Second),
		LatMin:            getEnvAsFloat("LAT_MIN", 55.55),
		LonMin:            getEnvAsFloat("LON_MIN", 37.35),
		LatMax:            getEnvAsFloat("LAT_MAX", 55.91),
		LonMax:            getEnvAsFloat("LON_MAX", 37.85),
		Zoom:              getEnvAsInt("ZOOM", 11),
		PollInterval:      getEnvAsSeconds("POLL_INTERVAL", 15*time.Second),
		StorageDriver:     getEnv("STORAGE_DRIVER", StorageFile),
		DataDir:           getEnv("DATA_DIR", "."),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPass:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getEnvAsInt("REDIS_DB", 0),
		WebhookURL:        os.Getenv("WEBHOOK_URL"),
		WebhookSecret:     os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout:    getEnvAsDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookMaxRetries: getEnvAsInt("WEBHOOK_MAX_RETRIES", 3),
		WebhookBaseDelay:  getEnvAsDuration("WEBHOOK_BASE_DELAY", time.Second),
	}

	// Загрузка API ключей
	apiKeysStr := os.Getenv("API_KEYS")
	if apiKeysStr != "" {
		for _, key := range strings.Split(apiKeysStr, ",") {
			if key = strings.TrimSpace(key); key != "" {
				cfg.APIKeys = append(cfg.APIKeys, key)
			}
		}
	}

	// Углы области задаются в любом порядке
	box := cfg.BBox()
	cfg.LatMin, cfg.LonMin, cfg.LatMax, cfg.LonMax = box.LatMin, box.LonMin, box.LatMax, box.LonMax

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет обязательные параметры и диапазоны
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}

// getEnvAsSeconds понимает как "15", так и "15s"
func getEnvAsSeconds(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if seconds, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return getEnvAsDuration(key, defaultValue)
}
