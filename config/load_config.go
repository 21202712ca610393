package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadConfig собирает конфигурацию: значения по умолчанию, затем .yaml файл
// (если он существует), затем переменные окружения, включая .env
func LoadConfig(filePath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filePath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("ошибка парсинга .yaml файла: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
	}

	// .env не обязателен, в проде переменные задаются окружением
	_ = godotenv.Load()

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("некорректная конфигурация: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Server.Address, "SERVER_ADDRESS")
	setString(&cfg.Database.Driver, "DATABASE_DRIVER")
	setString(&cfg.Database.ConnectionString, "DATABASE_CONNECTION_URL")
	setString(&cfg.JWT.SecretKey, "JWT_SECRET_KEY")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Webhook.URL, "WEBHOOK_URL")
	setString(&cfg.Log.Level, "LOG_LEVEL")

	if err := setDuration(&cfg.JWT.AccessTokenTTL, "JWT_ACCESS_TOKEN_TTL"); err != nil {
		return err
	}
	if err := setDuration(&cfg.JWT.RefreshTokenTTL, "JWT_REFRESH_TOKEN_TTL"); err != nil {
		return err
	}
	return nil
}

func setString(target *string, key string) {
	if value, ok := os.LookupEnv(key); ok {
		*target = value
	}
}

func setDuration(target *time.Duration, key string) error {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("некорректное значение %s: %w", key, err)
	}
	*target = duration
	return nil
}
