// tokenpurge удаляет погашенные сессии старше retention.inactive_token_ttl.
// Запускается по расписанию (cron, k8s CronJob) отдельно от сервера
package main

import (
	"HavirKesht_Auth/config"
	"HavirKesht_Auth/config/server"
	"HavirKesht_Auth/internal/logging"
	"HavirKesht_Auth/internal/repository"
	"HavirKesht_Auth/internal/security"
	"HavirKesht_Auth/internal/service"
	"context"
	"log"
	"os"
	"time"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("не удалось загрузить конфигурацию: %v", err)
	}

	logger, err := logging.NewLogger(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("не удалось настроить логгер: %v", err)
	}

	database, err := server.SetupDatabase(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("не удалось подключиться к БД: %v", err)
	}
	defer database.Close()

	issuer, err := security.NewTokenIssuer(security.TokenIssuerConfig{
		SecretKey:       cfg.JWT.SecretKey,
		Issuer:          cfg.JWT.Issuer,
		AccessTokenTTL:  cfg.JWT.AccessTokenTTL,
		RefreshTokenTTL: cfg.JWT.RefreshTokenTTL,
	})
	if err != nil {
		log.Fatalf("не удалось настроить выпуск токенов: %v", err)
	}

	authenticationService := service.NewAuthenticationService(
		repository.NewSQLStore(database),
		issuer,
		security.NewPasswordHasher(cfg.Security.BcryptCost),
		logger.With("job", "tokenpurge"),
	)

	if _, err := authenticationService.PurgeInactiveTokens(ctx, cfg.Retention.InactiveTokenTTL); err != nil {
		logger.Error(ctx, "очистка сессий завершилась с ошибкой", "error", err)
		os.Exit(1)
	}
}
