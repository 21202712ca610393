package main

import (
	"HavirKesht_Auth/config"
	"HavirKesht_Auth/config/server"
	"HavirKesht_Auth/internal/handler"
	"HavirKesht_Auth/internal/limiter"
	"HavirKesht_Auth/internal/logging"
	"HavirKesht_Auth/internal/notifier"
	"HavirKesht_Auth/internal/repository"
	"HavirKesht_Auth/internal/security"
	"HavirKesht_Auth/internal/service"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
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
	hasher := security.NewPasswordHasher(cfg.Security.BcryptCost)
	store := repository.NewSQLStore(database)

	var options []service.Option

	redisClient, err := server.SetupRedis(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("не удалось подключиться к redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		options = append(options, service.WithLoginLimiter(
			limiter.NewLoginLimiter(redisClient, cfg.Redis.MaxLoginAttempts, cfg.Redis.LoginWindow),
		))
	} else {
		logger.Warn(ctx, "redis не настроен, ограничение попыток входа отключено")
	}

	if cfg.Webhook.URL != "" {
		options = append(options, service.WithNotifier(notifier.NewWebhookNotifier(cfg.Webhook.URL, cfg.Webhook.Timeout)))
	}

	authenticationService := service.NewAuthenticationService(store, issuer, hasher, logger, options...)
	accountService := service.NewAccountService(store, hasher, logger)

	if _, err := accountService.EnsureBootstrap(ctx, cfg.Bootstrap.Username, cfg.Bootstrap.Email, cfg.Bootstrap.Password); err != nil {
		log.Fatalf("не удалось создать начального пользователя: %v", err)
	}

	router := server.SetupRouter(cfg.Server, logger, server.Handlers{
		Authentication: handler.NewAuthenticationHandler(authenticationService, logger, cfg.Server.RequestTimeout),
		Accounts:       handler.NewAccountHandler(accountService, logger, cfg.Server.RequestTimeout),
		Authenticator:  authenticationService,
		Database:       database,
	})

	runServer(ctx, server.SetupServer(cfg.Server, router), logger, cfg.Server.ShutdownTimeout)
}

func runServer(ctx context.Context, httpServer *http.Server, logger logging.Logger, shutdownTimeout time.Duration) {
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(ctx, "сервер запущен", "address", httpServer.Addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "ошибка работы сервера", "error", err)
			return
		}
	case sig := <-signalChannel:
		logger.Info(ctx, "получен сигнал остановки работы сервера", "signal", sig.String())
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, shutdownTimeout)
	defer shutDownCancel()

	if err := httpServer.Shutdown(shutDownCtx); err != nil {
		logger.Error(ctx, "ошибка при остановке сервера", "error", err)
	} else {
		logger.Info(ctx, "сервер успешно остановлен")
	}
}
