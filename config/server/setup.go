package server

import (
	"HavirKesht_Auth/config"
	"HavirKesht_Auth/internal"
	"HavirKesht_Auth/internal/handler"
	"HavirKesht_Auth/internal/logging"
	"HavirKesht_Auth/internal/security"
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
)

// Handlers обработчики и зависимости, из которых собирается роутер
type Handlers struct {
	Authentication *handler.AuthenticationHandler
	Accounts       *handler.AccountHandler
	Authenticator  security.Authenticator
	Database       handler.Pinger
}

// SetupDatabase подключается к БД и применяет миграции
func SetupDatabase(ctx context.Context, cfg config.DatabaseConfig) (*internal.Database, error) {
	database, err := internal.NewDatabaseConnection(cfg.Driver, cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения: %w", err)
	}

	if err := database.Migrate(ctx); err != nil {
		_ = database.Close()
		return nil, err
	}

	return database, nil
}

// SetupRedis возвращает nil, если адрес redis не задан: ограничитель попыток входа отключен
func SetupRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ошибка подключения к redis: %w", err)
	}

	return client, nil
}

func SetupRouter(cfg config.ServerConfig, log logging.Logger, handlers Handlers) *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(handler.RequestLogger(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)

	router.Get("/healthz", handler.Health(handlers.Database, cfg.RequestTimeout))

	router.Post("/token", handlers.Authentication.Token)
	router.Post("/refresh-token", handlers.Authentication.RefreshToken)
	router.Post("/logout", handlers.Authentication.Logout)

	router.Group(func(r chi.Router) {
		r.Use(security.JWTMiddleware(handlers.Authenticator, log))

		r.Post("/changepassword", handlers.Authentication.ChangePassword)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", handlers.Accounts.List)
			r.Post("/admin", handlers.Accounts.Create)
			r.Get("/{id}", handlers.Accounts.Get)
			r.Put("/{id}", handlers.Accounts.Update)
		})
	})

	return router
}

func SetupServer(cfg config.ServerConfig, router http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: cfg.RequestTimeout,
	}
}
