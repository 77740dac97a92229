package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"account_service/internal/auth"
	"account_service/internal/config"
	"account_service/internal/email"
	"account_service/internal/http_server/handlers/activate"
	"account_service/internal/http_server/handlers/deleteuser"
	"account_service/internal/http_server/handlers/getuser"
	"account_service/internal/http_server/handlers/list"
	"account_service/internal/http_server/handlers/login"
	"account_service/internal/http_server/handlers/logout"
	"account_service/internal/http_server/handlers/register"
	"account_service/internal/http_server/handlers/resetrequest"
	"account_service/internal/http_server/handlers/resetupdate"
	"account_service/internal/http_server/handlers/update"
	"account_service/internal/http_server/middleware/authn"
	sl "account_service/internal/lib/logger"
	"account_service/internal/rabbitmq"
	"account_service/internal/storage/postgres"
	"account_service/internal/token"
	"account_service/internal/user"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator/v10"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad("./config/config.yaml")

	log := setupLogger(cfg.Env)

	log.Info("starting account service", slog.String("env", cfg.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("Shutdown signal received")
		cancel()
	}()

	storage, err := postgres.New(ctx, cfg)
	if err != nil {
		log.Error("failed to connect postgres", sl.Err(err))
		os.Exit(1)
	}
	defer storage.Close()

	if err := storage.Migrate(ctx); err != nil {
		log.Error("failed to run migrations", sl.Err(err))
		os.Exit(1)
	}

	msgBroker, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
	if err != nil {
		log.Error("failed to connect rabbitmq", sl.Err(err))
		os.Exit(1)
	}
	defer msgBroker.Close()

	emailService := email.New(log, msgBroker, cfg.Email.FrontendURL)
	tokenService := token.New(log, storage, cfg.Tokens.SessionTokenTTL)
	authService := auth.New(log, storage, tokenService)
	userService := user.New(log, storage, emailService, tokenService)

	sweeper := token.NewSweeper(log, tokenService, cfg.Tokens.SweepInterval)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	router := setupRouter(log, tokenService, authService, userService)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server is running")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", sl.Err(err))
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down HTTP server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", sl.Err(err))
	} else {
		log.Info("Server stopped gracefully")
	}

	log.Info("Main service stopped")
}

func setupRouter(
	log *slog.Logger,
	tokenService *token.Service,
	authService *auth.Auth,
	userService *user.Service,
) *chi.Mux {
	validate := validator.New()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(authn.New(log, tokenService))

	r.Route("/api/1.0", func(r chi.Router) {
		r.Post("/users", register.New(log, validate, userService))
		r.Post("/users/token/{token}", activate.New(log, userService))
		r.Get("/users", list.New(log, userService))
		r.Get("/users/{id}", getuser.New(log, userService))
		r.Put("/users/{id}", update.New(log, validate, userService))
		r.Delete("/users/{id}", deleteuser.New(log, userService))

		r.Post("/auth", login.New(log, validate, authService))
		r.Post("/logout", logout.New(log, authService))

		r.Post("/user/password", resetrequest.New(log, validate, userService))
		r.Put("/user/password", resetupdate.New(log, validate, userService))
	})

	return r
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
