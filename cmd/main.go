package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"awaaznow/internal/auth"
	"awaaznow/internal/config"
	"awaaznow/internal/gateway/gemini"
	"awaaznow/internal/gateway/newsapi"
	forgotPassword "awaaznow/internal/http_server/handlers/forgot_password"
	"awaaznow/internal/http_server/handlers/login"
	"awaaznow/internal/http_server/handlers/news"
	"awaaznow/internal/http_server/handlers/register"
	resetPassword "awaaznow/internal/http_server/handlers/reset_password"
	"awaaznow/internal/http_server/handlers/summaries"
	"awaaznow/internal/http_server/handlers/summarize"
	"awaaznow/internal/http_server/handlers/takeaways"
	"awaaznow/internal/mailer"
	"awaaznow/internal/middleware/authn"
	rateLimit "awaaznow/internal/middleware/ratelimit"
	"awaaznow/internal/storage/postgres"
	"awaaznow/internal/summarizer"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/cors"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad("./config/config.yaml")

	log := setupLogger(cfg.Env)

	log.Info("starting awaaznow backend", slog.String("env", cfg.Env))

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
		log.Error("failed to connect postgres", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer storage.Close()

	mail := mailer.New(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
		cfg.SMTP.From,
	)

	genClient, err := gemini.New(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Timeout)
	if err != nil {
		log.Error("failed to init gemini client", slog.String("err", err.Error()))
		os.Exit(1)
	}

	newsClient := newsapi.New(cfg.NewsAPI.BaseURL, cfg.NewsAPI.APIKey, cfg.NewsAPI.Timeout)

	authService := auth.New(
		log,
		storage,
		storage,
		mail,
		cfg.Tokens.SessionTokenSecret,
		cfg.Tokens.SessionTokenTTL,
		cfg.Tokens.ResetTokenTTL,
		cfg.FrontendURL,
	)

	summarizerService := summarizer.New(log, storage, storage, genClient)

	router := setupRouter(log, cfg, authService, summarizerService, newsClient, storage)

	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(router)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server is running", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", slog.String("err", err.Error()))
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down HTTP server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", slog.String("err", err.Error()))
	} else {
		log.Info("Server stopped gracefully")
	}

	log.Info("Main service stopped")
}

func setupRouter(
	log *slog.Logger,
	cfg *config.Config,
	authService *auth.Auth,
	summarizerService *summarizer.Summarizer,
	newsClient *newsapi.Client,
	storage *postgres.PostgresRepo,
) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	validate := validator.New()

	r.Route("/auth", func(r chi.Router) {
		r.With(rateLimit.Register()).Post("/register",
			register.New(log, validate, authService, cfg.Env),
		)
		r.With(rateLimit.Login()).Post("/login",
			login.New(log, validate, authService, cfg.Env),
		)
		r.With(rateLimit.ForgotPassword()).Post("/forgot-password",
			forgotPassword.New(log, validate, authService, cfg.Env),
		)
		r.With(rateLimit.ResetPassword()).Put("/reset-password/{token}",
			resetPassword.New(log, validate, authService, cfg.Env),
		)
	})

	r.Group(func(r chi.Router) {
		r.Use(authn.New(log, storage, cfg.Tokens.SessionTokenSecret))

		r.Get("/news", news.New(log, newsClient, cfg.Env))
		r.Post("/summarize", summarize.New(log, validate, summarizerService, cfg.Env))
		r.Get("/my-summaries", summaries.List(log, summarizerService, cfg.Env))
		r.Delete("/my-summaries/{id}", summaries.Delete(log, summarizerService, cfg.Env))
		r.Post("/key-takeaways", takeaways.New(log, validate, summarizerService, cfg.Env))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("API is running..."))
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
