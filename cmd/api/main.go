// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/borderbuddy/travel-platform/internal/config"
	"github.com/borderbuddy/travel-platform/internal/handler"
	"github.com/borderbuddy/travel-platform/internal/llm"
	"github.com/borderbuddy/travel-platform/internal/middleware"
	natsclient "github.com/borderbuddy/travel-platform/internal/nats"
	"github.com/borderbuddy/travel-platform/internal/ratelimit"
	"github.com/borderbuddy/travel-platform/internal/service"
	"github.com/borderbuddy/travel-platform/internal/store"
	"github.com/borderbuddy/travel-platform/pkg/logger"
	"github.com/borderbuddy/travel-platform/pkg/tracing"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting API server")

	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "borderbuddy-travel-platform", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Relational store for accounts, trips and buddy state.
	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Error("failed to open database", zap.Error(err))
		os.Exit(1)
	}
	defer st.Close()

	// NATS JetStream holds the append-only chat log.
	natsClient, err := natsclient.Connect(natsclient.Config{
		URL:      cfg.NATSURL,
		CAFile:   cfg.NATSCAFile,
		CertFile: cfg.NATSCertFile,
		KeyFile:  cfg.NATSKeyFile,
		Token:    cfg.NATSToken,
	}, log)
	if err != nil {
		log.Error("failed to connect to NATS", zap.Error(err))
		os.Exit(1)
	}
	defer natsClient.Close()

	chatLog := natsclient.NewChatLog(natsClient)
	if err := chatLog.EnsureStream(ctx); err != nil {
		log.Error("failed to ensure chat stream", zap.Error(err))
		os.Exit(1)
	}

	assistant := buildAssistant(cfg, log)
	limiter := ratelimit.New()

	authSvc := service.NewAuthService(st, cfg.JWTSecret, cfg.JWTExpiration, log)
	tripSvc := service.NewTripService(st, log)
	buddySvc := service.NewBorderBuddyService(st, st, assistant, log)
	chatSvc := service.NewChatService(st, st, chatLog, assistant, log)

	healthHandler := handler.NewHealthHandler(natsClient, st)
	authHandler := handler.NewAuthHandler(authSvc, cfg.JWTExpiration, false, log)
	tripHandler := handler.NewTripHandler(tripSvc, log)
	buddyHandler := handler.NewBuddyHandler(buddySvc, limiter, cfg.PlacesGenerateLimit, cfg.PlacesGenWindow, log)
	chatHandler := handler.NewChatHandler(chatSvc, limiter, cfg.ChatPostLimit, cfg.ChatPostWindow, log)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret))
			r.Use(middleware.UserRateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)

			r.Route("/trips", func(r chi.Router) {
				r.Post("/", tripHandler.Create)
				r.Get("/", tripHandler.List)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", tripHandler.Get)
					r.Put("/", tripHandler.Update)
					r.Delete("/", tripHandler.Delete)

					r.Route("/borderbuddy", func(r chi.Router) {
						r.Post("/", buddyHandler.Enable)

						r.Get("/context", buddyHandler.GetContext)
						r.Put("/context", buddyHandler.SaveContext)

						r.Get("/places", buddyHandler.GetPlaces)
						r.Post("/places", buddyHandler.GeneratePlaces)

						r.Get("/chat/messages", chatHandler.List)
						r.Post("/chat/messages", chatHandler.Post)
						r.Post("/chat/stream", chatHandler.Stream)
					})
				})
			})
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}

// buildAssistant wires the configured LLM provider into the resilient
// client. A missing key leaves the provider nil; chat and places then
// run on fallback responses.
func buildAssistant(cfg *config.Config, log *logger.Logger) *llm.Resilient {
	var provider llm.Provider

	switch strings.ToLower(cfg.LLMProvider) {
	case "anthropic":
		if cfg.AnthropicAPIKey != "" {
			p, err := llm.NewAnthropicClient(cfg.AnthropicAPIKey)
			if err != nil {
				log.Warn("failed to create Anthropic client, LLM features disabled", zap.Error(err))
			} else {
				provider = p
			}
		}
	default:
		if cfg.OpenAIAPIKey != "" {
			p, err := llm.NewOpenAIClient(cfg.OpenAIAPIKey)
			if err != nil {
				log.Warn("failed to create OpenAI client, LLM features disabled", zap.Error(err))
			} else {
				provider = p
			}
		}
	}

	if provider == nil {
		log.Warn("no LLM provider configured, assistant replies use fallback wording")
	}

	return llm.NewResilient(provider, cfg.LLMModel, cfg.LLMTimeout, cfg.LLMRetries, log)
}
