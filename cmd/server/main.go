package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/AnshRaj112/serenify-advisor/internal/config"
	"github.com/AnshRaj112/serenify-advisor/internal/database"
	"github.com/AnshRaj112/serenify-advisor/internal/handlers"
	"github.com/AnshRaj112/serenify-advisor/internal/logging"
	"github.com/AnshRaj112/serenify-advisor/internal/metrics"
	"github.com/AnshRaj112/serenify-advisor/internal/middleware"
	"github.com/AnshRaj112/serenify-advisor/internal/routes"
	"github.com/AnshRaj112/serenify-advisor/internal/services"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

const (
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 15 * time.Second
)

type store interface {
	services.UserStore
	services.ProfileStore
	services.QAStore
	Ping(ctx context.Context) error
}

func main() {
	// Load env
	envErr := godotenv.Load()
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Debug("no .env file found")
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SessionSecret == "dev-secret-change-me" && cfg.IsProduction() {
		logger.Warn("SESSION_SECRET is the development default; set a real secret in production")
	}

	var checks []handlers.ReadinessCheck

	// Storage
	var st store
	switch cfg.StorageBackend {
	case config.BackendMemory:
		logger.Warn("using in-memory storage; data is lost on restart")
		st = database.NewMemoryStore()
	default:
		logger.Info("connecting to MongoDB", "database", cfg.MongoDatabase())
		connCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		mongoStore, err := database.Connect(connCtx, cfg.MongoURI, cfg.MongoDatabase())
		cancel()
		if err != nil {
			return err
		}
		defer func() {
			if err := mongoStore.Disconnect(); err != nil {
				logger.Error("error disconnecting from MongoDB", "error", err)
			}
		}()

		idxCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		if err := mongoStore.EnsureIndexes(idxCtx); err != nil {
			logger.Warn("failed to ensure MongoDB indexes", "error", err)
		}
		cancel()

		st = mongoStore
		checks = append(checks, handlers.ReadinessCheck{Name: "mongo", Ping: mongoStore.Ping})
	}

	// Sessions, and a profile cache when Redis is available
	var sessions services.SessionStore
	var profileStore services.ProfileStore = st
	if cfg.StorageBackend == config.BackendMemory || cfg.RedisURI == "" {
		sessions = services.NewMemorySessionStore(services.SessionDuration)
	} else {
		logger.Info("connecting to Redis")
		connCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		rdb, err := database.ConnectRedis(connCtx, cfg.RedisURI)
		cancel()
		if err != nil {
			return err
		}
		defer rdb.Close()

		sessions = services.NewRedisSessionStore(rdb, services.SessionDuration)
		profileStore = services.NewCachedProfileStore(st, services.NewRedisCache(rdb), services.DefaultCacheTTL, logger)
		checks = append(checks, handlers.ReadinessCheck{Name: "redis", Ping: redisPing(rdb)})
	}

	// AI
	var generator services.Generator
	if cfg.AIEnabled() {
		g, err := services.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("gemini configure error", "error", err)
		} else {
			generator = g
			logger.Info("gemini configured", "model", g.Model())
		}
	} else {
		logger.Warn("GEMINI_API_KEY/GOOGLE_API_KEY not set; questions are disabled")
	}

	m := metrics.New()

	auth := services.NewAuthService(st, profileStore, sessions, services.NewCookieCodec(cfg.SessionSecret, services.SessionDuration), logger)
	profiles := services.NewProfileService(profileStore, logger)
	limiter := services.NewRateLimiter(st, logger, m)
	advisor := services.NewAdvisor(services.AdvisorConfig{
		APIKey:    cfg.GeminiAPIKey,
		Model:     cfg.GeminiModel,
		Timeout:   cfg.AITimeout,
		AskLimit:  cfg.AskRateLimit,
		AskWindow: cfg.AskRateWindow,
	}, limiter, profileStore, st, generator, logger, m)

	h, err := handlers.New(handlers.Deps{
		Auth:          auth,
		Profiles:      profiles,
		Advisor:       advisor,
		Checks:        checks,
		Logger:        logger,
		SecureCookies: cfg.IsProduction(),
		AskLimit:      cfg.AskRateLimit,
		AskWindow:     cfg.AskRateWindow,
	})
	if err != nil {
		return err
	}

	loginLimiter := middleware.NewIPLimiter(rate.Every(middleware.LoginRateLimitEvery), middleware.LoginRateLimitBurst, cfg.TrustProxy)
	go loginLimiter.Run(ctx)

	// Setup router
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(logger, cfg.TrustProxy))
	r.Use(middleware.Metrics(m))
	r.Use(h.Recover)
	r.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	if cfg.IsProduction() {
		globalLimiter := middleware.NewIPLimiter(middleware.GlobalRateLimitRPS, middleware.GlobalRateLimitBurst, cfg.TrustProxy)
		go globalLimiter.Run(ctx)
		r.Use(middleware.GlobalRateLimit(globalLimiter))
		logger.Info("production security enabled", "global_rate_limit", true)
	}
	r.Use(middleware.LoadIdentity(auth))

	routes.SetupRoutes(r, h, routes.Options{
		LoginLimiter:   loginLimiter,
		Metrics:        m.Handler(),
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.AITimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serenify advisor running", "addr", srv.Addr, "env", cfg.Environment, "storage", cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func redisPing(rdb *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}
