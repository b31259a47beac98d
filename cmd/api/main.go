// Package main is the entrypoint for the Taskwise API server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskwise/taskwise/internal/activity"
	"github.com/taskwise/taskwise/internal/auth"
	"github.com/taskwise/taskwise/internal/cache"
	"github.com/taskwise/taskwise/internal/config"
	"github.com/taskwise/taskwise/internal/extract"
	"github.com/taskwise/taskwise/internal/handler"
	"github.com/taskwise/taskwise/internal/llm"
	"github.com/taskwise/taskwise/internal/metrics"
	"github.com/taskwise/taskwise/internal/middleware"
	"github.com/taskwise/taskwise/internal/repository"
	"github.com/taskwise/taskwise/internal/server"
	"github.com/taskwise/taskwise/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Metrics
	var (
		recorder metrics.Recorder = metrics.NewNoop()
		registry *prometheus.Registry
	)
	if cfg.MetricsEnabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		recorder = metrics.NewCollector(registry)
	}

	// Task store
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		os.Exit(1)
	}

	// Activity feed
	var (
		cacheCheck handler.HealthChecker
		redisCache *cache.Cache
	)
	if cfg.ActivityEnabled() {
		redisCache, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			_ = store.Close(ctx)
			os.Exit(1)
		}
		logger.Info("connected to Redis")
		cacheCheck = redisCache
	}
	feed := newActivityFeed(cfg, redisCache, logger, recorder)

	// Generation
	extractor, err := extract.New(cfg.Extractor)
	if err != nil {
		logger.Error("invalid extractor", "error", err)
		os.Exit(1)
	}
	generator := llm.NewClient(llm.Config{
		BaseURL:         cfg.LLMBaseURL,
		APIKey:          cfg.LLMAPIKey,
		Model:           cfg.LLMModel,
		MaxOutputTokens: int(cfg.LLMMaxOutputTokens),
		Timeout:         cfg.LLMTimeout,
	}, logger, recorder)

	// Services
	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Error("failed to create token manager", "error", err)
		os.Exit(1)
	}
	authService, err := service.NewAuthService(store, auth.NewPasswordHasher(bcrypt.DefaultCost), tokens, logger)
	if err != nil {
		logger.Error("failed to create auth service", "error", err)
		os.Exit(1)
	}
	taskService := service.NewTaskService(store, feed, cfg.TaskOwnershipCheck, logger, recorder)
	var pipelineOpts []service.PipelineOption
	if cfg.SanitizeGeneratedText {
		pipelineOpts = append(pipelineOpts, service.WithMarkupStripping())
	}
	pipeline := service.NewPipeline(taskService, generator, extractor, logger, recorder, pipelineOpts...)

	// Handlers
	handlers := routeHandlers{
		health:  handler.NewHealthHandler(store, cacheCheck),
		auth:    handler.NewAuthHandler(authService, logger),
		tasks:   handler.NewTaskHandler(taskService, pipeline, logger),
		chatbot: handler.NewChatbotHandler(pipeline, logger),
	}
	if registry != nil {
		handlers.metrics = metrics.Handler(registry)
	}

	r := setupRouter(handlers, authService, recorder, cfg, logger)

	srv := server.New(r, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Registered first, closed last.
	srv.OnShutdown("store", store.Close)
	if redisCache != nil {
		srv.OnShutdown("redis", redisCache.Close)
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"store", cfg.StoreDriver,
		"model", cfg.LLMModel,
		"extractor", cfg.Extractor,
		"sanitize_generated_text", cfg.SanitizeGeneratedText,
		"ownership_check", cfg.TaskOwnershipCheck,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// openStore connects the configured task store. Failures are logged here.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.Store, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Error(
				"failed to run migrations",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
				slog.String("database_url", redactURL(cfg.DatabaseURL)),
			)
			return nil, err
		}
		store, err := repository.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error(
				"failed to connect to database",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
				slog.String("database_url", redactURL(cfg.DatabaseURL)),
			)
			return nil, err
		}
		logger.Info("connected to database", "driver", cfg.StoreDriver)
		return store, nil

	case config.StoreMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		return repository.NewMemoryStore(), nil

	default:
		store, err := repository.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			logger.Error(
				"failed to connect to database",
				slog.String("error", sanitizeError(err, cfg.MongoURI)),
				slog.String("mongo_uri", redactURL(cfg.MongoURI)),
			)
			return nil, err
		}
		logger.Info("connected to database", "driver", cfg.StoreDriver, "database", cfg.MongoDatabase)
		return store, nil
	}
}

// newActivityFeed picks the feed backend: Redis when connected, process memory
// alongside the memory store, otherwise none.
func newActivityFeed(cfg *config.Config, redisCache *cache.Cache, logger *slog.Logger, recorder metrics.Recorder) activity.Feed {
	switch {
	case redisCache != nil:
		return activity.NewRedisFeed(redisCache, logger, recorder)
	case cfg.StoreDriver == config.StoreMemory:
		logger.Info("activity feed kept in process memory")
		return activity.NewMemoryFeed()
	default:
		logger.Info("activity feed disabled")
		return activity.NoopFeed{}
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routeHandlers struct {
	health  *handler.HealthHandler
	auth    *handler.AuthHandler
	tasks   *handler.TaskHandler
	chatbot *handler.ChatbotHandler
	metrics http.Handler
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h routeHandlers,
	verifier middleware.TokenVerifier,
	recorder metrics.Recorder,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Metrics(recorder))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	// Set before any Route so subrouters inherit them.
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	// Health endpoints (no auth required)
	r.Get("/healthz", h.health.Healthz)
	r.Get("/readyz", h.health.Readyz)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}

	requireAuth := middleware.Auth(middleware.AuthConfig{
		Logger:   logger,
		Verifier: verifier,
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.auth.Register)
		r.Post("/login", h.auth.Login)
		r.With(requireAuth).Get("/me", h.auth.Me)
	})

	// The chatbot never persists and needs no session.
	r.Route("/api/chatbot", func(r chi.Router) {
		r.Post("/", h.chatbot.Chat)
		r.Post("/task", h.chatbot.DraftTask)
	})

	r.Route("/api/tasks", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", h.tasks.Create)
		r.Get("/", h.tasks.List)
		r.Get("/activity", h.tasks.Activity)
		r.Get("/{id}", h.tasks.Get)
		r.Put("/{id}", h.tasks.Update)
		r.Patch("/{id}", h.tasks.Patch)
		r.Delete("/{id}", h.tasks.Delete)
	})

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
