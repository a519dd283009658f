package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	validator "github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"

	"github.com/noah-isme/kasir-pos/internal/cashier"
	"github.com/noah-isme/kasir-pos/internal/catalog"
	"github.com/noah-isme/kasir-pos/internal/config"
	"github.com/noah-isme/kasir-pos/internal/db"
	"github.com/noah-isme/kasir-pos/internal/health"
	"github.com/noah-isme/kasir-pos/internal/obs"
	"github.com/noah-isme/kasir-pos/internal/payments"
	"github.com/noah-isme/kasir-pos/internal/receipt"
	"github.com/noah-isme/kasir-pos/internal/terminal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "kasir")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal().Err(err).Msg("run migrations")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "kasir-pos"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("parse redis url")
		}
		redisClient = redis.NewClient(redisOpts)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error().Err(err).Msg("close redis")
			}
		}()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("ping redis")
		}
	}

	rules := cfg.Rules()
	validate := validator.New()

	catalogService, err := catalog.NewService(catalog.ServiceConfig{
		Store:      &catalog.Store{Pool: pool},
		Cache:      catalog.NewCache(redisClient, cfg.CatalogCacheTTL),
		CacheStats: obs.CatalogCacheTotal,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise catalog service")
	}
	catalogHandler := &catalog.Handler{Svc: catalogService, Validate: validate}

	cashierStore := &cashier.Store{Pool: pool}
	if err := cashierStore.SeedDefaults(ctx); err != nil {
		logger.Fatal().Err(err).Msg("seed cashiers")
	}
	cashierHandler := &cashier.Handler{Svc: cashier.NewService(cashierStore)}

	paymentStore := &payments.Store{Pool: pool, Rules: rules}
	paymentHandler := &payments.Handler{Store: paymentStore}

	receipts := receipt.Builder{
		StoreName:    cfg.StoreName,
		StoreAddress: cfg.StoreAddress,
		PaperWidth:   cfg.ReceiptPaperWidth,
	}
	terminalManager := terminal.NewManager(terminal.ManagerConfig{
		Rules:            rules,
		MaxEditablePrice: cfg.MaxEditablePrice,
		InvoicePrefix:    cfg.InvoicePrefix,
		Store:            paymentStore,
		Printer:          receipt.LogPrinter{Logger: logger},
		Receipts:         receipts,
	})
	terminalHandler := &terminal.Handler{
		Mgr:         terminalManager,
		Products:    catalogService,
		Logger:      logger,
		Settlements: obs.SettlementTotal,
	}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, cfg.MetricsBuckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	healthHandler := health.Handler{
		Checker:      readinessChecker{db: pool, redis: redisClient},
		DBTimeout:    envDurationMillis("HEALTH_READY_DB_TIMEOUT_MS", 500),
		RedisTimeout: envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/products", catalogHandler.List)
		v.Post("/products", catalogHandler.Create)
		v.Put("/products/{id}", catalogHandler.Update)

		v.Get("/cashiers", cashierHandler.List)
		v.Post("/cashiers/{code}/verify-pin", cashierHandler.VerifyPin)

		v.Get("/payments", paymentHandler.List)
		v.Get("/payments/{id}", paymentHandler.Get)

		v.Route("/terminals", func(tr chi.Router) {
			tr.Post("/", terminalHandler.Create)
			tr.Route("/{id}", func(one chi.Router) {
				one.Get("/", terminalHandler.Get)
				one.Delete("/", terminalHandler.Delete)
				one.Post("/lines", terminalHandler.AddLine)
				one.Delete("/lines", terminalHandler.ClearLines)
				one.Route("/lines/{productId}", func(line chi.Router) {
					line.Delete("/", terminalHandler.RemoveLine)
					line.Post("/quantity", terminalHandler.StepQuantity)
					line.Put("/quantity-input", terminalHandler.EditQuantity)
					line.Post("/quantity-input/commit", terminalHandler.CommitQuantity)
					line.Post("/quantity-input/cancel", terminalHandler.CancelQuantity)
					line.Put("/price-input", terminalHandler.EditPrice)
					line.Post("/price-input/commit", terminalHandler.CommitPrice)
					line.Post("/price-input/cancel", terminalHandler.CancelPrice)
				})
				one.Route("/settlement", func(s chi.Router) {
					s.Post("/open", terminalHandler.OpenSettlement)
					s.Post("/close", terminalHandler.CloseSettlement)
					s.Put("/cash", terminalHandler.SetCash)
					s.Put("/note", terminalHandler.SetNote)
					s.Post("/confirm", terminalHandler.Confirm)
				})
			})
		})
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

type readinessChecker struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func (c readinessChecker) PingDB(ctx context.Context, timeout time.Duration) error {
	if c.db == nil {
		return errors.New("db not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.db.Ping(ctx)
}

func (c readinessChecker) PingRedis(ctx context.Context, timeout time.Duration) error {
	if c.redis == nil {
		return health.ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.redis.Ping(ctx).Err()
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int64) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			if d, err := time.ParseDuration(trimmed + "ms"); err == nil {
				return d
			}
		}
	}
	return time.Duration(fallback) * time.Millisecond
}
