package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/okulbul/okulbul/internal/config"
	dbRedis "github.com/okulbul/okulbul/internal/db/redis"
	"github.com/okulbul/okulbul/internal/domain/search/request"
	logpkg "github.com/okulbul/okulbul/internal/logger"
	"github.com/okulbul/okulbul/internal/metrics"
	"github.com/okulbul/okulbul/internal/repository/source"
	"github.com/okulbul/okulbul/internal/snapshot"
	chiTransport "github.com/okulbul/okulbul/internal/transport/chi"
	openaiExt "github.com/okulbul/okulbul/internal/transport/openai"
	assistantuc "github.com/okulbul/okulbul/internal/usecase/assistant"
	healthuc "github.com/okulbul/okulbul/internal/usecase/health"
	queryuc "github.com/okulbul/okulbul/internal/usecase/query"
	refreshuc "github.com/okulbul/okulbul/internal/usecase/refresh"
	"github.com/okulbul/okulbul/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting okulbul API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	// Both driver names speak the same command surface; one client serves either.
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create entity store client", zap.Error(err))
	}
	defer store.Close()

	// Wait for the entity store to be ready
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Entity store not ready", zap.Error(err))
	}
	logger.Info("Connected to entity store")

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	// Projection pipeline — source repo, snapshot store, refresh service
	srcRepo := source.New(store, cfg.Storage.KeyPrefix)
	snaps := snapshot.NewStore()
	policy := refreshuc.NewWeightedPolicy(weightsFromConfig(cfg.Scoring))
	refreshSvc := refreshuc.New(srcRepo, snaps, policy, logger).
		WithBookkeeping(store, cfg.Storage.KeyPrefix+"meta:last_refresh")

	scheduler := refreshuc.NewScheduler(
		refreshSvc,
		time.Duration(cfg.Refresh.IntervalSec)*time.Second,
		time.Duration(cfg.Refresh.TimeoutSec)*time.Second,
		time.Duration(cfg.Refresh.StartupJitterSec)*time.Second,
		logger,
	)
	go scheduler.Run(ctx)

	// Query side
	bounds := request.Bounds{
		DefaultSize: cfg.Search.DefaultPageSize,
		MaxSize:     cfg.Search.MaxPageSize,
	}
	searchSvc := queryuc.New(snaps, logger)

	// Assistant intake — optional, controlled by api_key presence.
	// Pass nil interface (not typed nil pointer!) when no provider is configured.
	var extractor assistantuc.CriteriaExtractor
	if cfg.Assistant.APIKey != "" {
		extractor = openaiExt.NewExtractor(&openaiExt.Config{
			APIKey:  cfg.Assistant.APIKey,
			BaseURL: cfg.Assistant.BaseURL,
			Model:   cfg.Assistant.Model,
			Logger:  logger,
		})
		logger.Info("Assistant extractor created", zap.String("model", cfg.Assistant.Model))
	}
	assistantSvc := assistantuc.New(extractor, searchSvc, bounds, logger)

	// Health service
	healthSvc := healthuc.New(store, snaps)

	// Create chi server
	server := chiTransport.NewServer(
		searchSvc, assistantSvc, refreshSvc, healthSvc,
		bounds, time.Duration(cfg.Search.QueryTimeoutSec)*time.Second, logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func weightsFromConfig(sc config.ScoringConfig) refreshuc.Weights {
	return refreshuc.Weights{
		ViewSaturation:           sc.ViewSaturation,
		LikeSaturation:           sc.LikeSaturation,
		RatingSaturation:         sc.RatingSaturation,
		ListingAgeSaturationDays: sc.ListingAgeSaturationDays,
		ActivityHalfLifeDays:     sc.ActivityHalfLifeDays,
		QualityPopularity:        sc.QualityPopularity,
		QualityCompleteness:      sc.QualityCompleteness,
		QualityRating:            sc.QualityRating,
	}
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
