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

	"github.com/kailas-cloud/casematch/internal/config"
	dbRedis "github.com/kailas-cloud/casematch/internal/db/redis"
	"github.com/kailas-cloud/casematch/internal/loader"
	logpkg "github.com/kailas-cloud/casematch/internal/logger"
	"github.com/kailas-cloud/casematch/internal/metrics"
	catalogrepo "github.com/kailas-cloud/casematch/internal/repository/catalog"
	chiTransport "github.com/kailas-cloud/casematch/internal/transport/chi"
	cataloguc "github.com/kailas-cloud/casematch/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/casematch/internal/usecase/health"
	rankuc "github.com/kailas-cloud/casematch/internal/usecase/rank"
	weightsuc "github.com/kailas-cloud/casematch/internal/usecase/weights"
	"github.com/kailas-cloud/casematch/internal/version"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		panic("failed to load .env: " + err.Error())
	}
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting casematch API server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog_source", cfg.Catalog.Source),
		zap.Int("attributes", len(cfg.Attributes)),
	)

	schema, err := cfg.BuildSchema()
	if err != nil {
		logger.Fatal("Invalid attribute schema", zap.Error(err))
	}
	for _, attr := range schema.Attributes() {
		if attr.Degenerate() {
			logger.Warn("Numeric attribute has a zero-width range and always matches",
				zap.String("attribute", attr.Name()))
		}
	}
	defaults, err := cfg.DefaultWeights()
	if err != nil {
		logger.Fatal("Invalid default weights", zap.Error(err))
	}

	metrics.RegisterRankingMetrics()
	metrics.RegisterHTTPMetrics()

	ctx := context.Background()

	// Catalog source. The store is only dialed when the catalog lives there.
	var (
		source cataloguc.Source
		pinger healthuc.DBPinger
	)
	switch cfg.Catalog.Source {
	case config.SourceStore:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database",
			zap.String("driver", cfg.Database.Driver),
			zap.Strings("addrs", cfg.Database.Addrs),
		)
		source = catalogrepo.New(store, schema, cfg.Database.KeyPrefix)
		pinger = store
	default:
		source = loader.NewFileSource(cfg.Catalog.Path, cfg.Catalog.Format, schema)
	}

	catalogSvc := cataloguc.New(source, schema, logger)
	if _, err := catalogSvc.Reload(ctx); err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}

	weightsSvc, err := weightsuc.New(schema, defaults, logger)
	if err != nil {
		logger.Fatal("Failed to create weight service", zap.Error(err))
	}
	rankSvc := rankuc.New(catalogSvc, weightsSvc, schema, logger).
		WithParallelism(cfg.Ranking.Workers, cfg.Ranking.ParallelThreshold)
	healthSvc := healthuc.New(catalogSvc, pinger)

	server := chiTransport.NewServer(schema, rankSvc, weightsSvc, catalogSvc, healthSvc,
		chiTransport.Limits{Default: cfg.Ranking.DefaultLimit, Max: cfg.Ranking.MaxLimit}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	chiTransport.HandlerWithOptions(server, chiTransport.ServerOptions{
		BaseRouter:       r,
		ErrorHandlerFunc: chiTransport.ParamErrorHandler,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorCodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits one log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
