// Command roommatchd serves the matching pipeline over HTTP.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/novotnakristyna1203/hotel-price-prediction/internal/config"
	"github.com/novotnakristyna1203/hotel-price-prediction/internal/db"
	dbRedis "github.com/novotnakristyna1203/hotel-price-prediction/internal/db/redis"
	"github.com/novotnakristyna1203/hotel-price-prediction/internal/domain"
	"github.com/novotnakristyna1203/hotel-price-prediction/internal/domain/similarity"
	logpkg "github.com/novotnakristyna1203/hotel-price-prediction/internal/logger"
	"github.com/novotnakristyna1203/hotel-price-prediction/internal/metrics"
	"github.com/novotnakristyna1203/hotel-price-prediction/internal/repository/embcache"
	chiTransport "github.com/novotnakristyna1203/hotel-price-prediction/internal/transport/chi"
	openaiEmb "github.com/novotnakristyna1203/hotel-price-prediction/internal/transport/openai"
	healthuc "github.com/novotnakristyna1203/hotel-price-prediction/internal/usecase/health"
	matchuc "github.com/novotnakristyna1203/hotel-price-prediction/internal/usecase/match"
	"github.com/novotnakristyna1203/hotel-price-prediction/internal/version"
)

func main() {
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

	logger.Info("Starting roommatchd",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	ctx := context.Background()

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterMatchingMetrics()

	// Base embedding provider (with transport metrics built-in)
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:            cfg.Embedding.APIKey,
		BaseURL:           cfg.Embedding.BaseURL,
		Model:             cfg.Embedding.Model,
		Dimensions:        cfg.Embedding.Dimensions,
		Provider:          "openai",
		RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
		Burst:             cfg.Embedding.Burst,
		Logger:            logger,
	})

	// Optional embedding cache. The daemon runs fine without a store; the
	// cache only saves repeat API calls across requests.
	var embedder domain.Embedder = base
	var store db.Store
	if len(cfg.Database.Addrs) > 0 {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create embedding cache store", zap.Error(err))
		}
		readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
		if err := s.WaitForReady(ctx, readiness); err != nil {
			logger.Fatal("Embedding cache store not ready", zap.Error(err))
		}
		defer s.Close()
		store = s
		embedder = embcache.New(base, s, metrics.EmbeddingCacheTotal, logger)
		logger.Info("Embedding cache connected", zap.Strings("addrs", cfg.Database.Addrs))
	} else {
		logger.Info("Embedding cache disabled, no store configured")
	}

	matcher, err := matchuc.New(embedder, matchuc.Options{
		Weights: similarity.Weights{
			Text:      cfg.Matching.TextWeight,
			Area:      cfg.Matching.AreaWeight,
			Occupancy: cfg.Matching.OccupancyWeight,
		},
		Threshold:    cfg.Matching.Threshold,
		SelfMarker:   cfg.Matching.SelfMarker,
		AreaFallback: cfg.Matching.AreaFallback,
		Parallelism:  cfg.Matching.Parallelism,
	}, logger)
	if err != nil {
		logger.Fatal("Invalid matching options", zap.Error(err))
	}

	// Pass nil interface (not typed nil pointer!) when the cache is off.
	var cachePinger healthuc.CachePinger
	if store != nil {
		cachePinger = store
	}
	healthSvc := healthuc.New(cachePinger, base)

	server := chiTransport.NewServer(matcher, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEvent(logger))
	r.Use(metrics.Middleware())
	r.Mount("/", server.Routes())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
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
