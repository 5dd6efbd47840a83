// Command roommatch runs the matching pipeline once over two spreadsheet
// datasets and writes the match workbook.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/novotnakristyna1203/hotel-price-prediction/internal/config"
	"github.com/novotnakristyna1203/hotel-price-prediction/internal/db"
	dbRedis "github.com/novotnakristyna1203/hotel-price-prediction/internal/db/redis"
	"github.com/novotnakristyna1203/hotel-price-prediction/internal/domain"
	"github.com/novotnakristyna1203/hotel-price-prediction/internal/domain/similarity"
	"github.com/novotnakristyna1203/hotel-price-prediction/internal/fileio"
	logpkg "github.com/novotnakristyna1203/hotel-price-prediction/internal/logger"
	"github.com/novotnakristyna1203/hotel-price-prediction/internal/metrics"
	"github.com/novotnakristyna1203/hotel-price-prediction/internal/repository/embcache"
	openaiEmb "github.com/novotnakristyna1203/hotel-price-prediction/internal/transport/openai"
	matchuc "github.com/novotnakristyna1203/hotel-price-prediction/internal/usecase/match"
	"github.com/novotnakristyna1203/hotel-price-prediction/internal/version"
)

func main() {
	var (
		refPath  = flag.String("ref", "", "reference (own catalog) dataset .xlsx")
		compPath = flag.String("comp", "", "competitor dataset .xlsx")
		outPath  = flag.String("out", "", "output workbook path (default matches_<today>.xlsx)")
	)
	flag.Parse()
	if *refPath == "" || *compPath == "" {
		fmt.Fprintln(os.Stderr, "usage: roommatch -ref own.xlsx -comp competitors.xlsx [-out matches.xlsx]")
		os.Exit(2)
	}
	if *outPath == "" {
		*outPath = fmt.Sprintf("matches_%s.xlsx", time.Now().Format("2006-01-02"))
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
	logger = logger.With(zap.String("run_id", uuid.NewString()))

	logger.Info("Starting roommatch run",
		zap.String("version", version.Version),
		zap.String("env", env),
		zap.String("reference", *refPath),
		zap.String("competitors", *compPath),
		zap.String("out", *outPath),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterMatchingMetrics()

	embedder, store := buildEmbedder(ctx, cfg, logger)
	if store != nil {
		defer store.Close()
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

	reference, err := fileio.ReadRoomsFile(*refPath)
	if err != nil {
		logger.Fatal("Failed to read reference dataset", zap.Error(err))
	}
	competitors, err := fileio.ReadRoomsFile(*compPath)
	if err != nil {
		logger.Fatal("Failed to read competitor dataset", zap.Error(err))
	}
	logger.Info("Datasets loaded",
		zap.Int("reference_rooms", len(reference)),
		zap.Int("competitor_rooms", len(competitors)),
	)

	result, err := matcher.Run(ctx, reference, competitors)
	if err != nil {
		logger.Fatal("Matching run failed", zap.Error(err))
	}

	if err := fileio.WriteMatchWorkbookFile(*outPath, result); err != nil {
		logger.Fatal("Failed to write match workbook", zap.Error(err))
	}
	logger.Info("Match workbook written",
		zap.String("out", *outPath),
		zap.Int("accepted", result.Accepted()),
		zap.Int("removed_own", len(result.Own)),
		zap.Int("rejected", len(result.Rejections)),
	)
}

// buildEmbedder assembles the embedder chain: OpenAI provider, wrapped in
// the cache when a store is configured. The returned store is nil when
// caching is off.
func buildEmbedder(ctx context.Context, cfg config.Config, logger *zap.Logger) (domain.Embedder, db.Store) {
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

	if len(cfg.Database.Addrs) == 0 {
		logger.Info("Embedding cache disabled, no store configured")
		return base, nil
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Warn("Embedding cache unavailable, continuing without it", zap.Error(err))
		return base, nil
	}
	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, readiness); err != nil {
		logger.Warn("Embedding cache not ready, continuing without it", zap.Error(err))
		store.Close()
		return base, nil
	}

	logger.Info("Embedding cache connected", zap.Strings("addrs", cfg.Database.Addrs))
	return embcache.New(base, store, metrics.EmbeddingCacheTotal, logger), store
}
