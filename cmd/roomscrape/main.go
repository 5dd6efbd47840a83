// Command roomscrape crawls booking.com hotel pages over a range of stay
// dates and writes one dataset workbook per weekly batch. With -combine it
// instead merges previously scraped workbooks into one dataset.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/novotnakristyna1203/hotel-price-prediction/internal/config"
	"github.com/novotnakristyna1203/hotel-price-prediction/internal/fileio"
	logpkg "github.com/novotnakristyna1203/hotel-price-prediction/internal/logger"
	"github.com/novotnakristyna1203/hotel-price-prediction/internal/scrape/booking"
	"github.com/novotnakristyna1203/hotel-price-prediction/internal/version"
)

// Accepted link column headers in the links CSV.
var linkColumns = []string{"hotel_link", "hotel_data"}

func main() {
	var (
		linksPath  = flag.String("links", "", "CSV file with hotel page links (overrides config)")
		daysAhead  = flag.Int("days", 0, "days ahead to scrape (overrides config)")
		combineOut = flag.String("combine", "", "merge <output_dir>/*.xlsx into this workbook instead of scraping")
	)
	flag.Parse()

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

	if *combineOut != "" {
		combine(cfg, *combineOut, logger)
		return
	}

	if *linksPath == "" {
		*linksPath = cfg.Scrape.LinksFile
	}
	if *linksPath == "" {
		fmt.Fprintln(os.Stderr, "usage: roomscrape -links hotel_links.csv [-days 180] | -combine merged.xlsx")
		os.Exit(2)
	}
	if *daysAhead <= 0 {
		*daysAhead = cfg.Scrape.DaysAhead
	}

	links, err := readLinks(*linksPath)
	if err != nil {
		logger.Fatal("Failed to read links file", zap.Error(err))
	}
	if len(links) == 0 {
		logger.Fatal("Links file has no hotel links", zap.String("path", *linksPath))
	}

	logger.Info("Starting scrape run",
		zap.String("version", version.Version),
		zap.Int("hotels", len(links)),
		zap.Int("days_ahead", *daysAhead),
		zap.Int("batch_days", cfg.Scrape.BatchDays),
		zap.String("output_dir", cfg.Scrape.OutputDir),
	)

	if err := os.MkdirAll(cfg.Scrape.OutputDir, 0o755); err != nil {
		logger.Fatal("Failed to create output dir", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scraper := booking.New(booking.Config{
		Headless:          cfg.Scrape.Headless,
		NavigateTimeout:   time.Duration(cfg.Scrape.NavigateTimeoutSec) * time.Second,
		RequestsPerMinute: cfg.Scrape.RequestsPerMinute,
		Logger:            logger,
	})

	stays := booking.GenerateStays(time.Now(), *daysAhead)
	scrapingDate := time.Now().Format("2006-01-02")

	for _, batch := range booking.Batches(stays, cfg.Scrape.BatchDays) {
		first, last := batch[0].Checkin, batch[len(batch)-1].Checkin
		log := logger.With(zap.String("first_checkin", first), zap.String("last_checkin", last))
		log.Info("Starting batch", zap.Int("stays", len(batch)))

		offers, err := scraper.Scrape(ctx, links, batch)
		if err != nil {
			log.Error("Batch aborted", zap.Error(err))
			break
		}

		name := fmt.Sprintf("scdate_%s_first_in_%s_last_in_%s.xlsx", scrapingDate, first, last)
		path := filepath.Join(cfg.Scrape.OutputDir, name)
		if err := fileio.WriteRoomsWorkbookFile(path, offers); err != nil {
			log.Fatal("Failed to write batch workbook", zap.Error(err))
		}
		log.Info("Batch saved", zap.String("path", path), zap.Int("rooms", len(offers)))
	}

	logger.Info("Scrape run finished")
}

// combine merges every workbook in the scrape output dir into one dataset.
func combine(cfg config.Config, outPath string, logger *zap.Logger) {
	pattern := filepath.Join(cfg.Scrape.OutputDir, "*.xlsx")
	out, err := os.Create(outPath)
	if err != nil {
		logger.Fatal("Failed to create combined workbook", zap.Error(err))
	}
	defer out.Close()

	if err := fileio.Combine(pattern, out); err != nil {
		logger.Fatal("Failed to combine workbooks", zap.Error(err))
	}
	logger.Info("Workbooks combined",
		zap.String("pattern", pattern),
		zap.String("out", outPath),
	)
}

// readLinks loads hotel page URLs from a CSV file. The link column is
// found by header name; a headerless single-column file also works.
func readLinks(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open links file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse links file: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	col := 0
	start := 0
	for i, header := range records[0] {
		for _, want := range linkColumns {
			if strings.EqualFold(strings.TrimSpace(header), want) {
				col, start = i, 1
			}
		}
	}

	var links []string
	for _, rec := range records[start:] {
		if col >= len(rec) {
			continue
		}
		link := strings.TrimSpace(rec[col])
		if link != "" && strings.HasPrefix(link, "http") {
			links = append(links, link)
		}
	}
	return links, nil
}
