// Package booking scrapes room availability tables from booking.com hotel
// pages with a headless browser and turns them into room offers.
package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/novotnakristyna1203/hotel-price-prediction/internal/domain/feature"
	"github.com/novotnakristyna1203/hotel-price-prediction/internal/domain/room"
)

// RawRoom is one row of the availability table exactly as the page shows
// it, before any normalization.
type RawRoom struct {
	RoomType   string   `json:"roomType"`
	Occupancy  string   `json:"occupancy"`
	Highlights []string `json:"highlights"`
	Price      string   `json:"price"`
	OtherInfo  string   `json:"otherInfo"`
}

// roomTableJS pulls every room-rate row out of the availability table. The
// page renders rates as tr.js-rt-block-row rows; continuation rows of a
// room leave the type cell empty, which the reader forward-fills later.
const roomTableJS = `
(function() {
	var rooms = [];
	document.querySelectorAll('tr.js-rt-block-row').forEach(function(row) {
		var typeEl = row.querySelector('span.hprt-roomtype-icon-link');
		var occEl = row.querySelector('.c-occupancy-icons .bui-u-sr-only');
		var highlights = [];
		row.querySelectorAll('.bui-spacer--medium .bui-badge').forEach(function(b) {
			var t = b.innerText.trim();
			if (t) highlights.push(t);
		});
		var priceEl = row.querySelector('.hprt-price-block .prco-valign-middle-helper');
		var info = [];
		row.querySelectorAll('.hprt-block').forEach(function(d) {
			var t = d.innerText.trim();
			if (t) info.push(t);
		});
		rooms.push({
			roomType: typeEl ? typeEl.innerText.trim() : '',
			occupancy: occEl ? occEl.innerText.trim() : '',
			highlights: highlights,
			price: priceEl ? priceEl.innerText.trim() : '',
			otherInfo: info.join('; ')
		});
	});
	return rooms;
})()
`

// Config holds scraper settings.
type Config struct {
	Headless bool
	// NavigateTimeout bounds one hotel page load end to end.
	NavigateTimeout time.Duration
	// RequestsPerMinute throttles page loads; 0 disables throttling.
	RequestsPerMinute float64
	Logger            *zap.Logger
}

// Scraper drives a headless browser over booking.com hotel pages.
type Scraper struct {
	cfg     Config
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New creates a Scraper.
func New(cfg Config) *Scraper {
	if cfg.NavigateTimeout <= 0 {
		cfg.NavigateTimeout = 60 * time.Second
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerMinute/60), 1)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{cfg: cfg, limiter: limiter, logger: logger}
}

// newContext creates a fresh browser context. One browser per Scrape call;
// every hotel page reuses the same tab.
func (s *Scraper) newContext(parent context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.cfg.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) "+
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	cancel := func() {
		cancelCtx()
		cancelAlloc()
	}
	return ctx, cancel
}

// Scrape visits every hotel link for every stay window and collects the
// offered rooms. A failed page is logged and skipped; the crawl continues.
func (s *Scraper) Scrape(ctx context.Context, links []string, stays []Stay) ([]room.Offer, error) {
	browserCtx, cancel := s.newContext(ctx)
	defer cancel()

	scrapingDate := time.Now().Format(dateLayout)
	var offers []room.Offer

	for _, stay := range stays {
		log := s.logger.With(
			zap.String("checkin", stay.Checkin),
			zap.String("checkout", stay.Checkout),
		)
		for _, link := range links {
			if err := ctx.Err(); err != nil {
				return offers, fmt.Errorf("scrape cancelled: %w", err)
			}
			dated, err := WithStayDates(link, stay)
			if err != nil {
				log.Warn("Skipping malformed hotel link", zap.String("link", link), zap.Error(err))
				continue
			}
			if s.limiter != nil {
				if err := s.limiter.Wait(ctx); err != nil {
					return offers, fmt.Errorf("rate limiter: %w", err)
				}
			}

			raw, err := s.scrapeHotel(browserCtx, dated)
			if err != nil {
				log.Warn("Hotel page failed", zap.String("link", dated), zap.Error(err))
				continue
			}
			log.Info("Hotel page scraped", zap.String("link", dated), zap.Int("rooms", len(raw)))

			for _, r := range raw {
				offers = append(offers, r.toOffer(dated, stay, scrapingDate))
			}
		}
	}
	return offers, nil
}

// scrapeHotel loads one dated hotel page and extracts its room table. The
// "show more rooms" button is clicked when present; its absence is not an
// error.
func (s *Scraper) scrapeHotel(ctx context.Context, pageURL string) ([]RawRoom, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.NavigateTimeout)
	defer cancel()

	err := chromedp.Run(ctx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}

	_ = chromedp.Run(ctx,
		chromedp.Click("button.hprt-show-more", chromedp.ByQuery, chromedp.NodeVisible),
		chromedp.Sleep(2*time.Second),
	)

	var rooms []RawRoom
	if err := chromedp.Run(ctx, chromedp.Evaluate(roomTableJS, &rooms)); err != nil {
		return nil, fmt.Errorf("extract room table: %w", err)
	}
	return rooms, nil
}

// toOffer normalizes one scraped row into an offer: numeric fields parsed
// out, rate flags recovered from the raw text, descriptor built.
func (r RawRoom) toOffer(link string, stay Stay, scrapingDate string) room.Offer {
	highlights := strings.Join(r.Highlights, " ")
	breakfast := feature.HasBreakfast(r.OtherInfo) || feature.HasBreakfast(highlights)
	nonref := feature.IsNonRefundable(r.OtherInfo) || feature.IsNonRefundable(highlights)

	return room.Offer{
		RoomType:      r.RoomType,
		Highlights:    highlights,
		Descriptor:    feature.Descriptor(r.RoomType, breakfast, nonref, r.Occupancy, highlights),
		Area:          feature.ExtractArea(r.Highlights),
		Occupancy:     feature.ExtractOccupancy(r.Occupancy),
		Price:         feature.ExtractPrice(r.Price),
		Checkin:       stay.Checkin,
		Checkout:      stay.Checkout,
		SourceLink:    link,
		ScrapingDate:  scrapingDate,
		Breakfast:     breakfast,
		NonRefundable: nonref,
	}
}
