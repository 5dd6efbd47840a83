package booking

import (
	"fmt"
	"net/url"
	"time"
)

const dateLayout = "2006-01-02"

// Stay is one check-in/check-out window to scrape prices for.
type Stay struct {
	Checkin  string
	Checkout string
}

// GenerateStays builds one stay per day for days consecutive days starting
// at from. Weekday stays are one night; Friday and Saturday check-ins get
// two nights, since city hotels price weekends as a block.
func GenerateStays(from time.Time, days int) []Stay {
	stays := make([]Stay, 0, days)
	for offset := 0; offset < days; offset++ {
		checkin := from.AddDate(0, 0, offset)
		nights := 1
		if wd := checkin.Weekday(); wd == time.Friday || wd == time.Saturday {
			nights = 2
		}
		stays = append(stays, Stay{
			Checkin:  checkin.Format(dateLayout),
			Checkout: checkin.AddDate(0, 0, nights).Format(dateLayout),
		})
	}
	return stays
}

// Batches splits stays into runs of at most size, preserving order. The
// scraper flushes one output workbook per batch so a crashed run loses at
// most one batch of work.
func Batches(stays []Stay, size int) [][]Stay {
	if size <= 0 {
		size = len(stays)
	}
	var out [][]Stay
	for start := 0; start < len(stays); start += size {
		end := start + size
		if end > len(stays) {
			end = len(stays)
		}
		out = append(out, stays[start:end])
	}
	return out
}

// WithStayDates rewrites the checkin/checkout query parameters of a hotel
// page URL, leaving every other parameter intact.
func WithStayDates(rawURL string, stay Stay) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse hotel link: %w", err)
	}
	q := u.Query()
	q.Set("checkin", stay.Checkin)
	q.Set("checkout", stay.Checkout)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
