package booking

import (
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestGenerateStays_WeekendNights(t *testing.T) {
	// 2026-08-31 is a Monday.
	from := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	stays := GenerateStays(from, 7)
	if len(stays) != 7 {
		t.Fatalf("stays = %d, want 7", len(stays))
	}

	tests := []struct {
		idx          int
		wantCheckin  string
		wantCheckout string
	}{
		{0, "2026-08-31", "2026-09-01"}, // Monday, one night
		{3, "2026-09-03", "2026-09-04"}, // Thursday, one night
		{4, "2026-09-04", "2026-09-06"}, // Friday, two nights
		{5, "2026-09-05", "2026-09-07"}, // Saturday, two nights
		{6, "2026-09-06", "2026-09-07"}, // Sunday, one night
	}
	for _, tt := range tests {
		s := stays[tt.idx]
		if s.Checkin != tt.wantCheckin || s.Checkout != tt.wantCheckout {
			t.Errorf("stay %d = %s → %s, want %s → %s",
				tt.idx, s.Checkin, s.Checkout, tt.wantCheckin, tt.wantCheckout)
		}
	}
}

func TestGenerateStays_Empty(t *testing.T) {
	if got := GenerateStays(time.Now(), 0); len(got) != 0 {
		t.Errorf("expected no stays, got %d", len(got))
	}
}

func TestBatches(t *testing.T) {
	stays := GenerateStays(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), 10)

	batches := Batches(stays, 7)
	if len(batches) != 2 {
		t.Fatalf("batches = %d, want 2", len(batches))
	}
	if len(batches[0]) != 7 || len(batches[1]) != 3 {
		t.Errorf("batch sizes = %d, %d; want 7, 3", len(batches[0]), len(batches[1]))
	}
	if batches[1][0].Checkin != stays[7].Checkin {
		t.Error("batches must preserve order")
	}

	// Non-positive size yields a single batch.
	if got := Batches(stays, 0); len(got) != 1 || len(got[0]) != 10 {
		t.Errorf("Batches(.., 0) = %d batches", len(got))
	}
}

func TestWithStayDates_RewritesOnlyDates(t *testing.T) {
	raw := "https://www.booking.com/hotel/cz/some-hotel.html?checkin=2025-01-01&checkout=2025-01-02&group_adults=2&lang=en-us"
	stay := Stay{Checkin: "2026-09-04", Checkout: "2026-09-06"}

	got, err := WithStayDates(raw, stay)
	if err != nil {
		t.Fatalf("WithStayDates: %v", err)
	}

	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("result does not parse: %v", err)
	}
	q := u.Query()
	if q.Get("checkin") != "2026-09-04" || q.Get("checkout") != "2026-09-06" {
		t.Errorf("dates not rewritten: %s", got)
	}
	if q.Get("group_adults") != "2" || q.Get("lang") != "en-us" {
		t.Errorf("other parameters must survive: %s", got)
	}
	if !strings.HasPrefix(got, "https://www.booking.com/hotel/cz/some-hotel.html?") {
		t.Errorf("path changed: %s", got)
	}
}

func TestWithStayDates_AddsMissingParams(t *testing.T) {
	got, err := WithStayDates("https://www.booking.com/hotel/cz/plain.html", Stay{
		Checkin: "2026-09-04", Checkout: "2026-09-05",
	})
	if err != nil {
		t.Fatalf("WithStayDates: %v", err)
	}
	u, _ := url.Parse(got)
	if u.Query().Get("checkin") != "2026-09-04" {
		t.Errorf("checkin not added: %s", got)
	}
}

func TestWithStayDates_BadURL(t *testing.T) {
	if _, err := WithStayDates("://not-a-url", Stay{}); err == nil {
		t.Error("expected error for malformed URL")
	}
}
