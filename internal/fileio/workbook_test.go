package fileio

import (
	"bytes"
	"path/filepath"
	"testing"

	excelize "github.com/xuri/excelize/v2"

	"github.com/novotnakristyna1203/hotel-price-prediction/internal/domain/room"
)

func sampleResult() room.MatchResult {
	area := 22.0
	occ := 2
	price := 3200.0
	rec := room.MatchRecord{
		Checkin:  "2026-09-04",
		Checkout: "2026-09-05",

		CompetitorRoom:       "Deluxe King Room",
		CompetitorHighlights: "22 m² city view",
		CompetitorLink:       "https://www.booking.com/hotel/cz/other.html",
		CompetitorArea:       &area,
		CompetitorOccupancy:  &occ,
		CompetitorBreakfast:  true,
		CompetitorPrice:      &price,
		ScrapingDate:         "2026-08-29",

		MyRoom:      "Deluxe Double Room",
		MyArea:      &area,
		MyOccupancy: &occ,
		MyBreakfast: true,

		Similarity: 0.982,
	}
	own := rec
	own.CompetitorLink = "https://www.booking.com/hotel/cz/karlova-prague.html"

	return room.MatchResult{
		Competitors: []room.MatchRecord{rec},
		Own:         []room.MatchRecord{own},
		Rejections: []room.Rejection{{
			Checkin:        "2026-09-04",
			CompetitorRoom: "Budget Single",
			BestScore:      0.77,
			Reason:         room.RejectBelowThreshold,
		}},
	}
}

func TestWriteMatchWorkbook_SheetsAndRows(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMatchWorkbook(&buf, sampleResult()); err != nil {
		t.Fatalf("WriteMatchWorkbook: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := map[string]bool{SheetFiltered: true, SheetRemovedOwn: true, SheetRejections: true}
	for _, s := range sheets {
		delete(want, s)
	}
	if len(want) != 0 {
		t.Fatalf("missing sheets %v in %v", want, sheets)
	}

	rows, err := f.GetRows(SheetFiltered)
	if err != nil {
		t.Fatalf("read %q: %v", SheetFiltered, err)
	}
	if len(rows) != 2 {
		t.Fatalf("%q rows = %d, want header + 1", SheetFiltered, len(rows))
	}
	if rows[1][2] != "Deluxe King Room" {
		t.Errorf("competitor room cell = %q", rows[1][2])
	}
	if rows[1][len(rows[1])-1] != "0.982" {
		t.Errorf("similarity cell = %q, want 0.982", rows[1][len(rows[1])-1])
	}

	ownRows, err := f.GetRows(SheetRemovedOwn)
	if err != nil {
		t.Fatalf("read %q: %v", SheetRemovedOwn, err)
	}
	if len(ownRows) != 2 {
		t.Fatalf("%q rows = %d, want header + 1", SheetRemovedOwn, len(ownRows))
	}

	rejRows, err := f.GetRows(SheetRejections)
	if err != nil {
		t.Fatalf("read %q: %v", SheetRejections, err)
	}
	if len(rejRows) != 2 {
		t.Fatalf("%q rows = %d, want header + 1", SheetRejections, len(rejRows))
	}
	if rejRows[1][1] != "Budget Single" || rejRows[1][3] != "below_threshold" {
		t.Errorf("rejection row = %v", rejRows[1])
	}
}

func TestWriteMatchWorkbook_EmptyResult(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMatchWorkbook(&buf, room.MatchResult{}); err != nil {
		t.Fatalf("WriteMatchWorkbook: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{SheetFiltered, SheetRemovedOwn, SheetRejections} {
		rows, err := f.GetRows(sheet)
		if err != nil {
			t.Fatalf("read %q: %v", sheet, err)
		}
		if len(rows) != 1 {
			t.Errorf("%q rows = %d, want header only", sheet, len(rows))
		}
	}
}

func TestWriteRoomsWorkbookFile_RoundTrips(t *testing.T) {
	occ := 2
	price := 2450.0
	offers := []room.Offer{{
		RoomType:      "Twin Room",
		Highlights:    "18 m² Garden view",
		Occupancy:     &occ,
		Price:         &price,
		Checkin:       "2026-09-04",
		Checkout:      "2026-09-05",
		SourceLink:    "https://www.booking.com/hotel/cz/other.html",
		ScrapingDate:  "2026-08-29",
		Breakfast:     true,
		NonRefundable: true,
	}}

	path := filepath.Join(t.TempDir(), "scrape.xlsx")
	if err := WriteRoomsWorkbookFile(path, offers); err != nil {
		t.Fatalf("WriteRoomsWorkbookFile: %v", err)
	}

	got, err := ReadRoomsFile(path)
	if err != nil {
		t.Fatalf("ReadRoomsFile: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("offers = %d, want 1", len(got))
	}
	o := got[0]
	if o.RoomType != "Twin Room" || o.Checkin != "2026-09-04" {
		t.Errorf("round-trip mismatch: %+v", o)
	}
	if o.Occupancy == nil || *o.Occupancy != 2 {
		t.Errorf("Occupancy = %v, want 2", o.Occupancy)
	}
	if o.Price == nil || *o.Price != 2450 {
		t.Errorf("Price = %v, want 2450", o.Price)
	}
	if !o.Breakfast || !o.NonRefundable {
		t.Errorf("rate flags lost: breakfast=%v nonref=%v", o.Breakfast, o.NonRefundable)
	}
	if o.Area == nil || *o.Area != 18 {
		t.Errorf("Area = %v, want 18 from highlights", o.Area)
	}
}
