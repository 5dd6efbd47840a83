package fileio

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	excelize "github.com/xuri/excelize/v2"

	"github.com/novotnakristyna1203/hotel-price-prediction/internal/domain"
)

// buildWorkbook writes header + rows to an in-memory .xlsx.
func buildWorkbook(t *testing.T, header []interface{}, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		t.Fatalf("header: %v", err)
	}
	for i, row := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			t.Fatalf("row %d: %v", i+2, err)
		}
		if err := f.SetSheetRow(sheet, addr, &row); err != nil {
			t.Fatalf("row %d: %v", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	return &buf
}

var datasetHeader = []interface{}{
	"Room Type", "Occupancy", "Highlights", "Price", "Other Info",
	"Hotel Link", "Checkin", "Checkout", "Scraping Date",
}

func TestReadRooms_ParsesRow(t *testing.T) {
	buf := buildWorkbook(t, datasetHeader, [][]interface{}{
		{
			"Deluxe Double Room", "Max. people: 2", "['22 m²', 'Flat-screen TV']",
			"CZK 3 200", "Snídaně v ceně. Nevratná rezervace.",
			"https://www.booking.com/hotel/cz/some-hotel.html",
			"2026-09-04", "2026-09-05", "2026-08-29",
		},
	})

	offers, err := ReadRooms(buf)
	if err != nil {
		t.Fatalf("ReadRooms: %v", err)
	}
	if len(offers) != 1 {
		t.Fatalf("offers = %d, want 1", len(offers))
	}

	o := offers[0]
	if o.RoomType != "Deluxe Double Room" {
		t.Errorf("RoomType = %q", o.RoomType)
	}
	if o.Occupancy == nil || *o.Occupancy != 2 {
		t.Errorf("Occupancy = %v, want 2", o.Occupancy)
	}
	if o.Area == nil || *o.Area != 22 {
		t.Errorf("Area = %v, want 22", o.Area)
	}
	if o.Price == nil || *o.Price != 3200 {
		t.Errorf("Price = %v, want 3200", o.Price)
	}
	if !o.Breakfast {
		t.Error("Breakfast flag not recovered from rate text")
	}
	if !o.NonRefundable {
		t.Error("NonRefundable flag not recovered from rate text")
	}
	if o.Checkin != "2026-09-04" || o.Checkout != "2026-09-05" {
		t.Errorf("stay dates: %q %q", o.Checkin, o.Checkout)
	}
	if o.Descriptor == "" {
		t.Error("Descriptor must be set at read time")
	}
	for _, want := range []string{"deluxe double room", "br", "nonref", "2", "22 m"} {
		if !strings.Contains(o.Descriptor, want) {
			t.Errorf("Descriptor %q missing %q", o.Descriptor, want)
		}
	}
}

func TestReadRooms_ForwardFillsRoomTypeAndHighlights(t *testing.T) {
	buf := buildWorkbook(t, datasetHeader, [][]interface{}{
		{"Twin Room", "2", "['18 m²']", "2100", "", "", "2026-09-04", "", ""},
		{"N/A", "2", "", "1900", "nevratná rezervace", "", "2026-09-04", "", ""},
		{"", "2", "", "1800", "", "", "2026-09-04", "", ""},
	})

	offers, err := ReadRooms(buf)
	if err != nil {
		t.Fatalf("ReadRooms: %v", err)
	}
	if len(offers) != 3 {
		t.Fatalf("offers = %d, want 3", len(offers))
	}
	for i, o := range offers {
		if o.RoomType != "Twin Room" {
			t.Errorf("row %d: RoomType = %q, want forward-filled", i, o.RoomType)
		}
		if o.Area == nil || *o.Area != 18 {
			t.Errorf("row %d: Area = %v, want forward-filled 18", i, o.Area)
		}
	}
	if offers[0].NonRefundable {
		t.Error("row 0 must not be non-refundable")
	}
	if !offers[1].NonRefundable {
		t.Error("row 1 must pick up the non-refundable marker")
	}
}

func TestReadRooms_MissingRequiredColumn(t *testing.T) {
	buf := buildWorkbook(t,
		[]interface{}{"Occupancy", "Price"},
		[][]interface{}{{"2", "1000"}},
	)
	if _, err := ReadRooms(buf); !errors.Is(err, domain.ErrMissingColumn) {
		t.Errorf("expected ErrMissingColumn, got %v", err)
	}
}

func TestReadRooms_MissingOptionalsStayNil(t *testing.T) {
	buf := buildWorkbook(t, datasetHeader, [][]interface{}{
		{"Standard Room", "", "", "", "", "", "2026-09-04", "", ""},
	})

	offers, err := ReadRooms(buf)
	if err != nil {
		t.Fatalf("ReadRooms: %v", err)
	}
	o := offers[0]
	if o.Occupancy != nil {
		t.Errorf("Occupancy = %v, want nil", o.Occupancy)
	}
	if o.Area != nil {
		t.Errorf("Area = %v, want nil", o.Area)
	}
	if o.Price != nil {
		t.Errorf("Price = %v, want nil", o.Price)
	}
}

func TestReadRooms_SkipsEmptyRows(t *testing.T) {
	buf := buildWorkbook(t, datasetHeader, [][]interface{}{
		{"Suite", "4", "", "", "", "", "2026-09-04", "", ""},
		{"", "", "", "", "", "", "", "", ""},
		{"Studio", "2", "", "", "", "", "2026-09-05", "", ""},
	})

	offers, err := ReadRooms(buf)
	if err != nil {
		t.Fatalf("ReadRooms: %v", err)
	}
	if len(offers) != 2 {
		t.Errorf("offers = %d, want 2 (blank row skipped)", len(offers))
	}
}

func TestParseHighlights(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"bracket list", "['22 m²', 'Flat-screen TV']", []string{"22 m²", "Flat-screen TV"}},
		{"semicolons", "22 m²; City view", []string{"22 m²", "City view"}},
		{"single", "Balcony", []string{"Balcony"}},
		{"empty", "", nil},
		{"empty brackets", "[]", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseHighlights(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
