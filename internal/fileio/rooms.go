// Package fileio reads and writes the spreadsheet datasets the pipeline
// runs on: scraped room tables in, match workbooks out.
package fileio

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	excelize "github.com/xuri/excelize/v2"

	"github.com/novotnakristyna1203/hotel-price-prediction/internal/domain"
	"github.com/novotnakristyna1203/hotel-price-prediction/internal/domain/feature"
	"github.com/novotnakristyna1203/hotel-price-prediction/internal/domain/room"
)

// Dataset column headers. Room Type and Checkin are required; everything
// else degrades to "unknown" when absent.
const (
	colRoomType     = "Room Type"
	colOccupancy    = "Occupancy"
	colHighlights   = "Highlights"
	colPrice        = "Price"
	colOtherInfo    = "Other Info"
	colHotelLink    = "Hotel Link"
	colCheckin      = "Checkin"
	colCheckout     = "Checkout"
	colScrapingDate = "Scraping Date"
	colArea         = "Area"
	colBreakfast    = "Breakfast"
	colNonref       = "Nonref"
)

// naMarker is what the feed writes into merged-cell continuation rows.
const naMarker = "n/a"

// ReadRoomsFile reads a room dataset from an .xlsx file on disk.
func ReadRoomsFile(path string) ([]room.Offer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return ReadRooms(f)
}

// ReadRooms parses the first sheet of an .xlsx room dataset into offers.
//
// The feed leaves room type and highlights blank (or "N/A") on rate rows
// that continue the room above, so both columns are forward-filled. Rate
// flags come from dedicated Breakfast/Nonref columns when present and are
// otherwise recovered from the raw rate text. Each offer gets its
// normalized descriptor at read time.
func ReadRooms(r io.Reader) ([]room.Offer, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty: %w", sheet, domain.ErrMissingColumn)
	}

	idx := headerIndex(rows[0])
	for _, required := range []string{colRoomType, colCheckin} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("column %q: %w", required, domain.ErrMissingColumn)
		}
	}

	var (
		offers         []room.Offer
		lastRoomType   string
		lastHighlights string
	)
	for _, row := range rows[1:] {
		if rowEmpty(row) {
			continue
		}
		cell := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		roomType := cell(colRoomType)
		if roomType == "" || strings.EqualFold(roomType, naMarker) {
			roomType = lastRoomType
		} else {
			lastRoomType = roomType
		}

		rawHighlights := cell(colHighlights)
		if rawHighlights == "" || strings.EqualFold(rawHighlights, naMarker) {
			rawHighlights = lastHighlights
		} else {
			lastHighlights = rawHighlights
		}
		highlightList := parseHighlights(rawHighlights)
		highlights := strings.Join(highlightList, " ")

		info := cell(colOtherInfo)
		breakfast := parseFlag(cell(colBreakfast)) || feature.HasBreakfast(info) || feature.HasBreakfast(highlights)
		nonref := parseFlag(cell(colNonref)) || feature.IsNonRefundable(info) || feature.IsNonRefundable(highlights)

		occText := cell(colOccupancy)

		area := feature.ExtractArea(highlightList)
		if area == nil {
			area = parseNumber(cell(colArea))
		}

		offers = append(offers, room.Offer{
			RoomType:      roomType,
			Highlights:    highlights,
			Descriptor:    feature.Descriptor(roomType, breakfast, nonref, occText, highlights),
			Area:          area,
			Occupancy:     feature.ExtractOccupancy(occText),
			Price:         feature.ExtractPrice(cell(colPrice)),
			Checkin:       cell(colCheckin),
			Checkout:      cell(colCheckout),
			SourceLink:    cell(colHotelLink),
			ScrapingDate:  cell(colScrapingDate),
			Breakfast:     breakfast,
			NonRefundable: nonref,
		})
	}
	return offers, nil
}

// headerIndex maps trimmed header names to their column positions.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h != "" {
			idx[h] = i
		}
	}
	return idx
}

func rowEmpty(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseHighlights splits a highlights cell into entries. The feed stores
// them either as a plain semicolon-separated list or as a Python-style
// bracket list like ['22 m²', 'Flat-screen TV'].
func parseHighlights(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		s = s[1 : len(s)-1]
		parts := strings.Split(s, ",")
		var out []string
		for _, p := range parts {
			p = strings.Trim(strings.TrimSpace(p), `'"`)
			if p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	var out []string
	for _, p := range strings.Split(s, ";") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseNumber reads a plain numeric cell, accepting a comma decimal
// separator. Blank or unparseable cells yield nil.
func parseNumber(s string) *float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseFlag reads a boolean-ish cell value.
func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "ano":
		return true
	}
	return false
}
